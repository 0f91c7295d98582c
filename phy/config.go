// Copyright (c) 2020-2023, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package phy

import (
	"github.com/pkg/errors"

	"github.com/otns/vlcns/analoguemodel"
	"github.com/otns/vlcns/radiomodel"
	. "github.com/otns/vlcns/types"
)

// Config is the configuration of one VLC PHY, i.e. one light module with its photodiode.
type Config struct {
	Direction LightModule // LightHead or LightTail
	TxPowerMw float64
	Bitrate   float64 // bit/s
	Frequency float64 // Hz
	Bandwidth float64 // Hz
	Decider   radiomodel.DeciderParams
}

// DefaultConfig gets a PHY configuration with default values for the given direction.
func DefaultConfig(direction LightModule) *Config {
	dp := radiomodel.DefaultDeciderParams()
	return &Config{
		Direction: direction,
		TxPowerMw: analoguemodel.FixedReferencePowerMw,
		Bitrate:   dp.Bitrate,
		Frequency: dp.CenterFrequency,
		Bandwidth: dp.Bandwidth,
		Decider:   *dp,
	}
}

func (c *Config) Validate() error {
	if c.Direction != LightHead && c.Direction != LightTail {
		return errors.Errorf("invalid PHY direction %s, must be head or tail", c.Direction)
	}
	if c.TxPowerMw != analoguemodel.FixedReferencePowerMw {
		return errors.Errorf("transmit power %g mW not supported, the light models are calibrated for %g mW",
			c.TxPowerMw, analoguemodel.FixedReferencePowerMw)
	}
	if _, err := DataBitsPerSymbol(c.Bitrate); err != nil {
		return err
	}
	if c.Decider.CenterFrequency != c.Frequency {
		return errors.Errorf("decider center frequency %g Hz differs from PHY frequency %g Hz",
			c.Decider.CenterFrequency, c.Frequency)
	}
	if c.Bandwidth <= 0 {
		return errors.Errorf("invalid bandwidth %g", c.Bandwidth)
	}
	return c.Decider.Validate()
}
