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

package radiomodel

import (
	"github.com/pkg/errors"

	. "github.com/otns/vlcns/types"
)

const (
	// ShrBits is the length of the synchronization header (preamble and start-of-frame delimiter).
	ShrBits = 40
	// PhrBits is the length of the PHY header following the synchronization header.
	PhrBits = 32
)

// default radio parameters
const (
	defaultCenterFrequency = 666e12 // Hz
	defaultBandwidth       = 20e6   // Hz
	defaultBitrate         = 6e6    // bit/s
	defaultSensitivityDbm  = -100.0
	defaultThermalNoiseDbm = -110.0
)

// DeciderParams stores the parameters of a receiver's decider.
type DeciderParams struct {
	SensitivityDbm             DbValue // frames detected below this power are not received
	CenterFrequency            float64 // Hz
	Bandwidth                  float64 // Hz
	Bitrate                    float64 // bit/s
	ThermalNoiseDbm            DbValue
	CollectCollisionStatistics bool // classify interference losses as collisions, at the cost of an SNR pass
	HeaderBits                 int  // bits of the frame start excluded from the SINR window and used for the header draw
}

// DefaultDeciderParams gets a new set of parameters with default values, as a basis to configure further.
func DefaultDeciderParams() *DeciderParams {
	return &DeciderParams{
		SensitivityDbm:             defaultSensitivityDbm,
		CenterFrequency:            defaultCenterFrequency,
		Bandwidth:                  defaultBandwidth,
		Bitrate:                    defaultBitrate,
		ThermalNoiseDbm:            defaultThermalNoiseDbm,
		CollectCollisionStatistics: false,
		HeaderBits:                 ShrBits,
	}
}

func (p *DeciderParams) Validate() error {
	if p.SensitivityDbm == UndefinedDbValue || p.ThermalNoiseDbm == UndefinedDbValue {
		return errors.New("sensitivity and thermal noise must be defined")
	}
	if p.CenterFrequency <= 0 || p.Bandwidth <= 0 {
		return errors.Errorf("invalid channel: centerFrequency=%g bandwidth=%g", p.CenterFrequency, p.Bandwidth)
	}
	if p.Bitrate <= 0 {
		return errors.Errorf("invalid bitrate %g", p.Bitrate)
	}
	if p.HeaderBits < 0 {
		return errors.Errorf("invalid header length %d", p.HeaderBits)
	}
	return nil
}
