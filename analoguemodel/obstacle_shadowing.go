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

package analoguemodel

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	defaultSimpleShadowingFrequency  = 5.890e9
	defaultVehicleShadowingFrequency = 2.412e9
)

// ObstacleControl is the geometry collaborator answering line-of-sight queries.
type ObstacleControl interface {
	CalculateAttenuation(sender, receiver r3.Vec) float64
	CalculateVehicleAttenuation(sender, receiver r3.Vec, carrierFrequency float64, vlc bool) float64
}

// ShadowingParams configures both obstacle shadowing models.
type ShadowingParams struct {
	CarrierFrequency *float64 `mapstructure:"carrierFrequency"`
	EnableVlc        *bool    `mapstructure:"enableVlc"`
}

// resolveCarrierFrequency picks the configured frequency, else the channel frequency, else def. A
// configured frequency below the channel frequency is rejected.
func resolveCarrierFrequency(configured *float64, channelFrequency, def float64) (float64, error) {
	if configured != nil {
		if channelFrequency > 0 && *configured < channelFrequency {
			return 0, errors.Errorf("carrierFrequency %g can't be smaller than the channel frequency %g",
				*configured, channelFrequency)
		}
		return *configured, nil
	}
	if channelFrequency > 0 {
		return channelFrequency, nil
	}
	return def, nil
}

// SimpleObstacleShadowing attenuates links passing through static obstacles.
type SimpleObstacleShadowing struct {
	obstacles        ObstacleControl
	carrierFrequency float64
}

func NewSimpleObstacleShadowing(oc ObstacleControl, params ShadowingParams, channelFrequency float64, useTorus bool) (*SimpleObstacleShadowing, error) {
	if oc == nil {
		return nil, errors.New("SimpleObstacleShadowing: cannot find obstacle control")
	}
	if useTorus {
		return nil, errors.New("SimpleObstacleShadowing does not work on torus-shaped playgrounds")
	}
	freq, err := resolveCarrierFrequency(params.CarrierFrequency, channelFrequency, defaultSimpleShadowingFrequency)
	if err != nil {
		return nil, errors.Wrap(err, "SimpleObstacleShadowing")
	}
	return &SimpleObstacleShadowing{obstacles: oc, carrierFrequency: freq}, nil
}

func (m *SimpleObstacleShadowing) Name() string {
	return "SimpleObstacleShadowing"
}

func (m *SimpleObstacleShadowing) CarrierFrequency() float64 {
	return m.carrierFrequency
}

func (m *SimpleObstacleShadowing) ComputeFactor(l *Link) float64 {
	return m.obstacles.CalculateAttenuation(l.Sender.Pos, l.Receiver.Pos)
}

// VehicleObstacleShadowing attenuates links by the vehicles standing between sender and receiver.
type VehicleObstacleShadowing struct {
	obstacles        ObstacleControl
	carrierFrequency float64
	enableVlc        bool
}

func NewVehicleObstacleShadowing(oc ObstacleControl, params ShadowingParams, channelFrequency float64, useTorus bool) (*VehicleObstacleShadowing, error) {
	if oc == nil {
		return nil, errors.New("VehicleObstacleShadowing: cannot find obstacle control")
	}
	if useTorus {
		return nil, errors.New("VehicleObstacleShadowing does not work on torus-shaped playgrounds")
	}
	freq, err := resolveCarrierFrequency(params.CarrierFrequency, channelFrequency, defaultVehicleShadowingFrequency)
	if err != nil {
		return nil, errors.Wrap(err, "VehicleObstacleShadowing")
	}
	if params.EnableVlc == nil {
		return nil, errors.New("enableVlc has not been specified")
	}
	return &VehicleObstacleShadowing{obstacles: oc, carrierFrequency: freq, enableVlc: *params.EnableVlc}, nil
}

func (m *VehicleObstacleShadowing) Name() string {
	return "VehicleObstacleShadowing"
}

func (m *VehicleObstacleShadowing) CarrierFrequency() float64 {
	return m.carrierFrequency
}

func (m *VehicleObstacleShadowing) ComputeFactor(l *Link) float64 {
	return m.obstacles.CalculateVehicleAttenuation(l.Sender.Pos, l.Receiver.Pos, m.carrierFrequency, m.enableVlc)
}
