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
	"math"

	"github.com/pkg/errors"

	. "github.com/otns/vlcns/types"
)

// FittedCoefficients parametrize the closed-form fit of measured received power (dBm):
//
//	P(d, a) = alpha + 10*beta*log10(1/(d+gamma)) + delta + epsilon*cos(2*pi*a/period)
//
// with d the distance in meters and a the off-axis angle in degrees.
type FittedCoefficients struct {
	Alpha   float64 `mapstructure:"alpha"`
	Beta    float64 `mapstructure:"beta"`
	Gamma   float64 `mapstructure:"gamma"`
	Delta   float64 `mapstructure:"delta"`
	Epsilon float64 `mapstructure:"epsilon"`
	Period  float64 `mapstructure:"period"`
}

// DistanceTermDbm is the log-distance part of the fit.
func (fc *FittedCoefficients) DistanceTermDbm(distance float64) DbValue {
	return fc.Alpha + 10*fc.Beta*math.Log10(1/(distance+fc.Gamma))
}

// AngleTermDbm is the single-harmonic angular part of the fit.
func (fc *FittedCoefficients) AngleTermDbm(angleDeg float64) DbValue {
	return fc.Delta + fc.Epsilon*math.Cos(2*math.Pi*angleDeg/fc.Period)
}

func (fc *FittedCoefficients) PowerDbm(distance, angleDeg float64) DbValue {
	return fc.DistanceTermDbm(distance) + fc.AngleTermDbm(angleDeg)
}

func defaultHeadlightFit() FittedCoefficients {
	return FittedCoefficients{Alpha: -2.5, Beta: 3.0, Gamma: 0.05, Delta: 0, Epsilon: 3.0, Period: 120}
}

func defaultTaillightFit() FittedCoefficients {
	return FittedCoefficients{Alpha: -15.0, Beta: 3.2, Gamma: 0.05, Delta: 0, Epsilon: 2.0, Period: 120}
}

// EmpiricalLightModelParams configures the empirical model. Range and angle limits have no default.
type EmpiricalLightModelParams struct {
	HeadlightMaxTxRange *float64           `mapstructure:"headlightMaxTxRange"`
	TaillightMaxTxRange *float64           `mapstructure:"taillightMaxTxRange"`
	HeadlightMaxTxAngle *float64           `mapstructure:"headlightMaxTxAngle"` // degrees
	TaillightMaxTxAngle *float64           `mapstructure:"taillightMaxTxAngle"` // degrees
	Headlight           FittedCoefficients `mapstructure:"headlight"`
	Taillight           FittedCoefficients `mapstructure:"taillight"`
}

func DefaultEmpiricalLightModelParams() EmpiricalLightModelParams {
	return EmpiricalLightModelParams{
		Headlight: defaultHeadlightFit(),
		Taillight: defaultTaillightFit(),
	}
}

type lightLimits struct {
	maxRange float64
	maxAngle float64 // radians
	fit      FittedCoefficients
}

// EmpiricalLightModel yields the electrical power observed behind a photodiode from measurements
// with a headlight and a taillight, limited to the measured range and opening angle.
type EmpiricalLightModel struct {
	sensitivityDbm DbValue
	head, tail     lightLimits
}

func NewEmpiricalLightModel(sensitivityDbm DbValue, params EmpiricalLightModelParams) (*EmpiricalLightModel, error) {
	required := []struct {
		name string
		v    *float64
	}{
		{"headlightMaxTxRange", params.HeadlightMaxTxRange},
		{"taillightMaxTxRange", params.TaillightMaxTxRange},
		{"headlightMaxTxAngle", params.HeadlightMaxTxAngle},
		{"taillightMaxTxAngle", params.TaillightMaxTxAngle},
	}
	for _, r := range required {
		if r.v == nil {
			return nil, errors.Errorf("%s has not been specified", r.name)
		}
		if *r.v <= 0 {
			return nil, errors.Errorf("%s must be positive", r.name)
		}
	}
	for _, fit := range []FittedCoefficients{params.Headlight, params.Taillight} {
		if fit.Period == 0 {
			return nil, errors.Errorf("fitted period must not be zero")
		}
	}
	return &EmpiricalLightModel{
		sensitivityDbm: sensitivityDbm,
		head: lightLimits{
			maxRange: *params.HeadlightMaxTxRange,
			maxAngle: Deg2Rad(*params.HeadlightMaxTxAngle),
			fit:      params.Headlight,
		},
		tail: lightLimits{
			maxRange: *params.TaillightMaxTxRange,
			maxAngle: Deg2Rad(*params.TaillightMaxTxAngle),
			fit:      params.Taillight,
		},
	}, nil
}

func (m *EmpiricalLightModel) Name() string {
	return "EmpiricalLightModel"
}

func (m *EmpiricalLightModel) limits(lm LightModule) *lightLimits {
	if lm == LightTail {
		return &m.tail
	}
	return &m.head
}

// IsUnderSensitivity returns true if the receiver is out of range or angle of the emitting light, or
// does not face the emitter.
func (m *EmpiricalLightModel) IsUnderSensitivity(l *Link) bool {
	lim := m.limits(l.Light)
	d := l.Distance()
	if d > lim.maxRange {
		return true
	}
	vx, vy, vz := l.Receiver.Pos.X-l.Sender.Pos.X, l.Receiver.Pos.Y-l.Sender.Pos.Y, l.Receiver.Pos.Z-l.Sender.Pos.Z
	theta, _ := offAxisAngles(l.Sender, vx, vy, vz)
	if math.Abs(theta) > lim.maxAngle {
		return true
	}
	rxDir := l.Receiver.Direction()
	return rxDir.X*(-vx)+rxDir.Y*(-vy) <= 0
}

// ReceivedPowerDbm returns the fitted received power, without range and angle limits.
func (m *EmpiricalLightModel) ReceivedPowerDbm(l *Link) DbValue {
	vx, vy, vz := l.Receiver.Pos.X-l.Sender.Pos.X, l.Receiver.Pos.Y-l.Sender.Pos.Y, l.Receiver.Pos.Z-l.Sender.Pos.Z
	theta, _ := offAxisAngles(l.Sender, vx, vy, vz)
	return m.limits(l.Light).fit.PowerDbm(l.Distance(), Rad2Deg(theta))
}

func (m *EmpiricalLightModel) ComputeFactor(l *Link) float64 {
	if m.IsUnderSensitivity(l) {
		return 0
	}
	p := m.ReceivedPowerDbm(l)
	if p < m.sensitivityDbm {
		return 0
	}
	return powerToFactor(dbmToMw(p))
}
