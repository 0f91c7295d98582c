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
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/otns/vlcns/lightdata"
	. "github.com/otns/vlcns/types"
)

// LsvLightModelParams configures the measured radiation-pattern model.
type LsvLightModelParams struct {
	RadiationPattern string  `mapstructure:"radiationPattern"`
	PhotoDiode       string  `mapstructure:"photoDiode"`
	LampSeparation   float64 `mapstructure:"lampSeparation"` // m, between left and right lamp
	LoadResistance   float64 `mapstructure:"loadResistance"` // ohm
	PhotoDiodeFov    float64 `mapstructure:"photoDiodeFov"`  // half-angle, degrees
}

func DefaultLsvLightModelParams() LsvLightModelParams {
	return LsvLightModelParams{
		LampSeparation: 1.2,
		LoadResistance: 50,
		PhotoDiodeFov:  90,
	}
}

// LsvLightModel computes the electrical power at a photodiode from the measured radiation pattern of
// a two-lamp light module.
type LsvLightModel struct {
	rp             *lightdata.RadiationPattern
	pd             *lightdata.PhotoDiode
	responsivity   float64 // A/W
	lampSeparation float64
	loadResistance float64
	cosFov         float64
}

func NewLsvLightModel(reg *lightdata.Registry, params LsvLightModelParams) (*LsvLightModel, error) {
	rp, err := reg.RadiationPattern(params.RadiationPattern)
	if err != nil {
		return nil, err
	}
	pd, err := reg.PhotoDiode(params.PhotoDiode)
	if err != nil {
		return nil, err
	}
	if params.LoadResistance <= 0 {
		return nil, errors.Errorf("loadResistance must be positive")
	}
	if params.PhotoDiodeFov <= 0 || params.PhotoDiodeFov > 90 {
		return nil, errors.Errorf("photoDiodeFov must be in (0, 90] degrees")
	}
	return &LsvLightModel{
		rp:             rp,
		pd:             pd,
		responsivity:   pd.EffectiveResponsivity(rp.SpectralEmission()),
		lampSeparation: params.LampSeparation,
		loadResistance: params.LoadResistance,
		cosFov:         math.Cos(Deg2Rad(params.PhotoDiodeFov)),
	}, nil
}

func (m *LsvLightModel) Name() string {
	return "LsvLightModel"
}

// lampPosition returns the position of lamp l, offset sideways from the light module center.
func (m *LsvLightModel) lampPosition(sender Pose, l lightdata.Lamp) r3.Vec {
	dir := sender.Direction()
	left := r3.Vec{X: -dir.Y, Y: dir.X}
	offset := m.lampSeparation / 2
	if l == lightdata.RightLamp {
		offset = -offset
	}
	return r3.Add(sender.Pos, r3.Scale(offset, left))
}

// OpticalPower returns the optical power in W collected by the photodiode from both lamps.
func (m *LsvLightModel) OpticalPower(l *Link) float64 {
	rxDir := l.Receiver.Direction()
	total := 0.0
	for _, lamp := range []lightdata.Lamp{lightdata.LeftLamp, lightdata.RightLamp} {
		v := r3.Sub(l.Receiver.Pos, m.lampPosition(l.Sender, lamp))
		d := r3.Norm(v)
		if d == 0 {
			continue
		}
		theta, phi := offAxisAngles(l.Sender, v.X, v.Y, v.Z)
		thetaDeg, phiDeg := Rad2Deg(theta), Rad2Deg(phi)
		if !m.rp.InFov(lamp, thetaDeg, phiDeg) {
			continue
		}
		cosIncidence := -r3.Dot(v, rxDir) / d
		if cosIncidence <= 0 || cosIncidence < m.cosFov {
			continue
		}
		irradiance := m.rp.Intensity(lamp, thetaDeg, phiDeg) / (d * d)
		total += irradiance * m.pd.Area * cosIncidence
	}
	return total
}

// ElectricalPowerMw converts optical power (W) to electrical power (mW) at the photodiode's load.
func (m *LsvLightModel) ElectricalPowerMw(opticalPower float64) float64 {
	voltage := m.pd.Gain * m.responsivity * opticalPower
	return voltage * voltage / m.loadResistance * 1000
}

func (m *LsvLightModel) ComputeFactor(l *Link) float64 {
	return powerToFactor(m.ElectricalPowerMw(m.OpticalPower(l)))
}
