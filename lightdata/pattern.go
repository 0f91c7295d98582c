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

package lightdata

import (
	"math"
	"slices"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// Lamp selects one of the two lamps of a light module.
type Lamp int

const (
	LeftLamp Lamp = iota
	RightLamp
)

func (l Lamp) String() string {
	if l == LeftLamp {
		return "left"
	}
	return "right"
}

// lampPattern is the intensity of one lamp over an angle grid (degrees). The magnitudes are either a
// vector over the horizontal angle only, or a square matrix in row-major order with rows indexed by
// the vertical angle and columns by the horizontal angle, both using the same grid. Each row is
// fitted once over the horizontal angle.
type lampPattern struct {
	magnitudes []float64
	angles     []float64
	rows       []*interp.PiecewiseLinear
}

func newLampPattern(magnitudes, angles []float64) (lampPattern, error) {
	n := len(angles)
	if n < 2 {
		return lampPattern{}, errors.Errorf("need at least 2 angles, got %d", n)
	}
	for i := 1; i < n; i++ {
		if angles[i] <= angles[i-1] {
			return lampPattern{}, errors.Errorf("angles must be strictly increasing at index %d", i)
		}
	}
	if len(magnitudes) != n && len(magnitudes) != n*n {
		return lampPattern{}, errors.Errorf("%d magnitudes do not fit %d angles", len(magnitudes), n)
	}
	lp := lampPattern{magnitudes: magnitudes, angles: angles}
	for off := 0; off < len(magnitudes); off += n {
		pl := &interp.PiecewiseLinear{}
		if err := pl.Fit(angles, magnitudes[off:off+n]); err != nil {
			return lampPattern{}, errors.Wrapf(err, "row %d", off/n)
		}
		lp.rows = append(lp.rows, pl)
	}
	return lp, nil
}

func (lp *lampPattern) isMatrix() bool {
	return len(lp.rows) > 1
}

func (lp *lampPattern) inFov(thetaDeg, phiDeg float64) bool {
	lo, hi := lp.angles[0], lp.angles[len(lp.angles)-1]
	if thetaDeg < lo || thetaDeg > hi {
		return false
	}
	if lp.isMatrix() {
		return phiDeg >= lo && phiDeg <= hi
	}
	return math.Abs(phiDeg) <= 90
}

// at interpolates the pattern bilinearly; the caller checks the field of view first.
func (lp *lampPattern) at(thetaDeg, phiDeg float64) float64 {
	if !lp.isMatrix() {
		return lp.rows[0].Predict(thetaDeg)
	}
	i := sort.SearchFloat64s(lp.angles, phiDeg)
	switch {
	case i == 0:
		return lp.rows[0].Predict(thetaDeg)
	case i == len(lp.angles):
		return lp.rows[i-1].Predict(thetaDeg)
	}
	lo, hi := lp.angles[i-1], lp.angles[i]
	w := (phiDeg - lo) / (hi - lo)
	return (1-w)*lp.rows[i-1].Predict(thetaDeg) + w*lp.rows[i].Predict(thetaDeg)
}

// RadiationPattern is the measured emission of a light module with two lamps.
type RadiationPattern struct {
	Id               string
	lamps            [2]lampPattern
	spectralEmission []float64
}

func (rp *RadiationPattern) Magnitudes(l Lamp) []float64 {
	return slices.Clone(rp.lamps[l].magnitudes)
}

func (rp *RadiationPattern) Angles(l Lamp) []float64 {
	return slices.Clone(rp.lamps[l].angles)
}

func (rp *RadiationPattern) SpectralEmission() []float64 {
	return slices.Clone(rp.spectralEmission)
}

// InFov returns true if the angles (degrees) off the lamp's boresight lie within its pattern.
func (rp *RadiationPattern) InFov(l Lamp, thetaDeg, phiDeg float64) bool {
	return rp.lamps[l].inFov(thetaDeg, phiDeg)
}

// Intensity returns the interpolated radiant intensity (W/sr) of lamp l, or 0 outside its field of view.
func (rp *RadiationPattern) Intensity(l Lamp, thetaDeg, phiDeg float64) float64 {
	lp := &rp.lamps[l]
	if !lp.inFov(thetaDeg, phiDeg) {
		return 0
	}
	return math.Max(0, lp.at(thetaDeg, phiDeg))
}

// PhotoDiode describes a receiving sensor.
type PhotoDiode struct {
	Id               string
	Area             float64 // m^2
	Gain             float64 // transimpedance gain, V/A
	spectralResponse []float64
}

func (pd *PhotoDiode) SpectralResponse() []float64 {
	return slices.Clone(pd.spectralResponse)
}

// EffectiveResponsivity returns the photodiode responsivity (A/W) weighted by the emission spectrum.
// Both spectra are sampled over the same wavelength range; a response sampled at a different
// resolution is resampled onto the emission grid.
func (pd *PhotoDiode) EffectiveResponsivity(emission []float64) float64 {
	total := floats.Sum(emission)
	if total <= 0 || len(pd.spectralResponse) == 0 {
		return 0
	}
	response := pd.spectralResponse
	if len(response) != len(emission) {
		response = resample(response, len(emission))
	}
	return floats.Dot(emission, response) / total
}

func resample(values []float64, n int) []float64 {
	if len(values) == 1 || n == 1 {
		res := make([]float64, n)
		for i := range res {
			res[i] = values[0]
		}
		return res
	}
	xs := make([]float64, len(values))
	floats.Span(xs, 0, 1)
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, values); err != nil {
		panic(err)
	}
	at := make([]float64, n)
	floats.Span(at, 0, 1)
	res := make([]float64, n)
	for i, x := range at {
		res[i] = pl.Predict(x)
	}
	return res
}
