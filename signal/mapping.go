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

package signal

import (
	"math"
	"sort"

	. "github.com/otns/vlcns/types"
)

// MappedZero is the value a ratio takes where its denominator is uncovered or zero.
const MappedZero = 0.0

// Band is a closed frequency interval [Low, High] in Hz.
type Band struct {
	Low, High float64
}

// AllFrequencies covers the whole spectrum.
var AllFrequencies = Band{Low: math.Inf(-1), High: math.Inf(1)}

// CenteredBand returns [fc - bw/2, fc + bw/2].
func CenteredBand(fc, bw float64) Band {
	return Band{Low: fc - bw/2, High: fc + bw/2}
}

func (b Band) Contains(f float64) bool {
	return f >= b.Low && f <= b.High
}

// Piece is a constant value over the time interval [Start, End) and frequency Band.
type Piece struct {
	Start, End Timestamp
	Band       Band
	Value      float64
}

func (p *Piece) covers(t Timestamp, f float64) bool {
	return t >= p.Start && t < p.End && p.Band.Contains(f)
}

// Mapping is a piecewise-constant function of time and frequency, typically a power in mW. The value
// at a point is the sum of all pieces covering it; a point covered by no piece is outside the
// mapping's support.
type Mapping struct {
	pieces []Piece
}

// NewConstantMapping creates a mapping with value v over [start, end) and band.
func NewConstantMapping(start, end Timestamp, band Band, v float64) *Mapping {
	return &Mapping{pieces: []Piece{{Start: start, End: end, Band: band, Value: v}}}
}

// NewUniformMapping creates a mapping with value v at every time and frequency.
func NewUniformMapping(v float64) *Mapping {
	return NewConstantMapping(0, Ever, AllFrequencies, v)
}

// Pieces returns the pieces of the mapping; callers must not modify them.
func (m *Mapping) Pieces() []Piece {
	return m.pieces
}

// At returns the value at (t, f) and whether the point is inside the mapping's support.
func (m *Mapping) At(t Timestamp, f float64) (float64, bool) {
	sum, covered := 0.0, false
	for i := range m.pieces {
		if m.pieces[i].covers(t, f) {
			sum += m.pieces[i].Value
			covered = true
		}
	}
	return sum, covered
}

// Add returns a new mapping that is the sum of m and other.
func (m *Mapping) Add(other *Mapping) *Mapping {
	res := &Mapping{pieces: make([]Piece, 0, len(m.pieces)+len(other.pieces))}
	res.pieces = append(res.pieces, m.pieces...)
	res.pieces = append(res.pieces, other.pieces...)
	return res
}

// Scale returns a new mapping with all values multiplied by k.
func (m *Mapping) Scale(k float64) *Mapping {
	res := &Mapping{pieces: make([]Piece, len(m.pieces))}
	copy(res.pieces, m.pieces)
	for i := range res.pieces {
		res.pieces[i].Value *= k
	}
	return res
}

// Restrict returns a new mapping clipped to the time interval [start, end).
func (m *Mapping) Restrict(start, end Timestamp) *Mapping {
	res := &Mapping{}
	for _, p := range m.pieces {
		s, e := max(p.Start, start), min(p.End, end)
		if s < e {
			p.Start, p.End = s, e
			res.pieces = append(res.pieces, p)
		}
	}
	return res
}

// cell is one rectangle of the grid spanned by the piece boundaries of one or more mappings.
type cell struct {
	start, end Timestamp
	freq       float64 // representative frequency of the cell
	band       Band
}

// grid enumerates the cells, inside the time window [from, to) and band, on which every given mapping
// is constant.
func grid(from, to Timestamp, band Band, maps ...*Mapping) []cell {
	if from >= to || band.Low > band.High {
		return nil
	}
	times := []Timestamp{from, to}
	freqs := []float64{band.Low, band.High}
	for _, m := range maps {
		for _, p := range m.pieces {
			for _, t := range []Timestamp{p.Start, p.End} {
				if t > from && t < to {
					times = append(times, t)
				}
			}
			for _, f := range []float64{p.Band.Low, p.Band.High} {
				if f > band.Low && f < band.High {
					freqs = append(freqs, f)
				}
			}
		}
	}
	times = uniqueTimestamps(times)
	freqs = uniqueFloats(freqs)

	var cells []cell
	for i := 0; i+1 < len(times); i++ {
		if len(freqs) == 1 {
			cells = append(cells, cell{start: times[i], end: times[i+1], freq: freqs[0], band: band})
			continue
		}
		for j := 0; j+1 < len(freqs); j++ {
			b := Band{Low: freqs[j], High: freqs[j+1]}
			cells = append(cells, cell{start: times[i], end: times[i+1], freq: midFrequency(b), band: b})
		}
	}
	return cells
}

func midFrequency(b Band) float64 {
	switch {
	case math.IsInf(b.Low, -1) && math.IsInf(b.High, 1):
		return 0
	case math.IsInf(b.Low, -1):
		return b.High - 1
	case math.IsInf(b.High, 1):
		return b.Low + 1
	default:
		return b.Low + (b.High-b.Low)/2
	}
}

func uniqueTimestamps(ts []Timestamp) []Timestamp {
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
	res := ts[:1]
	for _, t := range ts[1:] {
		if t != res[len(res)-1] {
			res = append(res, t)
		}
	}
	return res
}

func uniqueFloats(fs []float64) []float64 {
	sort.Float64s(fs)
	res := fs[:1]
	for _, f := range fs[1:] {
		if f != res[len(res)-1] {
			res = append(res, f)
		}
	}
	return res
}

// support returns the bounding time interval and band of all pieces of m.
func (m *Mapping) support() (Timestamp, Timestamp, Band, bool) {
	if len(m.pieces) == 0 {
		return 0, 0, Band{}, false
	}
	start, end := Ever, Timestamp(0)
	band := Band{Low: math.Inf(1), High: math.Inf(-1)}
	for _, p := range m.pieces {
		start, end = min(start, p.Start), max(end, p.End)
		band.Low, band.High = math.Min(band.Low, p.Band.Low), math.Max(band.High, p.Band.High)
	}
	return start, end, band, true
}

// Divide returns num / den, defined on the support of num. Where den is uncovered or zero the
// result takes the fallback value.
func Divide(num, den *Mapping, fallback float64) *Mapping {
	start, end, band, ok := num.support()
	res := &Mapping{}
	if !ok {
		return res
	}
	for _, c := range grid(start, end, band, num, den) {
		n, nok := num.At(c.start, c.freq)
		if !nok {
			continue
		}
		v := fallback
		if d, dok := den.At(c.start, c.freq); dok && d != 0 {
			v = n / d
		}
		res.pieces = append(res.pieces, Piece{Start: c.start, End: c.end, Band: c.band, Value: v})
	}
	return res
}

// FindMin returns the minimum value of m over the time window [from, to) and band. It returns false if
// no point of the window lies inside the mapping's support.
func FindMin(m *Mapping, from, to Timestamp, band Band) (float64, bool) {
	minVal, found := math.Inf(1), false
	for _, c := range grid(from, to, band, m) {
		if v, ok := m.At(c.start, c.freq); ok {
			minVal = math.Min(minVal, v)
			found = true
		}
	}
	return minVal, found
}
