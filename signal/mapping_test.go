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
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	fc = 666e12
	bw = 20e6
)

func TestMappingAtAndAdd(t *testing.T) {
	a := NewConstantMapping(0, 10, CenteredBand(fc, bw), 2.0)
	b := NewConstantMapping(5, 15, CenteredBand(fc, bw), 3.0)
	sum := a.Add(b)

	v, ok := sum.At(0, fc)
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)
	v, _ = sum.At(7, fc)
	assert.Equal(t, 5.0, v)
	v, _ = sum.At(10, fc)
	assert.Equal(t, 3.0, v)
	_, ok = sum.At(15, fc)
	assert.False(t, ok)
	_, ok = sum.At(7, fc+bw)
	assert.False(t, ok)

	// the operands stay untouched
	assert.Len(t, a.Pieces(), 1)
	v, _ = a.Scale(0.5).At(1, fc)
	assert.Equal(t, 1.0, v)
	v, _ = a.At(1, fc)
	assert.Equal(t, 2.0, v)
}

func TestDivideWithFallback(t *testing.T) {
	num := NewConstantMapping(0, 10, CenteredBand(fc, bw), 8.0)
	den := NewConstantMapping(0, 5, CenteredBand(fc, bw), 2.0)

	ratio := Divide(num, den, MappedZero)
	v, ok := ratio.At(1, fc)
	assert.True(t, ok)
	assert.Equal(t, 4.0, v)
	v, ok = ratio.At(7, fc)
	assert.True(t, ok)
	assert.Equal(t, MappedZero, v)

	zero := NewUniformMapping(0)
	v, _ = Divide(num, zero, MappedZero).At(3, fc)
	assert.Equal(t, MappedZero, v)
}

func TestFindMin(t *testing.T) {
	signalPower := NewConstantMapping(0, 12, CenteredBand(fc, bw), 10.0)
	noise := NewUniformMapping(1.0)
	interference := NewConstantMapping(4, 6, CenteredBand(fc, bw), 4.0)

	sinr := Divide(signalPower, noise.Add(interference), MappedZero)
	minVal, ok := FindMin(sinr, 0, 12, CenteredBand(fc, bw))
	assert.True(t, ok)
	assert.InDelta(t, 2.0, minVal, 1e-12)

	// window after the interference has ended
	minVal, ok = FindMin(sinr, 6, 12, CenteredBand(fc, bw))
	assert.True(t, ok)
	assert.InDelta(t, 10.0, minVal, 1e-12)

	_, ok = FindMin(sinr, 20, 30, CenteredBand(fc, bw))
	assert.False(t, ok)

	minVal, ok = FindMin(noise, 0, 100, Band{Low: fc, High: fc})
	assert.True(t, ok)
	assert.Equal(t, 1.0, minVal)
}

func TestFindMinPartialBandOverlap(t *testing.T) {
	signalPower := NewConstantMapping(0, 10, CenteredBand(fc, bw), 10.0)
	// interferer overlapping only the upper half of the band
	interference := NewConstantMapping(0, 10, Band{Low: fc, High: fc + bw}, 9.0)
	sinr := Divide(signalPower, NewUniformMapping(1.0).Add(interference), MappedZero)

	minVal, ok := FindMin(sinr, 0, 10, CenteredBand(fc, bw))
	assert.True(t, ok)
	assert.InDelta(t, 1.0, minVal, 1e-12)
	lower, ok := FindMin(sinr, 0, 10, Band{Low: fc - bw/2, High: fc - bw/4})
	assert.True(t, ok)
	assert.InDelta(t, 10.0, lower, 1e-12)
}

func TestSignalAttenuationChain(t *testing.T) {
	s := NewSignal(0, 100, fc, bw, 1e6, 100)
	s.AddAttenuation(0.5)
	s.AddAttenuation(0.4)
	v, ok := s.ReceivingPower().At(0, fc)
	assert.True(t, ok)
	assert.InDelta(t, 20.0, v, 1e-12)
	assert.Equal(t, uint64(100), s.Duration())

	c := s.Copy()
	c.AddAttenuation(0.1)
	v, _ = c.ReceivingPower().At(50, fc)
	assert.InDelta(t, 2.0, v, 1e-12)
	v, _ = s.ReceivingPower().At(50, fc)
	assert.InDelta(t, 20.0, v, 1e-12)
	assert.False(t, math.IsNaN(v))
}
