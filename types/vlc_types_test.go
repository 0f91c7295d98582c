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

package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestParseLightModule(t *testing.T) {
	lm, err := ParseLightModule("head")
	assert.Nil(t, err)
	assert.Equal(t, LightHead, lm)
	lm, err = ParseLightModule("taillight")
	assert.Nil(t, err)
	assert.Equal(t, LightTail, lm)
	lm, err = ParseLightModule("both")
	assert.Nil(t, err)
	assert.True(t, lm.Has(LightHead))
	assert.True(t, lm.Has(LightTail))
	assert.False(t, LightHead.Has(LightTail))

	_, err = ParseLightModule("fog")
	assert.NotNil(t, err)
	assert.Equal(t, "tail", LightTail.String())
}

func TestHeadingConversions(t *testing.T) {
	assert.InDelta(t, math.Pi/2, TraciToCartesian(0), 1e-9) // north
	assert.InDelta(t, 0, TraciToCartesian(90), 1e-9)        // east
	assert.InDelta(t, 90, CartesianToTraci(0), 1e-9)
	assert.InDelta(t, 270, CartesianToTraci(math.Pi), 1e-9)
	for _, deg := range []float64{0, 45, 135, 200, 359} {
		assert.InDelta(t, deg, CartesianToTraci(TraciToCartesian(deg)), 1e-9)
	}
	assert.InDelta(t, -math.Pi/2, ReverseHeading(math.Pi/2), 1e-9)
	assert.InDelta(t, math.Pi, ReverseHeading(0), 1e-9)
}

func TestTruncAndClose(t *testing.T) {
	assert.Equal(t, 1.234, Trunc(1.23456))
	assert.Equal(t, -1.234, Trunc(-1.23456))
	assert.True(t, Close(1.0, 1.0+1e-9))
	assert.False(t, Close(1.0, 1.0+1e-6))
}

func TestPoseFacing(t *testing.T) {
	p := Pose{Pos: r3.Vec{X: 1, Y: 2}, Heading: 0}
	assert.Equal(t, p, p.Facing(LightHead))
	tail := p.Facing(LightTail)
	assert.InDelta(t, math.Pi, tail.Heading, 1e-9)
	assert.InDelta(t, -1.0, tail.Direction().X, 1e-9)
	assert.Equal(t, Second, SecondsToTimestamp(1.0))
	assert.InDelta(t, 0.5, TimestampToSeconds(500*Millisecond), 1e-12)
}
