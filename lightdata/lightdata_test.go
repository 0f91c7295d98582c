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
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRadiationPatterns(t *testing.T) {
	var b strings.Builder
	const n = 4
	for i := 0; i < n; i++ {
		b.WriteString("lamp" + string(rune('a'+i)) + "\n")
		b.WriteString("1 2 3\n3 2 1\n-10 0 10\n-20 0 20\n0.5 1\n")
	}
	patterns, err := ParseRadiationPatterns(strings.NewReader(b.String()))
	require.Nil(t, err)
	reg, err := NewRegistry(patterns, nil)
	require.Nil(t, err)
	assert.Equal(t, []string{"lampa", "lampb", "lampc", "lampd"}, reg.PatternIds())

	for _, id := range reg.PatternIds() {
		rp, err := reg.RadiationPattern(id)
		require.Nil(t, err)
		assert.Equal(t, id, rp.Id)
		assert.Equal(t, []float64{1, 2, 3}, rp.Magnitudes(LeftLamp))
		assert.Equal(t, []float64{3, 2, 1}, rp.Magnitudes(RightLamp))
		assert.Equal(t, []float64{-10, 0, 10}, rp.Angles(LeftLamp))
		assert.Equal(t, []float64{-20, 0, 20}, rp.Angles(RightLamp))
		assert.Equal(t, []float64{0.5, 1}, rp.SpectralEmission())
	}
}

func TestRegistryEntriesAreImmutable(t *testing.T) {
	patterns, err := ParseRadiationPatterns(strings.NewReader("x\n1 2\n1 2\n0 1\n0 1\n1\n"))
	require.Nil(t, err)
	m := patterns[0].Magnitudes(LeftLamp)
	m[0] = 42
	assert.Equal(t, []float64{1, 2}, patterns[0].Magnitudes(LeftLamp))
}

func TestParseErrors(t *testing.T) {
	_, err := ParseRadiationPatterns(strings.NewReader("x\n1 2\n1 2\n0 1\n"))
	assert.ErrorContains(t, err, "truncated record")

	_, err = ParseRadiationPatterns(strings.NewReader("x\n1 2 3\n1 2\n0 1\n0 1\n1\n"))
	assert.ErrorContains(t, err, "do not fit")

	_, err = ParseRadiationPatterns(strings.NewReader("x\n1 2\n1 2\n1 0\n0 1\n1\n"))
	assert.ErrorContains(t, err, "strictly increasing")

	_, err = ParsePhotoDiodes(strings.NewReader("pd\nabc\n1\n1 2\n"))
	assert.ErrorContains(t, err, "area")

	patterns, err := ParseRadiationPatterns(strings.NewReader("x\n1 2\n1 2\n0 1\n0 1\n1\nx\n1 2\n1 2\n0 1\n0 1\n1\n"))
	require.Nil(t, err)
	_, err = NewRegistry(patterns, nil)
	assert.ErrorContains(t, err, "duplicate")
}

func TestLoadRegistryFiles(t *testing.T) {
	reg, err := LoadRegistry("testdata/radiation_patterns.txt", "testdata/photodiodes.txt")
	require.Nil(t, err)
	assert.Equal(t, []string{"headlight_lb", "taillight"}, reg.PatternIds())
	assert.Equal(t, []string{"pda100", "pda36"}, reg.PhotoDiodeIds())

	pd, err := reg.PhotoDiode("pda100")
	require.Nil(t, err)
	assert.Equal(t, 0.0001, pd.Area)
	assert.Equal(t, 10000.0, pd.Gain)

	_, err = reg.PhotoDiode("missing")
	assert.ErrorContains(t, err, "not found")
	_, err = reg.RadiationPattern("missing")
	assert.ErrorContains(t, err, "not found")
}

func TestPatternInterpolation(t *testing.T) {
	reg, err := LoadRegistry("testdata/radiation_patterns.txt", "testdata/photodiodes.txt")
	require.Nil(t, err)

	hl, _ := reg.RadiationPattern("headlight_lb")
	assert.InDelta(t, 1.0, hl.Intensity(LeftLamp, 0, 0), 1e-12)
	assert.InDelta(t, 0.9, hl.Intensity(LeftLamp, 10, 0), 1e-12)
	assert.InDelta(t, 0.95, hl.Intensity(RightLamp, 10, 30), 1e-12)
	assert.False(t, hl.InFov(LeftLamp, 45, 0))
	assert.Equal(t, 0.0, hl.Intensity(LeftLamp, 45, 0))

	tl, _ := reg.RadiationPattern("taillight")
	assert.InDelta(t, 0.5, tl.Intensity(LeftLamp, 0, 0), 1e-12)
	assert.InDelta(t, 0.4, tl.Intensity(LeftLamp, 15, 0), 1e-12)
	assert.InDelta(t, 0.35, tl.Intensity(LeftLamp, 0, 15)+0.0, 0.05)
	assert.False(t, tl.InFov(RightLamp, 0, 31))
}

func TestEffectiveResponsivity(t *testing.T) {
	reg, err := LoadRegistry("testdata/radiation_patterns.txt", "testdata/photodiodes.txt")
	require.Nil(t, err)
	hl, _ := reg.RadiationPattern("headlight_lb")
	pd, _ := reg.PhotoDiode("pda100")
	// weighted mean of 0.2..0.6 with weights 0.1 0.5 1.0 0.6 0.2
	expected := (0.02 + 0.15 + 0.4 + 0.3 + 0.12) / 2.4
	assert.InDelta(t, expected, pd.EffectiveResponsivity(hl.SpectralEmission()), 1e-12)

	// response sampled coarser than the emission spectrum
	pd36, _ := reg.PhotoDiode("pda36")
	expected = (0.1*0.3 + 0.5*0.375 + 1.0*0.45 + 0.6*0.525 + 0.2*0.6) / 2.4
	assert.InDelta(t, expected, pd36.EffectiveResponsivity(hl.SpectralEmission()), 1e-12)
	assert.Equal(t, 0.0, pd.EffectiveResponsivity([]float64{0, 0}))
}

func TestLoaderLoadsOnce(t *testing.T) {
	l := &Loader{PatternFile: "testdata/radiation_patterns.txt", DiodeFile: "testdata/photodiodes.txt"}
	var wg sync.WaitGroup
	regs := make([]*Registry, 8)
	for i := range regs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			regs[i], _ = l.Get()
		}(i)
	}
	wg.Wait()
	for _, r := range regs {
		assert.Same(t, regs[0], r)
	}

	bad := &Loader{PatternFile: "testdata/nonexistent.txt", DiodeFile: "testdata/photodiodes.txt"}
	_, err := bad.Get()
	assert.NotNil(t, err)
}

func TestMatrixPatternRowsFittedOnce(t *testing.T) {
	// rows over the vertical angles -10, 0 and 10 degrees
	lp, err := newLampPattern([]float64{
		1, 2, 3,
		2, 4, 6,
		0, 0, 0,
	}, []float64{-10, 0, 10})
	require.Nil(t, err)
	require.Len(t, lp.rows, 3)
	assert.True(t, lp.isMatrix())

	assert.InDelta(t, 4.0, lp.at(0, 0), 1e-12)
	assert.InDelta(t, 5.0, lp.at(5, 0), 1e-12)
	assert.InDelta(t, 3.0, lp.at(0, -5), 1e-12)
	assert.InDelta(t, 2.0, lp.at(0, 5), 1e-12)
	assert.InDelta(t, 1.0, lp.at(-10, -10), 1e-12)
	assert.InDelta(t, 0.0, lp.at(10, 10), 1e-12)

	// repeated lookups reuse the fitted rows and give the same result
	first := lp.rows[1]
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 3.5, lp.at(-2.5, 0), 1e-12)
	}
	assert.Same(t, first, lp.rows[1])

	vec, err := newLampPattern([]float64{1, 3}, []float64{0, 10})
	require.Nil(t, err)
	assert.False(t, vec.isMatrix())
	assert.InDelta(t, 2.0, vec.at(5, 45), 1e-12)
}
