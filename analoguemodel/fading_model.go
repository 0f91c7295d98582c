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
	"math/rand"

	"github.com/pkg/errors"

	"github.com/otns/vlcns/logger"
	"github.com/otns/vlcns/prng"
	. "github.com/otns/vlcns/types"
)

const (
	initialCacheSize = 1000
	maxCacheSize     = 500000
)

// FadingParams configures the shadow fading stage.
type FadingParams struct {
	ShadowFadingSigmaDb  DbValue `mapstructure:"shadowFadingSigmaDb"`
	TimeFadingSigmaMaxDb DbValue `mapstructure:"timeFadingSigmaMaxDb"`
	MeanTimeFadingChange float64 `mapstructure:"meanTimeFadingChange"` // seconds
}

func DefaultFadingParams() FadingParams {
	return FadingParams{
		ShadowFadingSigmaDb:  3.0,
		TimeFadingSigmaMaxDb: 1.0,
		MeanTimeFadingChange: 10,
	}
}

// FadingModel applies shadow fading (SF) and time-variant fading (TVF) per link.
//
// SF models a fixed, position-dependent attenuation (SF>0) or gain (SF<0) due to multipath effects,
// normally distributed in dB (mu=0, sigma). A link is symmetric: reversing the roles of sender and
// receiver gives the same SF value. TVF is redrawn at exponentially distributed intervals.
type FadingModel struct {
	params           FadingParams
	rndSeed          int64
	rnd              *rand.Rand
	ts               Timestamp
	shFadeMap        map[int64]DbValue
	tvFadeMap        map[int64]DbValue
	tvFadeSigmaMap   map[int64]DbValue
	changeTvfTimeMap map[int64]Timestamp
}

func NewFadingModel(params FadingParams) (*FadingModel, error) {
	if params.ShadowFadingSigmaDb < 0 || params.TimeFadingSigmaMaxDb < 0 {
		return nil, errors.New("fading sigma must not be negative")
	}
	if params.TimeFadingSigmaMaxDb > 0 && params.MeanTimeFadingChange <= 0 {
		return nil, errors.New("meanTimeFadingChange must be positive when time-variant fading is enabled")
	}
	seed := int64(prng.NewFadingModelSeed())
	fm := &FadingModel{
		params:  params,
		rndSeed: seed,
		rnd:     rand.New(rand.NewSource(seed)),
	}
	fm.clearCaches()
	return fm, nil
}

func (fm *FadingModel) Name() string {
	return "FadingModel"
}

func (fm *FadingModel) ComputeFactor(l *Link) float64 {
	fm.onAdvanceTime(l.Time)
	return math.Pow(10, -fm.computeFadingDb(l)/10)
}

func (fm *FadingModel) computeFadingDb(l *Link) DbValue {
	// each unique (src,dst) link gets a unique random seed
	seed := fm.rndSeed + calcLinkUID(l.Sender, l.Receiver)

	var vSF, vTVF float64
	if v, ok := fm.shFadeMap[seed]; ok {
		vSF = v
		vTVF = fm.tvFadeMap[seed]
		if fm.ts > fm.changeTvfTimeMap[seed] {
			vTVF = fm.rnd.NormFloat64() * fm.tvFadeSigmaMap[seed]
			fm.tvFadeMap[seed] = vTVF
			fm.changeTvfTimeMap[seed] = fm.nextTvfChange()
		}
	} else {
		rnd := rand.New(rand.NewSource(seed))

		// reproducible per link: SF value first, then the link's TVF sigma
		vSF = rnd.NormFloat64() * fm.params.ShadowFadingSigmaDb
		fm.shFadeMap[seed] = vSF
		sigmaTVF := rnd.Float64() * fm.params.TimeFadingSigmaMaxDb
		fm.tvFadeSigmaMap[seed] = sigmaTVF

		vTVF = fm.rnd.NormFloat64() * sigmaTVF
		fm.tvFadeMap[seed] = vTVF
		fm.changeTvfTimeMap[seed] = fm.nextTvfChange()
	}
	return vSF + vTVF
}

func (fm *FadingModel) nextTvfChange() Timestamp {
	if fm.params.MeanTimeFadingChange <= 0 {
		return Ever
	}
	return fm.ts + SecondsToTimestamp(fm.rnd.ExpFloat64()*fm.params.MeanTimeFadingChange)
}

func (fm *FadingModel) onAdvanceTime(ts Timestamp) {
	// purge when too big; values are recomputed, only time-variant fading loses its history.
	if len(fm.shFadeMap) > maxCacheSize {
		fm.clearCaches()
	}
	fm.ts = ts
}

func (fm *FadingModel) clearCaches() {
	logger.Debugf("fading model: purging caches")
	fm.shFadeMap = make(map[int64]DbValue, initialCacheSize)
	fm.tvFadeSigmaMap = make(map[int64]DbValue, initialCacheSize)
	fm.tvFadeMap = make(map[int64]DbValue, initialCacheSize)
	fm.changeTvfTimeMap = make(map[int64]Timestamp, initialCacheSize)
}

// calcLinkUID returns a symmetric identifier of a link from positions on a 1 m grid.
func calcLinkUID(src, dst Pose) int64 {
	x1 := uint16(math.Round(src.Pos.X) + 32768)
	y1 := uint16(math.Round(src.Pos.Y) + 32768)
	x2 := uint16(math.Round(dst.Pos.X) + 32768)
	y2 := uint16(math.Round(dst.Pos.Y) + 32768)
	xL, yL, xR, yR := x2, y2, x1, y1

	// use left-most node (and in case of doubt, bottom-most)
	if x1 < x2 || (x1 == x2 && y1 < y2) {
		xL, yL, xR, yR = x1, y1, x2, y2
	}
	return int64(xL) + int64(yL)<<16 + int64(xR)<<32 + int64(yR)<<48
}
