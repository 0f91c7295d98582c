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

package prng

import (
	"math/rand"
	"time"
)

type RandomSeed int64

// UnitRandom is the entropy source for stochastic reception decisions. Float64 returns a uniform
// value in [0, 1).
type UnitRandom interface {
	Float64() float64
}

var receiverRandSeedGenerator *rand.Rand
var fadingRandSeedGenerator *rand.Rand
var appRandGenerator *rand.Rand

func init() {
	Init(1)
}

// Init initializes the prng package, either with a fixed PRNG seed (rootSeed != 0) or a 'random' time-based PRNG
// seed (if rootSeed == 0).
func Init(rootSeed int64) {
	if rootSeed == 0 {
		rootSeed = time.Now().UnixNano()
	}
	root := rand.New(rand.NewSource(rootSeed))

	receiverRandSeedGenerator = rand.New(rand.NewSource(rootSeed + root.Int63n(1e10)))
	fadingRandSeedGenerator = rand.New(rand.NewSource(rootSeed + root.Int63n(1e10)))
	appRandGenerator = rand.New(rand.NewSource(rootSeed + root.Int63n(1e10)))
}

// NewReceiverRandom creates the independent, reproducible entropy source of a newly created receiver.
func NewReceiverRandom() UnitRandom {
	return rand.New(rand.NewSource(receiverRandSeedGenerator.Int63()))
}

// NewFadingModelSeed generates unique random-seeds for newly created fading models.
func NewFadingModelSeed() RandomSeed {
	return RandomSeed(fadingRandSeedGenerator.Int63())
}

// NewUnitRandom generates a new random unit [0, 1) float for application-level jitter.
func NewUnitRandom() float64 {
	return appRandGenerator.Float64()
}

// FixedSequence replays a fixed list of values; after the last one it keeps returning it.
type FixedSequence struct {
	values []float64
	drawn  int
}

func NewFixedSequence(values ...float64) *FixedSequence {
	if len(values) == 0 {
		values = []float64{0}
	}
	return &FixedSequence{values: values}
}

func (fs *FixedSequence) Float64() float64 {
	v := fs.values[min(fs.drawn, len(fs.values)-1)]
	fs.drawn++
	return v
}

// Drawn returns how many values were consumed so far.
func (fs *FixedSequence) Drawn() int {
	return fs.drawn
}
