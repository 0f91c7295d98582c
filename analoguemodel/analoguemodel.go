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

	"github.com/otns/vlcns/signal"
	. "github.com/otns/vlcns/types"
)

// FixedReferencePowerMw is the transmit power the measured light models are calibrated against.
// Models that yield a received power express it as a fraction of this power.
const FixedReferencePowerMw = 100.0

// Link is one sender-to-receiver path. Poses are those of the emitting light and the receiving
// photodiode, already turned to the direction they face.
type Link struct {
	Sender           Pose
	Receiver         Pose
	Light            LightModule // light module that emits
	CarrierFrequency float64     // Hz
	Time             Timestamp
}

// Distance returns the 3D distance between sender and receiver in meters.
func (l *Link) Distance() float64 {
	dx, dy, dz := l.Receiver.Pos.X-l.Sender.Pos.X, l.Receiver.Pos.Y-l.Sender.Pos.Y, l.Receiver.Pos.Z-l.Sender.Pos.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// AnalogueModel computes the multiplicative power factor of one propagation effect.
type AnalogueModel interface {
	Name() string
	ComputeFactor(l *Link) float64
}

// Chain is an ordered list of analogue models; its factor is the product of all stage factors.
type Chain []AnalogueModel

func (c Chain) ComputeFactor(l *Link) float64 {
	factor := 1.0
	for _, m := range c {
		factor *= m.ComputeFactor(l)
	}
	return factor
}

// FilterSignal attaches the factor of every stage to s as a separate attenuation.
func (c Chain) FilterSignal(s *signal.Signal, l *Link) {
	for _, m := range c {
		s.AddAttenuation(m.ComputeFactor(l))
	}
}

func (c Chain) Names() []string {
	names := make([]string, len(c))
	for i, m := range c {
		names[i] = m.Name()
	}
	return names
}

// powerToFactor normalizes a received power to a factor of the reference power, capped at 1 since
// a light model never increases the transmitted power.
func powerToFactor(powerMw float64) float64 {
	if powerMw <= 0 || math.IsNaN(powerMw) {
		return 0
	}
	return math.Min(1, powerMw/FixedReferencePowerMw)
}

// offAxisAngles returns the horizontal angle (signed, positive to the left) and the elevation angle,
// both in radians, of the vector v as seen from pose p.
func offAxisAngles(p Pose, vx, vy, vz float64) (theta, phi float64) {
	dir := p.Direction()
	theta = math.Atan2(dir.X*vy-dir.Y*vx, dir.X*vx+dir.Y*vy)
	phi = math.Atan2(vz, math.Hypot(vx, vy))
	return
}

func dbmToMw(dbm DbValue) float64 {
	return math.Pow(10, dbm/10)
}
