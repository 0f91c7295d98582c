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
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

type NodeId = int
type FrameId = uint64
type DbValue = float64

// Timestamp is a simulation time in nanoseconds.
type Timestamp = uint64

const (
	InvalidNodeId NodeId    = 0
	Ever          Timestamp = math.MaxUint64

	UndefinedDbValue DbValue = math.MaxFloat64
)

const (
	Nanosecond  Timestamp = 1
	Microsecond           = 1000 * Nanosecond
	Millisecond           = 1000 * Microsecond
	Second                = 1000 * Millisecond
)

// SecondsToTimestamp converts a duration in seconds to simulation time, rounding to the nearest ns.
func SecondsToTimestamp(sec float64) Timestamp {
	return Timestamp(math.Round(sec * float64(Second)))
}

// TimestampToSeconds converts simulation time to seconds.
func TimestampToSeconds(ts Timestamp) float64 {
	return float64(ts) / float64(Second)
}

// LightModule identifies the light(s) of a vehicle that emit or receive a frame.
type LightModule uint8

const (
	LightHead LightModule = 1
	LightTail LightModule = 2
	LightBoth LightModule = LightHead | LightTail
)

func (lm LightModule) String() string {
	switch lm {
	case LightHead:
		return "head"
	case LightTail:
		return "tail"
	case LightBoth:
		return "both"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(lm))
	}
}

// Has returns true if lm includes the single light module other.
func (lm LightModule) Has(other LightModule) bool {
	return lm&other == other
}

func ParseLightModule(s string) (LightModule, error) {
	switch s {
	case "head", "headlight":
		return LightHead, nil
	case "tail", "taillight":
		return LightTail, nil
	case "both":
		return LightBoth, nil
	default:
		return 0, errors.Errorf("invalid light module: %s", s)
	}
}

// Pose is a position (in meters) and a cartesian heading (radians, counter-clockwise from +X).
type Pose struct {
	Pos     r3.Vec
	Heading float64
}

// Direction returns the unit vector in the X-Y plane for the heading.
func (p Pose) Direction() r3.Vec {
	return r3.Vec{X: math.Cos(p.Heading), Y: math.Sin(p.Heading)}
}

// Facing returns the pose of light module lm mounted on a vehicle with pose p. Tail lights face backwards.
func (p Pose) Facing(lm LightModule) Pose {
	if lm == LightTail {
		return Pose{Pos: p.Pos, Heading: ReverseHeading(p.Heading)}
	}
	return p
}

func (p Pose) String() string {
	return fmt.Sprintf("(%.2f,%.2f,%.2f)@%.1fdeg", p.Pos.X, p.Pos.Y, p.Pos.Z, Rad2Deg(p.Heading))
}
