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

import "math"

const closeEpsilon = 1e-7

func Rad2Deg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// NormalizeAngle maps a radian angle into (-pi, pi].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// TraciToCartesian converts a SUMO/TraCI heading (degrees, clockwise from north) to a cartesian
// heading in radians (counter-clockwise from +X).
func TraciToCartesian(traciDeg float64) float64 {
	return NormalizeAngle(Deg2Rad(90 - traciDeg))
}

// CartesianToTraci is the inverse of TraciToCartesian; the result is in [0, 360).
func CartesianToTraci(rad float64) float64 {
	deg := math.Mod(90-Rad2Deg(rad), 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// ReverseHeading returns the heading pointing the opposite way.
func ReverseHeading(rad float64) float64 {
	return NormalizeAngle(rad + math.Pi)
}

// Trunc truncates v to three decimals.
func Trunc(v float64) float64 {
	return math.Trunc(v*1000) / 1000
}

// Close returns true if a and b differ by less than 1e-7.
func Close(a, b float64) bool {
	return math.Abs(a-b) < closeEpsilon
}
