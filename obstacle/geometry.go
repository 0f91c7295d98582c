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

package obstacle

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

const geomEpsilon = 1e-9

func cross2(a, b r3.Vec) float64 {
	return a.X*b.Y - a.Y*b.X
}

func flat(v r3.Vec) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y}
}

// segmentIntersection returns the parameter t in [0,1] along p1->p2 where it crosses q1->q2.
func segmentIntersection(p1, p2, q1, q2 r3.Vec) (float64, bool) {
	r := r3.Sub(flat(p2), flat(p1))
	s := r3.Sub(flat(q2), flat(q1))
	denom := cross2(r, s)
	if math.Abs(denom) < geomEpsilon {
		return 0, false // parallel or collinear
	}
	qp := r3.Sub(flat(q1), flat(p1))
	t := cross2(qp, s) / denom
	u := cross2(qp, r) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return 0, false
	}
	return t, true
}

// polygon is a closed outline in the X-Y plane.
type polygon []r3.Vec

func (pg polygon) contains(p r3.Vec) bool {
	inside := false
	n := len(pg)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := pg[i], pg[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// crossings returns the sorted parameters along from->to where the segment crosses the outline.
func (pg polygon) crossings(from, to r3.Vec) []float64 {
	var ts []float64
	n := len(pg)
	for i := 0; i < n; i++ {
		if t, ok := segmentIntersection(from, to, pg[i], pg[(i+1)%n]); ok {
			ts = append(ts, t)
		}
	}
	sort.Float64s(ts)
	return ts
}

// insideFraction returns the fraction of the segment from->to that lies inside the polygon.
func (pg polygon) insideFraction(from, to r3.Vec, ts []float64) float64 {
	inside := pg.contains(from)
	last, frac := 0.0, 0.0
	for _, t := range ts {
		if inside {
			frac += t - last
		}
		inside = !inside
		last = t
	}
	if inside {
		frac += 1 - last
	}
	return frac
}

// rectangle returns the footprint of a box centered at c, oriented along heading.
func rectangle(c r3.Vec, heading, length, width float64) polygon {
	dir := r3.Vec{X: math.Cos(heading), Y: math.Sin(heading)}
	perp := r3.Vec{X: -dir.Y, Y: dir.X}
	hl, hw := r3.Scale(length/2, dir), r3.Scale(width/2, perp)
	return polygon{
		r3.Add(r3.Add(c, hl), hw),
		r3.Sub(r3.Add(c, hl), hw),
		r3.Sub(r3.Sub(c, hl), hw),
		r3.Add(r3.Sub(c, hl), hw),
	}
}

// distanceTo returns the distance of p to the polygon outline in the X-Y plane.
func (pg polygon) distanceTo(p r3.Vec) float64 {
	best := math.Inf(1)
	n := len(pg)
	for i := 0; i < n; i++ {
		a, b := flat(pg[i]), flat(pg[(i+1)%n])
		ab := r3.Sub(b, a)
		t := 0.0
		if l2 := r3.Dot(ab, ab); l2 > 0 {
			t = math.Max(0, math.Min(1, r3.Dot(r3.Sub(flat(p), a), ab)/l2))
		}
		best = math.Min(best, r3.Norm(r3.Sub(flat(p), r3.Add(a, r3.Scale(t, ab)))))
	}
	return best
}
