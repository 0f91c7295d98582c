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

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/otns/vlcns/logger"
	. "github.com/otns/vlcns/types"
)

const (
	speedOfLight = 299792458.0

	// a light mounted on a vehicle sits on the vehicle outline; closer than this counts as own vehicle.
	ownVehicleTolerance = 0.25
	minFactor           = 1e-30
)

// Obstacle is a static building or wall outline with an attenuation per wall crossing and per meter.
type Obstacle struct {
	Id                  string
	Type                string
	Shape               []r3.Vec
	AttenuationPerCut   DbValue
	AttenuationPerMeter DbValue
}

// Vehicle is a moving box-shaped obstacle.
type Vehicle struct {
	Id     NodeId
	Pose   Pose // center of the footprint at ground level
	Length float64
	Width  float64
	Height float64
}

// Control keeps all obstacles of the playground and answers line-of-sight attenuation queries.
type Control struct {
	obstacles []*Obstacle
	shapes    []polygon
	vehicles  map[NodeId]*Vehicle
}

func NewControl() *Control {
	return &Control{
		vehicles: map[NodeId]*Vehicle{},
	}
}

func (c *Control) AddObstacle(o *Obstacle) error {
	if len(o.Shape) < 3 {
		return errors.Errorf("obstacle %s: need at least 3 vertices, got %d", o.Id, len(o.Shape))
	}
	if o.AttenuationPerCut < 0 || o.AttenuationPerMeter < 0 {
		return errors.Errorf("obstacle %s: attenuation must not be negative", o.Id)
	}
	c.obstacles = append(c.obstacles, o)
	c.shapes = append(c.shapes, polygon(o.Shape))
	return nil
}

func (c *Control) NumObstacles() int {
	return len(c.obstacles)
}

// UpdateVehicle adds a vehicle or moves an existing one.
func (c *Control) UpdateVehicle(v Vehicle) {
	c.vehicles[v.Id] = &v
}

func (c *Control) RemoveVehicle(id NodeId) {
	delete(c.vehicles, id)
}

// CalculateAttenuation returns the power factor for the line of sight between sender and receiver
// through the static obstacles.
func (c *Control) CalculateAttenuation(sender, receiver r3.Vec) float64 {
	lossDb := 0.0
	dist := r3.Norm(r3.Sub(flat(receiver), flat(sender)))
	for i, shape := range c.shapes {
		ts := shape.crossings(sender, receiver)
		frac := shape.insideFraction(sender, receiver, ts)
		if len(ts) == 0 && frac == 0 {
			continue
		}
		o := c.obstacles[i]
		lossDb += o.AttenuationPerCut*float64(len(ts)) + o.AttenuationPerMeter*frac*dist
	}
	factor := math.Pow(10, -lossDb/10)
	if factor < minFactor {
		return 0
	}
	return factor
}

// blocker is a vehicle crossing the line of sight, at distance d from the sender.
type blocker struct {
	v *Vehicle
	d float64
}

func (c *Control) blockers(sender, receiver r3.Vec) []blocker {
	var res []blocker
	for _, v := range c.vehicles {
		shape := rectangle(v.Pose.Pos, v.Pose.Heading, v.Length, v.Width)
		if shape.distanceTo(sender) < ownVehicleTolerance || shape.contains(sender) ||
			shape.distanceTo(receiver) < ownVehicleTolerance || shape.contains(receiver) {
			continue
		}
		if len(shape.crossings(sender, receiver)) == 0 {
			continue
		}
		res = append(res, blocker{v: v, d: r3.Norm(r3.Sub(flat(v.Pose.Pos), flat(sender)))})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].d < res[j].d })
	return res
}

// CalculateVehicleAttenuation returns the power factor caused by vehicles on the line of sight. In
// VLC mode a vehicle body taller than the line of sight blocks the light; otherwise each such vehicle
// adds a single knife-edge diffraction loss at the carrier frequency.
func (c *Control) CalculateVehicleAttenuation(sender, receiver r3.Vec, carrierFrequency float64, vlc bool) float64 {
	dist := r3.Norm(r3.Sub(flat(receiver), flat(sender)))
	if dist == 0 {
		return 1
	}
	lossDb := 0.0
	for _, b := range c.blockers(sender, receiver) {
		d1 := math.Min(math.Max(b.d, geomEpsilon), dist-geomEpsilon)
		d2 := dist - d1
		losHeight := sender.Z + (receiver.Z-sender.Z)*d1/dist
		h := b.v.Height - losHeight
		if vlc {
			if h > 0 {
				logger.Tracef("vehicle %d blocks line of sight", b.v.Id)
				return 0
			}
			continue
		}
		lambda := speedOfLight / carrierFrequency
		nu := h * math.Sqrt(2*(d1+d2)/(lambda*d1*d2))
		lossDb += knifeEdgeLossDb(nu)
	}
	factor := math.Pow(10, -lossDb/10)
	if factor < minFactor {
		return 0
	}
	return factor
}

// knifeEdgeLossDb is the ITU-R P.526 approximation of single knife-edge diffraction loss.
func knifeEdgeLossDb(nu float64) DbValue {
	if nu <= -0.78 {
		return 0
	}
	return 6.9 + 20*math.Log10(math.Sqrt((nu-0.1)*(nu-0.1)+1)+nu-0.1)
}
