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

package simulation

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/otns/vlcns/dispatcher"
	"github.com/otns/vlcns/obstacle"
	"github.com/otns/vlcns/phy"
	. "github.com/otns/vlcns/types"
)

const (
	DefaultSeed               = 1
	DefaultDuration           = 10.0 // s
	DefaultBeaconingFrequency = 10.0 // Hz
	DefaultPacketByteLength   = 100
	DefaultBeaconStartTime    = 1.0 // s
	maxBeaconJitter           = 0.1 // s
	minPacketByteLength       = 8
)

// phyConfig returns the configuration of a PHY facing direction, from defaults and the scenario.
func (c *YamlPhyConfig) phyConfig(direction LightModule) *phy.Config {
	cfg := phy.DefaultConfig(direction)
	if c.Sensitivity != nil {
		cfg.Decider.SensitivityDbm = *c.Sensitivity
	}
	if c.CenterFrequency != nil {
		cfg.Frequency = *c.CenterFrequency
		cfg.Decider.CenterFrequency = *c.CenterFrequency
	}
	if c.Bandwidth != nil {
		cfg.Bandwidth = *c.Bandwidth
		cfg.Decider.Bandwidth = *c.Bandwidth
	}
	if c.Bitrate != nil {
		cfg.Bitrate = *c.Bitrate
		cfg.Decider.Bitrate = *c.Bitrate
	}
	if c.TxPower != nil {
		cfg.TxPowerMw = *c.TxPower
	}
	if c.ThermalNoise != nil {
		cfg.Decider.ThermalNoiseDbm = *c.ThermalNoise
	}
	if c.CollectCollisionStatistics != nil {
		cfg.Decider.CollectCollisionStatistics = *c.CollectCollisionStatistics
	}
	if c.HeaderBits != nil {
		cfg.Decider.HeaderBits = *c.HeaderBits
	}
	return cfg
}

func (c *YamlObstacleConfig) obstacle() *obstacle.Obstacle {
	shape := make([]r3.Vec, len(c.Shape))
	for i, p := range c.Shape {
		shape[i] = r3.Vec{X: p[0], Y: p[1]}
	}
	return &obstacle.Obstacle{
		Id:                  c.Id,
		Type:                c.Type,
		Shape:               shape,
		AttenuationPerCut:   c.AttenuationPerCut,
		AttenuationPerMeter: c.AttenuationPerMeter,
	}
}

// nodeConfig returns the dispatcher configuration and the light modules of a scenario node.
func (c *YamlNodeConfig) nodeConfig() (dispatcher.NodeConfig, LightModule, error) {
	cfg := dispatcher.DefaultNodeConfig()
	cfg.Id = c.ID
	cfg.Pose = Pose{
		Pos:     r3.Vec{X: c.Position[0], Y: c.Position[1], Z: c.Position[2]},
		Heading: TraciToCartesian(c.Heading),
	}
	if c.Length != nil {
		cfg.Length = *c.Length
	}
	if c.Width != nil {
		cfg.Width = *c.Width
	}
	if c.Height != nil {
		cfg.Height = *c.Height
	}
	lights := LightBoth
	if c.Lights != nil {
		var err error
		if lights, err = ParseLightModule(*c.Lights); err != nil {
			return cfg, 0, errors.Wrapf(err, "node %d", c.ID)
		}
	}
	return cfg, lights, nil
}

// BeaconParams configures the beaconing application of every node.
type BeaconParams struct {
	Frequency        float64 // Hz
	PacketByteLength int
	Light            LightModule
	StartTime        Timestamp
}

func (c *YamlAppConfig) beaconParams() (BeaconParams, error) {
	p := BeaconParams{
		Frequency:        DefaultBeaconingFrequency,
		PacketByteLength: DefaultPacketByteLength,
		Light:            LightBoth,
		StartTime:        SecondsToTimestamp(DefaultBeaconStartTime),
	}
	if c.BeaconingFrequency != nil {
		p.Frequency = *c.BeaconingFrequency
	}
	if c.PacketByteLength != nil {
		p.PacketByteLength = *c.PacketByteLength
	}
	if c.LightModule != nil {
		lm, err := ParseLightModule(*c.LightModule)
		if err != nil {
			return p, err
		}
		p.Light = lm
	}
	if c.StartTime != nil {
		if *c.StartTime < 0 {
			return p, errors.Errorf("invalid application startTime %g", *c.StartTime)
		}
		p.StartTime = SecondsToTimestamp(*c.StartTime)
	}
	if p.Frequency < 0 {
		return p, errors.Errorf("invalid beaconingFrequency %g", p.Frequency)
	}
	if p.PacketByteLength < minPacketByteLength {
		return p, errors.Errorf("packetByteLength %d too small, minimum %d", p.PacketByteLength, minPacketByteLength)
	}
	return p, nil
}
