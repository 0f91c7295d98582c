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
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/otns/vlcns/analoguemodel"
)

// YamlConfigFile is the scenario file format.
type YamlConfigFile struct {
	Phy            YamlPhyConfig          `yaml:"phy"`
	AnalogueModels []analoguemodel.Config `yaml:"analogueModels"`
	LightData      YamlLightDataConfig    `yaml:"lightData"`
	Obstacles      []YamlObstacleConfig   `yaml:"obstacles"`
	NodesList      []YamlNodeConfig       `yaml:"nodes"`
	Application    YamlAppConfig          `yaml:"application"`
	Seed           *int64                 `yaml:"seed"`
	Duration       *float64               `yaml:"duration"` // seconds
}

// YamlPhyConfig holds the radio parameters shared by all PHYs; unset keys keep their defaults.
type YamlPhyConfig struct {
	Sensitivity                *float64 `yaml:"sensitivity"` // dBm
	CenterFrequency            *float64 `yaml:"centerFrequency"`
	Bandwidth                  *float64 `yaml:"bandwidth"`
	Bitrate                    *float64 `yaml:"bitrate"`
	TxPower                    *float64 `yaml:"txPower"`      // mW
	ThermalNoise               *float64 `yaml:"thermalNoise"` // dBm
	CollectCollisionStatistics *bool    `yaml:"collectCollisionStatistics"`
	HeaderBits                 *int     `yaml:"headerBits"`
}

type YamlLightDataConfig struct {
	RadiationPatterns string `yaml:"radiationPatterns"`
	PhotoDiodes       string `yaml:"photoDiodes"`
}

type YamlObstacleConfig struct {
	Id                  string       `yaml:"id"`
	Type                string       `yaml:"type"`
	Shape               [][2]float64 `yaml:"shape"`
	AttenuationPerCut   float64      `yaml:"attenuationPerCut"`   // dB
	AttenuationPerMeter float64      `yaml:"attenuationPerMeter"` // dB
}

type YamlNodeConfig struct {
	ID       int        `yaml:"id"`
	Position [3]float64 `yaml:"pos"`
	Heading  float64    `yaml:"heading"`          // degrees, TraCI convention
	Lights   *string    `yaml:"lights,omitempty"` // head, tail or both
	Length   *float64   `yaml:"length,omitempty"`
	Width    *float64   `yaml:"width,omitempty"`
	Height   *float64   `yaml:"height,omitempty"`
}

type YamlAppConfig struct {
	BeaconingFrequency *float64 `yaml:"beaconingFrequency"` // Hz, 0 disables beaconing
	PacketByteLength   *int     `yaml:"packetByteLength"`
	LightModule        *string  `yaml:"lightModule"`
	StartTime          *float64 `yaml:"startTime"` // seconds
}

// ParseYamlConfig decodes a scenario from YAML text.
func ParseYamlConfig(data []byte) (*YamlConfigFile, error) {
	cfg := &YamlConfigFile{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parsing scenario")
	}
	return cfg, nil
}

// LoadYamlConfigFile reads a scenario file.
func LoadYamlConfigFile(path string) (*YamlConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading scenario %s", path)
	}
	return ParseYamlConfig(data)
}
