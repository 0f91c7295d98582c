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
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/otns/vlcns/lightdata"
	"github.com/otns/vlcns/logger"
	. "github.com/otns/vlcns/types"
)

// Config names one stage of a chain and its parameters.
type Config struct {
	Name   string                 `yaml:"name"`
	Params map[string]interface{} `yaml:"params"`
}

// Environment holds what analogue models may need from the rest of the simulation.
type Environment struct {
	LightData        *lightdata.Loader
	Obstacles        ObstacleControl
	SensitivityDbm   DbValue
	ChannelFrequency float64 // Hz, 0 if the channel does not define one
	UseTorus         bool
}

func (env *Environment) registry() (*lightdata.Registry, error) {
	if env.LightData == nil {
		return nil, errors.New("no light data files configured")
	}
	return env.LightData.Get()
}

func decodeParams(params map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(params)
}

// New creates the analogue model called name from its parameter map.
func New(name string, params map[string]interface{}, env *Environment) (AnalogueModel, error) {
	var (
		model AnalogueModel
		err   error
	)
	switch name {
	case "LsvLightModel":
		p := DefaultLsvLightModelParams()
		if err = decodeParams(params, &p); err != nil {
			break
		}
		var reg *lightdata.Registry
		if reg, err = env.registry(); err != nil {
			break
		}
		model, err = NewLsvLightModel(reg, p)
	case "EmpiricalLightModel":
		p := DefaultEmpiricalLightModelParams()
		if err = decodeParams(params, &p); err != nil {
			break
		}
		model, err = NewEmpiricalLightModel(env.SensitivityDbm, p)
	case "SimpleObstacleShadowing":
		var p ShadowingParams
		if err = decodeParams(params, &p); err != nil {
			break
		}
		model, err = NewSimpleObstacleShadowing(env.Obstacles, p, env.ChannelFrequency, env.UseTorus)
	case "VehicleObstacleShadowing":
		var p ShadowingParams
		if err = decodeParams(params, &p); err != nil {
			break
		}
		model, err = NewVehicleObstacleShadowing(env.Obstacles, p, env.ChannelFrequency, env.UseTorus)
	case "FadingModel":
		p := DefaultFadingParams()
		if err = decodeParams(params, &p); err != nil {
			break
		}
		model, err = NewFadingModel(p)
	default:
		return nil, errors.Errorf("unknown analogue model %q", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "analogue model %s", name)
	}
	logger.Debugf("analogue model %s created with %v", name, params)
	return model, nil
}

// NewChain creates the analogue models in configuration order.
func NewChain(cfgs []Config, env *Environment) (Chain, error) {
	chain := make(Chain, 0, len(cfgs))
	for _, c := range cfgs {
		m, err := New(c.Name, c.Params, env)
		if err != nil {
			return nil, err
		}
		chain = append(chain, m)
	}
	return chain, nil
}
