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
	"sort"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/otns/vlcns/airframe"
	"github.com/otns/vlcns/analoguemodel"
	"github.com/otns/vlcns/dispatcher"
	"github.com/otns/vlcns/lightdata"
	"github.com/otns/vlcns/logger"
	"github.com/otns/vlcns/obstacle"
	"github.com/otns/vlcns/phy"
	"github.com/otns/vlcns/prng"
	"github.com/otns/vlcns/radiomodel"
	. "github.com/otns/vlcns/types"
)

// Simulation is a scenario built from a YamlConfigFile: vehicles with VLC PHYs sharing one
// attenuation chain, each running a beaconing application.
type Simulation struct {
	cfg       *YamlConfigFile
	d         *dispatcher.Dispatcher
	obstacles *obstacle.Control
	chain     analoguemodel.Chain
	metrics   *radiomodel.Metrics
	apps      map[NodeId]*BeaconApp
	kpiMgr    *KpiManager
	seed      int64
	duration  Timestamp
	started   bool
}

// NewSimulation builds a scenario. Metrics are registered with reg; nil selects the default registry.
func NewSimulation(cfg *YamlConfigFile, dispatcherCfg *dispatcher.Config, reg prometheus.Registerer) (*Simulation, error) {
	seed := int64(DefaultSeed)
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}
	prng.Init(seed)

	duration := DefaultDuration
	if cfg.Duration != nil {
		duration = *cfg.Duration
	}
	if duration <= 0 {
		return nil, errors.Errorf("invalid duration %g", duration)
	}

	s := &Simulation{
		cfg:       cfg,
		obstacles: obstacle.NewControl(),
		apps:      map[NodeId]*BeaconApp{},
		kpiMgr:    NewKpiManager(),
		seed:      seed,
		duration:  SecondsToTimestamp(duration),
	}
	for i := range cfg.Obstacles {
		if err := s.obstacles.AddObstacle(cfg.Obstacles[i].obstacle()); err != nil {
			return nil, err
		}
	}

	headCfg := cfg.Phy.phyConfig(LightHead)
	if err := headCfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "phy")
	}

	env := &analoguemodel.Environment{
		Obstacles:        s.obstacles,
		SensitivityDbm:   headCfg.Decider.SensitivityDbm,
		ChannelFrequency: headCfg.Frequency,
	}
	if cfg.LightData.RadiationPatterns != "" || cfg.LightData.PhotoDiodes != "" {
		env.LightData = &lightdata.Loader{
			PatternFile: cfg.LightData.RadiationPatterns,
			DiodeFile:   cfg.LightData.PhotoDiodes,
		}
	}
	chain, err := analoguemodel.NewChain(cfg.AnalogueModels, env)
	if err != nil {
		return nil, err
	}
	s.chain = chain

	if s.metrics, err = radiomodel.NewMetrics(reg); err != nil {
		return nil, err
	}

	if dispatcherCfg == nil {
		dispatcherCfg = dispatcher.DefaultConfig()
	}
	if s.d, err = dispatcher.NewDispatcher(dispatcherCfg, s, s.obstacles); err != nil {
		return nil, err
	}

	beacon, err := cfg.Application.beaconParams()
	if err != nil {
		return nil, errors.Wrap(err, "application")
	}

	// nodes are created in id order so each receiver gets the same random stream on every run
	nodes := append([]YamlNodeConfig(nil), cfg.NodesList...)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	for i := range nodes {
		if err := s.addNode(&nodes[i], beacon); err != nil {
			return nil, err
		}
	}
	s.kpiMgr.Init(s)
	logger.Infof("simulation created: %d nodes, %d obstacles, models %v", len(nodes), s.obstacles.NumObstacles(), chain.Names())
	return s, nil
}

func (s *Simulation) addNode(yc *YamlNodeConfig, beacon BeaconParams) error {
	nodeCfg, lights, err := yc.nodeConfig()
	if err != nil {
		return err
	}
	node, err := s.d.AddNode(&nodeCfg)
	if err != nil {
		return err
	}
	for _, lm := range []LightModule{LightHead, LightTail} {
		if !lights.Has(lm) {
			continue
		}
		p, err := phy.NewPhy(node.Id, s.cfg.Phy.phyConfig(lm), s.chain, prng.NewReceiverRandom(), s.d)
		if err != nil {
			return errors.Wrapf(err, "node %d", node.Id)
		}
		p.SetMetrics(s.metrics)
		if err = node.AttachPhy(p); err != nil {
			return err
		}
	}

	params := beacon
	params.Light = beacon.Light & lights
	if params.Light == 0 {
		params.Frequency = 0
	}
	s.apps[node.Id] = newBeaconApp(node.Id, params, s.d)
	return nil
}

func (s *Simulation) Dispatcher() *dispatcher.Dispatcher {
	return s.d
}

func (s *Simulation) Obstacles() *obstacle.Control {
	return s.obstacles
}

func (s *Simulation) Chain() analoguemodel.Chain {
	return s.chain
}

func (s *Simulation) Metrics() *radiomodel.Metrics {
	return s.metrics
}

func (s *Simulation) Config() *YamlConfigFile {
	return s.cfg
}

// Seed returns the seed the random streams were initialized with.
func (s *Simulation) Seed() int64 {
	return s.seed
}

func (s *Simulation) Duration() Timestamp {
	return s.duration
}

func (s *Simulation) GetKpiManager() *KpiManager {
	return s.kpiMgr
}

// App returns the beaconing application of node id, or nil.
func (s *Simulation) App(id NodeId) *BeaconApp {
	return s.apps[id]
}

// GetNodes returns the node ids in ascending order.
func (s *Simulation) GetNodes() []NodeId {
	ids := make([]NodeId, 0, len(s.apps))
	for id := range s.apps {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// MoveNode places vehicle id at (x, y) keeping its height. heading is in TraCI degrees; nil keeps the
// current heading.
func (s *Simulation) MoveNode(id NodeId, x, y float64, heading *float64) error {
	node := s.d.GetNode(id)
	if node == nil {
		return errors.Errorf("node %d not found", id)
	}
	pose := node.Pose
	pose.Pos.X, pose.Pos.Y = x, y
	if heading != nil {
		pose.Heading = TraciToCartesian(*heading)
	}
	s.d.SetNodePose(id, pose)
	return nil
}

// DeleteNode removes vehicle id and its application. Frames it already sent stay on the air.
func (s *Simulation) DeleteNode(id NodeId) error {
	if s.d.GetNode(id) == nil {
		return errors.Errorf("node %d not found", id)
	}
	s.d.DeleteNode(id)
	delete(s.apps, id)
	return nil
}

// Run runs the scenario until its configured duration.
func (s *Simulation) Run() {
	if s.d.CurTime() < s.duration {
		s.Go(s.duration - s.d.CurTime())
	}
}

// Go advances the simulation by duration, starting the applications on the first call.
func (s *Simulation) Go(duration Timestamp) {
	if !s.started {
		s.started = true
		logger.SetTimeSource(s.d)
		for _, id := range s.GetNodes() {
			s.apps[id].start()
		}
	}
	s.d.Go(duration)
}

// OnFrameReceived implements dispatcher.CallbackHandler.
func (s *Simulation) OnFrameReceived(nodeid NodeId, lm LightModule, f *airframe.Frame, result *radiomodel.DeciderResult) {
	if app := s.apps[nodeid]; app != nil {
		app.onReceive(lm, f, result)
	}
}

// OnTimer implements dispatcher.CallbackHandler.
func (s *Simulation) OnTimer(nodeid NodeId) {
	if app := s.apps[nodeid]; app != nil {
		app.onTimer()
	}
}
