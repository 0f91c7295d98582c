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

package dispatcher

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/otns/vlcns/airframe"
	. "github.com/otns/vlcns/event"
	"github.com/otns/vlcns/logger"
	"github.com/otns/vlcns/obstacle"
	"github.com/otns/vlcns/phy"
	"github.com/otns/vlcns/radiomodel"
	. "github.com/otns/vlcns/types"
)

type CallbackHandler interface {
	// OnFrameReceived notifies that the PHY for light module lm of node nodeid decoded frame f.
	OnFrameReceived(nodeid NodeId, lm LightModule, f *airframe.Frame, result *radiomodel.DeciderResult)

	// OnTimer notifies that a timer scheduled with ScheduleTimer fired.
	OnTimer(nodeid NodeId)
}

// VehicleTracker is informed of the vehicle bodies that can shadow light between other vehicles.
type VehicleTracker interface {
	UpdateVehicle(v obstacle.Vehicle)
	RemoveVehicle(id NodeId)
}

// Dispatcher is the discrete-event core of the simulation: it broadcasts transmitted frames to all
// PHYs and processes signal start and end events in time order.
type Dispatcher struct {
	cfg         Config
	cbHandler   CallbackHandler
	vehicles    VehicleTracker
	curTime     Timestamp
	evtQueue    *Queue
	nodes       map[NodeId]*Node
	nextFrameId FrameId
	nextNodeGen uint64
	watchLevel  logger.Level

	Counters struct {
		// Event counters
		SignalStartEvents uint64
		SignalEndEvents   uint64
		TimerEvents       uint64
		// Frame counters
		Transmissions  uint64 // frames sent, one per light module
		FrameCopies    uint64 // per-receiver copies put on the air
		FramesDropped  uint64 // copies discarded by the receiving PHY
		FramesReceived uint64
	}
	watchingNodes map[NodeId]logger.Level
}

// NewDispatcher creates a dispatcher at time 0. vehicles may be nil if no vehicle shadowing is used.
func NewDispatcher(cfg *Config, cbHandler CallbackHandler, vehicles VehicleTracker) (*Dispatcher, error) {
	watchLevel, err := logger.ParseLevelString(cfg.WatchLogLevel)
	if err != nil {
		return nil, err
	}
	d := &Dispatcher{
		cfg:           *cfg,
		cbHandler:     cbHandler,
		vehicles:      vehicles,
		evtQueue:      NewQueue(),
		nodes:         make(map[NodeId]*Node),
		nextFrameId:   1,
		watchLevel:    watchLevel,
		watchingNodes: map[NodeId]logger.Level{},
	}
	logger.Infof("dispatcher started: cfg=%+v", *cfg)
	return d, nil
}

// CurTime returns the current simulation time.
func (d *Dispatcher) CurTime() Timestamp {
	return d.curTime
}

func (d *Dispatcher) Nodes() map[NodeId]*Node {
	return d.nodes
}

func (d *Dispatcher) GetNode(id NodeId) *Node {
	return d.nodes[id]
}

// AddNode adds a vehicle. PHYs are attached to the returned node afterwards.
func (d *Dispatcher) AddNode(cfg *NodeConfig) (*Node, error) {
	if _, ok := d.nodes[cfg.Id]; ok {
		return nil, errors.Errorf("node %d already exists", cfg.Id)
	}
	if cfg.Id <= 0 {
		return nil, errors.Errorf("invalid node id %d", cfg.Id)
	}
	d.nextNodeGen++
	node := newNode(d, cfg)
	d.nodes[cfg.Id] = node
	if d.vehicles != nil {
		d.vehicles.UpdateVehicle(node.vehicle())
	}
	if d.cfg.DefaultWatchOn {
		d.WatchNode(cfg.Id, d.watchLevel)
	}
	return node, nil
}

// DeleteNode removes a vehicle. Pending events of the node are dropped when they come up, also if
// a node with the same id is added in the meantime.
func (d *Dispatcher) DeleteNode(id NodeId) {
	if _, ok := d.nodes[id]; !ok {
		return
	}
	delete(d.nodes, id)
	delete(d.watchingNodes, id)
	if d.vehicles != nil {
		d.vehicles.RemoveVehicle(id)
	}
}

// SetNodePose moves a vehicle. Frames already on the air keep the attenuation of their start.
func (d *Dispatcher) SetNodePose(id NodeId, pose Pose) {
	node := d.nodes[id]
	if node == nil {
		logger.Warnf("SetNodePose: node %d not found", id)
		return
	}
	node.Pose = pose
	if d.vehicles != nil {
		d.vehicles.UpdateVehicle(node.vehicle())
	}
}

// WatchNode sets the display level of the node's PHY loggers, including PHYs attached later.
func (d *Dispatcher) WatchNode(id NodeId, level logger.Level) {
	d.watchingNodes[id] = level
	d.setDisplayLevel(id, level)
}

func (d *Dispatcher) UnwatchNode(id NodeId) {
	delete(d.watchingNodes, id)
	d.setDisplayLevel(id, logger.DefaultLevel)
}

// GetWatchingNodes returns the watched node ids in ascending order.
func (d *Dispatcher) GetWatchingNodes() []NodeId {
	ids := make([]NodeId, 0, len(d.watchingNodes))
	for id := range d.watchingNodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// WatchLevel returns the display level used for watched nodes unless a command names another.
func (d *Dispatcher) WatchLevel() logger.Level {
	return d.watchLevel
}

func (d *Dispatcher) isWatching(id NodeId) bool {
	_, ok := d.watchingNodes[id]
	return ok
}

func (d *Dispatcher) setDisplayLevel(id NodeId, level logger.Level) {
	if node := d.nodes[id]; node != nil {
		for _, p := range node.phys {
			p.Logger().SetDisplayLevel(level)
		}
	}
}

// Transmit sends payload from node id through the light modules in lm, starting now. Each light
// module sends its own frame. It returns the frames sent.
func (d *Dispatcher) Transmit(id NodeId, lm LightModule, payload []byte) ([]*airframe.Frame, error) {
	node := d.nodes[id]
	if node == nil {
		return nil, errors.Errorf("node %d not found", id)
	}
	var frames []*airframe.Frame
	for _, single := range []LightModule{LightHead, LightTail} {
		if !lm.Has(single) {
			continue
		}
		p := node.phys[single]
		if p == nil {
			return frames, errors.Errorf("node %d has no %s PHY", id, single)
		}
		f, err := p.EncapsMsg(d.nextFrameId, d.curTime, node.Pose, payload)
		if err != nil {
			return frames, err
		}
		d.nextFrameId++
		d.Counters.Transmissions++
		if d.cfg.DumpFrames {
			logger.Infof("TX %s", f)
		}
		d.Broadcast(f)
		frames = append(frames, f)
	}
	return frames, nil
}

// Broadcast puts a copy of f on the air towards every PHY of every node, including the sender's own.
func (d *Dispatcher) Broadcast(f *airframe.Frame) {
	logger.AssertTrue(f.Signal.Start >= d.curTime, "frame starts in the past")
	for _, node := range d.nodes {
		for lm := range node.phys {
			d.evtQueue.Add(&Event{
				Timestamp: f.Signal.Start,
				Type:      EventTypeSignalStart,
				NodeId:    node.Id,
				NodeGen:   node.gen,
				Light:     lm,
				Frame:     f.Copy(),
			})
			d.Counters.FrameCopies++
		}
	}
}

// ScheduleTimer makes the dispatcher call OnTimer for node id at time ts.
func (d *Dispatcher) ScheduleTimer(id NodeId, ts Timestamp) {
	logger.AssertTrue(ts >= d.curTime, "timer in the past")
	node := d.nodes[id]
	if node == nil {
		logger.Warnf("ScheduleTimer: node %d not found", id)
		return
	}
	d.evtQueue.Add(&Event{Timestamp: ts, Type: EventTypeAppTimer, NodeId: id, NodeGen: node.gen})
}

// PendingEvents returns the number of events in the queue.
func (d *Dispatcher) PendingEvents() int {
	return d.evtQueue.Len()
}

// RunUntil processes all events up to and including time ts and then advances the time to ts.
func (d *Dispatcher) RunUntil(ts Timestamp) {
	logger.AssertTrue(ts >= d.curTime)
	for d.evtQueue.NextTimestamp() <= ts {
		d.processNextEvent()
	}
	d.advanceTime(ts)
}

// Go runs the simulation for the given duration.
func (d *Dispatcher) Go(duration Timestamp) {
	d.RunUntil(d.curTime + duration)
}

func (d *Dispatcher) processNextEvent() {
	evt := d.evtQueue.PopNext()
	d.advanceTime(evt.Timestamp)

	node := d.nodes[evt.NodeId]
	if node == nil || node.gen != evt.NodeGen {
		logger.Debugf("dropping %s, node deleted", evt)
		return
	}
	if d.isWatching(evt.NodeId) {
		logger.Infof("Dispat <<< %s", evt)
	}

	switch evt.Type {
	case EventTypeSignalStart:
		d.Counters.SignalStartEvents++
		d.handleSignalStart(node, evt)
	case EventTypeSignalEnd:
		d.Counters.SignalEndEvents++
		d.handleSignalEnd(node, evt)
	case EventTypeAppTimer:
		d.Counters.TimerEvents++
		if d.cbHandler != nil {
			d.cbHandler.OnTimer(node.Id)
		}
	default:
		logger.Panicf("unknown event type %s", evt.Type)
	}
}

func (d *Dispatcher) handleSignalStart(node *Node, evt *Event) {
	p := node.phys[evt.Light]
	if p == nil {
		return
	}
	end, ok := p.HandleAirFrameStart(evt.Frame, node.Pose)
	if !ok {
		d.Counters.FramesDropped++
		return
	}
	d.evtQueue.Add(&Event{
		Timestamp: end,
		Type:      EventTypeSignalEnd,
		NodeId:    node.Id,
		NodeGen:   node.gen,
		Light:     evt.Light,
		Frame:     evt.Frame,
	})
}

func (d *Dispatcher) handleSignalEnd(node *Node, evt *Event) {
	p := node.phys[evt.Light]
	if p == nil {
		return
	}
	_, ok := p.HandleAirFrameEnd(evt.Frame.Id)
	logger.AssertTrue(ok, "frame end without start")
}

// OnFrameReceived implements phy.Receiver.
func (d *Dispatcher) OnFrameReceived(p *phy.Phy, f *airframe.Frame, result *radiomodel.DeciderResult) {
	d.Counters.FramesReceived++
	if d.cbHandler != nil {
		d.cbHandler.OnFrameReceived(p.NodeId, p.Direction(), f, result)
	}
}

func (d *Dispatcher) advanceTime(ts Timestamp) {
	logger.AssertTrue(d.curTime <= ts, "%v > %v", d.curTime, ts)
	d.curTime = ts
}
