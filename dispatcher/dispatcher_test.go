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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/otns/vlcns/airframe"
	"github.com/otns/vlcns/analoguemodel"
	"github.com/otns/vlcns/logger"
	"github.com/otns/vlcns/obstacle"
	"github.com/otns/vlcns/phy"
	"github.com/otns/vlcns/prng"
	"github.com/otns/vlcns/radiomodel"
	. "github.com/otns/vlcns/types"
)

type fixedLoss struct {
	factor float64
}

func (m fixedLoss) Name() string {
	return "FixedLoss"
}

func (m fixedLoss) ComputeFactor(_ *analoguemodel.Link) float64 {
	return m.factor
}

type reception struct {
	node   NodeId
	light  LightModule
	frame  FrameId
	sender NodeId
}

type recorder struct {
	received []reception
	timers   []NodeId
	onTimer  func(id NodeId)
}

func (r *recorder) OnFrameReceived(nodeid NodeId, lm LightModule, f *airframe.Frame, _ *radiomodel.DeciderResult) {
	r.received = append(r.received, reception{nodeid, lm, f.Id, f.SenderId})
}

func (r *recorder) OnTimer(nodeid NodeId) {
	r.timers = append(r.timers, nodeid)
	if r.onTimer != nil {
		r.onTimer(nodeid)
	}
}

type vehicleLog struct {
	updated map[NodeId]obstacle.Vehicle
	removed []NodeId
}

func (vl *vehicleLog) UpdateVehicle(v obstacle.Vehicle) {
	vl.updated[v.Id] = v
}

func (vl *vehicleLog) RemoveVehicle(id NodeId) {
	vl.removed = append(vl.removed, id)
}

func addTestNode(t *testing.T, d *Dispatcher, id NodeId, pose Pose) *Node {
	cfg := DefaultNodeConfig()
	cfg.Id = id
	cfg.Pose = pose
	node, err := d.AddNode(&cfg)
	require.NoError(t, err)
	chain := analoguemodel.Chain{fixedLoss{1e-9}}
	for _, lm := range []LightModule{LightHead, LightTail} {
		p, err := phy.NewPhy(id, phy.DefaultConfig(lm), chain, prng.NewFixedSequence(0.999), d)
		require.NoError(t, err)
		require.NoError(t, node.AttachPhy(p))
	}
	return node
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *recorder, *vehicleLog) {
	rec := &recorder{}
	vl := &vehicleLog{updated: map[NodeId]obstacle.Vehicle{}}
	d, err := NewDispatcher(DefaultConfig(), rec, vl)
	require.NoError(t, err)
	return d, rec, vl
}

func TestDispatcherNodes(t *testing.T) {
	d, _, vl := newTestDispatcher(t)
	node := addTestNode(t, d, 1, Pose{})
	assert.Same(t, node, d.GetNode(1))
	assert.Equal(t, LightHead, node.Phys()[0].Direction())
	assert.Equal(t, LightTail, node.Phys()[1].Direction())

	cfg := DefaultNodeConfig()
	cfg.Id = 1
	_, err := d.AddNode(&cfg)
	assert.Error(t, err)
	cfg.Id = 0
	_, err = d.AddNode(&cfg)
	assert.Error(t, err)

	p, err := phy.NewPhy(1, phy.DefaultConfig(LightHead), nil, prng.NewFixedSequence(0.5), d)
	require.NoError(t, err)
	assert.Error(t, node.AttachPhy(p))
	p, err = phy.NewPhy(2, phy.DefaultConfig(LightHead), nil, prng.NewFixedSequence(0.5), d)
	require.NoError(t, err)
	assert.Error(t, node.AttachPhy(p))

	pose := Pose{Pos: r3.Vec{X: 3, Y: 4}, Heading: math.Pi / 2}
	d.SetNodePose(1, pose)
	assert.Equal(t, pose, node.Pose)
	assert.Equal(t, pose, vl.updated[1].Pose)
	assert.Equal(t, 4.5, vl.updated[1].Length)

	d.DeleteNode(1)
	assert.Nil(t, d.GetNode(1))
	assert.Equal(t, []NodeId{1}, vl.removed)
}

func TestDispatcherTransmitBroadcast(t *testing.T) {
	d, rec, _ := newTestDispatcher(t)
	addTestNode(t, d, 1, Pose{})
	addTestNode(t, d, 2, Pose{Pos: r3.Vec{X: 10}, Heading: math.Pi})

	frames, err := d.Transmit(1, LightHead, []byte("hello"))
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, 4, d.PendingEvents())

	d.RunUntil(frames[0].Signal.End)
	assert.Equal(t, frames[0].Signal.End, d.CurTime())
	assert.ElementsMatch(t, []reception{
		{2, LightHead, frames[0].Id, 1},
		{2, LightTail, frames[0].Id, 1},
	}, rec.received)
	assert.Equal(t, uint64(4), d.Counters.FrameCopies)
	assert.Equal(t, uint64(2), d.Counters.FramesDropped)
	assert.Equal(t, uint64(2), d.Counters.FramesReceived)
	assert.Equal(t, 0, d.PendingEvents())

	stats := d.PhyStats()
	require.Len(t, stats, 4)
	assert.Equal(t, "node1.head", stats[0].Name)
	assert.Equal(t, uint64(1), stats[0].Transmitted)
	assert.Equal(t, uint64(1), stats[0].Discarded)
	assert.Equal(t, uint64(1), stats[2].Decoded)
	assert.InDelta(t, 1.0, stats[2].BusyRatio, 1e-12)
	assert.Equal(t, uint64(2), Totals(stats).Decoded)
}

func TestDispatcherTransmitBoth(t *testing.T) {
	d, rec, _ := newTestDispatcher(t)
	addTestNode(t, d, 1, Pose{})
	addTestNode(t, d, 2, Pose{Pos: r3.Vec{X: 10}})

	frames, err := d.Transmit(1, LightBoth, []byte{1})
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, LightHead, frames[0].Light)
	assert.Equal(t, LightTail, frames[1].Light)
	assert.NotEqual(t, frames[0].Id, frames[1].Id)

	// both frames overlap at each receiver: the synced one is lost to the other
	d.Go(Second)
	assert.Empty(t, rec.received)
	totals := Totals(d.PhyStats())
	assert.Equal(t, uint64(4), totals.NotDecoded)
	assert.Equal(t, uint64(2), totals.Ignored)
	assert.Equal(t, uint64(0), totals.Collisions)

	_, err = d.Transmit(3, LightHead, nil)
	assert.Error(t, err)
}

func TestDispatcherEndBeforeStart(t *testing.T) {
	d, rec, _ := newTestDispatcher(t)
	addTestNode(t, d, 1, Pose{})
	addTestNode(t, d, 2, Pose{Pos: r3.Vec{X: 10}, Heading: math.Pi})

	frames, err := d.Transmit(1, LightHead, []byte("first"))
	require.NoError(t, err)
	end := frames[0].Signal.End

	// the second frame starts exactly when the first ends
	d.ScheduleTimer(1, end)
	rec.onTimer = func(id NodeId) {
		_, err := d.Transmit(id, LightHead, []byte("second"))
		assert.NoError(t, err)
	}
	d.Go(Second)

	assert.Equal(t, []NodeId{1}, rec.timers)
	assert.Len(t, rec.received, 4)
	assert.Equal(t, uint64(0), Totals(d.PhyStats()).Collisions)
	assert.Equal(t, Second, d.CurTime())
}

func TestDispatcherDeletedNodeEvents(t *testing.T) {
	d, rec, _ := newTestDispatcher(t)
	addTestNode(t, d, 1, Pose{})
	addTestNode(t, d, 2, Pose{Pos: r3.Vec{X: 10}})

	_, err := d.Transmit(1, LightHead, []byte{1, 2})
	require.NoError(t, err)
	d.DeleteNode(2)
	d.Go(Millisecond)
	assert.Empty(t, rec.received)
	assert.Equal(t, 0, d.PendingEvents())
}

func TestDispatcherReaddedNodeDropsStaleEvents(t *testing.T) {
	d, rec, _ := newTestDispatcher(t)
	addTestNode(t, d, 1, Pose{})
	addTestNode(t, d, 2, Pose{Pos: r3.Vec{X: 10}, Heading: math.Pi})

	_, err := d.Transmit(1, LightHead, []byte("stale"))
	require.NoError(t, err)
	// deliver the signal starts, leaving the ends of node 2 queued
	d.RunUntil(d.CurTime())
	require.Equal(t, 2, d.PendingEvents())

	d.DeleteNode(2)
	node := addTestNode(t, d, 2, Pose{Pos: r3.Vec{X: 10}, Heading: math.Pi})
	assert.NotPanics(t, func() { d.Go(Millisecond) })
	assert.Empty(t, rec.received)
	assert.Equal(t, 0, d.PendingEvents())
	for _, p := range node.Phys() {
		assert.Equal(t, uint64(0), p.Tracker().Stats().Signals)
	}
	assert.Equal(t, uint64(2), d.Counters.FramesDropped)

	// the new node still receives frames sent after it joined
	frames, err := d.Transmit(1, LightHead, []byte("fresh"))
	require.NoError(t, err)
	d.RunUntil(frames[0].Signal.End)
	assert.Len(t, rec.received, 2)
}

func TestDispatcherTimerOfDeletedNode(t *testing.T) {
	d, rec, _ := newTestDispatcher(t)
	addTestNode(t, d, 1, Pose{})
	d.ScheduleTimer(1, Millisecond)
	d.DeleteNode(1)
	addTestNode(t, d, 1, Pose{})
	d.ScheduleTimer(3, Millisecond)
	d.Go(Second)
	assert.Empty(t, rec.timers)
}

func TestDispatcherBusyRatioOfLateNode(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	addTestNode(t, d, 1, Pose{})
	d.Go(Second)
	node := addTestNode(t, d, 2, Pose{Pos: r3.Vec{X: 10}, Heading: math.Pi})
	assert.Equal(t, Second, node.CreateTime)

	frames, err := d.Transmit(1, LightHead, []byte("late"))
	require.NoError(t, err)
	d.RunUntil(frames[0].Signal.End)
	stats := d.PhyStats()
	require.Len(t, stats, 4)
	assert.InDelta(t, 1.0, stats[2].BusyRatio, 1e-12)
}

func TestDispatcherWatchNodes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultWatchOn = true
	cfg.WatchLogLevel = "trace"
	d, err := NewDispatcher(cfg, &recorder{}, nil)
	require.NoError(t, err)
	assert.Equal(t, logger.TraceLevel, d.WatchLevel())

	// PHYs attached after the node was added pick up its watch level
	n1 := addTestNode(t, d, 1, Pose{})
	n2 := addTestNode(t, d, 2, Pose{Pos: r3.Vec{X: 10}})
	for _, p := range n1.Phys() {
		assert.Equal(t, logger.TraceLevel, p.Logger().DisplayLevel())
	}
	assert.Equal(t, []NodeId{1, 2}, d.GetWatchingNodes())

	d.WatchNode(2, logger.WarnLevel)
	for _, p := range n2.Phys() {
		assert.Equal(t, logger.WarnLevel, p.Logger().DisplayLevel())
	}

	d.UnwatchNode(1)
	assert.Equal(t, []NodeId{2}, d.GetWatchingNodes())
	for _, p := range n1.Phys() {
		assert.Equal(t, logger.DefaultLevel, p.Logger().DisplayLevel())
	}

	d.DeleteNode(2)
	assert.Empty(t, d.GetWatchingNodes())
}
