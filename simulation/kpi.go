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
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/otns/vlcns/dispatcher"
	"github.com/otns/vlcns/logger"
	"github.com/otns/vlcns/radiomodel"
	. "github.com/otns/vlcns/types"
)

type receiverStatsStore map[string]radiomodel.ReceiverStats

type beaconCounters struct {
	sent     map[NodeId]uint64
	received map[NodeId]map[NodeId]uint64 // receiver -> sender -> count
}

// KpiManager measures reception KPIs of a simulation between Start and Stop.
type KpiManager struct {
	sim        *Simulation
	data       *Kpi
	startStats receiverStatsStore
	startApps  beaconCounters
	startTime  Timestamp
	isRunning  bool
}

func NewKpiManager() *KpiManager {
	return &KpiManager{}
}

// Init binds the manager to sim.
func (km *KpiManager) Init(sim *Simulation) {
	logger.AssertNil(km.sim)
	logger.AssertFalse(km.isRunning)
	km.sim = sim
	km.data = &Kpi{Status: "ok"}
}

func (km *KpiManager) Start() {
	logger.AssertNotNil(km.sim)
	km.startStats = km.retrieveReceiverStats()
	km.startApps = km.retrieveBeaconCounters()
	km.startTime = km.sim.Dispatcher().CurTime()
	km.data = &Kpi{Status: "ok"}
	km.isRunning = true
}

func (km *KpiManager) Stop() {
	if km.isRunning {
		km.calculateKpis()
		km.isRunning = false
	}
}

func (km *KpiManager) IsRunning() bool {
	return km.isRunning
}

// Data returns the KPIs, recalculated up to the current time while running.
func (km *KpiManager) Data() *Kpi {
	if km.isRunning {
		km.calculateKpis()
	}
	return km.data
}

// SaveFile writes the KPIs as JSON to fn.
func (km *KpiManager) SaveFile(fn string) error {
	logger.AssertNotNil(km.sim)
	data := km.Data()
	data.FileTime = time.Now().Format(time.RFC3339)
	js, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return errors.Wrap(err, "marshal KPI data")
	}
	if err = os.WriteFile(fn, js, 0644); err != nil {
		return errors.Wrapf(err, "write KPI file %s", fn)
	}
	return nil
}

func (km *KpiManager) retrieveReceiverStats() receiverStatsStore {
	store := receiverStatsStore{}
	for _, s := range km.sim.Dispatcher().PhyStats() {
		store[s.Name] = s.ReceiverStats
	}
	return store
}

func (km *KpiManager) retrieveBeaconCounters() beaconCounters {
	bc := beaconCounters{
		sent:     map[NodeId]uint64{},
		received: map[NodeId]map[NodeId]uint64{},
	}
	for _, id := range km.sim.GetNodes() {
		app := km.sim.App(id)
		bc.sent[id] = app.Sent
		recv := make(map[NodeId]uint64, len(app.Received))
		for sender, n := range app.Received {
			recv[sender] = n
		}
		bc.received[id] = recv
	}
	return bc
}

func receiverDiff(cur, start radiomodel.ReceiverStats, period Timestamp) KpiReceiver {
	k := KpiReceiver{
		Signals:          cur.Signals - start.Signals,
		UnderSensitivity: cur.UnderSensitivity - start.UnderSensitivity,
		Decoded:          cur.Decoded - start.Decoded,
		NotDecoded:       cur.NotDecoded - start.NotDecoded,
		Collisions:       cur.Collisions - start.Collisions,
		Ignored:          cur.Ignored - start.Ignored,
	}
	if period > 0 {
		k.BusyPercentage = 100.0 * float64(cur.BusyTime-start.BusyTime) / float64(period)
	}
	if detected := k.Signals - k.UnderSensitivity; detected > 0 {
		k.DecodePercentage = 100.0 * float64(k.Decoded) / float64(detected)
	}
	return k
}

func (km *KpiManager) calculateKpis() {
	d := km.sim.Dispatcher()
	now := d.CurTime()
	period := now - km.startTime

	km.data.TimeUs = KpiTimeUs{
		StartTimeUs: uint64(km.startTime / Microsecond),
		EndTimeUs:   uint64(now / Microsecond),
		PeriodUs:    uint64(period / Microsecond),
	}
	km.data.TimeSec = KpiTimeSec{
		StartTimeSec: TimestampToSeconds(km.startTime),
		EndTimeSec:   TimestampToSeconds(now),
		PeriodSec:    TimestampToSeconds(period),
	}

	stats := d.PhyStats()
	km.data.Receivers = make(map[string]KpiReceiver, len(stats))
	for _, s := range stats {
		// receivers created during the period start from zero
		km.data.Receivers[s.Name] = receiverDiff(s.ReceiverStats, km.startStats[s.Name], period)
	}
	km.data.Total = receiverDiff(dispatcher.Totals(stats), startTotals(km.startStats, stats), period*Timestamp(max(len(stats), 1)))

	cur := km.retrieveBeaconCounters()
	km.data.Links = map[string]KpiLink{}
	for receiver, bySender := range cur.received {
		for sender := range cur.sent {
			if sender == receiver {
				continue
			}
			link := KpiLink{
				Sent:     cur.sent[sender] - km.startApps.sent[sender],
				Received: bySender[sender] - km.startApps.received[receiver][sender],
			}
			if link.Sent > 0 {
				link.PdrPercentage = 100.0 * float64(link.Received) / float64(link.Sent)
			}
			km.data.Links[fmt.Sprintf("%d-%d", sender, receiver)] = link
		}
	}
}

// startTotals sums the start counters of the receivers that still exist.
func startTotals(start receiverStatsStore, stats []dispatcher.PhyStats) radiomodel.ReceiverStats {
	prev := make([]dispatcher.PhyStats, len(stats))
	for i, s := range stats {
		prev[i].ReceiverStats = start[s.Name]
	}
	return dispatcher.Totals(prev)
}
