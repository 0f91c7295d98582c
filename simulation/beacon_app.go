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
	"encoding/binary"

	"github.com/otns/vlcns/airframe"
	"github.com/otns/vlcns/dispatcher"
	"github.com/otns/vlcns/logger"
	"github.com/otns/vlcns/prng"
	"github.com/otns/vlcns/radiomodel"
	. "github.com/otns/vlcns/types"
)

// BeaconApp periodically broadcasts a beacon through the node's light modules.
type BeaconApp struct {
	NodeId NodeId

	params BeaconParams
	d      *dispatcher.Dispatcher
	seq    uint32

	Sent     uint64
	Received map[NodeId]uint64 // beacons received per sender
}

func newBeaconApp(id NodeId, params BeaconParams, d *dispatcher.Dispatcher) *BeaconApp {
	return &BeaconApp{
		NodeId:   id,
		params:   params,
		d:        d,
		Received: map[NodeId]uint64{},
	}
}

// Enabled returns false if the application is configured not to send.
func (app *BeaconApp) Enabled() bool {
	return app.params.Frequency > 0
}

func (app *BeaconApp) jitter() Timestamp {
	return SecondsToTimestamp(prng.NewUnitRandom() * maxBeaconJitter)
}

func (app *BeaconApp) start() {
	if !app.Enabled() {
		return
	}
	app.d.ScheduleTimer(app.NodeId, app.d.CurTime()+app.params.StartTime+app.jitter())
}

func (app *BeaconApp) onTimer() {
	payload := app.encode()
	if _, err := app.d.Transmit(app.NodeId, app.params.Light, payload); err != nil {
		logger.Warnf("node %d: beacon not sent: %v", app.NodeId, err)
	} else {
		app.Sent++
	}
	period := SecondsToTimestamp(1 / app.params.Frequency)
	app.d.ScheduleTimer(app.NodeId, app.d.CurTime()+period+app.jitter())
}

// encode builds a beacon: sender id and sequence number, padded to the configured length.
func (app *BeaconApp) encode() []byte {
	payload := make([]byte, app.params.PacketByteLength)
	binary.BigEndian.PutUint32(payload[0:4], uint32(app.NodeId))
	binary.BigEndian.PutUint32(payload[4:8], app.seq)
	app.seq++
	return payload
}

func decodeBeacon(payload []byte) (NodeId, uint32, bool) {
	if len(payload) < minPacketByteLength {
		return InvalidNodeId, 0, false
	}
	return NodeId(binary.BigEndian.Uint32(payload[0:4])), binary.BigEndian.Uint32(payload[4:8]), true
}

func (app *BeaconApp) onReceive(lm LightModule, f *airframe.Frame, result *radiomodel.DeciderResult) {
	sender, seq, ok := decodeBeacon(f.Payload)
	if !ok || sender != f.SenderId {
		logger.Warnf("node %d: malformed beacon in frame %d", app.NodeId, f.Id)
		return
	}
	app.Received[sender]++
	logger.Tracef("node %d.%s: beacon %d from node %d, SINR %.1f", app.NodeId, lm, seq, sender, result.SinrMin)
}
