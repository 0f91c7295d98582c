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

package radiomodel

import (
	"math"

	"github.com/otns/vlcns/airframe"
	"github.com/otns/vlcns/logger"
	"github.com/otns/vlcns/prng"
	. "github.com/otns/vlcns/types"
)

// SignalState is the processing state of a frame at a receiver.
type SignalState uint8

const (
	StateNew SignalState = iota
	StateExpectEnd
)

// FrameHandle addresses a frame tracked by a SignalTracker. Handles stay valid until the frame has
// ended and no longer overlaps any frame still in reception.
type FrameHandle int

const InvalidHandle FrameHandle = -1

// DeciderResult is the outcome of a frame's reception together with the values it was based on.
type DeciderResult struct {
	Outcome      PacketOutcome
	Bitrate      float64
	SinrMin      float64
	RecvPowerDbm DbValue
}

func (r *DeciderResult) IsSignalCorrect() bool {
	return r.Outcome == Decoded
}

func (r *DeciderResult) IsCollision() bool {
	return r.Outcome == Collision
}

// Upper receives the frames a receiver decoded correctly.
type Upper interface {
	SendUp(f *airframe.Frame, result *DeciderResult)
}

// StatsSink records reception events, e.g. to export them as metrics.
type StatsSink interface {
	OnSignalStart(recvPowerDbm DbValue, underSensitivity bool, duration Timestamp)
	OnSignalEnd(result *DeciderResult, underSensitivity bool, synced bool)
}

// ReceiverStats counts the reception events of one receiver.
type ReceiverStats struct {
	Signals          uint64 // frames that started at the receiver
	UnderSensitivity uint64
	Decoded          uint64
	NotDecoded       uint64 // includes frames never synced to
	Collisions       uint64
	Ignored          uint64 // detected while synced to another frame
	BusyTime         Timestamp
}

type trackedFrame struct {
	frame *airframe.Frame
	ended bool
}

// SignalTracker follows all frames on the air at one receiver, synchronizes to at most one of them
// at a time and decides at its end whether it was received.
type SignalTracker struct {
	params        DeciderParams
	sensitivityMw float64
	log           *logger.ReceiverLogger
	interference  *InterferenceCalculator
	outcome       *OutcomeModel
	upper         Upper
	stats         StatsSink

	arena       []trackedFrame
	free        []FrameHandle
	states      map[FrameHandle]SignalState
	synced      FrameHandle
	numDetected int // frames above sensitivity still in reception

	startTime Timestamp
	counters  ReceiverStats
}

func NewSignalTracker(params *DeciderParams, rnd prng.UnitRandom, upper Upper, log *logger.ReceiverLogger) (*SignalTracker, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &SignalTracker{
		params:        *params,
		sensitivityMw: DbmToMw(params.SensitivityDbm),
		log:           log,
		interference:  NewInterferenceCalculator(params.ThermalNoiseDbm),
		outcome:       NewOutcomeModel(params.HeaderBits, params.CollectCollisionStatistics, rnd),
		upper:         upper,
		states:        map[FrameHandle]SignalState{},
		synced:        InvalidHandle,
	}, nil
}

// SetStatsSink sets where reception events are recorded; nil disables recording.
func (st *SignalTracker) SetStatsSink(sink StatsSink) {
	st.stats = sink
}

func (st *SignalTracker) Params() *DeciderParams {
	return &st.params
}

// SignalState returns the state of the frame at h; frames not in reception are StateNew.
func (st *SignalTracker) SignalState(h FrameHandle) SignalState {
	if s, ok := st.states[h]; ok {
		return s
	}
	return StateNew
}

// Frame returns the frame at h, or nil if h is no longer tracked.
func (st *SignalTracker) Frame(h FrameHandle) *airframe.Frame {
	if h < 0 || int(h) >= len(st.arena) {
		return nil
	}
	return st.arena[h].frame
}

// SyncedFrame returns the frame the receiver currently tries to decode.
func (st *SignalTracker) SyncedFrame() (FrameHandle, bool) {
	return st.synced, st.synced != InvalidHandle
}

// NumInReception returns the number of frames between their start and end processing.
func (st *SignalTracker) NumInReception() int {
	return len(st.states)
}

// IsChannelIdle returns true if no frame above sensitivity is being received.
func (st *SignalTracker) IsChannelIdle() bool {
	return st.numDetected == 0
}

func (st *SignalTracker) BusyTime() Timestamp {
	return st.counters.BusyTime
}

// SetStartTime sets the time from which the receiver observes the channel; it defaults to 0.
func (st *SignalTracker) SetStartTime(ts Timestamp) {
	st.startTime = ts
}

// BusyRatio returns the share of time since the start time during which the channel was busy.
func (st *SignalTracker) BusyRatio(now Timestamp) float64 {
	if now <= st.startTime {
		return 0
	}
	return math.Min(1, float64(st.counters.BusyTime)/float64(now-st.startTime))
}

func (st *SignalTracker) Collisions() uint64 {
	return st.counters.Collisions
}

func (st *SignalTracker) Stats() ReceiverStats {
	return st.counters
}

func (st *SignalTracker) admit(f *airframe.Frame) FrameHandle {
	tf := trackedFrame{frame: f}
	if n := len(st.free); n > 0 {
		h := st.free[n-1]
		st.free = st.free[:n-1]
		st.arena[h] = tf
		return h
	}
	st.arena = append(st.arena, tf)
	return FrameHandle(len(st.arena) - 1)
}

// ProcessNewSignal starts tracking frame f at its reception start. It returns the frame's handle and
// the time at which ProcessSignalEnd must be called for it.
func (st *SignalTracker) ProcessNewSignal(f *airframe.Frame) (FrameHandle, Timestamp) {
	s := f.Signal
	h := st.admit(f)
	st.states[h] = StateExpectEnd
	st.counters.Signals++

	recvPower, _ := s.ReceivingPower().At(s.Start, st.params.CenterFrequency)
	recvPowerDbm := MwToDbm(recvPower)
	if recvPower < st.sensitivityMw {
		st.log.Debugf("frame %d at %.2f dBm below sensitivity, not receiving", f.Id, recvPowerDbm)
		f.UnderSensitivity = true
		st.counters.UnderSensitivity++
		if st.stats != nil {
			st.stats.OnSignalStart(recvPowerDbm, true, s.Duration())
		}
		return h, s.End
	}

	st.numDetected++
	st.counters.BusyTime += s.Duration()
	if st.stats != nil {
		st.stats.OnSignalStart(recvPowerDbm, false, s.Duration())
	}
	if st.synced == InvalidHandle {
		st.synced = h
		st.log.Debugf("synced to frame %d at %.2f dBm, end at %d", f.Id, recvPowerDbm, s.End)
	} else {
		st.counters.Ignored++
		st.log.Debugf("already synced to frame %d, frame %d is interference", st.arena[st.synced].frame.Id, f.Id)
	}
	return h, s.End
}

// ProcessSignalEnd finishes the frame at h at its reception end and returns the reception result.
// Frames decoded correctly are handed to the upper layer.
func (st *SignalTracker) ProcessSignalEnd(h FrameHandle) *DeciderResult {
	logger.AssertTrue(st.SignalState(h) == StateExpectEnd, "frame handle not in reception")
	f := st.arena[h].frame
	delete(st.states, h)
	st.arena[h].ended = true

	var result *DeciderResult
	synced := false
	if f.UnderSensitivity {
		result = &DeciderResult{Outcome: NotDecoded, Bitrate: f.Signal.Bitrate, RecvPowerDbm: math.Inf(-1)}
	} else {
		st.numDetected--
		if h == st.synced {
			synced = true
			result = st.checkIfSignalOk(h)
			st.synced = InvalidHandle
		} else {
			result = &DeciderResult{Outcome: NotDecoded, Bitrate: f.Signal.Bitrate, RecvPowerDbm: st.recvPowerDbm(f)}
		}
	}

	switch result.Outcome {
	case Decoded:
		st.counters.Decoded++
	case NotDecoded:
		st.counters.NotDecoded++
	case Collision:
		st.counters.Collisions++
	}
	if st.stats != nil {
		st.stats.OnSignalEnd(result, f.UnderSensitivity, synced)
	}
	if result.IsSignalCorrect() {
		st.log.Debugf("frame %d received correctly, handing it up", f.Id)
		if st.upper != nil {
			st.upper.SendUp(f, result)
		}
	}
	st.purge()
	return result
}

func (st *SignalTracker) recvPowerDbm(f *airframe.Frame) DbValue {
	p, _ := f.Signal.ReceivingPower().At(f.Signal.Start, st.params.CenterFrequency)
	return MwToDbm(p)
}

// checkIfSignalOk decides the reception of the synced frame at h.
func (st *SignalTracker) checkIfSignalOk(h FrameHandle) *DeciderResult {
	f := st.arena[h].frame
	others := make([]*airframe.Frame, 0, len(st.arena))
	for i := range st.arena {
		if st.arena[i].frame != nil && FrameHandle(i) != h {
			others = append(others, st.arena[i].frame)
		}
	}
	sinrMin, snrMin := st.interference.MinSinr(f, others, &st.params, st.params.CollectCollisionStatistics)
	outcome := st.outcome.PacketOk(sinrMin, snrMin, f.BitLength)

	switch outcome {
	case Decoded:
		st.log.Debugf("frame %d is fine, decoding it (SINR %.2f dB)", f.Id, MwToDbm(sinrMin))
	case NotDecoded:
		if st.params.CollectCollisionStatistics {
			st.log.Debugf("frame %d has bit errors due to low power, lost", f.Id)
		} else {
			st.log.Debugf("frame %d has bit errors, lost", f.Id)
		}
	case Collision:
		st.log.Debugf("frame %d has bit errors due to collision, lost", f.Id)
	}
	return &DeciderResult{
		Outcome:      outcome,
		Bitrate:      f.Signal.Bitrate,
		SinrMin:      sinrMin,
		RecvPowerDbm: st.recvPowerDbm(f),
	}
}

// purge releases ended frames that no frame still in reception overlaps.
func (st *SignalTracker) purge() {
	earliest := Ever
	for h := range st.states {
		earliest = min(earliest, st.arena[h].frame.Signal.Start)
	}
	for i := range st.arena {
		tf := &st.arena[i]
		if tf.frame != nil && tf.ended && tf.frame.Signal.End <= earliest {
			*tf = trackedFrame{}
			st.free = append(st.free, FrameHandle(i))
		}
	}
}
