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

package phy

import (
	"github.com/dustin/go-humanize"

	"github.com/otns/vlcns/airframe"
	"github.com/otns/vlcns/analoguemodel"
	"github.com/otns/vlcns/logger"
	"github.com/otns/vlcns/prng"
	"github.com/otns/vlcns/radiomodel"
	"github.com/otns/vlcns/signal"
	. "github.com/otns/vlcns/types"
)

// Receiver is the layer above a PHY that gets the frames it decoded.
type Receiver interface {
	OnFrameReceived(p *Phy, f *airframe.Frame, result *radiomodel.DeciderResult)
}

// Recorder gets the reception result of every frame that reached the decider, whether decoded or not.
type Recorder interface {
	RecordReception(p *Phy, f *airframe.Frame, result *radiomodel.DeciderResult)
}

// Phy is the VLC physical layer of one light module of a vehicle. It encapsulates outgoing
// messages into frames and runs incoming frames through the attenuation chain into its decider.
type Phy struct {
	NodeId NodeId

	cfg      Config
	chain    analoguemodel.Chain
	tracker  *radiomodel.SignalTracker
	log      *logger.ReceiverLogger
	receiver Receiver
	recorder Recorder
	inRx     map[FrameId]radiomodel.FrameHandle
	numTx    uint64
	numDrop  uint64
}

func NewPhy(id NodeId, cfg *Config, chain analoguemodel.Chain, rnd prng.UnitRandom, receiver Receiver) (*Phy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Phy{
		NodeId:   id,
		cfg:      *cfg,
		chain:    chain,
		log:      logger.NewReceiverLogger(id, cfg.Direction),
		receiver: receiver,
		inRx:     map[FrameId]radiomodel.FrameHandle{},
	}
	tracker, err := radiomodel.NewSignalTracker(&p.cfg.Decider, rnd, p, p.log)
	if err != nil {
		return nil, err
	}
	p.tracker = tracker
	p.log.Debugf("PHY at %s, bandwidth %s, %s, models %v", humanize.SI(cfg.Frequency, "Hz"),
		humanize.SI(cfg.Bandwidth, "Hz"), humanize.SI(cfg.Bitrate, "bit/s"), chain.Names())
	return p, nil
}

func (p *Phy) Name() string {
	return p.log.Name
}

func (p *Phy) Direction() LightModule {
	return p.cfg.Direction
}

func (p *Phy) Config() *Config {
	return &p.cfg
}

func (p *Phy) Tracker() *radiomodel.SignalTracker {
	return p.tracker
}

func (p *Phy) Logger() *logger.ReceiverLogger {
	return p.log
}

// SetMetrics exports the PHY's reception statistics to m.
func (p *Phy) SetMetrics(m *radiomodel.Metrics) {
	if m == nil {
		p.tracker.SetStatsSink(nil)
		return
	}
	p.tracker.SetStatsSink(m.ForReceiver(p.Name()))
}

func (p *Phy) SetRecorder(r Recorder) {
	p.recorder = r
}

// NumTransmitted returns the number of frames this PHY encapsulated for sending.
func (p *Phy) NumTransmitted() uint64 {
	return p.numTx
}

// NumDiscarded returns the number of incoming frames dropped before reception (DSRC or own frames).
func (p *Phy) NumDiscarded() uint64 {
	return p.numDrop
}

// EncapsMsg wraps payload into a frame sent at start by this PHY's light on a vehicle with pose
// vehicle.
func (p *Phy) EncapsMsg(id FrameId, start Timestamp, vehicle Pose, payload []byte) (*airframe.Frame, error) {
	payloadBits := 8 * len(payload)
	duration, err := FrameDuration(p.cfg.Bitrate, payloadBits)
	if err != nil {
		return nil, err
	}
	f := &airframe.Frame{
		Id:        id,
		Kind:      airframe.KindVlc,
		SenderId:  p.NodeId,
		Light:     p.cfg.Direction,
		Sender:    vehicle.Facing(p.cfg.Direction),
		BitLength: radiomodel.PhrBits + payloadBits,
		Signal:    signal.NewSignal(start, start+duration, p.cfg.Frequency, p.cfg.Bandwidth, p.cfg.Bitrate, p.cfg.TxPowerMw),
		Payload:   payload,
	}
	p.numTx++
	p.log.Tracef("sending %s, %s", f, humanize.SI(float64(duration)/float64(Second), "s"))
	return f, nil
}

// HandleAirFrameStart processes the start of frame f at a receiving vehicle with pose vehicle. The
// frame must be this receiver's own copy. It returns the time at which HandleAirFrameEnd must be
// called, or false if the frame is discarded.
func (p *Phy) HandleAirFrameStart(f *airframe.Frame, vehicle Pose) (Timestamp, bool) {
	switch f.Kind {
	case airframe.KindDsrc:
		p.log.Debugf("discarding DSRC frame %d", f.Id)
		p.numDrop++
		return 0, false
	case airframe.KindVlc:
		if f.SenderId == p.NodeId {
			p.log.Tracef("discarding own frame %d", f.Id)
			p.numDrop++
			return 0, false
		}
	default:
		logger.Panicf("unknown frame kind %s", f.Kind)
	}

	link := analoguemodel.Link{
		Sender:           f.Sender,
		Receiver:         vehicle.Facing(p.cfg.Direction),
		Light:            f.Light,
		CarrierFrequency: f.Signal.CenterFrequency,
		Time:             f.Signal.Start,
	}
	p.chain.FilterSignal(f.Signal, &link)

	h, end := p.tracker.ProcessNewSignal(f)
	p.inRx[f.Id] = h
	return end, true
}

// HandleAirFrameEnd processes the end of the frame with the given id and returns its reception
// result, or false if the frame was not in reception.
func (p *Phy) HandleAirFrameEnd(id FrameId) (*radiomodel.DeciderResult, bool) {
	h, ok := p.inRx[id]
	if !ok {
		return nil, false
	}
	delete(p.inRx, id)
	f := p.tracker.Frame(h)
	result := p.tracker.ProcessSignalEnd(h)
	if p.recorder != nil {
		p.recorder.RecordReception(p, f, result)
	}
	return result, true
}

// SendUp implements radiomodel.Upper.
func (p *Phy) SendUp(f *airframe.Frame, result *radiomodel.DeciderResult) {
	p.log.Debugf("received frame %d from node %d at %.1f dBm", f.Id, f.SenderId, result.RecvPowerDbm)
	if p.receiver != nil {
		p.receiver.OnFrameReceived(p, f, result)
	}
}
