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
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otns/vlcns/airframe"
	"github.com/otns/vlcns/logger"
	"github.com/otns/vlcns/prng"
	"github.com/otns/vlcns/signal"
	. "github.com/otns/vlcns/types"
)

type upperRecorder struct {
	frames []*airframe.Frame
}

func (u *upperRecorder) SendUp(f *airframe.Frame, _ *DeciderResult) {
	u.frames = append(u.frames, f)
}

// newTestFrame creates a frame received at rxPowerDbm over [start, end) microseconds.
func newTestFrame(id FrameId, start, end Timestamp, rxPowerDbm DbValue) *airframe.Frame {
	s := signal.NewSignal(start*Microsecond, end*Microsecond, defaultCenterFrequency, defaultBandwidth, defaultBitrate, 100)
	s.AddAttenuation(DbmToMw(rxPowerDbm) / 100)
	return &airframe.Frame{
		Id:        id,
		Kind:      airframe.KindVlc,
		SenderId:  NodeId(id),
		Light:     LightHead,
		BitLength: PhrBits + 8*20,
		Signal:    s,
	}
}

func newTestTracker(t *testing.T, collect bool, draws ...float64) (*SignalTracker, *upperRecorder) {
	p := DefaultDeciderParams()
	p.CollectCollisionStatistics = collect
	up := &upperRecorder{}
	st, err := NewSignalTracker(p, prng.NewFixedSequence(draws...), up, logger.NewReceiverLogger(1, LightHead))
	require.NoError(t, err)
	return st, up
}

func TestOokBitErrorRate(t *testing.T) {
	assert.Equal(t, 0.5, OokBitErrorRate(0))
	assert.Equal(t, 0.5, OokBitErrorRate(-3))
	assert.Equal(t, 0.5, OokBitErrorRate(math.NaN()))
	assert.InDelta(t, 0.5*math.Erfc(1), OokBitErrorRate(2), 1e-12)
	assert.Less(t, OokBitErrorRate(1e4), 1e-100)
}

func TestOokPdrMonotonic(t *testing.T) {
	assert.Equal(t, 1.0, OokPdr(0, 0))
	assert.Equal(t, 1.0, OokPdr(0.1, -5))

	prev := 0.0
	for _, snr := range []float64{0.01, 0.1, 1, 3, 10, 30, 100} {
		pdr := OokPdr(snr, 200)
		assert.GreaterOrEqual(t, pdr, prev)
		assert.True(t, pdr >= 0 && pdr <= 1)
		prev = pdr
	}
	assert.GreaterOrEqual(t, OokPdr(5, 40), OokPdr(5, 400))
}

func TestDeciderParamsValidate(t *testing.T) {
	p := DefaultDeciderParams()
	assert.NoError(t, p.Validate())
	assert.Equal(t, ShrBits, p.HeaderBits)

	p.Bitrate = 0
	assert.Error(t, p.Validate())
}

func TestPacketOutcomeString(t *testing.T) {
	assert.Equal(t, "decoded", Decoded.String())
	assert.Equal(t, "not_decoded", NotDecoded.String())
	assert.Equal(t, "collision", Collision.String())
	assert.Panics(t, func() { _ = PacketOutcome(7).String() })
}

func TestPacketOkBranches(t *testing.T) {
	// header draw fails with interference, succeeds without: collision
	m := NewOutcomeModel(ShrBits, true, prng.NewFixedSequence(0.5))
	assert.Equal(t, Collision, m.PacketOk(1, 1e4, 200))

	// same draw with collision statistics off
	m = NewOutcomeModel(ShrBits, false, prng.NewFixedSequence(0.5))
	assert.Equal(t, NotDecoded, m.PacketOk(1, SnrSentinel, 200))

	// too weak even without interference
	m = NewOutcomeModel(ShrBits, true, prng.NewFixedSequence(0.5))
	assert.Equal(t, NotDecoded, m.PacketOk(0.5, 0.5, 200))

	// strong signal: both draws pass
	seq := prng.NewFixedSequence(0.999, 0.999)
	m = NewOutcomeModel(ShrBits, true, seq)
	assert.Equal(t, Decoded, m.PacketOk(1e4, 1e4, 200))
	assert.Equal(t, 2, seq.Drawn())

	// header passes, packet draw fails on the longer frame
	pdrHeader := OokPdr(8, ShrBits)
	pdrPacket := OokPdr(8, 4000)
	require.Greater(t, pdrHeader, pdrPacket)
	seq = prng.NewFixedSequence(pdrHeader, (pdrHeader+pdrPacket)/2)
	m = NewOutcomeModel(ShrBits, true, seq)
	assert.Equal(t, Collision, m.PacketOk(8, 1e4, 4000))
	assert.Equal(t, 2, seq.Drawn())
}

func TestPacketOkRejectsSnrBelowSinr(t *testing.T) {
	m := NewOutcomeModel(ShrBits, true, prng.NewFixedSequence(0.5))
	assert.Panics(t, func() { m.PacketOk(100, 1, 200) })
}

func TestMinSinrWithoutInterference(t *testing.T) {
	ic := NewInterferenceCalculator(defaultThermalNoiseDbm)
	f := newTestFrame(1, 0, 100, -70)
	sinr, snr := ic.MinSinr(f, nil, DefaultDeciderParams(), true)
	assert.InDelta(t, 1e4, sinr, 1e-6)
	assert.InDelta(t, sinr, snr, 1e-9)

	_, snr = ic.MinSinr(f, nil, DefaultDeciderParams(), false)
	assert.Equal(t, SnrSentinel, snr)
}

func TestMinSinrWithInterference(t *testing.T) {
	ic := NewInterferenceCalculator(defaultThermalNoiseDbm)
	a := newTestFrame(1, 0, 100, -70)
	b := newTestFrame(2, 50, 150, -70)
	c := newTestFrame(3, 200, 300, -40) // never overlaps a
	sinr, snr := ic.MinSinr(a, []*airframe.Frame{b, c}, DefaultDeciderParams(), true)
	assert.InDelta(t, 1e-7/(1e-7+1e-11), sinr, 1e-9)
	assert.InDelta(t, 1e4, snr, 1e-6)
	assert.GreaterOrEqual(t, snr, sinr)
}

func TestSinrWindowSkipsHeader(t *testing.T) {
	f := newTestFrame(1, 0, 100, -70)
	from, to, band := SinrWindow(f, ShrBits, defaultCenterFrequency, defaultBandwidth)
	assert.Equal(t, SecondsToTimestamp(ShrBits/defaultBitrate), from)
	assert.Equal(t, 100*Microsecond, to)
	assert.True(t, band.Contains(defaultCenterFrequency))

	// interference confined to the header does not count
	ic := NewInterferenceCalculator(defaultThermalNoiseDbm)
	b := newTestFrame(2, 0, 5, -40)
	sinr, _ := ic.MinSinr(f, []*airframe.Frame{b}, DefaultDeciderParams(), false)
	assert.InDelta(t, 1e4, sinr, 1e-6)
}

func TestTrackerLoneFrameDecoded(t *testing.T) {
	st, up := newTestTracker(t, true, 0.999, 0.999)
	assert.True(t, st.IsChannelIdle())

	f := newTestFrame(1, 0, 100, -70)
	h, end := st.ProcessNewSignal(f)
	assert.Equal(t, 100*Microsecond, end)
	assert.Equal(t, StateExpectEnd, st.SignalState(h))
	assert.False(t, st.IsChannelIdle())
	synced, ok := st.SyncedFrame()
	assert.True(t, ok)
	assert.Equal(t, h, synced)

	res := st.ProcessSignalEnd(h)
	assert.True(t, res.IsSignalCorrect())
	assert.InDelta(t, -70, res.RecvPowerDbm, 1e-9)
	assert.Equal(t, defaultBitrate, res.Bitrate)
	assert.Equal(t, []*airframe.Frame{f}, up.frames)
	assert.True(t, st.IsChannelIdle())
	assert.Equal(t, StateNew, st.SignalState(h))
	_, ok = st.SyncedFrame()
	assert.False(t, ok)
	assert.Equal(t, 100*Microsecond, st.BusyTime())
	assert.Equal(t, 0, st.NumInReception())
	assert.Nil(t, st.Frame(h))
}

func TestTrackerUnderSensitivity(t *testing.T) {
	st, up := newTestTracker(t, true, 0.0)
	f := newTestFrame(1, 0, 100, -120)
	h, _ := st.ProcessNewSignal(f)
	assert.True(t, f.UnderSensitivity)
	assert.True(t, st.IsChannelIdle())
	_, ok := st.SyncedFrame()
	assert.False(t, ok)

	res := st.ProcessSignalEnd(h)
	assert.Equal(t, NotDecoded, res.Outcome)
	assert.Empty(t, up.frames)
	assert.Equal(t, Timestamp(0), st.BusyTime())
	assert.Equal(t, uint64(1), st.Stats().UnderSensitivity)
}

func TestTrackerUnderSensitivityStillInterferes(t *testing.T) {
	st, _ := newTestTracker(t, true, 0.5, 0.5)
	a := newTestFrame(1, 0, 100, -95)
	weak := newTestFrame(2, 10, 100, -101) // below -100 dBm sensitivity, well above noise
	ha, _ := st.ProcessNewSignal(a)
	hw, _ := st.ProcessNewSignal(weak)
	assert.True(t, weak.UnderSensitivity)

	st.ProcessSignalEnd(hw)
	res := st.ProcessSignalEnd(ha)
	expected := DbmToMw(-95) / (DbmToMw(-101) + DbmToMw(defaultThermalNoiseDbm))
	assert.InDelta(t, expected, res.SinrMin, 1e-9)
}

func TestTrackerOverlappingFrames(t *testing.T) {
	st, up := newTestTracker(t, true, 0.5, 0.5)
	a := newTestFrame(1, 0, 10, -70)
	b := newTestFrame(2, 2, 12, -70)

	ha, _ := st.ProcessNewSignal(a)
	hb, _ := st.ProcessNewSignal(b)
	synced, _ := st.SyncedFrame()
	assert.Equal(t, ha, synced)
	assert.Equal(t, uint64(1), st.Stats().Ignored)

	resA := st.ProcessSignalEnd(ha)
	assert.True(t, resA.IsCollision())
	assert.False(t, st.IsChannelIdle())
	assert.Equal(t, a, st.Frame(ha), "ended frame kept while it overlaps b")

	resB := st.ProcessSignalEnd(hb)
	assert.Equal(t, NotDecoded, resB.Outcome)
	assert.Empty(t, up.frames)
	assert.True(t, st.IsChannelIdle())
	assert.Nil(t, st.Frame(ha))
	assert.Equal(t, uint64(1), st.Collisions())
	assert.Equal(t, 20*Microsecond, st.BusyTime())
}

func TestTrackerCollisionWithoutStatistics(t *testing.T) {
	st, _ := newTestTracker(t, false, 0.5, 0.5)
	ha, _ := st.ProcessNewSignal(newTestFrame(1, 0, 10, -70))
	hb, _ := st.ProcessNewSignal(newTestFrame(2, 2, 12, -70))
	assert.Equal(t, NotDecoded, st.ProcessSignalEnd(ha).Outcome)
	assert.Equal(t, NotDecoded, st.ProcessSignalEnd(hb).Outcome)
	assert.Equal(t, uint64(0), st.Collisions())
	assert.Equal(t, uint64(2), st.Stats().NotDecoded)
}

func TestTrackerReusesHandles(t *testing.T) {
	st, _ := newTestTracker(t, false, 0.999)
	h1, _ := st.ProcessNewSignal(newTestFrame(1, 0, 10, -70))
	st.ProcessSignalEnd(h1)
	h2, _ := st.ProcessNewSignal(newTestFrame(2, 20, 30, -70))
	assert.Equal(t, h1, h2)
	st.ProcessSignalEnd(h2)
	assert.InDelta(t, 0.5, st.BusyRatio(40*Microsecond), 1e-12)
	assert.Equal(t, 0.0, st.BusyRatio(0))
}

func TestTrackerBusyRatioFromStartTime(t *testing.T) {
	st, _ := newTestTracker(t, false, 0.999)
	st.SetStartTime(100 * Microsecond)
	h, _ := st.ProcessNewSignal(newTestFrame(1, 100, 110, -70))
	st.ProcessSignalEnd(h)
	assert.InDelta(t, 0.5, st.BusyRatio(120*Microsecond), 1e-12)
	assert.Equal(t, 0.0, st.BusyRatio(100*Microsecond))
	assert.Equal(t, 0.0, st.BusyRatio(50*Microsecond))
}

func TestTrackerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	st, _ := newTestTracker(t, true, 0.999, 0.999)
	st.SetStatsSink(m.ForReceiver("node1.head"))
	h, _ := st.ProcessNewSignal(newTestFrame(1, 0, 100, -70))
	st.ProcessSignalEnd(h)
	h, _ = st.ProcessNewSignal(newTestFrame(2, 200, 300, -130))
	st.ProcessSignalEnd(h)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Frames.WithLabelValues("node1.head", "decoded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Frames.WithLabelValues("node1.head", "under_sensitivity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncedSignals.WithLabelValues("node1.head")))
	assert.InDelta(t, 100e-6, testutil.ToFloat64(m.BusySeconds.WithLabelValues("node1.head")), 1e-12)
	assert.Equal(t, 1, testutil.CollectAndCount(m.RecvPowerDbm))

	// registering twice reuses the collectors
	m2, err := NewMetrics(reg)
	require.NoError(t, err)
	assert.Same(t, m.Frames, m2.Frames)
}
