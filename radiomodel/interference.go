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
	"github.com/otns/vlcns/airframe"
	"github.com/otns/vlcns/signal"
	. "github.com/otns/vlcns/types"
)

// InterferenceCalculator derives the noise and noise-plus-interference power a frame competes with.
type InterferenceCalculator struct {
	thermalNoiseMw float64
}

func NewInterferenceCalculator(thermalNoiseDbm DbValue) *InterferenceCalculator {
	return &InterferenceCalculator{thermalNoiseMw: DbmToMw(thermalNoiseDbm)}
}

// NoiseMapping returns the thermal noise over [start, end) on all frequencies.
func (ic *InterferenceCalculator) NoiseMapping(start, end Timestamp) *signal.Mapping {
	return signal.NewConstantMapping(start, end, signal.AllFrequencies, ic.thermalNoiseMw)
}

// NoiseAndInterferenceMapping adds to the thermal noise the received power of every frame whose
// reception overlaps [start, end), except the frame with id exclude.
func (ic *InterferenceCalculator) NoiseAndInterferenceMapping(start, end Timestamp, exclude FrameId, frames []*airframe.Frame) *signal.Mapping {
	res := ic.NoiseMapping(start, end)
	for _, f := range frames {
		if f.Id == exclude || f.Signal.Start >= end || f.Signal.End <= start {
			continue
		}
		res = res.Add(f.Signal.ReceivingPower().Restrict(start, end))
	}
	return res
}

// SinrWindow returns the time window and band over which a frame's SINR is evaluated: from the end of
// the synchronization header to the end of the frame, over the receiver's channel.
func SinrWindow(f *airframe.Frame, headerBits int, centerFrequency, bandwidth float64) (Timestamp, Timestamp, signal.Band) {
	s := f.Signal
	from := s.Start + SecondsToTimestamp(float64(headerBits)/s.Bitrate)
	if from >= s.End {
		from = s.Start
	}
	return from, s.End, signal.CenteredBand(centerFrequency, bandwidth)
}

// MinSinr returns the minimum SINR of frame f against the other frames, and, if withSnr is set, its
// minimum SNR against thermal noise alone. Without withSnr the SNR is SnrSentinel.
func (ic *InterferenceCalculator) MinSinr(f *airframe.Frame, frames []*airframe.Frame, p *DeciderParams, withSnr bool) (sinrMin, snrMin float64) {
	start, end := f.Signal.Start, f.Signal.End
	rxPower := f.Signal.ReceivingPower()
	from, to, band := SinrWindow(f, p.HeaderBits, p.CenterFrequency, p.Bandwidth)

	noiseAndInterference := ic.NoiseAndInterferenceMapping(start, end, f.Id, frames)
	sinr := signal.Divide(rxPower, noiseAndInterference, signal.MappedZero)
	sinrMin = findMinOrZero(sinr, from, to, band)

	snrMin = SnrSentinel
	if withSnr {
		snr := signal.Divide(rxPower, ic.NoiseMapping(start, end), signal.MappedZero)
		snrMin = findMinOrZero(snr, from, to, band)
	}
	return
}

func findMinOrZero(m *signal.Mapping, from, to Timestamp, band signal.Band) float64 {
	v, ok := signal.FindMin(m, from, to, band)
	if !ok {
		return signal.MappedZero
	}
	return v
}
