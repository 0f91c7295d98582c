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

package signal

import (
	. "github.com/otns/vlcns/types"
)

// Signal is the physical representation of a frame at one receiver: the transmitted power over
// time and frequency, and the attenuation factors applied to it on its way to the receiver.
type Signal struct {
	Start, End      Timestamp
	CenterFrequency float64 // Hz
	Bandwidth       float64 // Hz
	Bitrate         float64 // bit/s, used for header and payload alike

	txPower      *Mapping
	attenuations []float64
	rxPower      *Mapping
}

// NewSignal creates a signal spanning [start, end) with a single-band transmit power of txPowerMw
// around the center frequency.
func NewSignal(start, end Timestamp, centerFrequency, bandwidth, bitrate, txPowerMw float64) *Signal {
	return &Signal{
		Start:           start,
		End:             end,
		CenterFrequency: centerFrequency,
		Bandwidth:       bandwidth,
		Bitrate:         bitrate,
		txPower:         NewConstantMapping(start, end, CenteredBand(centerFrequency, bandwidth), txPowerMw),
	}
}

func (s *Signal) Duration() Timestamp {
	return s.End - s.Start
}

func (s *Signal) Band() Band {
	return CenteredBand(s.CenterFrequency, s.Bandwidth)
}

func (s *Signal) TransmissionPower() *Mapping {
	return s.txPower
}

// AddAttenuation applies one more multiplicative attenuation factor.
func (s *Signal) AddAttenuation(factor float64) {
	s.attenuations = append(s.attenuations, factor)
	s.rxPower = nil
}

func (s *Signal) Attenuations() []float64 {
	return s.attenuations
}

// ReceivingPower returns the transmission power scaled by the product of all attenuations.
func (s *Signal) ReceivingPower() *Mapping {
	if s.rxPower == nil {
		k := 1.0
		for _, a := range s.attenuations {
			k *= a
		}
		s.rxPower = s.txPower.Scale(k)
	}
	return s.rxPower
}

// Copy returns an independent copy, so each receiver can attenuate its own version of a signal.
func (s *Signal) Copy() *Signal {
	c := *s
	c.attenuations = append([]float64(nil), s.attenuations...)
	c.rxPower = nil
	return &c
}
