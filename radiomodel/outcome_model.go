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
	"github.com/otns/vlcns/logger"
	"github.com/otns/vlcns/prng"
	. "github.com/otns/vlcns/types"
)

// SnrSentinel stands in for the SNR when collision statistics are not collected.
const SnrSentinel = 1e200

// PacketOutcome is the result of an attempt to decode a frame.
type PacketOutcome uint8

const (
	Decoded PacketOutcome = iota
	NotDecoded
	Collision
)

func (o PacketOutcome) String() string {
	switch o {
	case Decoded:
		return "decoded"
	case NotDecoded:
		return "not_decoded"
	case Collision:
		return "collision"
	default:
		logger.Panicf("invalid PacketOutcome: %d", o)
		return "invalid"
	}
}

// OutcomeModel decides the fate of a frame from its minimum SINR and SNR with two uniform draws, one
// for the header and one for the whole frame.
type OutcomeModel struct {
	headerBits            int
	collectCollisionStats bool
	rnd                   prng.UnitRandom
}

func NewOutcomeModel(headerBits int, collectCollisionStats bool, rnd prng.UnitRandom) *OutcomeModel {
	return &OutcomeModel{
		headerBits:            headerBits,
		collectCollisionStats: collectCollisionStats,
		rnd:                   rnd,
	}
}

// PacketOk classifies a frame of lengthBits bits. snrMin is only used when collision statistics are
// collected; otherwise losses caused by interference count as NotDecoded.
func (m *OutcomeModel) PacketOk(sinrMin, snrMin float64, lengthBits int) PacketOutcome {
	headerOkSinr := OokPdr(sinrMin, m.headerBits)
	packetOkSinr := OokPdr(sinrMin, lengthBits)

	var headerOkSnr, packetOkSnr float64
	if m.collectCollisionStats {
		headerOkSnr = OokPdr(snrMin, m.headerBits)
		packetOkSnr = OokPdr(snrMin, lengthBits)
		// interference can only lower the success probability
		logger.AssertTruef(Close(packetOkSnr, packetOkSinr) || packetOkSnr > packetOkSinr,
			"packet PDR by SNR %g below PDR by SINR %g", packetOkSnr, packetOkSinr)
		logger.AssertTruef(Close(headerOkSnr, headerOkSinr) || headerOkSnr > headerOkSinr,
			"header PDR by SNR %g below PDR by SINR %g", headerOkSnr, headerOkSinr)
	}

	if res, failed := m.judge(m.rnd.Float64(), headerOkSinr, headerOkSnr); failed {
		return res
	}
	if res, failed := m.judge(m.rnd.Float64(), packetOkSinr, packetOkSnr); failed {
		return res
	}
	return Decoded
}

// judge compares one draw against the success probabilities with and without interference.
func (m *OutcomeModel) judge(draw, okSinr, okSnr float64) (PacketOutcome, bool) {
	if draw <= okSinr {
		return Decoded, false
	}
	if !m.collectCollisionStats || draw > okSnr {
		return NotDecoded, true
	}
	return Collision, true
}
