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
	"github.com/pkg/errors"

	"github.com/otns/vlcns/radiomodel"
	. "github.com/otns/vlcns/types"
)

const (
	serviceBits    = 16
	tailBits       = 6
	symbolDuration = 8 * Microsecond
)

// data bits per OFDM symbol for the supported bitrates
var dataBitsPerSymbol = map[float64]int{
	3e6:   24,
	4.5e6: 36,
	6e6:   48,
	9e6:   72,
	12e6:  96,
	18e6:  144,
	24e6:  192,
	27e6:  216,
}

// DataBitsPerSymbol returns the number of data bits per symbol at bitrate, or an error if the bitrate
// is not supported.
func DataBitsPerSymbol(bitrate float64) (int, error) {
	n, ok := dataBitsPerSymbol[bitrate]
	if !ok {
		return 0, errors.Errorf("unsupported bitrate %g bit/s", bitrate)
	}
	return n, nil
}

// FrameDuration returns the air time of a frame carrying payloadBits at bitrate: the synchronization
// and PHY headers followed by the symbols holding service, payload and tail bits. The symbol count
// is rounded down, so durations match the reference VLC model; a last partial symbol takes no time.
func FrameDuration(bitrate float64, payloadBits int) (Timestamp, error) {
	ndbps, err := DataBitsPerSymbol(bitrate)
	if err != nil {
		return 0, err
	}
	header := SecondsToTimestamp(float64(radiomodel.ShrBits+radiomodel.PhrBits) / bitrate)
	symbols := (serviceBits + payloadBits + tailBits) / ndbps
	return header + Timestamp(symbols)*symbolDuration, nil
}
