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

package airframe

import (
	"fmt"

	"github.com/otns/vlcns/signal"
	. "github.com/otns/vlcns/types"
)

// Kind discriminates the protocol family of a frame on the air.
type Kind uint8

const (
	KindVlc Kind = iota + 1
	KindDsrc
)

func (k Kind) String() string {
	switch k {
	case KindVlc:
		return "vlc"
	case KindDsrc:
		return "dsrc"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Frame is one transmission instance as seen by one receiver.
type Frame struct {
	Id        FrameId
	Kind      Kind
	SenderId  NodeId
	Light     LightModule // light module that emitted the frame
	Sender    Pose        // pose of the emitting light
	BitLength int         // PHY header plus payload
	Signal    *signal.Signal
	Payload   []byte

	// UnderSensitivity is set by a receiver that detects the frame below its sensitivity.
	UnderSensitivity bool
}

// Copy returns a per-receiver copy with its own signal; the payload is shared read-only.
func (f *Frame) Copy() *Frame {
	c := *f
	c.Signal = f.Signal.Copy()
	c.UnderSensitivity = false
	return &c
}

func (f *Frame) String() string {
	return fmt.Sprintf("%s frame %d from node %d/%s [%d, %d) %d bits", f.Kind, f.Id, f.SenderId, f.Light,
		f.Signal.Start, f.Signal.End, f.BitLength)
}
