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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/otns/vlcns/signal"
	"github.com/otns/vlcns/types"
)

func TestCopyIsIndependent(t *testing.T) {
	f := &Frame{
		Id:        7,
		Kind:      KindVlc,
		SenderId:  1,
		Light:     types.LightHead,
		BitLength: 432,
		Signal:    signal.NewSignal(0, 1000, 666e12, 20e6, 1e6, 100),
	}
	c := f.Copy()
	c.Signal.AddAttenuation(0.25)
	c.UnderSensitivity = true

	v, _ := f.Signal.ReceivingPower().At(0, 666e12)
	assert.Equal(t, 100.0, v)
	v, _ = c.Signal.ReceivingPower().At(0, 666e12)
	assert.Equal(t, 25.0, v)
	assert.False(t, f.UnderSensitivity)
	assert.Equal(t, f.Id, c.Id)
	assert.Equal(t, "vlc frame 7 from node 1/head [0, 1000) 432 bits", f.String())
	assert.Equal(t, "dsrc", KindDsrc.String())
}
