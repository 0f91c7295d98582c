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

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/otns/vlcns/types"
)

type fixedTime types.Timestamp

func (ft fixedTime) CurTime() types.Timestamp {
	return types.Timestamp(ft)
}

func TestParseLevelString(t *testing.T) {
	for _, lv := range []Level{MicroLevel, TraceLevel, DebugLevel, InfoLevel, NoteLevel, WarnLevel, ErrorLevel, OffLevel} {
		parsed, err := ParseLevelString(GetLevelString(lv))
		assert.Nil(t, err)
		assert.Equal(t, lv, parsed)
	}
	lv, err := ParseLevelString("nonsense")
	assert.NotNil(t, err)
	assert.Equal(t, DefaultLevel, lv)
}

func TestSimTimePrefix(t *testing.T) {
	SetTimeSource(nil)
	assert.Equal(t, "", simTimePrefix())
	SetTimeSource(fixedTime(1500 * types.Millisecond))
	assert.Equal(t, "    1.500000 - ", simTimePrefix())
	SetTimeSource(nil)
}

func TestAssertPanics(t *testing.T) {
	assert.True(t, AssertTrue(true))
	assert.Panics(t, func() {
		AssertTrue(false, "must panic")
	})
}

func TestReceiverLogger(t *testing.T) {
	rl := NewReceiverLogger(3, types.LightTail)
	assert.Equal(t, "node3.tail", rl.Name)
	rl.SetDisplayLevel(TraceLevel)
	assert.Equal(t, TraceLevel, rl.DisplayLevel())
	rl.Debugf("debug line %d", 1)
}
