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
	"fmt"

	"github.com/otns/vlcns/types"
)

// ReceiverLogger is a receiver-specific log object. Its display level can be set per receiver,
// independent of the global level, so a single PHY can be traced in a busy scenario.
type ReceiverLogger struct {
	Name         string
	displayLevel Level
}

// NewReceiverLogger creates a logger for the PHY of light module lm on node id.
func NewReceiverLogger(id types.NodeId, lm types.LightModule) *ReceiverLogger {
	return &ReceiverLogger{
		Name:         fmt.Sprintf("node%d.%s", id, lm),
		displayLevel: DefaultLevel,
	}
}

func (rl *ReceiverLogger) SetDisplayLevel(level Level) {
	rl.displayLevel = level
}

func (rl *ReceiverLogger) DisplayLevel() Level {
	return rl.displayLevel
}

func (rl *ReceiverLogger) Logf(level Level, format string, args []interface{}) {
	if level > rl.displayLevel && level > currentLevel {
		return
	}
	logAlways(level, rl.Name+": "+getMessage(format, args))
}

func (rl *ReceiverLogger) Tracef(format string, args ...interface{}) {
	rl.Logf(TraceLevel, format, args)
}

func (rl *ReceiverLogger) Debugf(format string, args ...interface{}) {
	rl.Logf(DebugLevel, format, args)
}

func (rl *ReceiverLogger) Infof(format string, args ...interface{}) {
	rl.Logf(InfoLevel, format, args)
}

func (rl *ReceiverLogger) Warnf(format string, args ...interface{}) {
	rl.Logf(WarnLevel, format, args)
}

func (rl *ReceiverLogger) Errorf(format string, args ...interface{}) {
	rl.Logf(ErrorLevel, format, args)
}
