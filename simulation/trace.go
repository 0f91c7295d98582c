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

package simulation

import (
	"database/sql"

	"github.com/otns/vlcns/airframe"
	"github.com/otns/vlcns/phy"
	"github.com/otns/vlcns/radiomodel"
	"github.com/otns/vlcns/tracedb"
)

type receptionTrace struct {
	store *tracedb.SqliteStore
}

func (rt *receptionTrace) RecordReception(p *phy.Phy, f *airframe.Frame, result *radiomodel.DeciderResult) {
	r := tracedb.Reception{
		Time:         f.Signal.End,
		Receiver:     p.Name(),
		NodeId:       p.NodeId,
		Light:        p.Direction(),
		FrameId:      f.Id,
		SenderId:     f.SenderId,
		SenderLight:  f.Light,
		Outcome:      result.Outcome.String(),
		RecvPowerDbm: tracedb.NullDbm(result.RecvPowerDbm),
	}
	if result.SinrMin > 0 {
		r.SinrMin = sql.NullFloat64{Float64: result.SinrMin, Valid: true}
	}
	rt.store.Add(r)
}

// RecordReceptions records the result of every frame at every receiver into store. A nil store
// stops recording.
func (s *Simulation) RecordReceptions(store *tracedb.SqliteStore) {
	var rec phy.Recorder
	if store != nil {
		rec = &receptionTrace{store: store}
	}
	for _, n := range s.d.Nodes() {
		for _, p := range n.Phys() {
			p.SetRecorder(rec)
		}
	}
}
