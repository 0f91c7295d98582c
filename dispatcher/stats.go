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

package dispatcher

import (
	"sort"

	"github.com/otns/vlcns/radiomodel"
	. "github.com/otns/vlcns/types"
)

// PhyStats are the statistics of one PHY.
type PhyStats struct {
	Name        string
	NodeId      NodeId
	Light       LightModule
	Transmitted uint64
	Discarded   uint64
	BusyRatio   float64
	radiomodel.ReceiverStats
}

// PhyStats returns the statistics of all PHYs ordered by node id, head before tail.
func (d *Dispatcher) PhyStats() []PhyStats {
	ids := make([]NodeId, 0, len(d.nodes))
	for id := range d.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var res []PhyStats
	for _, id := range ids {
		for _, p := range d.nodes[id].Phys() {
			res = append(res, PhyStats{
				Name:          p.Name(),
				NodeId:        id,
				Light:         p.Direction(),
				Transmitted:   p.NumTransmitted(),
				Discarded:     p.NumDiscarded(),
				BusyRatio:     p.Tracker().BusyRatio(d.curTime),
				ReceiverStats: p.Tracker().Stats(),
			})
		}
	}
	return res
}

// Totals sums the reception statistics over all PHYs.
func Totals(stats []PhyStats) radiomodel.ReceiverStats {
	var t radiomodel.ReceiverStats
	for _, s := range stats {
		t.Signals += s.Signals
		t.UnderSensitivity += s.UnderSensitivity
		t.Decoded += s.Decoded
		t.NotDecoded += s.NotDecoded
		t.Collisions += s.Collisions
		t.Ignored += s.Ignored
		t.BusyTime += s.BusyTime
	}
	return t
}
