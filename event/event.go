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

package event

import (
	"container/heap"
	"fmt"

	"github.com/otns/vlcns/airframe"
	"github.com/otns/vlcns/logger"
	. "github.com/otns/vlcns/types"
)

type EventType uint8

// Event types, in the order they are handled at equal timestamps: a frame ending at t must leave
// the receiver before a frame starting at t is considered.
const (
	EventTypeSignalEnd EventType = iota
	EventTypeSignalStart
	EventTypeAppTimer
)

func (t EventType) String() string {
	switch t {
	case EventTypeSignalEnd:
		return "signal-end"
	case EventTypeSignalStart:
		return "signal-start"
	case EventTypeAppTimer:
		return "app-timer"
	default:
		return fmt.Sprintf("event(%d)", uint8(t))
	}
}

// Event is a scheduled simulation event of a node. For signal events, Light selects the receiving
// PHY and Frame is that receiver's copy of the frame. NodeGen identifies the node instance the event
// was scheduled for, so events of a deleted node are not delivered to a new node with the same id.
type Event struct {
	Timestamp Timestamp
	Type      EventType
	NodeId    NodeId
	NodeGen   uint64
	Light     LightModule
	Frame     *airframe.Frame

	seq   uint64
	index int
}

func (e *Event) String() string {
	if e.Frame != nil {
		return fmt.Sprintf("%s@%d node%d.%s frame %d", e.Type, e.Timestamp, e.NodeId, e.Light, e.Frame.Id)
	}
	return fmt.Sprintf("%s@%d node%d", e.Type, e.Timestamp, e.NodeId)
}

type eventHeap []*Event

func (eh eventHeap) Len() int {
	return len(eh)
}

func (eh eventHeap) Less(i, j int) bool {
	a, b := eh[i], eh[j]
	if a.Timestamp != b.Timestamp {
		return a.Timestamp < b.Timestamp
	}
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	return a.seq < b.seq
}

func (eh eventHeap) Swap(i, j int) {
	a, b := eh[i], eh[j]
	if a.index != i && b.index != j {
		logger.Panicf("wrong index")
	}

	eh[i], eh[j] = b, a
	eh[i].index, eh[j].index = i, j
}

func (eh *eventHeap) Push(x interface{}) {
	e := x.(*Event)
	*eh = append(*eh, e)
	e.index = len(*eh) - 1
}

func (eh *eventHeap) Pop() (elem interface{}) {
	n := len(*eh)
	elem = (*eh)[n-1]
	(*eh)[n-1] = nil
	*eh = (*eh)[:n-1]
	return
}

// Queue holds pending events ordered by timestamp, then event type, then insertion order.
type Queue struct {
	q   eventHeap
	seq uint64
}

func NewQueue() *Queue {
	q := &Queue{q: eventHeap{}}
	heap.Init(&q.q)
	return q
}

func (q *Queue) Add(e *Event) {
	e.seq = q.seq
	q.seq++
	heap.Push(&q.q, e)
}

func (q *Queue) Len() int {
	return len(q.q)
}

func (q *Queue) NextTimestamp() Timestamp {
	if len(q.q) == 0 {
		return Ever
	}
	return q.q[0].Timestamp
}

// NextEvent returns the next event without removing it, or nil if the queue is empty.
func (q *Queue) NextEvent() *Event {
	if len(q.q) == 0 {
		return nil
	}
	return q.q[0]
}

func (q *Queue) PopNext() *Event {
	logger.AssertTrue(len(q.q) > 0)
	return heap.Pop(&q.q).(*Event)
}
