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

package progctx

import (
	"context"
	"syscall"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	var ctx context.Context = New(context.Background())
	assert.Nil(t, ctx.Err())
	ctx = New(nil) // nolint
	assert.Nil(t, ctx.Err())
}

func TestCancelRunsHooksOnce(t *testing.T) {
	ctx := New(context.Background())
	var order []int
	ctx.Defer(func() { order = append(order, 1) })
	ctx.Defer(func() { order = append(order, 2) })

	err := errors.Errorf("test error")
	ctx.Cancel(err)
	ctx.Cancel(errors.Errorf("second"))

	<-ctx.Done()
	assert.Equal(t, context.Canceled, ctx.Err())
	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, err, ctx.Cause())
	assert.Panics(t, func() { ctx.Defer(func() {}) })
}

func TestCancelNilReason(t *testing.T) {
	ctx := New(context.Background())
	ctx.Cancel(nil)
	<-ctx.Done()
	assert.Nil(t, ctx.Cause())
}

func TestWait(t *testing.T) {
	ctx := New(context.Background())
	ctx.WaitAdd("one", 1)
	ctx.WaitAdd("three", 3)
	assert.Equal(t, 4, ctx.WaitCount())

	go ctx.WaitDone("one")
	for i := 0; i < 3; i++ {
		go func() { defer ctx.WaitDone("three") }()
	}
	ctx.Wait()
	assert.Equal(t, 0, ctx.WaitCount())
	assert.Panics(t, func() { ctx.WaitDone("one") })
}

func TestCancelOnSignalsStopsWithContext(t *testing.T) {
	ctx := New(context.Background())
	ctx.CancelOnSignals(syscall.SIGUSR1)
	assert.Equal(t, 1, ctx.WaitCount())
	ctx.Cancel(nil)
	ctx.Wait()
	assert.Equal(t, 0, ctx.WaitCount())
}
