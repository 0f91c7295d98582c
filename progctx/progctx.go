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

// Package progctx tracks the lifetime of the vlcns program: cancellation, shutdown hooks
// and the goroutines that must finish before exit.
package progctx

import (
	"context"
	"os"
	"os/signal"
	"sync"

	"github.com/pkg/errors"

	"github.com/otns/vlcns/logger"
)

// ProgCtx is a cancellable context that remembers why it was cancelled.
type ProgCtx struct {
	context.Context
	cancel context.CancelFunc

	lock     sync.Mutex
	wg       sync.WaitGroup
	routines map[string]int
	deferred []func()
	cause    error
}

func New(parent context.Context) *ProgCtx {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &ProgCtx{
		Context:  ctx,
		cancel:   cancel,
		routines: map[string]int{},
	}
}

// Cancel cancels the context and runs the deferred hooks in registration order.
// Only the first call has effect; reason may be an error, a value or nil.
func (ctx *ProgCtx) Cancel(reason interface{}) {
	ctx.lock.Lock()
	if ctx.Err() != nil {
		ctx.lock.Unlock()
		return
	}
	ctx.cancel()
	if err, ok := reason.(error); ok {
		ctx.cause = err
	}
	hooks := ctx.deferred
	ctx.deferred = nil
	ctx.lock.Unlock()

	if ctx.cause != nil {
		logger.TraceError("program exit: %v", ctx.cause)
	} else {
		logger.Infof("program exit: %v", reason)
	}
	for _, f := range hooks {
		f()
	}
}

// Cause returns the error passed to Cancel, if any.
func (ctx *ProgCtx) Cause() error {
	ctx.lock.Lock()
	defer ctx.lock.Unlock()
	return ctx.cause
}

// Defer registers f to run when the context is cancelled.
func (ctx *ProgCtx) Defer(f func()) {
	ctx.lock.Lock()
	defer ctx.lock.Unlock()
	if ctx.Err() != nil {
		panic(errors.Errorf("can not Defer after context is done"))
	}
	ctx.deferred = append(ctx.deferred, f)
}

func (ctx *ProgCtx) WaitAdd(name string, delta int) {
	ctx.lock.Lock()
	ctx.routines[name] += delta
	ctx.lock.Unlock()
	ctx.wg.Add(delta)
}

func (ctx *ProgCtx) WaitDone(name string) {
	ctx.lock.Lock()
	defer ctx.lock.Unlock()
	if ctx.routines[name] <= 0 {
		logger.Panicf("routine %s is not running, should not call WaitDone", name)
	}
	ctx.routines[name]--
	ctx.wg.Done()
}

// WaitCount returns the number of routines still running.
func (ctx *ProgCtx) WaitCount() int {
	ctx.lock.Lock()
	defer ctx.lock.Unlock()
	total := 0
	for _, c := range ctx.routines {
		total += c
	}
	return total
}

func (ctx *ProgCtx) Wait() {
	logger.Debugf("program context waiting for %d routines", ctx.WaitCount())
	ctx.wg.Wait()
}

// CancelOnSignals cancels the context when one of sigs is delivered.
func (ctx *ProgCtx) CancelOnSignals(sigs ...os.Signal) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, sigs...)

	ctx.WaitAdd("signals", 1)
	go func() {
		defer ctx.WaitDone("signals")
		defer signal.Stop(c)
		select {
		case sig := <-c:
			logger.Infof("signal received: %v", sig)
			ctx.Cancel(sig)
		case <-ctx.Done():
		}
	}()
}
