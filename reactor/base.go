// File: reactor/base.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Base owns the loop engine and makes it drivable from any goroutine:
// a locked FIFO of pending closures plus a dedicated wake registration
// the loop goroutine drains. Engine calls happen only on the loop
// goroutine; every other entry point just enqueues and wakes.

package reactor

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-http/api"
	"github.com/momentics/hioload-http/engine"
	"github.com/momentics/hioload-http/obs"
)

// Base is the single event-processing context. It is the one object
// shared across goroutines; Add, Delay and the factory methods are
// safe from any goroutine, Dispatch/DispatchOnce serialize on an
// internal mutex so at most one goroutine runs the loop at a time.
type Base struct {
	eng    api.Engine
	ownEng bool

	dispatchMu sync.Mutex

	resolverMu sync.Mutex
	resolver   api.Resolver

	closuresMu sync.Mutex
	closures   *queue.Queue // FIFO of func()
	wake       api.Registration

	closed atomic.Bool
}

// New creates a Base over the default engine. Engine construction
// failing is fatal for the Base: no object is returned.
func New() (*Base, error) {
	e, err := engine.New()
	if err != nil {
		return nil, err
	}
	b, err := NewWithEngine(e)
	if err != nil {
		_ = e.Close()
		return nil, err
	}
	b.ownEng = true
	return b, nil
}

// NewWithEngine creates a Base over a caller-supplied engine. The
// caller keeps ownership of the engine's lifetime.
func NewWithEngine(e api.Engine) (*Base, error) {
	b := &Base{eng: e, closures: queue.New()}
	wake, err := e.NewEvent(api.NoFD, 0, b.runClosures)
	if err != nil {
		return nil, err
	}
	b.wake = wake
	return b, nil
}

// Add arranges to run fn on the loop goroutine. Safe from any
// goroutine; never runs fn inline, even when the caller is the loop
// goroutine itself. Closures run in FIFO order relative to other
// closures enqueued under the same lock hold.
func (b *Base) Add(fn func()) {
	b.closuresMu.Lock()
	b.closures.Add(fn)
	b.closuresMu.Unlock()
	b.wake.Activate(0)
	obs.ClosuresSubmitted.Inc()
}

// runClosures services the wake registration on the loop goroutine.
func (b *Base) runClosures(int, api.EventFlags) {
	b.closuresMu.Lock()
	var batch []func()
	for b.closures.Length() > 0 {
		batch = append(batch, b.closures.Remove().(func()))
	}
	b.closuresMu.Unlock()
	for _, fn := range batch {
		fn()
		obs.ClosuresExecuted.Inc()
	}
}

// Delay schedules fn to run on the loop goroutine once d has elapsed.
// ctx is the task's cancellation contract: if ctx is cancelled before
// the timer fires, fn never runs.
func (b *Base) Delay(ctx context.Context, d time.Duration, fn func()) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if d <= 0 {
		d = time.Nanosecond
	}
	var reg api.Registration
	reg, err := b.eng.NewEvent(api.NoFD, 0, func(int, api.EventFlags) {
		defer reg.Free()
		if ctx.Err() != nil {
			return
		}
		obs.TimersFired.Inc()
		fn()
	})
	if err != nil {
		return err
	}
	return reg.Add(d)
}

// Dispatch runs the loop until Break (or pump teardown) stops it.
// Blocks the calling goroutine for the loop's lifetime.
func (b *Base) Dispatch() error {
	b.dispatchMu.Lock()
	defer b.dispatchMu.Unlock()
	return b.eng.Dispatch()
}

// DispatchOnce runs one loop iteration: it blocks until at least one
// closure/event is ready, runs the ready batch, and returns.
func (b *Base) DispatchOnce() error {
	b.dispatchMu.Lock()
	defer b.dispatchMu.Unlock()
	return b.eng.DispatchOnce()
}

// Break stops a running Dispatch once the loop observes it.
func (b *Base) Break() {
	b.eng.Break()
}

// Resolver returns the resolver engine, creating it on first use.
// Safe for a concurrent first-use race: exactly one resolver is ever
// created.
func (b *Base) Resolver() api.Resolver {
	b.resolverMu.Lock()
	defer b.resolverMu.Unlock()
	if b.resolver == nil {
		b.resolver = &net.Resolver{}
	}
	return b.resolver
}

// Engine exposes the underlying engine to sibling packages building
// registrations directly.
func (b *Base) Engine() api.Engine {
	return b.eng
}

// Close releases the wake registration and, when the Base owns its
// engine, the engine itself. The loop must not be running: stop any
// pump and break any manual Dispatch first. Objects created from this
// Base are invalid afterwards.
func (b *Base) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	b.wake.Free()
	if b.ownEng {
		return b.eng.Close()
	}
	return nil
}
