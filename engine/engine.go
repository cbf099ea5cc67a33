// File: engine/engine.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Core loop: drains manually activated events and expired timers in
// FIFO/deadline order, then blocks in the platform poller until the
// next deadline, a wake, or descriptor readiness.

package engine

import (
	"container/heap"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-http/api"
)

// poller is the platform blocking primitive behind the loop.
type poller interface {
	register(fd int, interest api.EventFlags) error
	unregister(fd int) error
	// wait blocks up to d (d < 0 blocks indefinitely, d == 0 polls)
	// and reports each ready descriptor through ready.
	wait(d time.Duration, ready func(fd int, flags api.EventFlags)) error
	wake() error
	close() error
}

// pending is one callback collected for execution on the loop goroutine.
type pending struct {
	reg   *registration
	flags api.EventFlags
}

// Engine implements api.Engine.
type Engine struct {
	cfg Config
	p   poller

	mu     sync.Mutex
	active *queue.Queue // FIFO of pending
	timers timerHeap
	fds    map[int]*registration

	brk    atomic.Bool
	closed atomic.Bool
}

// New creates an engine with the default configuration.
func New() (*Engine, error) {
	return NewConfig(DefaultConfig())
}

// NewConfig creates an engine with an explicit configuration.
func NewConfig(cfg Config) (*Engine, error) {
	cfg = cfg.withDefaults()
	p, err := newPoller(cfg)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:    cfg,
		p:      p,
		active: queue.New(),
		fds:    make(map[int]*registration),
	}, nil
}

// NewEvent creates an inert registration. fd may be api.NoFD for pure
// timer or manually activated events.
func (e *Engine) NewEvent(fd int, flags api.EventFlags, cb api.Callback) (api.Registration, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	return &registration{eng: e, fd: fd, interest: flags, cb: cb, heapIdx: -1}, nil
}

// Dispatch runs the loop until Break.
func (e *Engine) Dispatch() error {
	return e.run(false)
}

// DispatchOnce blocks until at least one callback runs, then returns.
func (e *Engine) DispatchOnce() error {
	return e.run(true)
}

// Break stops the loop at its next iteration boundary. A Break with no
// loop running stops the next loop entry.
func (e *Engine) Break() {
	e.brk.Store(true)
	_ = e.p.wake()
}

// Close releases the poller. The loop must not be running.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	return e.p.close()
}

func (e *Engine) run(once bool) error {
	for {
		if e.closed.Load() {
			return ErrClosed
		}
		if e.brk.CompareAndSwap(true, false) {
			return nil
		}
		if n := e.runReady(); n > 0 {
			if once {
				return nil
			}
			continue
		}
		if err := e.p.wait(e.nextWait(), e.fdReady); err != nil {
			return err
		}
	}
}

// runReady drains activated events and expired timers under the lock,
// then executes the batch unlocked. Returns the number of callbacks run.
func (e *Engine) runReady() int {
	now := time.Now()
	e.mu.Lock()
	var batch []pending
	for e.active.Length() > 0 {
		batch = append(batch, e.active.Remove().(pending))
	}
	for e.timers.Len() > 0 && !e.timers[0].deadline.After(now) {
		r := heap.Pop(&e.timers).(*registration)
		batch = append(batch, pending{reg: r, flags: api.FlagTimeout})
	}
	e.mu.Unlock()

	n := 0
	for _, p := range batch {
		if p.reg.isFreed() {
			continue
		}
		p.reg.cb(p.reg.fd, p.flags)
		n++
	}
	return n
}

// fdReady is handed to the poller; it queues readiness for execution
// by runReady so ordering stays uniform across event sources.
func (e *Engine) fdReady(fd int, flags api.EventFlags) {
	e.mu.Lock()
	if r, ok := e.fds[fd]; ok && !r.freed {
		e.active.Add(pending{reg: r, flags: flags})
	}
	e.mu.Unlock()
}

func (e *Engine) nextWait() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active.Length() > 0 {
		return 0
	}
	if e.timers.Len() == 0 {
		return -1
	}
	d := time.Until(e.timers[0].deadline)
	if d < 0 {
		d = 0
	}
	return d
}

// registration implements api.Registration.
type registration struct {
	eng      *Engine
	fd       int
	interest api.EventFlags
	cb       api.Callback

	// guarded by eng.mu
	deadline   time.Time
	heapIdx    int
	registered bool
	freed      bool
}

// Add arms the registration: descriptor interest with the poller, and
// a one-shot timeout when timeout > 0. Re-arming replaces the timeout.
func (r *registration) Add(timeout time.Duration) error {
	e := r.eng
	if e.closed.Load() {
		return ErrClosed
	}
	e.mu.Lock()
	if r.freed {
		e.mu.Unlock()
		return ErrFreed
	}
	if r.fd != api.NoFD && !r.registered {
		if err := e.p.register(r.fd, r.interest); err != nil {
			e.mu.Unlock()
			return err
		}
		r.registered = true
		e.fds[r.fd] = r
	}
	if timeout > 0 {
		r.deadline = time.Now().Add(timeout)
		if r.heapIdx >= 0 {
			heap.Fix(&e.timers, r.heapIdx)
		} else {
			heap.Push(&e.timers, r)
		}
	}
	e.mu.Unlock()
	_ = e.p.wake()
	return nil
}

// Activate queues the callback with the given flags and wakes the loop.
func (r *registration) Activate(flags api.EventFlags) {
	e := r.eng
	if e.closed.Load() {
		return
	}
	e.mu.Lock()
	if r.freed {
		e.mu.Unlock()
		return
	}
	e.active.Add(pending{reg: r, flags: flags})
	e.mu.Unlock()
	_ = e.p.wake()
}

// Free disarms the registration. Pending deliveries are dropped.
func (r *registration) Free() {
	e := r.eng
	e.mu.Lock()
	if r.freed {
		e.mu.Unlock()
		return
	}
	r.freed = true
	if r.heapIdx >= 0 {
		heap.Remove(&e.timers, r.heapIdx)
	}
	if r.registered {
		delete(e.fds, r.fd)
		_ = e.p.unregister(r.fd)
		r.registered = false
	}
	e.mu.Unlock()
}

func (r *registration) isFreed() bool {
	r.eng.mu.Lock()
	defer r.eng.mu.Unlock()
	return r.freed
}
