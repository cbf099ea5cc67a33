// File: reactor/pump.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// EventPump drives a Base's loop on a dedicated goroutine until Stop.

package reactor

import (
	"log"
	"sync/atomic"
)

// EventPump runs DispatchOnce in a background goroutine while its
// running flag is set. Its lifetime fully encloses the goroutine: Stop
// joins before returning, so the Base is never torn down while the
// pump could still be inside a loop iteration.
type EventPump struct {
	base    *Base
	running atomic.Bool
	done    chan struct{}
}

// NewEventPump starts pumping base immediately.
func NewEventPump(base *Base) *EventPump {
	p := &EventPump{base: base, done: make(chan struct{})}
	p.running.Store(true)
	go p.pump()
	return p
}

func (p *EventPump) pump() {
	defer close(p.done)
	for p.running.Load() {
		if err := p.base.DispatchOnce(); err != nil {
			log.Printf("event pump: dispatch: %v", err)
			return
		}
	}
}

// Stop clears the running flag, wakes the loop with a no-op closure so
// it observes the flag promptly, and joins the pump goroutine.
// Idempotent; concurrent callers all block until the goroutine exits.
func (p *EventPump) Stop() {
	if p.running.CompareAndSwap(true, false) {
		p.base.Add(func() {})
	}
	<-p.done
}
