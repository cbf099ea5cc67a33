// File: reactor/event.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

import (
	"time"

	"github.com/momentics/hioload-http/api"
)

// EventCallback receives the ready descriptor (api.NoFD for timer and
// manual events) and the observed flags, on the loop goroutine.
type EventCallback func(fd int, flags api.EventFlags)

// Event is one descriptor/timer registration against a Base. It is
// inert until Add arms it, and must not outlive its Base.
type Event struct {
	base *Base
	cb   EventCallback
	reg  api.Registration
}

// NewEvent binds cb to fd with the given interest flags. Failure is
// reported to the caller; no Event is returned.
func (b *Base) NewEvent(fd int, flags api.EventFlags, cb EventCallback) (*Event, error) {
	ev := &Event{base: b, cb: cb}
	reg, err := b.eng.NewEvent(fd, flags, ev.dispatch)
	if err != nil {
		return nil, err
	}
	ev.reg = reg
	return ev, nil
}

// dispatch is the trampoline the engine invokes on the loop goroutine.
func (ev *Event) dispatch(fd int, flags api.EventFlags) {
	ev.cb(fd, flags)
}

// Add arms the registration. A positive timeout makes the callback
// fire with api.FlagTimeout once it elapses, even absent readiness.
func (ev *Event) Add(timeout time.Duration) error {
	return ev.reg.Add(timeout)
}

// Activate queues the callback manually from any goroutine.
func (ev *Event) Activate(flags api.EventFlags) {
	ev.reg.Activate(flags)
}

// Free releases the registration.
func (ev *Event) Free() {
	ev.reg.Free()
}
