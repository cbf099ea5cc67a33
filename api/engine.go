// File: api/engine.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Event-loop engine interface: loop control plus descriptor/timer
// registration. Exactly one goroutine drives Dispatch/DispatchOnce at
// a time; all callbacks fire on that goroutine.

package api

import "time"

// EventFlags describes why a registration's callback fired, or which
// kinds of readiness a registration is interested in.
type EventFlags uint32

const (
	// FlagRead indicates descriptor read readiness.
	FlagRead EventFlags = 1 << iota
	// FlagWrite indicates descriptor write readiness.
	FlagWrite
	// FlagTimeout indicates the registration's timeout elapsed before
	// any readiness was observed.
	FlagTimeout
	// FlagClosed indicates the peer hung up or the descriptor errored.
	FlagClosed
)

// NoFD is the descriptor value for registrations that are not bound to
// any descriptor (pure timers and manually activated events).
const NoFD = -1

// Callback is invoked on the loop goroutine with the ready descriptor
// (NoFD for timer/manual events) and the observed flags.
type Callback func(fd int, flags EventFlags)

// Registration is one armed descriptor/timer registration against an
// Engine. It is inert until Add is called.
type Registration interface {
	// Add arms the registration. A positive timeout schedules the
	// callback to fire with FlagTimeout after the duration elapses
	// even absent readiness; zero or negative means no timeout.
	Add(timeout time.Duration) error

	// Activate queues the callback to run on the loop goroutine with
	// the given flags, waking the loop if it is blocked. Safe to call
	// from any goroutine.
	Activate(flags EventFlags)

	// Free disarms and releases the registration. The callback will
	// not fire after Free returns on the loop goroutine.
	Free()
}

// Engine is the native event-processing context the reactor core
// drives. Dispatch and DispatchOnce must only be entered by one
// goroutine at a time; Break and NewEvent are safe from any goroutine.
type Engine interface {
	// Dispatch runs the loop until Break is called.
	Dispatch() error

	// DispatchOnce blocks until at least one event is ready, runs the
	// ready batch, and returns. Returns immediately if Break was
	// requested.
	DispatchOnce() error

	// Break stops a running Dispatch/DispatchOnce as soon as the loop
	// observes it, waking the loop if necessary.
	Break()

	// NewEvent creates an inert registration of fd (or NoFD) with the
	// given interest flags and callback.
	NewEvent(fd int, flags EventFlags, cb Callback) (Registration, error)

	// Close releases the engine. The loop must not be running.
	Close() error
}

// Poster schedules a closure onto the loop goroutine from any
// goroutine. The reactor Base satisfies it; engine implementations use
// it to deliver completions without depending on the reactor package.
type Poster interface {
	Add(fn func())
}
