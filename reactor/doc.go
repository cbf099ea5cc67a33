// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package reactor is the concurrency and lifecycle layer over an
// api.Engine: Base lets any goroutine schedule closures and timers
// onto the single loop goroutine, Event wraps one descriptor/timer
// registration, and EventPump drives the loop on a dedicated
// background goroutine.
package reactor
