// File: engine/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error definitions for the engine package.

package engine

import "errors"

var (
	// ErrClosed indicates the engine has been closed.
	ErrClosed = errors.New("engine is closed")

	// ErrFreed indicates a registration was used after Free.
	ErrFreed = errors.New("registration is freed")

	// ErrNotSupported indicates descriptor registrations are not
	// available on this platform.
	ErrNotSupported = errors.New("descriptor events not supported on this platform")
)
