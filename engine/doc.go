// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package engine is the default api.Engine: a single-goroutine event
// loop multiplexing manually activated events, one-shot timers, and
// (on Linux) descriptor readiness through epoll with an eventfd wake.
// On other platforms descriptor registrations are refused and the loop
// blocks on a channel instead of the kernel poller.
package engine
