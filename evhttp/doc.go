// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package evhttp builds asynchronous HTTP client and server objects on
// top of a reactor.Base: Server dispatches inbound requests to
// path-registered handlers on the loop goroutine, Connection is a
// clonable channel to one peer, and Request is a single exchange with
// a race-free cancellation protocol. All completion callbacks run on
// the loop goroutine; Cancel is safe from any goroutine.
package evhttp
