// File: api/http.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Opaque HTTP engine surface: listening sockets with per-path request
// delivery, outbound connections by host/port, and request handles
// with completion callbacks. All callbacks fire on the loop goroutine.

package api

import (
	"bytes"
	"net/http"
	"time"
)

// HTTPEngine creates the native HTTP objects the evhttp layer wraps.
type HTTPEngine interface {
	// NewServer creates an unbound listening handle.
	NewServer() (ServerHandle, error)

	// NewConnection creates a connection handle to host:port over its
	// own socket.
	NewConnection(host string, port int) (ConnHandle, error)

	// NewRequest creates a request handle. done is invoked on the loop
	// goroutine when the exchange concludes (success, protocol error,
	// or timeout), or synchronously from within ConnHandle.MakeRequest
	// on immediate issue failures.
	NewRequest(done func()) (RequestHandle, error)
}

// ServerHandle is a native listening socket with exact-path dispatch.
// Requests for paths with no registered handler receive 404 from the
// engine itself.
type ServerHandle interface {
	// Bind binds and starts accepting on address:port. Port 0 picks an
	// ephemeral port, reported by Port afterwards.
	Bind(address string, port int) error

	// Port reports the bound port, 0 before a successful Bind.
	Port() int

	// AddHandler registers h for exact path matches. Registering a
	// path twice fails; the first registration stays in effect.
	AddHandler(path string, h func(ServerRequest)) error

	// Close stops accepting and releases the listener.
	Close() error
}

// ServerRequest is one inbound exchange, delivered to its handler on
// the loop goroutine. The handler owns the response: exactly one of
// Reply or ReplyError must eventually be called, from the loop
// goroutine, though not necessarily before the handler returns.
type ServerRequest interface {
	Method() string
	Path() string
	Headers() http.Header
	Body() []byte

	// Reply sends status with the given headers (may be nil) and body.
	Reply(status int, headers http.Header, body []byte)

	// ReplyError sends an error status with a plain-text reason.
	ReplyError(status int, reason string)
}

// ConnHandle is a native outbound connection to one peer over one
// socket.
type ConnHandle interface {
	// MakeRequest issues req asynchronously. On immediate failure it
	// invokes the request's done callback synchronously, before
	// returning the error.
	MakeRequest(req RequestHandle, method, uri string) error

	// Clone creates a new handle to the same peer over an independent
	// socket.
	Clone() (ConnHandle, error)

	// SetTimeout bounds each subsequently issued request.
	SetTimeout(d time.Duration)

	// Close releases the handle and its socket.
	Close() error
}

// RequestHandle is one native request/response exchange. Accessors are
// valid from creation until Free.
type RequestHandle interface {
	// StatusCode reports the response status, 0 if the exchange failed
	// before any response arrived.
	StatusCode() int

	InputHeaders() http.Header
	InputBody() []byte
	OutputHeaders() http.Header
	OutputBuffer() *bytes.Buffer

	// Cancel aborts the in-flight exchange. The done callback is not
	// invoked after Cancel returns. Loop goroutine only.
	Cancel()

	// Free releases the handle.
	Free()
}
