// File: evhttp/request.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// One outbound exchange. The lifecycle is a strict state machine:
// created -> started -> exactly one of done or cancelled. The terminal
// transition is a single atomic compare-and-swap, so the completion
// path and the cancellation path are mutually exclusive even when the
// engine completes synchronously from inside the issue call: start
// holds no lock across the issue, and whichever path loses the swap
// observes terminal state and backs off.

package evhttp

import (
	"bytes"
	"log"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/momentics/hioload-http/api"
	"github.com/momentics/hioload-http/obs"
	"github.com/momentics/hioload-http/reactor"
)

// Callback receives the request on the loop goroutine when the
// exchange concludes. Once it returns, the request object is invalid.
// It never fires for a cancelled request. Cancel must not be called
// from inside the callback.
type Callback func(*Request)

const (
	stateCreated int32 = iota
	stateStarted
	stateDone
	stateCancelled
)

// Request is one asynchronous HTTP exchange. Create it with NewRequest,
// stage output headers/body, then hand it to Connection.MakeRequest.
// After that, only Cancel may be used until the callback fires.
type Request struct {
	id       string
	callback Callback

	state atomic.Int32

	// staged output, copied into the native handle at start time
	outHdr  http.Header
	outBody bytes.Buffer

	mu       sync.Mutex // guards the in-flight references below
	handle   api.RequestHandle
	conn     *Connection    // keeps the connection alive while in flight
	self     *Request       // in-flight token, dropped exactly once
	cancelEv *reactor.Event // runs the native abort on the loop goroutine

	finished chan struct{} // closed once completion has fully finished
}

// NewRequest creates a request in the created state with cb bound.
func NewRequest(cb Callback) *Request {
	return &Request{
		id:       uuid.NewString(),
		callback: cb,
		outHdr:   http.Header{},
		finished: make(chan struct{}),
	}
}

// ID is the request's correlation id, stable for its lifetime.
func (r *Request) ID() string { return r.id }

// OutputHeaders stages headers for the exchange. Mutate before
// MakeRequest only.
func (r *Request) OutputHeaders() http.Header { return r.outHdr }

// OutputBuffer stages the request body. Write before MakeRequest only.
func (r *Request) OutputBuffer() *bytes.Buffer { return &r.outBody }

// StatusCode reports the response status: 0 until a response arrived,
// and 0 for exchanges that failed below the protocol level.
func (r *Request) StatusCode() int {
	if h := r.inflight(); h != nil {
		return h.StatusCode()
	}
	return 0
}

// InputHeaders returns the response headers, nil before completion.
func (r *Request) InputHeaders() http.Header {
	if h := r.inflight(); h != nil {
		return h.InputHeaders()
	}
	return nil
}

// InputBody returns the response body, nil before completion.
func (r *Request) InputBody() []byte {
	if h := r.inflight(); h != nil {
		return h.InputBody()
	}
	return nil
}

func (r *Request) inflight() api.RequestHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handle
}

// start is called by Connection.MakeRequest. It records the in-flight
// references (connection, self token, cancel event), transitions to
// started, and issues the native request. All bookkeeping happens
// before the issue call so a synchronous completion re-entering from
// inside it finds the object fully started.
func (r *Request) start(conn *Connection, method, uri string) {
	handle, err := conn.eng.NewRequest(r.onDone)
	var cancelEv *reactor.Event
	if err == nil {
		cancelEv, err = conn.base.NewEvent(api.NoFD, 0, r.onCancelEvent)
		if err != nil {
			handle.Free()
			handle = nil
		}
	}
	if err != nil {
		// Could not build the native objects: surface it as a failed
		// exchange through the normal completion callback.
		log.Printf("evhttp: request %s: start: %v", r.id, err)
		if r.state.CompareAndSwap(stateCreated, stateDone) {
			r.callback(r)
			obs.RequestsFinished.WithLabelValues("completed").Inc()
			close(r.finished)
		}
		return
	}

	for k, vs := range r.outHdr {
		for _, v := range vs {
			handle.OutputHeaders().Add(k, v)
		}
	}
	handle.OutputBuffer().Write(r.outBody.Bytes())

	r.mu.Lock()
	r.handle = handle
	r.conn = conn
	r.self = r
	r.cancelEv = cancelEv
	r.mu.Unlock()

	if !r.state.CompareAndSwap(stateCreated, stateStarted) {
		// Cancelled before start: never issue, the callback never fires.
		r.mu.Lock()
		r.handle, r.conn, r.self, r.cancelEv = nil, nil, nil, nil
		r.mu.Unlock()
		cancelEv.Free()
		handle.Free()
		return
	}

	obs.RequestsStarted.Inc()
	if err := conn.handle.MakeRequest(handle, method, uri); err != nil {
		// The engine already delivered the completion synchronously.
		log.Printf("evhttp: request %s: issue: %v", r.id, err)
	}
}

// onDone is the engine's completion callback. Runs on the loop
// goroutine, or synchronously from inside MakeRequest on immediate
// failures.
func (r *Request) onDone() {
	if !r.state.CompareAndSwap(stateStarted, stateDone) {
		return // cancellation reached the terminal transition first
	}
	r.callback(r)
	obs.RequestsFinished.WithLabelValues("completed").Inc()
	r.release()
	close(r.finished)
}

// onCancelEvent aborts the native request on the loop goroutine after
// Cancel won the terminal transition.
func (r *Request) onCancelEvent(int, api.EventFlags) {
	r.mu.Lock()
	handle := r.handle
	r.mu.Unlock()
	if handle != nil {
		handle.Cancel()
	}
	r.release()
}

// release drops the in-flight references exactly once: the self token,
// the connection, the cancel event, and the native handle.
func (r *Request) release() {
	r.mu.Lock()
	handle := r.handle
	cancelEv := r.cancelEv
	r.handle = nil
	r.conn = nil
	r.self = nil
	r.cancelEv = nil
	r.mu.Unlock()
	if cancelEv != nil {
		cancelEv.Free()
	}
	if handle != nil {
		handle.Free()
	}
}

// Cancel terminates the exchange from any goroutine. Before start: the
// callback will never fire. In flight: the native request is aborted
// on the loop goroutine and the callback will never fire. If the
// completion has already begun concurrently, Cancel blocks until it
// has fully finished. The object is invalid once Cancel returns.
func (r *Request) Cancel() {
	for {
		switch r.state.Load() {
		case stateCreated:
			if r.state.CompareAndSwap(stateCreated, stateCancelled) {
				obs.RequestsFinished.WithLabelValues("cancelled").Inc()
				return
			}
		case stateStarted:
			if r.state.CompareAndSwap(stateStarted, stateCancelled) {
				obs.RequestsFinished.WithLabelValues("cancelled").Inc()
				r.mu.Lock()
				ev := r.cancelEv
				r.mu.Unlock()
				if ev != nil {
					ev.Activate(0)
				}
				return
			}
		case stateDone:
			<-r.finished
			return
		case stateCancelled:
			return
		}
	}
}
