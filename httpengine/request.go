// File: httpengine/request.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Native request handle. Worker goroutines fill the response fields
// and then post complete() to the loop; the post and the loop's
// single-goroutine execution order the writes before any reader.

package httpengine

import (
	"bytes"
	"context"
	"net/http"
)

type request struct {
	done func()

	ctx    context.Context
	cancel context.CancelFunc

	status  int
	inHdr   http.Header
	inBody  []byte
	outHdr  http.Header
	outBody bytes.Buffer
}

func newRequest(done func()) *request {
	ctx, cancel := context.WithCancel(context.Background())
	return &request{
		done:   done,
		ctx:    ctx,
		cancel: cancel,
		inHdr:  http.Header{},
		outHdr: http.Header{},
	}
}

func (r *request) StatusCode() int { return r.status }

func (r *request) InputHeaders() http.Header { return r.inHdr }

func (r *request) InputBody() []byte { return r.inBody }

func (r *request) OutputHeaders() http.Header { return r.outHdr }

func (r *request) OutputBuffer() *bytes.Buffer { return &r.outBody }

// Cancel aborts the in-flight round trip. Runs on the loop goroutine,
// so it is ordered against complete(): whichever runs first wins, and
// done is never invoked after Cancel returns.
func (r *request) Cancel() {
	r.cancel()
}

// Free releases the handle's context. The round-trip worker may still
// be writing response fields when a cancellation frees the handle, so
// Free must not touch them; the buffers go with the handle once every
// reference is dropped.
func (r *request) Free() {
	r.cancel()
}

// complete delivers the completion on the loop goroutine, unless the
// exchange was cancelled while the completion was queued.
func (r *request) complete() {
	if r.ctx.Err() != nil {
		return
	}
	r.done()
}

// fail marks a failed exchange: status 0, no response data.
func (r *request) fail() {
	r.status = 0
	r.inBody = nil
}
