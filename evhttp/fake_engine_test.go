// File: evhttp/fake_engine_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// In-memory api.HTTPEngine for exercising the request state machine
// without sockets. Completion timing is driven by the test: inline
// from MakeRequest (the synchronous error path) or posted to the loop.

package evhttp_test

import (
	"bytes"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-http/api"
)

type fakeEngine struct {
	poster api.Poster

	mu    sync.Mutex
	conns []*fakeConn
}

func (e *fakeEngine) NewServer() (api.ServerHandle, error) {
	return nil, errors.New("fake engine has no server")
}

func (e *fakeEngine) NewConnection(host string, port int) (api.ConnHandle, error) {
	c := &fakeConn{eng: e}
	e.mu.Lock()
	e.conns = append(e.conns, c)
	e.mu.Unlock()
	return c, nil
}

func (e *fakeEngine) NewRequest(done func()) (api.RequestHandle, error) {
	return &fakeRequest{
		done:   done,
		inHdr:  http.Header{},
		outHdr: http.Header{},
	}, nil
}

type fakeConn struct {
	eng *fakeEngine

	completeSync  bool // invoke done inside MakeRequest
	completeAsync bool // post done to the loop

	mu     sync.Mutex
	issued []*fakeRequest
}

func (c *fakeConn) MakeRequest(rh api.RequestHandle, method, uri string) error {
	r := rh.(*fakeRequest)
	c.mu.Lock()
	c.issued = append(c.issued, r)
	c.mu.Unlock()
	if c.completeSync {
		r.status = 200
		r.done()
	}
	if c.completeAsync {
		r.status = 200
		c.eng.poster.Add(func() {
			if !r.cancelled.Load() {
				r.done()
			}
		})
	}
	return nil
}

func (c *fakeConn) issuedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.issued)
}

func (c *fakeConn) Clone() (api.ConnHandle, error) {
	return c.eng.NewConnection("clone", 80)
}

func (c *fakeConn) SetTimeout(time.Duration) {}

func (c *fakeConn) Close() error { return nil }

type fakeRequest struct {
	done func()

	status  int
	inHdr   http.Header
	inBody  []byte
	outHdr  http.Header
	outBody bytes.Buffer

	cancelled atomic.Bool
	freed     atomic.Bool
}

func (r *fakeRequest) StatusCode() int { return r.status }

func (r *fakeRequest) InputHeaders() http.Header { return r.inHdr }

func (r *fakeRequest) InputBody() []byte { return r.inBody }

func (r *fakeRequest) OutputHeaders() http.Header { return r.outHdr }

func (r *fakeRequest) OutputBuffer() *bytes.Buffer { return &r.outBody }

func (r *fakeRequest) Cancel() { r.cancelled.Store(true) }

func (r *fakeRequest) Free() { r.freed.Store(true) }
