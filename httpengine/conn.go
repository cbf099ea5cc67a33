// File: httpengine/conn.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Outbound connection handle: one transport, one underlying socket.

package httpengine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/momentics/hioload-http/api"
)

type conn struct {
	eng  *Engine
	host string
	port int

	tr     *http.Transport
	client *http.Client

	mu      sync.Mutex
	timeout time.Duration
}

func newConn(e *Engine, host string, port int) *conn {
	tr := e.newTransport()
	return &conn{
		eng:    e,
		host:   host,
		port:   port,
		tr:     tr,
		client: &http.Client{Transport: tr},
	}
}

// MakeRequest issues req asynchronously. Validation failures complete
// the request synchronously, from inside this call, before the error
// is returned.
func (c *conn) MakeRequest(rh api.RequestHandle, method, uri string) error {
	r, ok := rh.(*request)
	if !ok {
		return fmt.Errorf("httpengine: foreign request handle %T", rh)
	}

	target := "http://" + net.JoinHostPort(c.host, strconv.Itoa(c.port)) + uri
	var body io.Reader
	if r.outBody.Len() > 0 {
		body = bytes.NewReader(r.outBody.Bytes())
	}
	httpReq, err := http.NewRequest(method, target, body)
	if err != nil {
		r.fail()
		r.complete() // synchronous completion, the caller may re-enter
		return err
	}
	for k, vs := range r.outHdr {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept-Encoding", "gzip")

	c.mu.Lock()
	timeout := c.timeout
	c.mu.Unlock()

	go c.roundTrip(r, httpReq, timeout)
	return nil
}

func (c *conn) roundTrip(r *request, httpReq *http.Request, timeout time.Duration) {
	ctx := r.ctx
	cancel := func() {}
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(r.ctx, timeout)
	}
	defer cancel()

	resp, err := c.client.Do(httpReq.WithContext(ctx))
	if err != nil {
		if r.ctx.Err() != nil {
			return // cancelled, nothing to deliver
		}
		r.fail()
		c.eng.poster.Add(r.complete)
		return
	}
	payload, err := readBody(resp)
	_ = resp.Body.Close()
	if err != nil {
		log.Printf("httpengine: read response for %s: %v", httpReq.URL.Path, err)
		r.fail()
		c.eng.poster.Add(r.complete)
		return
	}
	r.status = resp.StatusCode
	r.inHdr = resp.Header
	r.inBody = payload
	c.eng.poster.Add(r.complete)
}

// readBody drains the response, transparently decoding gzip bodies.
func readBody(resp *http.Response) ([]byte, error) {
	reader := io.Reader(resp.Body)
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		resp.Header.Del("Content-Encoding")
		reader = gz
	}
	return io.ReadAll(reader)
}

// Clone creates a new handle to the same peer over an independent
// socket, carrying the current timeout over.
func (c *conn) Clone() (api.ConnHandle, error) {
	nc := newConn(c.eng, c.host, c.port)
	c.mu.Lock()
	nc.timeout = c.timeout
	c.mu.Unlock()
	return nc, nil
}

// SetTimeout bounds each subsequently issued request.
func (c *conn) SetTimeout(d time.Duration) {
	c.mu.Lock()
	c.timeout = d
	c.mu.Unlock()
}

// Close drops the idle socket. In-flight exchanges finish on their own.
func (c *conn) Close() error {
	c.tr.CloseIdleConnections()
	return nil
}
