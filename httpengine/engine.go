// File: httpengine/engine.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package httpengine

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/momentics/hioload-http/api"
)

// Engine implements api.HTTPEngine over net/http.
type Engine struct {
	poster   api.Poster
	resolver api.Resolver // may be nil: plain dialing
}

// New creates an engine that delivers completions through poster and
// resolves outbound hosts through resolver (nil for the system dialer).
func New(poster api.Poster, resolver api.Resolver) *Engine {
	return &Engine{poster: poster, resolver: resolver}
}

// NewServer creates an unbound listening handle.
func (e *Engine) NewServer() (api.ServerHandle, error) {
	return &server{eng: e, routes: make(map[string]func(api.ServerRequest))}, nil
}

// NewConnection creates a handle to host:port over its own socket.
func (e *Engine) NewConnection(host string, port int) (api.ConnHandle, error) {
	if host == "" || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("httpengine: bad peer %q:%d", host, port)
	}
	return newConn(e, host, port), nil
}

// NewRequest creates a request handle bound to done.
func (e *Engine) NewRequest(done func()) (api.RequestHandle, error) {
	return newRequest(done), nil
}

// dialContext resolves through the engine's resolver, then dials each
// returned address until one connects.
func (e *Engine) dialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	if e.resolver == nil {
		return d.DialContext(ctx, network, addr)
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	addrs, err := e.resolver.LookupHost(ctx, host)
	if err != nil {
		return nil, err
	}
	var lastErr error
	for _, a := range addrs {
		c, err := d.DialContext(ctx, network, net.JoinHostPort(a, port))
		if err == nil {
			return c, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("httpengine: no addresses for %q", host)
	}
	return nil, lastErr
}

// newTransport builds the one-socket transport behind a connection
// handle. Compression is handled by the engine itself so response
// bodies arrive decoded.
func (e *Engine) newTransport() *http.Transport {
	return &http.Transport{
		DialContext:         e.dialContext,
		MaxConnsPerHost:     1,
		MaxIdleConnsPerHost: 1,
		DisableCompression:  true,
	}
}
