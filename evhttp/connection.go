// File: evhttp/connection.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package evhttp

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/momentics/hioload-http/api"
	"github.com/momentics/hioload-http/httpengine"
	"github.com/momentics/hioload-http/reactor"
)

// Connection is a channel to one HTTP peer over one underlying socket,
// bound to a Base. A long-running exchange occupies the socket; use
// Clone when independent requests must not wait behind it.
type Connection struct {
	base   *reactor.Base
	eng    api.HTTPEngine
	handle api.ConnHandle
	host   string
	port   int
}

// NewConnection connects the default engine to host:port. A failing
// native handle is fatal: no Connection is returned.
func NewConnection(base *reactor.Base, host string, port int) (*Connection, error) {
	return NewConnectionEngine(base, httpengine.New(base, base.Resolver()), host, port)
}

// NewConnectionURL derives the peer from a parsed URL. Only plain HTTP
// targets are accepted.
func NewConnectionURL(base *reactor.Base, u *url.URL) (*Connection, error) {
	if u == nil || u.Hostname() == "" {
		return nil, fmt.Errorf("evhttp: no host in %v", u)
	}
	if u.Scheme != "" && u.Scheme != "http" {
		return nil, fmt.Errorf("evhttp: unsupported scheme %q", u.Scheme)
	}
	port := 80
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("evhttp: bad port %q: %w", p, err)
		}
		port = n
	}
	return NewConnection(base, u.Hostname(), port)
}

// NewConnectionEngine connects a caller-supplied engine to host:port.
func NewConnectionEngine(base *reactor.Base, eng api.HTTPEngine, host string, port int) (*Connection, error) {
	handle, err := eng.NewConnection(host, port)
	if err != nil {
		return nil, err
	}
	return &Connection{base: base, eng: eng, handle: handle, host: host, port: port}, nil
}

// Clone returns a new connection to the same peer over an independent
// socket, so exchanges on it never wait behind this connection's.
func (c *Connection) Clone() (*Connection, error) {
	handle, err := c.handle.Clone()
	if err != nil {
		return nil, err
	}
	return &Connection{base: c.base, eng: c.eng, handle: handle, host: c.host, port: c.port}, nil
}

// MakeRequest binds req to this connection and issues it. From here on
// the caller may only Cancel req until its callback fires; the request
// keeps the connection alive for the exchange's duration.
func (c *Connection) MakeRequest(req *Request, method, uri string) {
	req.start(c, method, uri)
}

// SetTimeout bounds each subsequently issued request on this
// connection.
func (c *Connection) SetTimeout(d time.Duration) {
	c.handle.SetTimeout(d)
}

// Close releases the native handle. In-flight requests finish first;
// they hold their own reference.
func (c *Connection) Close() error {
	return c.handle.Close()
}
