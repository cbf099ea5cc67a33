// File: httpengine/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Listening handle: accepts on net/http goroutines, dispatches each
// matched request onto the loop goroutine, and parks the exchange
// until the handler replies. Unmatched paths are answered 404 here.

package httpengine

import (
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/momentics/hioload-http/api"
	"github.com/momentics/hioload-http/obs"
)

type server struct {
	eng *Engine

	mu     sync.Mutex
	routes map[string]func(api.ServerRequest)
	ln     net.Listener
	srv    *http.Server
	port   int
}

// Bind binds address:port and starts accepting. Port 0 picks an
// ephemeral port.
func (s *server) Bind(address string, port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return fmt.Errorf("httpengine: already bound to %s", s.ln.Addr())
	}
	ln, err := net.Listen("tcp", net.JoinHostPort(address, strconv.Itoa(port)))
	if err != nil {
		return err
	}
	s.ln = ln
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.srv = &http.Server{Handler: http.HandlerFunc(s.serveHTTP)}
	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("httpengine: serve: %v", err)
		}
	}()
	return nil
}

// Port reports the bound port, 0 before Bind.
func (s *server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// AddHandler registers h for exact matches of path. The first
// registration for a path wins; later ones fail.
func (s *server) AddHandler(path string, h func(api.ServerRequest)) error {
	if path == "" || path[0] != '/' {
		return fmt.Errorf("httpengine: bad handler path %q", path)
	}
	if h == nil {
		return fmt.Errorf("httpengine: nil handler for %q", path)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.routes[path]; dup {
		return fmt.Errorf("httpengine: handler already registered for %q", path)
	}
	s.routes[path] = h
	return nil
}

func (s *server) serveHTTP(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	h, ok := s.routes[req.URL.Path]
	s.mu.Unlock()
	if !ok {
		obs.ServedTotal.WithLabelValues("unmatched").Inc()
		http.NotFound(w, req)
		return
	}

	payload, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	sr := &serverRequest{
		method:  req.Method,
		path:    req.URL.Path,
		hdr:     req.Header,
		body:    payload,
		replyCh: make(chan reply, 1),
	}
	s.eng.poster.Add(func() { h(sr) })

	select {
	case rep := <-sr.replyCh:
		for k, vs := range rep.hdr {
			for _, v := range vs {
				w.Header().Add(k, v)
			}
		}
		w.WriteHeader(rep.status)
		_, _ = w.Write(rep.body)
		obs.ServedTotal.WithLabelValues("handled").Inc()
	case <-req.Context().Done():
		// client went away before the handler replied
	}
}

// Close stops accepting and tears down open exchanges.
func (s *server) Close() error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Close()
}

type reply struct {
	status int
	hdr    http.Header
	body   []byte
}

// serverRequest implements api.ServerRequest. Reply may be called
// after the handler returns; the accepting goroutine stays parked
// until it arrives.
type serverRequest struct {
	method string
	path   string
	hdr    http.Header
	body   []byte

	once    sync.Once
	replyCh chan reply
}

func (r *serverRequest) Method() string { return r.method }

func (r *serverRequest) Path() string { return r.path }

func (r *serverRequest) Headers() http.Header { return r.hdr }

func (r *serverRequest) Body() []byte { return r.body }

func (r *serverRequest) Reply(status int, headers http.Header, body []byte) {
	r.once.Do(func() {
		r.replyCh <- reply{status: status, hdr: headers, body: body}
	})
}

func (r *serverRequest) ReplyError(status int, reason string) {
	hdr := http.Header{}
	hdr.Set("Content-Type", "text/plain; charset=utf-8")
	r.Reply(status, hdr, []byte(reason))
}
