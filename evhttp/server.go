// File: evhttp/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package evhttp

import (
	"log"
	"sync"

	"github.com/momentics/hioload-http/api"
	"github.com/momentics/hioload-http/httpengine"
	"github.com/momentics/hioload-http/reactor"
)

// HandlerCallback receives one inbound request on the loop goroutine
// and owns the response: it must arrange for exactly one Reply or
// ReplyError, though not necessarily before returning.
type HandlerCallback func(api.ServerRequest)

// Handler is one path registration. Registrations are held by pointer
// so their identity stays stable for the server's lifetime.
type Handler struct {
	Path     string
	Callback HandlerCallback
}

func (h *Handler) dispatch(req api.ServerRequest) {
	h.Callback(req)
}

// Server binds a listening endpoint to a Base and dispatches inbound
// requests to exact-path handlers. Unmatched paths get 404 from the
// engine; the server adds no protocol logic of its own.
type Server struct {
	base   *reactor.Base
	handle api.ServerHandle

	mu       sync.Mutex
	handlers []*Handler
}

// NewServer creates a server over the default engine.
func NewServer(base *reactor.Base) (*Server, error) {
	return NewServerEngine(base, httpengine.New(base, base.Resolver()))
}

// NewServerEngine creates a server over a caller-supplied engine.
func NewServerEngine(base *reactor.Base, eng api.HTTPEngine) (*Server, error) {
	handle, err := eng.NewServer()
	if err != nil {
		return nil, err
	}
	return &Server{base: base, handle: handle}, nil
}

// Bind binds the listening endpoint. Failures are reported, never
// swallowed.
func (s *Server) Bind(address string, port int) error {
	return s.handle.Bind(address, port)
}

// Port reports the bound port, useful after binding port 0.
func (s *Server) Port() int {
	return s.handle.Port()
}

// AddHandler registers an exact-path handler. Returns false and leaves
// existing registrations untouched when a handler already exists for
// path or registration fails; it never replaces a handler.
func (s *Server) AddHandler(path string, cb HandlerCallback) bool {
	if cb == nil {
		return false
	}
	h := &Handler{Path: path, Callback: cb}
	if err := s.handle.AddHandler(path, h.dispatch); err != nil {
		log.Printf("evhttp: add handler %q: %v", path, err)
		return false
	}
	s.mu.Lock()
	s.handlers = append(s.handlers, h)
	s.mu.Unlock()
	return true
}

// Close stops the listener.
func (s *Server) Close() error {
	return s.handle.Close()
}
