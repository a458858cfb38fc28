// Package web serves the led-button status page and accepts remote toggles.
package web

import (
	"context"
	"net"
	"net/http"

	"github.com/sweeney/led-button/internal/status"
)

// Toggler asks the goroutine that owns the LED to toggle it. It must not
// block; it reports false when a request is already pending.
type Toggler func() bool

// Option configures a Server.
type Option func(*Server)

// WithToggle enables POST /toggle.
func WithToggle(t Toggler) Option {
	return func(s *Server) { s.toggle = t }
}

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	toggle     Toggler
}

// New creates a Server that reads state from the given tracker.
func New(addr string, tracker *status.Tracker, opts ...Option) *Server {
	s := &Server{tracker: tracker}
	for _, opt := range opts {
		opt(s)
	}
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.routes(),
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /index.html", s.handleIndex)
	mux.HandleFunc("GET /index.json", s.handleJSON)
	if s.toggle != nil {
		mux.HandleFunc("POST /toggle", s.handleToggle)
	}
	return mux
}

// Handler returns the request router, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, s.tracker.Snapshot())
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(s.tracker.Snapshot()))
}

// handleToggle answers 202 in both cases: a request that finds one already
// pending is merged into it.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	result := "queued"
	if !s.toggle() {
		result = "pending"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte(`{"toggle":"` + result + `"}`))
}
