// Package server exposes the de-identification pipeline over HTTP for
// callers that keep the NER sidecar and lisanon running as services.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cgeisenberger/lisanon/internal/engine"
	"github.com/cgeisenberger/lisanon/internal/otel"
	"github.com/cgeisenberger/lisanon/internal/preset"
)

const defaultTimeout = 300 * time.Second

// Server holds the dependencies of the HTTP API.
type Server struct {
	router  *chi.Mux
	preset  *preset.Preset
	engine  engine.NameRedactor
	started time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithEngine sets the NER engine handle. Without it, requests whose pass
// list includes "ner" fail with 503.
func WithEngine(e engine.NameRedactor) Option {
	return func(s *Server) { s.engine = e }
}

// New creates the server with its routes. p is the default preset applied
// to requests that do not carry their own.
func New(p *preset.Preset, opts ...Option) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		preset:  p,
		started: time.Now(),
	}
	for _, o := range opts {
		o(s)
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(defaultTimeout))
	s.router.Use(otel.Middleware())

	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/v1/deidentify", s.handleDeidentify)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
