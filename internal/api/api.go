// Package api provides HTTP handlers and the API server for zamowbot.
//
// It exposes the conversational /turn endpoint plus session inspection and
// administrative reporting/override endpoints.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/zamowbot/zamowbot/internal/pipeline"
	"github.com/zamowbot/zamowbot/internal/respond"
	"github.com/zamowbot/zamowbot/internal/store"
)

// Default server configuration.
const (
	DefaultAddr            = ":8080"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server hosts the HTTP endpoints over the pipeline and stores.
type Server struct {
	addr       string
	pipeline   *pipeline.Pipeline
	sessions   store.SessionStore
	menu       store.MenuRepository
	controller *respond.Controller
	httpSrv    *http.Server
}

// NewServer creates an API server.
func NewServer(p *pipeline.Pipeline, sessions store.SessionStore, menu store.MenuRepository, controller *respond.Controller, opts ...Option) *Server {
	cfg := Opts{Addr: DefaultAddr}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		addr:       cfg.Addr,
		pipeline:   p,
		sessions:   sessions,
		menu:       menu,
		controller: controller,
	}
}

// Routes builds the HTTP mux; exposed separately so tests can drive handlers
// without a listener.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/turn", s.turnHandler)
	mux.HandleFunc("/sessions", s.sessionsHandler)
	mux.HandleFunc("/sessions/", s.sessionHandler)
	mux.HandleFunc("/admin/report", s.reportHandler)
	mux.HandleFunc("/admin/overrides", s.overridesHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         s.addr,
		Handler:      s.Routes(),
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server listening", "addr", s.addr)
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		slog.Info("API server shutting down")
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
