// Package server exposes the checker over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/tsawler/docqc/config"
)

// Config holds server configuration
type Config struct {
	Addr string `yaml:"addr"`
	// UploadDir receives uploads for the duration of a check. Empty means
	// the system temp directory.
	UploadDir      string `yaml:"upload_dir"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	Version        string `yaml:"-"`

	// Check is applied to every uploaded document.
	Check config.Config `yaml:"-"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Addr:           "127.0.0.1:5000",
		MaxUploadBytes: 16 << 20,
		Version:        "dev",
		Check:          config.Default(),
	}
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	cfg        Config
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for requests and checks.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the time source for health responses and reports.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a new HTTP server
func New(cfg Config, opts ...Option) *Server {
	if cfg.UploadDir == "" {
		cfg.UploadDir = os.TempDir()
	}
	s := &Server{
		router: http.NewServeMux(),
		cfg:    cfg,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("POST /api/check", s.handleCheck)
	s.router.HandleFunc("GET /api/health", s.handleHealth)
	s.router.HandleFunc("/", s.handleNotFound)
}

// Handler returns the router wrapped in the middleware chain:
// recovery, then request id, then logging.
func (s *Server) Handler() http.Handler {
	recovery := NewRecoveryMiddleware(s.logger)
	requestID := NewRequestIDMiddleware()
	logging := NewLoggingMiddleware(s.logger)
	return recovery.Handler(requestID.Handler(logging.Handler(s.router)))
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("server: upload dir: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
