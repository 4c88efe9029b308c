// Package server exposes the validation pipeline over HTTP: packet
// upload, progress polling, result retrieval, and report download.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/aemqa/packetcheck/internal/orchestrator"
)

// ReadinessProbe reports whether an external dependency is reachable.
// The shared store's Ping is the usual implementation.
type ReadinessProbe func(ctx context.Context) error

// Server is the packetcheck HTTP server.
type Server struct {
	httpServer *http.Server
	orch       *orchestrator.Orchestrator
	uploadsDir string
	exportsDir string
	probe      ReadinessProbe
	logger     *slog.Logger

	maxUpload int64

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// UploadsDir receives submitted PDFs.
	UploadsDir string
	// ExportsDir is where reports live; the download endpoint serves it.
	ExportsDir string
	// MaxUploadBytes caps request bodies (default: 64 MiB)
	MaxUploadBytes int64
	// Probe, when set, gates the ready endpoint on the shared store.
	Probe ReadinessProbe
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server around the orchestrator.
func New(cfg Config, orch *orchestrator.Orchestrator) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 64 << 20
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads dir: %w", err)
	}
	if err := os.MkdirAll(cfg.ExportsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating exports dir: %w", err)
	}

	s := &Server{
		orch:       orch,
		uploadsDir: cfg.UploadsDir,
		exportsDir: cfg.ExportsDir,
		probe:      cfg.Probe,
		logger:     cfg.Logger,
		maxUpload:  cfg.MaxUploadBytes,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start runs the server until the context is cancelled or the listener
// fails, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the route handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
