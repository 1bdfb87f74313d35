package scaffold

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// ServerConfig holds configuration for the scaffold web server
type ServerConfig struct {
	// Port is the port to listen on (default: 8080)
	Port string

	// Host is the host to bind to (default: "")
	Host string

	// ShutdownTimeout is the timeout for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns a server configuration with sensible defaults
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            "8080",
		ShutdownTimeout: 30 * time.Second,
	}
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Server runs a WebServerInterface until its context is cancelled
type Server struct {
	web    WebServerInterface
	config *ServerConfig
	logger *slog.Logger
}

// NewServer creates a new server around an adapter
func NewServer(web WebServerInterface, config *ServerConfig, logger *slog.Logger) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{web: web, config: config, logger: logger}
}

// Web returns the underlying adapter for route registration
func (s *Server) Web() WebServerInterface {
	return s.web
}

// Run starts the server and blocks until ctx is done or the server fails.
// Cancellation triggers a graceful shutdown bounded by ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Addr()
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("starting server", slog.String("addr", addr), slog.String("adapter", s.web.Name()))
		if err := s.web.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.web.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}
