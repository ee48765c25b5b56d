// Package app wires the HTTP router and server.
package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/arkodas/llamagate/internal/config"
)

// Server wraps the HTTP server with its configuration.
type Server struct {
	httpServer *http.Server
	config     *config.Config
	logger     *slog.Logger
}

// NewServer creates a new configured HTTP server instance.
func NewServer(cfg *config.Config, handler http.Handler, logger *slog.Logger) *Server {
	srv := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: handler,
		// Generous timeouts: a short WriteTimeout would kill long
		// streaming completions mid-relay.
		ReadTimeout:  300 * time.Second,
		WriteTimeout: 300 * time.Second,
	}

	return &Server{
		httpServer: srv,
		config:     cfg,
		logger:     logger,
	}
}

// Start begins listening and serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("llamagate server starting",
		"addr", s.config.ServerPort,
		"upstream", s.config.UpstreamURL,
	)
	return s.httpServer.ListenAndServe()
}
