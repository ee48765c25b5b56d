package app

import (
	"log/slog"
	"net/http"

	"github.com/arkodas/llamagate/internal/transport/http/handler"
	"github.com/arkodas/llamagate/internal/transport/http/middleware"
)

// RouterOptions configures the HTTP router behavior.
type RouterOptions struct {
	Logger *slog.Logger
}

// NewRouter creates and configures the HTTP router with all application
// routes and the middleware chain applied.
func NewRouter(repo *handler.Repo, opts *RouterOptions) http.Handler {
	mux := http.NewServeMux()

	// Local-assistant surface
	mux.HandleFunc("GET /api/version", repo.Relay.Version)
	mux.HandleFunc("GET /api/tags", repo.Relay.Tags)
	mux.HandleFunc("POST /api/show", repo.Relay.Show)
	mux.HandleFunc("POST /v1/chat/completions", repo.Relay.ChatCompletions)

	// Infrastructure
	mux.HandleFunc("GET /api/health", repo.Infra.HealthCheck)
	mux.HandleFunc("GET /{$}", repo.Infra.RootStatus)

	// Everything else is not part of the relayed surface
	mux.HandleFunc("/", repo.Relay.NotImplemented)

	// Apply middleware chain (order: outer to inner)
	var h http.Handler = mux

	if opts != nil && opts.Logger != nil {
		h = middleware.RequestLogger(opts.Logger)(h)
	}
	h = middleware.RequestID(h)
	h = middleware.Headers(h)

	return h
}
