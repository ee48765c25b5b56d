// Package relay implements the inbound-facing endpoints that translate
// local-assistant requests into upstream provider calls and back.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/arkodas/llamagate/internal/tokenizer"
	"github.com/arkodas/llamagate/internal/types"
	"github.com/arkodas/llamagate/internal/upstream"
	"github.com/arkodas/llamagate/internal/version"
)

// UpstreamClient is the slice of the upstream client the relay depends on.
type UpstreamClient interface {
	ListModels(ctx context.Context) ([]types.Model, error)
	CreateChatCompletion(ctx context.Context, req *types.ChatCompletionRequest) (*types.ChatCompletionResponse, error)
	StreamChatCompletion(ctx context.Context, req *types.ChatCompletionRequest) (upstream.Stream, error)
}

// Handlers holds the dependencies for relay HTTP handlers.
type Handlers struct {
	Upstream  UpstreamClient
	Cache     *ristretto.Cache[string, []types.Model]
	Tokenizer tokenizer.Tokenizer
	Logger    *slog.Logger
}

// New creates a new instance of relay handlers.
func New(client UpstreamClient, cache *ristretto.Cache[string, []types.Model], tok tokenizer.Tokenizer, logger *slog.Logger) *Handlers {
	return &Handlers{
		Upstream:  client,
		Cache:     cache,
		Tokenizer: tok,
		Logger:    logger,
	}
}

// Version returns the static version string. Always succeeds.
func (h *Handlers) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.VersionResponse{Version: version.Version})
}

// NotImplemented is the catch-all for unknown endpoints.
func (h *Handlers) NotImplemented(w http.ResponseWriter, r *http.Request) {
	h.Logger.Warn("unknown endpoint", "method", r.Method, "path", r.URL.Path)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Not implemented"})
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeUpstreamError translates a classified upstream-client error into the
// response taxonomy: exhausted retries become 503, preserved 4xx rejections
// keep their status and message, anything else is a bad gateway.
func (h *Handlers) writeUpstreamError(w http.ResponseWriter, err error) {
	if errors.Is(err, upstream.ErrUnavailable) {
		types.WriteError(w, http.StatusServiceUnavailable,
			types.ErrUnavailable("upstream provider unavailable"))
		return
	}

	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) {
		types.WriteError(w, statusErr.StatusCode,
			types.NewAPIError(statusErr.Message, types.ErrorTypeForStatus(statusErr.StatusCode)))
		return
	}

	types.WriteError(w, http.StatusBadGateway, types.ErrServer(err.Error()))
}
