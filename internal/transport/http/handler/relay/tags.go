package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/arkodas/llamagate/internal/types"
)

// modelsCacheKey is the ristretto key for the upstream model list.
const modelsCacheKey = "upstream_models"

// modelsCacheTTL bounds how stale the tags/show views may be.
const modelsCacheTTL = time.Minute

// Tags lists available models, reshaped for the local client.
func (h *Handlers) Tags(w http.ResponseWriter, r *http.Request) {
	models, err := h.cachedModels(r.Context())
	if err != nil {
		h.Logger.Warn("model list fetch failed", "error", err)
		h.writeUpstreamError(w, err)
		return
	}

	resp := types.TagsResponse{Models: make([]types.TagModel, 0, len(models))}
	for _, m := range models {
		resp.Models = append(resp.Models, types.TagModelFromUpstream(m))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Show returns details for a single model. An unknown name is a not-found
// condition, never an upstream failure.
func (h *Handlers) Show(w http.ResponseWriter, r *http.Request) {
	var req types.ShowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("invalid request body"))
		return
	}
	if req.Model == "" {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("model name required"))
		return
	}

	models, err := h.cachedModels(r.Context())
	if err != nil {
		h.Logger.Warn("model list fetch failed", "error", err)
		h.writeUpstreamError(w, err)
		return
	}

	for _, m := range models {
		if m.ID == req.Model {
			writeJSON(w, http.StatusOK, types.ShowResponseFromUpstream(m))
			return
		}
	}

	types.WriteError(w, http.StatusNotFound,
		types.ErrNotFound("model '"+req.Model+"' not found"))
}

// cachedModels returns the upstream model list, served from ristretto when
// fresh. A cache miss triggers one upstream fetch; failures are never cached.
func (h *Handlers) cachedModels(ctx context.Context) ([]types.Model, error) {
	if h.Cache != nil {
		if models, found := h.Cache.Get(modelsCacheKey); found {
			return models, nil
		}
	}

	models, err := h.Upstream.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	if h.Cache != nil {
		h.Cache.SetWithTTL(modelsCacheKey, models, 1, modelsCacheTTL)
	}
	return models, nil
}
