package types

import "time"

// Shapes served to the local assistant client (Ollama-style API).

// VersionResponse is returned by GET /api/version.
type VersionResponse struct {
	Version string `json:"version"`
}

// TagsResponse is returned by GET /api/tags.
type TagsResponse struct {
	Models []TagModel `json:"models"`
}

// TagModel is one model entry in the tags list. The upstream provider has
// no size or modification time, so defined defaults are substituted; the
// local client requires every field to be present.
type TagModel struct {
	Name       string `json:"name"`
	Model      string `json:"model"`
	ModifiedAt string `json:"modified_at"`
	Size       int64  `json:"size"`
}

// DefaultModifiedAt is used when the upstream descriptor has no timestamp.
const DefaultModifiedAt = "2025-08-01T00:00:00Z"

// TagModelFromUpstream reshapes an upstream model descriptor into the
// fields the local client expects.
func TagModelFromUpstream(m Model) TagModel {
	name := m.ID
	if name == "" {
		name = "unknown"
	}

	modified := DefaultModifiedAt
	if m.Created > 0 {
		modified = time.Unix(m.Created, 0).UTC().Format(time.RFC3339)
	}

	return TagModel{
		Name:       name,
		Model:      name,
		ModifiedAt: modified,
		Size:       0,
	}
}

// ShowRequest is the body of POST /api/show.
type ShowRequest struct {
	Model string `json:"model"`
}

// ShowResponse is returned by POST /api/show for a known model.
type ShowResponse struct {
	Template     string         `json:"template"`
	Capabilities []string       `json:"capabilities"`
	Details      ModelDetails   `json:"details"`
	ModelInfo    map[string]any `json:"model_info"`
}

// ModelDetails carries coarse model family information.
type ModelDetails struct {
	Family string `json:"family"`
}

// ShowResponseFromUpstream builds the model-details response for a
// descriptor found in the upstream list.
func ShowResponseFromUpstream(m Model) ShowResponse {
	return ShowResponse{
		Template:     m.ID,
		Capabilities: []string{"tools", "function_call"},
		Details:      ModelDetails{Family: "gpt"},
		ModelInfo: map[string]any{
			"general.basename":     m.ID,
			"general.architecture": "gpt",
			"gpt.context_length":   32768,
		},
	}
}
