// Package handler composes the domain-specific HTTP handler groups.
package handler

import (
	"log/slog"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/arkodas/llamagate/internal/tokenizer"
	"github.com/arkodas/llamagate/internal/transport/http/handler/infra"
	"github.com/arkodas/llamagate/internal/transport/http/handler/relay"
	"github.com/arkodas/llamagate/internal/types"
)

// Repo composes all domain-specific handlers.
type Repo struct {
	Relay *relay.Handlers
	Infra *infra.Handlers
}

// NewRepo creates a new instance of the composed handler repository.
func NewRepo(client relay.UpstreamClient, cache *ristretto.Cache[string, []types.Model], tok tokenizer.Tokenizer, logger *slog.Logger) *Repo {
	return &Repo{
		Relay: relay.New(client, cache, tok, logger),
		Infra: infra.New(time.Now()),
	}
}
