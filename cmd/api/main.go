package main

import (
	"os"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/arkodas/llamagate/internal/app"
	"github.com/arkodas/llamagate/internal/config"
	"github.com/arkodas/llamagate/internal/tokenizer"
	"github.com/arkodas/llamagate/internal/transport/http/handler"
	"github.com/arkodas/llamagate/internal/types"
	"github.com/arkodas/llamagate/internal/upstream"
)

func main() {
	logger := setupLogger()

	if err := config.EnsureConfigFile(); err != nil {
		logger.Warn("could not create default config file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		// Serving without a credential would only fail lazily on every
		// relayed call, so refuse to start instead.
		logger.Error("configuration error", "error", err)
		os.Exit(1)
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, []types.Model]{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		logger.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}

	client := upstream.NewClient(cfg.UpstreamURL, cfg.APIKey, logger)
	repo := handler.NewRepo(client, cache, tokenizer.New(), logger)
	router := app.NewRouter(repo, &app.RouterOptions{Logger: logger})

	printStartupBanner(cfg)

	srv := app.NewServer(cfg, router, logger)
	if err := srv.Start(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
