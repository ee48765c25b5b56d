package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/arkodas/llamagate/internal/config"
	"github.com/arkodas/llamagate/internal/version"
)

func setupLogger() *slog.Logger {
	// Sensible defaults: info level, text format
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(handler)
}

func printStartupBanner(cfg *config.Config) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "llamagate %s - Local Assistant Relay\n", version.Version)
	fmt.Fprintln(os.Stderr, "════════════════════════════════════════════════")
	fmt.Fprintf(os.Stderr, "Local API:  http://localhost%s/api/tags\n", cfg.ServerPort)
	fmt.Fprintf(os.Stderr, "Chat API:   http://localhost%s/v1/chat/completions\n", cfg.ServerPort)
	fmt.Fprintf(os.Stderr, "Upstream:   %s\n", cfg.UpstreamURL)
	fmt.Fprintf(os.Stderr, "Config:     %s\n", config.ConfigPath())
	fmt.Fprintln(os.Stderr, "════════════════════════════════════════════════")
	fmt.Fprintf(os.Stderr, "\n")
}
