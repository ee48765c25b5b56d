// Package config loads application configuration from the environment and
// an optional TOML file. Priority: env vars → config.toml → defaults.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Defaults. Port 11434 is what local assistant clients expect to find.
const (
	DefaultServerPort  = ":11434"
	DefaultUpstreamURL = "https://api.a4f.co/v1"
)

// ErrMissingAPIKey is returned when no upstream credential is configured.
// This is startup-fatal: the relay must not serve requests without it.
var ErrMissingAPIKey = errors.New("no upstream API key configured (set LLAMAGATE_API_KEY)")

// Config holds application configuration.
type Config struct {
	// ServerPort is the address to bind the server to (e.g., ":11434")
	ServerPort string `env:"LLAMAGATE_SERVER_PORT"`

	// UpstreamURL is the base URL of the OpenAI-compatible provider,
	// including the version prefix (e.g., "https://api.a4f.co/v1")
	UpstreamURL string `env:"LLAMAGATE_UPSTREAM_URL"`

	// APIKey is the bearer credential for the upstream provider. Required.
	APIKey string `env:"LLAMAGATE_API_KEY"`
}

// Load reads configuration from the TOML file and environment variables.
// Environment variables override file values, which override defaults.
func Load() (*Config, error) {
	fileConfig, _ := LoadFile() // ignore error, use defaults

	cfg := &Config{
		ServerPort:  DefaultServerPort,
		UpstreamURL: DefaultUpstreamURL,
	}
	if fileConfig.ServerPort != "" {
		cfg.ServerPort = fileConfig.ServerPort
	}
	if fileConfig.UpstreamURL != "" {
		cfg.UpstreamURL = fileConfig.UpstreamURL
	}
	if fileConfig.APIKey != "" {
		cfg.APIKey = fileConfig.APIKey
	}

	// env.Parse only touches fields whose variables are actually set,
	// so file values survive unless overridden.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	return cfg, nil
}
