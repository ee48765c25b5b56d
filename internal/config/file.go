package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file structure.
type FileConfig struct {
	ServerPort  string `toml:"server_port"`
	UpstreamURL string `toml:"upstream_url"`
	APIKey      string `toml:"api_key"`
}

// LoadFile loads configuration from the TOML file.
// Returns an empty FileConfig if the file doesn't exist.
func LoadFile() (*FileConfig, error) {
	cfg := &FileConfig{}

	path := ConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EnsureConfigFile creates a commented example config if none exists.
func EnsureConfigFile() error {
	path := ConfigPath()

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := EnsureDataDir(); err != nil {
		return err
	}

	defaultConfig := `# llamagate configuration
# Environment variables (LLAMAGATE_*) override values set here.

# server_port = ":11434"

# Base URL of the OpenAI-compatible upstream provider.
# upstream_url = "https://api.a4f.co/v1"

# Upstream bearer credential. Prefer LLAMAGATE_API_KEY over storing it here.
# api_key = ""
`

	return os.WriteFile(path, []byte(defaultConfig), 0600)
}
