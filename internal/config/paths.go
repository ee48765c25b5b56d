package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DataDir returns the path to the llamagate data directory.
// - Windows: %APPDATA%\llamagate
// - Other OS: ~/.llamagate
func DataDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "llamagate")
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".llamagate"
	}
	return filepath.Join(home, ".llamagate")
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0700)
}
