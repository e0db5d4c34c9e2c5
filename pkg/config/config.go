// Package config loads tool configuration from a YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the tool configuration.
type Config struct {
	// ServerURL is the base URL of the component-builder API.
	ServerURL string `yaml:"serverUrl"`

	// GeneratedDir is where component and page files are written.
	GeneratedDir string `yaml:"generatedDir"`

	// HistoryDir is where per-project durable transcripts live.
	HistoryDir string `yaml:"historyDir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ServerURL:    "http://localhost:5001",
		GeneratedDir: "generated",
		HistoryDir:   filepath.Join("generated", "history"),
		LogLevel:     "info",
	}
}

// Load reads path, falling back to defaults when the file is absent.
// Environment variables COMPONENTIZE_SERVER_URL and COMPONENTIZE_LOG_LEVEL
// override file values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults apply.
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("COMPONENTIZE_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("COMPONENTIZE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}
