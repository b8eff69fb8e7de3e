package domrelay

import (
	"github.com/hazyhaar/inspector/domrelay/internal/config"
)

// Config is the top-level domrelay configuration. Re-exported from internal.
type Config = config.Config

// RelayConfig controls callback handling.
type RelayConfig = config.RelayConfig

// HTTPConfig controls the HTTP ingestion endpoint.
type HTTPConfig = config.HTTPConfig

// SinkConfig defines an output backend.
type SinkConfig = config.SinkConfig

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFile(path)
}
