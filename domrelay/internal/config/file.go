// Package config handles domrelay configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level domrelay configuration.
type Config struct {
	Relay RelayConfig  `yaml:"relay"`
	HTTP  HTTPConfig   `yaml:"http"`
	Sinks []SinkConfig `yaml:"sinks"`
}

// RelayConfig controls callback handling.
type RelayConfig struct {
	StrictIDs bool   `yaml:"strict_ids"` // reject ids outside int32 instead of wrapping
	BackendID string `yaml:"backend_id"` // node | zero
	Session   string `yaml:"session"`    // stamped on every message; generated when empty
}

// HTTPConfig controls the HTTP ingestion endpoint.
type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// SinkConfig defines an output backend.
type SinkConfig struct {
	Type string `yaml:"type"` // stdout | webhook | websocket
	URL  string `yaml:"url"`  // for webhook and websocket

	// Webhook only. Nil means the default of 3; 0 disables retries.
	Retries *int `yaml:"retries"`

	// WebSocket only.
	Headers      map[string]string `yaml:"headers"`
	WriteTimeout time.Duration     `yaml:"write_timeout"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML configuration and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	if c.Relay.BackendID == "" {
		c.Relay.BackendID = "node"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":9230"
	}
	if c.HTTP.ReadTimeout <= 0 {
		c.HTTP.ReadTimeout = 10 * time.Second
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 4 << 20
	}
	for i := range c.Sinks {
		if c.Sinks[i].Type == "webhook" && c.Sinks[i].Retries == nil {
			retries := 3
			c.Sinks[i].Retries = &retries
		}
	}
}

// Clone returns a copy that shares nothing mutable with c.
func (c *Config) Clone() *Config {
	out := *c
	out.Sinks = make([]SinkConfig, len(c.Sinks))
	for i, s := range c.Sinks {
		if s.Retries != nil {
			retries := *s.Retries
			s.Retries = &retries
		}
		if s.Headers != nil {
			h := make(map[string]string, len(s.Headers))
			for k, v := range s.Headers {
				h[k] = v
			}
			s.Headers = h
		}
		out.Sinks[i] = s
	}
	return &out
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Relay.BackendID {
	case "node", "zero":
	default:
		return fmt.Errorf("config: relay.backend_id %q: want node or zero", c.Relay.BackendID)
	}
	for i, s := range c.Sinks {
		switch s.Type {
		case "stdout":
		case "webhook", "websocket":
			if s.URL == "" {
				return fmt.Errorf("config: sinks[%d]: %s sink needs a url", i, s.Type)
			}
			if s.Retries != nil && *s.Retries < 0 {
				return fmt.Errorf("config: sinks[%d]: retries %d is negative", i, *s.Retries)
			}
			if s.WriteTimeout < 0 {
				return fmt.Errorf("config: sinks[%d]: write_timeout %s is negative", i, s.WriteTimeout)
			}
		default:
			return fmt.Errorf("config: sinks[%d]: unknown type %q", i, s.Type)
		}
	}
	return nil
}
