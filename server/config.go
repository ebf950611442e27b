package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level service configuration.
type Config struct {
	// Addr is the listen address (e.g. ":8086").
	Addr string `yaml:"addr"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// MaxUploadBytes limits the request body. Default: 50 MB.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// JPEGQuality / WebPQuality override the lossy encode quality (1-100).
	JPEGQuality int `yaml:"jpeg_quality"`
	WebPQuality int `yaml:"webp_quality"`

	// MaxPages caps text-reflow output pages. 0 keeps the compositor default.
	MaxPages int `yaml:"max_pages"`

	// HistoryDB is the conversion-log SQLite path. Empty disables history.
	HistoryDB string `yaml:"history_db"`

	// HistoryRetentionDays prunes old history rows. 0 keeps everything.
	HistoryRetentionDays int `yaml:"history_retention_days"`

	// CORSOrigins lists allowed origins for browser clients.
	// Empty allows all origins.
	CORSOrigins []string `yaml:"cors_origins"`
}

// Defaults fills unset fields in place.
func (c *Config) Defaults() {
	if c.Addr == "" {
		c.Addr = ":8086"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 50 * 1024 * 1024
	}
}

// LoadConfigFile reads a YAML configuration file and applies defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("server: read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("server: parse config %s: %w", path, err)
	}
	cfg.Defaults()
	return &cfg, nil
}
