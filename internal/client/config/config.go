package config

import "time"

// Config holds runtime settings for the Inkwell CLI.
//
// Fields:
//   - ServerEndpoint: base URL of the sync service, no trailing slash.
//   - DatabasePath: path to the local SQLite journal database.
//   - RequestTimeout: per-request deadline for sync calls.
type Config struct {
	ServerEndpoint string
	DatabasePath   string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpoint = "http://127.0.0.1:8080"
	c.DatabasePath = "inkwell.db"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
