package pool

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config controls pool sizing and connection reuse.
type Config struct {
	ConnString  string        `yaml:"conn_string"`  // ADO-style; override via MSSQL_DB
	MaxConns    int           `yaml:"max_conns"`    // default 4; hard cap on open sessions
	MaxIdle     int           `yaml:"max_idle"`     // default = max_conns
	IdleTimeout time.Duration `yaml:"idle_timeout"` // default 5m; 0 disables eviction
}

// DefaultConfig returns the pool defaults for the given connection string.
func DefaultConfig(connString string) Config {
	return Config{
		ConnString:  connString,
		MaxConns:    4,
		MaxIdle:     4,
		IdleTimeout: 5 * time.Minute,
	}
}

// LoadConfig reads the YAML config at path, applying defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	// Defaults
	cfg.MaxConns = 4
	cfg.IdleTimeout = 5 * time.Minute

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	// conn_string: config file takes precedence; env var is the fallback
	if cfg.ConnString == "" {
		if s := os.Getenv("MSSQL_DB"); s != "" {
			cfg.ConnString = s
		} else {
			return nil, fmt.Errorf("config: conn_string is required (or set MSSQL_DB)")
		}
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.MaxConns <= 0 {
		c.MaxConns = 4
	}
	if c.MaxIdle <= 0 || c.MaxIdle > c.MaxConns {
		c.MaxIdle = c.MaxConns
	}
	if c.IdleTimeout < 0 {
		c.IdleTimeout = 0
	}
}
