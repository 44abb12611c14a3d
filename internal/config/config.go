// Package config loads the application configuration from an optional YAML
// file with environment-variable overrides, and owns logger initialization.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment override variables.
const (
	EnvDatabaseDSN = "GHGLEDGER_DATABASE_DSN"
	EnvListenAddr  = "GHGLEDGER_LISTEN"
	EnvLogLevel    = "GHGLEDGER_LOG_LEVEL"
	EnvLogFormat   = "GHGLEDGER_LOG_FORMAT"
)

// Config is the full application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Engine   EngineConfig   `yaml:"engine"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig selects the relational store.
type DatabaseConfig struct {
	// DSN is a postgres:// URL or a sqlite file path. Empty selects a
	// local sqlite file.
	DSN string `yaml:"dsn"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// EngineConfig carries engine defaults.
type EngineConfig struct {
	// DefaultMethod is the factor-source preference applied when the
	// input does not name one: DEFRA, ISPRA or IPCC.
	DefaultMethod string `yaml:"default_method"`
}

// LoggingConfig configures the zerolog root logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console | json
	File   string `yaml:"file"`   // optional append-mode log file
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Listen: ":8085"},
		Engine:  EngineConfig{DefaultMethod: "DEFRA"},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// DefaultPath returns the conventional config file location,
// ~/.ghgledger/config.yaml, or "" when the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ghgledger", "config.yaml")
}

// Load builds the configuration: defaults, then the YAML file at path (a
// missing file at the default location is not an error), then environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = DefaultPath()
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case os.IsNotExist(err) && !explicit:
			// Default location, nothing there: defaults apply.
		default:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvDatabaseDSN); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = v
	}
}

// Validate checks semantic correctness beyond YAML syntax.
func (c *Config) Validate() error {
	switch c.Engine.DefaultMethod {
	case "", "DEFRA", "ISPRA", "IPCC":
	default:
		return fmt.Errorf("unknown default_method %q", c.Engine.DefaultMethod)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown logging format %q", c.Logging.Format)
	}
	return nil
}
