// Package config provides configuration management.
package config

import (
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"construction-cost/internal/errors"
	"construction-cost/internal/logging"
)

// EnvPrefix prefixes environment overrides, e.g. CCOST_INSIGHT_ENDPOINT.
const EnvPrefix = "CCOST"

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" mapstructure:"version"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" mapstructure:"logging"`

	// Rates selects the rate table
	Rates RatesConfig `json:"rates" mapstructure:"rates"`

	// Comparables selects the historical comparable store
	Comparables ComparablesConfig `json:"comparables" mapstructure:"comparables"`

	// Insight configures the requirement-insight service
	Insight InsightConfig `json:"insight" mapstructure:"insight"`

	// Storage configures estimate persistence
	Storage StorageConfig `json:"storage" mapstructure:"storage"`

	// Server configures the HTTP API
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Estimate contains assembly defaults
	Estimate EstimateConfig `json:"estimate" mapstructure:"estimate"`
}

// RatesConfig points at an HCL rate file. Empty means the built-in table.
type RatesConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// ComparablesConfig selects the comparable store backend
type ComparablesConfig struct {
	// Driver is memory, sqlite or postgres
	Driver string `json:"driver" mapstructure:"driver"`

	// DSN is the database source for sqlite/postgres
	DSN string `json:"dsn" mapstructure:"dsn"`

	// Path is a YAML/JSON seed file for the memory driver
	Path string `json:"path" mapstructure:"path"`
}

// InsightConfig configures the external analysis call
type InsightConfig struct {
	// Endpoint is the service URL; empty disables the call
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`

	// APIKey is sent as a bearer token
	APIKey string `json:"api_key,omitempty" mapstructure:"api_key"`

	// TimeoutMs bounds each attempt
	TimeoutMs int `json:"timeout_ms" mapstructure:"timeout_ms"`

	// Retries is the number of extra attempts (0 or 1)
	Retries int `json:"retries" mapstructure:"retries"`
}

// Timeout returns the per-attempt timeout
func (c InsightConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// StorageConfig configures estimate persistence
type StorageConfig struct {
	// Backend is file or memory
	Backend string `json:"backend" mapstructure:"backend"`

	// Path is the file store root
	Path string `json:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `json:"addr" mapstructure:"addr"`
}

// EstimateConfig contains assembly defaults
type EstimateConfig struct {
	// CreatedBy stamps new estimates
	CreatedBy string `json:"created_by" mapstructure:"created_by"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	baseDir := filepath.Join(homeDir, ".construction-cost")

	return &Config{
		Version: "1.0",
		Logging: logging.DefaultConfig(),
		Comparables: ComparablesConfig{
			Driver: "memory",
		},
		Insight: InsightConfig{
			TimeoutMs: 2000,
			Retries:   1,
		},
		Storage: StorageConfig{
			Backend: "file",
			Path:    filepath.Join(baseDir, "estimates"),
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Estimate: EstimateConfig{
			CreatedBy: "estimator",
		},
	}
}

// Load reads configuration from path (json, yaml or toml by extension) with
// CCOST_* environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !stderrors.As(err, &notFound) && !stderrors.Is(err, fs.ErrNotExist) {
				return nil, errors.Config("failed to read config "+path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Config("failed to decode config", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("logging.development", d.Logging.Development)
	v.SetDefault("rates.path", d.Rates.Path)
	v.SetDefault("comparables.driver", d.Comparables.Driver)
	v.SetDefault("comparables.dsn", d.Comparables.DSN)
	v.SetDefault("comparables.path", d.Comparables.Path)
	v.SetDefault("insight.endpoint", d.Insight.Endpoint)
	v.SetDefault("insight.api_key", d.Insight.APIKey)
	v.SetDefault("insight.timeout_ms", d.Insight.TimeoutMs)
	v.SetDefault("insight.retries", d.Insight.Retries)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("estimate.created_by", d.Estimate.CreatedBy)
}

// Validate checks the configuration for values the engine cannot use
func (c *Config) Validate() error {
	switch c.Comparables.Driver {
	case "memory":
	case "sqlite", "postgres":
		if c.Comparables.DSN == "" {
			return errors.Config("comparables.dsn is required for driver "+c.Comparables.Driver, nil)
		}
	default:
		return errors.Config("unsupported comparables driver: "+c.Comparables.Driver, nil)
	}

	switch c.Storage.Backend {
	case "file", "memory":
	default:
		return errors.Config("unsupported storage backend: "+c.Storage.Backend, nil)
	}

	if c.Insight.TimeoutMs <= 0 {
		return errors.Config("insight.timeout_ms must be positive", nil)
	}
	if c.Insight.Retries < 0 || c.Insight.Retries > 1 {
		return errors.Config("insight.retries must be 0 or 1", nil)
	}
	return nil
}

// Save saves configuration to a file as JSON
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
