package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"construction-cost/internal/errors"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Comparables.Driver != "memory" {
		t.Errorf("driver = %q, want memory", cfg.Comparables.Driver)
	}
	if cfg.Insight.Timeout() != 2*time.Second {
		t.Errorf("insight timeout = %v, want 2s", cfg.Insight.Timeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ccost.yaml")
	body := `
comparables:
  driver: sqlite
  dsn: /tmp/comparables.db
insight:
  endpoint: http://insight.local/analyze
  timeout_ms: 500
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Comparables.Driver != "sqlite" || cfg.Comparables.DSN != "/tmp/comparables.db" {
		t.Errorf("comparables = %+v", cfg.Comparables)
	}
	if cfg.Insight.TimeoutMs != 500 {
		t.Errorf("timeout_ms = %d, want 500", cfg.Insight.TimeoutMs)
	}
	if cfg.Insight.Retries != 1 {
		t.Errorf("retries = %d, want default 1", cfg.Insight.Retries)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("server addr = %q, want default", cfg.Server.Addr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Comparables.Driver = "mongo" }},
		{"sqlite without dsn", func(c *Config) { c.Comparables.Driver = "sqlite" }},
		{"bad backend", func(c *Config) { c.Storage.Backend = "s3" }},
		{"zero timeout", func(c *Config) { c.Insight.TimeoutMs = 0 }},
		{"two retries", func(c *Config) { c.Insight.Retries = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.IsType(err, errors.TypeConfig) {
				t.Errorf("Validate() = %v, want CONFIG_ERROR", err)
			}
		})
	}
}
