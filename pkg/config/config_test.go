package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.BaseURL != "http://localhost:8000" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.RequestTimeout != 0 {
		t.Errorf("RequestTimeout = %v, want 0 (unbounded)", cfg.Backend.RequestTimeout)
	}
	if cfg.Backend.Paths.Ingest850 != "/ingest/850" || cfg.Backend.Paths.Ingest856 != "/ingest/856" {
		t.Errorf("ingest paths = %+v", cfg.Backend.Paths)
	}
	if cfg.Prefs.Key != "chatCollapsed" {
		t.Errorf("Prefs.Key = %q", cfg.Prefs.Key)
	}
	if !cfg.Console.SeedSampleItems {
		t.Error("SeedSampleItems should default to true")
	}
}

func TestLoadRequiredFileMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), true); err == nil {
		t.Fatal("expected error for missing required file")
	}
}

func TestLoadYAMLAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.yaml")
	yml := `
backend:
  baseUrl: http://ingest.internal:9000
  requestTimeout: 15s
prefs:
  backend: memory
journal:
  driver: postgres
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EC_BACKEND_URL", "http://override:1234")
	t.Setenv("EC_KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("EC_BUILDER_ESCAPE", "true")

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.BaseURL != "http://override:1234" {
		t.Errorf("env override not applied: %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.RequestTimeout != 15*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.Backend.RequestTimeout)
	}
	if cfg.Backend.Paths.Chat != "/chat/map" {
		t.Errorf("defaults lost for unset nested keys: %+v", cfg.Backend.Paths)
	}
	if cfg.Prefs.Backend != "memory" || cfg.Journal.Driver != "postgres" {
		t.Errorf("yaml values not applied: prefs=%q journal=%q", cfg.Prefs.Backend, cfg.Journal.Driver)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "b:9092" {
		t.Errorf("Brokers = %v", cfg.Kafka.Brokers)
	}
	if !cfg.Builder.EscapeValues {
		t.Error("EC_BUILDER_ESCAPE not applied")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.Backend.BaseURL = " " }},
		{"negative timeout", func(c *Config) { c.Backend.RequestTimeout = -time.Second }},
		{"unknown prefs backend", func(c *Config) { c.Prefs.Backend = "etcd" }},
		{"unknown journal driver", func(c *Config) { c.Journal.Driver = "mysql" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
