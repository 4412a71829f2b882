// Package config loads and validates console configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Backend, Builder, Prefs, Redis, Journal, Postgres, Kafka, etc.).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level console configuration.
type Config struct {
	Backend  BackendConfig  `yaml:"backend"`
	Builder  BuilderConfig  `yaml:"builder"`
	Console  ConsoleConfig  `yaml:"console"`
	Prefs    PrefsConfig    `yaml:"prefs"`
	Redis    RedisConfig    `yaml:"redis"`
	Journal  JournalConfig  `yaml:"journal"`
	Postgres PostgresConfig `yaml:"postgres"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Activity ActivityConfig `yaml:"activity"`
	Logging  LoggingConfig  `yaml:"logging"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// BackendConfig points the console at the ingestion service.
type BackendConfig struct {
	BaseURL string `yaml:"baseUrl"`
	// RequestTimeout of zero leaves requests unbounded.
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	Paths          BackendPaths  `yaml:"paths"`
}

// BackendPaths maps each backend call to its URL path.
type BackendPaths struct {
	Ingest850 string `yaml:"ingest850"`
	Ingest856 string `yaml:"ingest856"`
	Replay    string `yaml:"replay"`
	Chat      string `yaml:"chat"`
	Health    string `yaml:"health"`
}

// BuilderConfig controls guided document assembly.
type BuilderConfig struct {
	EscapeValues bool `yaml:"escapeValues"`
}

// ConsoleConfig holds operator console presentation settings.
type ConsoleConfig struct {
	Prompt          string `yaml:"prompt"`
	SeedSampleItems bool   `yaml:"seedSampleItems"`
}

// PrefsConfig selects where UI preferences persist.
type PrefsConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	Key     string `yaml:"key"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"poolSize"`
}

// JournalConfig controls the local run journal.
type JournalConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Driver      string `yaml:"driver"`
	SQLitePath  string `yaml:"sqlitePath"`
	RecentLimit int    `yaml:"recentLimit"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds broker and topic settings for the activity feed.
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// ActivityConfig controls the operator-activity collector.
type ActivityConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"bufferSize"`
}

// LoggingConfig controls structured logging level, format and destination.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracingConfig toggles per-action span logging.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. A missing file is only an error when required is true, so the
// default path can be absent on a fresh workstation.
func Load(path string, required bool) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !required:
		default:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the console cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return fmt.Errorf("backend.baseUrl is required")
	}
	if c.Backend.RequestTimeout < 0 {
		return fmt.Errorf("backend.requestTimeout must not be negative")
	}
	switch c.Prefs.Backend {
	case "file", "redis", "memory":
	default:
		return fmt.Errorf("prefs.backend %q: want file, redis or memory", c.Prefs.Backend)
	}
	if c.Journal.Enabled {
		switch c.Journal.Driver {
		case "sqlite", "postgres":
		default:
			return fmt.Errorf("journal.driver %q: want sqlite or postgres", c.Journal.Driver)
		}
	}
	return nil
}

// defaultConfig returns a Config suitable for a local workstation pointed at
// a development ingestion service.
func defaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL: "http://localhost:8000",
			Paths: BackendPaths{
				Ingest850: "/ingest/850",
				Ingest856: "/ingest/856",
				Replay:    "/replay/",
				Chat:      "/chat/map",
				Health:    "/",
			},
		},
		Console: ConsoleConfig{
			Prompt:          "edi> ",
			SeedSampleItems: true,
		},
		Prefs: PrefsConfig{
			Backend: "file",
			Path:    defaultPrefsPath(),
			Key:     "chatCollapsed",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 4,
		},
		Journal: JournalConfig{
			Enabled:     true,
			Driver:      "sqlite",
			SQLitePath:  "runs-journal.db",
			RecentLimit: 20,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "ediconsole",
			User:            "ediconsole",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "console-activity",
		},
		Activity: ActivityConfig{
			BufferSize: 1024,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Port: 9464,
		},
	}
}

func defaultPrefsPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + "/edi-console/prefs.yaml"
	}
	return ".edi-console-prefs.yaml"
}

// applyEnvOverrides reads EC_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EC_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("EC_BACKEND_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Backend.RequestTimeout = d
		}
	}
	if v := os.Getenv("EC_BUILDER_ESCAPE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Builder.EscapeValues = b
		}
	}
	if v := os.Getenv("EC_PREFS_BACKEND"); v != "" {
		cfg.Prefs.Backend = v
	}
	if v := os.Getenv("EC_PREFS_PATH"); v != "" {
		cfg.Prefs.Path = v
	}
	if v := os.Getenv("EC_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("EC_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("EC_JOURNAL_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Journal.Enabled = b
		}
	}
	if v := os.Getenv("EC_JOURNAL_DRIVER"); v != "" {
		cfg.Journal.Driver = v
	}
	if v := os.Getenv("EC_JOURNAL_SQLITE_PATH"); v != "" {
		cfg.Journal.SQLitePath = v
	}
	if v := os.Getenv("EC_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("EC_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("EC_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("EC_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("EC_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("EC_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("EC_KAFKA_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Kafka.Enabled = b
		}
	}
	if v := os.Getenv("EC_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("EC_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("EC_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("EC_METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if v := os.Getenv("EC_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
}
