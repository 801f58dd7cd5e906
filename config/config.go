package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	cardstatsdb "github.com/swubase/cardstats/app/modules/cardstats/infrastructure/repositories"
	"github.com/swubase/cardstats/pkg/observability"
)

const (
	ServiceName    = "cardstats"
	ServiceVersion = "0.1.0"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Observability ObservabilityConfig `yaml:"observability"`
	Stats         StatsConfig         `yaml:"stats"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress  string  `yaml:"metrics_address"`
	OTLPEndpoint    string  `yaml:"otlp_endpoint"`
	OTLPInsecure    bool    `yaml:"otlp_insecure"`
	TraceSampleRate float64 `yaml:"trace_sample_rate"`
	Environment     string  `yaml:"environment"`
	LogLevel        string  `yaml:"log_level"`
}

// StatsConfig tunes the recompute engine.
type StatsConfig struct {
	BatchSize int `yaml:"batch_size"`
	// CanonicalBases maps generic base card ids to their aspect key.
	CanonicalBases       map[string]string `yaml:"canonical_bases"`
	SubscriptionsEnabled bool              `yaml:"subscriptions_enabled"`
}

// LoadConfig loads the configuration from a YAML file, then applies
// environment overrides. A missing file falls back to the environment alone.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return loadConfigFromEnv()
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	cfg := defaults()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if cfg.NATS.URL == "" && cfg.Stats.SubscriptionsEnabled {
		return nil, fmt.Errorf("NATS_URL environment variable not set")
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Observability: ObservabilityConfig{
			TraceSampleRate: 0.1,
			LogLevel:        "info",
		},
		Stats: StatsConfig{
			BatchSize:            cardstatsdb.DefaultBatchSize,
			SubscriptionsEnabled: true,
		},
	}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("OTLP_ENDPOINT"); v != "" {
		cfg.Observability.OTLPEndpoint = v
	}
	if v := os.Getenv("OTLP_INSECURE"); v != "" {
		cfg.Observability.OTLPInsecure = v == "true"
	}
	if v := os.Getenv("TRACE_SAMPLE_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid TRACE_SAMPLE_RATE value: %w", err)
		}
		cfg.Observability.TraceSampleRate = f
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("STATS_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid STATS_BATCH_SIZE value: %q", v)
		}
		cfg.Stats.BatchSize = n
	}
	if v := os.Getenv("STATS_SUBSCRIPTIONS_ENABLED"); v != "" {
		cfg.Stats.SubscriptionsEnabled = v == "true"
	}
	if cfg.Stats.BatchSize <= 0 {
		cfg.Stats.BatchSize = cardstatsdb.DefaultBatchSize
	}
	return nil
}

func ToObsConfig(appCfg *Config) observability.Config {
	return observability.Config{
		ServiceName:     ServiceName,
		ServiceVersion:  ServiceVersion,
		Environment:     appCfg.Observability.Environment,
		LogLevel:        appCfg.Observability.LogLevel,
		OTLPEndpoint:    appCfg.Observability.OTLPEndpoint,
		OTLPInsecure:    appCfg.Observability.OTLPInsecure,
		TraceSampleRate: appCfg.Observability.TraceSampleRate,
	}
}
