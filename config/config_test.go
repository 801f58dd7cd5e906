package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATABASE_URL", "NATS_URL", "METRICS_ADDRESS", "OTLP_ENDPOINT", "OTLP_INSECURE",
		"TRACE_SAMPLE_RATE", "LOG_LEVEL", "ENV", "STATS_BATCH_SIZE", "STATS_SUBSCRIPTIONS_ENABLED",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_FileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
postgres:
  dsn: postgres://file
nats:
  url: nats://file:4222
observability:
  log_level: debug
stats:
  batch_size: 250
  canonical_bases:
    base-common: aspect-vigilance
`), 0o600))

	t.Setenv("NATS_URL", "nats://env:4222")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://file", cfg.Postgres.DSN)
	assert.Equal(t, "nats://env:4222", cfg.NATS.URL)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.Equal(t, 0.1, cfg.Observability.TraceSampleRate)
	assert.Equal(t, 250, cfg.Stats.BatchSize)
	assert.True(t, cfg.Stats.SubscriptionsEnabled)
	assert.Equal(t, map[string]string{"base-common": "aspect-vigilance"}, cfg.Stats.CanonicalBases)
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	_, err := LoadConfig(missing)
	require.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("NATS_URL", "nats://env:4222")
	t.Setenv("STATS_BATCH_SIZE", "100")
	t.Setenv("TRACE_SAMPLE_RATE", "0.5")

	cfg, err := LoadConfig(missing)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Stats.BatchSize)
	assert.Equal(t, 0.5, cfg.Observability.TraceSampleRate)

	obs := ToObsConfig(cfg)
	assert.Equal(t, ServiceName, obs.ServiceName)
	assert.Equal(t, 0.5, obs.TraceSampleRate)
}

func TestLoadConfig_InvalidBatchSize(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("STATS_BATCH_SIZE", "zero")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadConfig_NATSOptionalWithoutSubscriptions(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("STATS_SUBSCRIPTIONS_ENABLED", "false")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.False(t, cfg.Stats.SubscriptionsEnabled)
	assert.Empty(t, cfg.NATS.URL)
}
