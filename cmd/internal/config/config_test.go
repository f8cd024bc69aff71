package config

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var keys = []string{
	"PORT", "DATABASE_PATH", "TIMEZONE", "BUSINESS_HOURS_START", "BUSINESS_HOURS_END",
	"BUSINESS_DAYS", "SLOT_STEP_MINUTES", "LINK_BASE_URL", "KAFKA_BROKERS", "KAFKA_TOPIC",
	"REDIS_URL", "RATE_LIMIT_RPS", "OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SAMPLING_RATIO",
}

// clearEnv unsets every key for the duration of the test; t.Setenv restores them.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "6060", cfg.Port)
	assert.Equal(t, "./database.db", cfg.DatabasePath)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 9*60, cfg.BusinessHours.Open)
	assert.Equal(t, 17*60, cfg.BusinessHours.Close)
	assert.Equal(t, []time.Weekday{1, 2, 3, 4, 5}, cfg.BusinessHours.Days)
	assert.Equal(t, 30*time.Minute, cfg.SlotStep)
	assert.Equal(t, "http://localhost:6060", cfg.LinkBaseURL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "schedule.events", cfg.KafkaTopic)
	assert.Equal(t, 20.0, cfg.RateLimitRPS)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "localhost:4317", cfg.Tracing.Endpoint)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"PORT=8080\n"+
			"DATABASE_PATH=\n"+
			"BUSINESS_HOURS_START=08:30\n"+
			"BUSINESS_DAYS=0,6\n"+
			"SLOT_STEP_MINUTES=15\n"+
			"KAFKA_BROKERS=k1:9092, k2:9092\n"+
			"RATE_LIMIT_RPS=0\n"+
			"OTEL_ENABLED=true\n"+
			"OTEL_EXPORTER_OTLP_ENDPOINT=collector:4317\n"+
			"OTEL_SAMPLING_RATIO=0.25\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "", cfg.DatabasePath, "an explicit empty path disables persistence")
	assert.Equal(t, 8*60+30, cfg.BusinessHours.Open)
	assert.Equal(t, []time.Weekday{time.Sunday, time.Saturday}, cfg.BusinessHours.Days)
	assert.Equal(t, 15*time.Minute, cfg.SlotStep)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 0.0, cfg.RateLimitRPS)
	assert.Equal(t, "http://localhost:8080", cfg.LinkBaseURL)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "collector:4317", cfg.Tracing.Endpoint)
	assert.Equal(t, 0.25, cfg.Tracing.SampleRatio)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"PORT":                "http",
		"TIMEZONE":            "Mars/Olympus",
		"BUSINESS_HOURS_END":  "08:00",
		"BUSINESS_DAYS":       "1,8",
		"SLOT_STEP_MINUTES":   "0",
		"RATE_LIMIT_RPS":      "-1",
		"OTEL_ENABLED":        "sometimes",
		"OTEL_SAMPLING_RATIO": "1.5",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a, ,b ,"))
	assert.Nil(t, SplitList(""))
}
