package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "America/New_York", c.Venue)
	assert.Equal(t, 15*time.Second, c.FRED.Timeout)
	assert.Equal(t, 15*time.Second, c.Market.Timeout)
	assert.Equal(t, time.Hour, c.Events.CacheTTL)
	assert.Equal(t, 6, c.Market.Workers)
	assert.Equal(t, "none", c.Archive.Backend)
	assert.Equal(t, []string{"localhost:9092"}, c.Kafka.Brokers)
	assert.False(t, c.HasFREDKey())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: test
market:
  workers: 3
  cache:
    ttl: 10m
archive:
  backend: clickhouse
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test", c.Environment)
	assert.Equal(t, 3, c.Market.Workers)
	assert.Equal(t, 10*time.Minute, c.Market.Cache.TTL)
	assert.Equal(t, "clickhouse", c.Archive.Backend)
	assert.Equal(t, "yahoo", c.Market.Provider)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"price cache over an hour", "market:\n  cache:\n    ttl: 2h\n"},
		{"zero workers", "market:\n  workers: 0\n"},
		{"unknown provider", "market:\n  provider: bloomberg\n"},
		{"polygon without key", "market:\n  provider: polygon\n"},
		{"unknown archive", "archive:\n  backend: s3\n"},
		{"bad venue", "venue: Mars/Olympus\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("FRED_API_KEY", "abc")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("ARCHIVE_BACKEND", "kafka")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("HTTP_PORT", "9090")

	c, err := LoadWithEnv(writeConfig(t, "environment: test\n"))
	require.NoError(t, err)
	assert.True(t, c.HasFREDKey())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "kafka", c.Archive.Backend)
	assert.True(t, c.Redis.Enabled)
	assert.Equal(t, "cache:6379", c.Redis.Addr)
	assert.Equal(t, 9090, c.Server.Port)
}
