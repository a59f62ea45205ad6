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

func TestLoad(t *testing.T) {
	t.Setenv("ROOMADMIN_TEST_REDIS_PASSWORD", "s3cret")
	path := writeConfig(t, `
http:
  addr: ":9000"
  rate_limit: 5
  cors_origins: ["http://localhost:3000"]
storage:
  driver: failover
  sqlite:
    path: /tmp/roomadmin.db
  redis:
    address: redis:6379
    password: ${ROOMADMIN_TEST_REDIS_PASSWORD}
backup:
  enabled: true
  interval_hours: 6
telegram:
  chat_ids: [1, 2]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr())
	rate, burst := cfg.RateLimit()
	assert.Equal(t, 5.0, rate)
	assert.Equal(t, 6, burst)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, DriverFailover, cfg.StorageDriver())
	assert.Equal(t, "s3cret", cfg.Storage.Redis.Password)
	assert.Equal(t, 6*time.Hour, cfg.BackupInterval())
	assert.Equal(t, []int64{1, 2}, cfg.Telegram.ChatIDs)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr())
	rate, _ := cfg.RateLimit()
	assert.Zero(t, rate)
	assert.Equal(t, DriverSQLite, cfg.StorageDriver())
	assert.Equal(t, "data/roomadmin.db", cfg.SQLitePath())
	assert.Equal(t, "localhost:6379", cfg.RedisAddress())
	assert.Equal(t, 24*time.Hour, cfg.BackupInterval())
	assert.Equal(t, 8081, cfg.HealthCheckPort())
	assert.Equal(t, 9090, cfg.PrometheusPort())
	assert.Equal(t, 5, cfg.DefaultPageSize())
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout())
}

func TestLoadPathFromEnv(t *testing.T) {
	t.Setenv(PathEnv, writeConfig(t, "storage:\n  driver: memory\n"))
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.StorageDriver())
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "storage:\n  driver: mongo\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "telegram:\n  enabled: true\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDigestLocation(t *testing.T) {
	cfg, err := Load(writeConfig(t, "telegram:\n  digest_enabled: true\n  digest_hour: 18\n  timezone: UTC\n"))
	require.NoError(t, err)
	loc, err := cfg.DigestLocation()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
	assert.Equal(t, 18, cfg.Telegram.DigestHour)

	_, err = Load(writeConfig(t, "telegram:\n  timezone: Mars/Olympus\n"))
	assert.Error(t, err)
}
