package main

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"roomadmin/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.New(io.Discard)

	t.Run("Memory", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Storage.Driver = config.DriverMemory
		st, err := openStore(ctx, cfg, &logger)
		require.NoError(t, err)
		defer st.Close()
		assert.Nil(t, st.pinger)
		assert.Nil(t, st.sqlite)
		require.NoError(t, st.store.Set(ctx, "rooms", "[]"))
	})

	t.Run("SQLite", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "rooms.db")
		st, err := openStore(ctx, cfg, &logger)
		require.NoError(t, err)
		defer st.Close()
		require.NotNil(t, st.sqlite)
		require.NoError(t, st.pinger.Ping(ctx))
	})

	t.Run("Redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &config.Config{}
		cfg.Storage.Driver = config.DriverRedis
		cfg.Storage.Redis.Address = mr.Addr()
		st, err := openStore(ctx, cfg, &logger)
		require.NoError(t, err)
		defer st.Close()
		require.NoError(t, st.store.Set(ctx, "users", "[]"))
		assert.True(t, mr.Exists("roomadmin:users"))
	})

	t.Run("RedisDown", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		cfg := &config.Config{}
		cfg.Storage.Driver = config.DriverRedis
		cfg.Storage.Redis.Address = addr
		_, err := openStore(ctx, cfg, &logger)
		assert.Error(t, err)
	})

	t.Run("FailoverStartsWithRedisDown", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		cfg := &config.Config{}
		cfg.Storage.Driver = config.DriverFailover
		cfg.Storage.Redis.Address = addr
		cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "rooms.db")
		st, err := openStore(ctx, cfg, &logger)
		require.NoError(t, err)
		defer st.Close()
		require.NoError(t, st.store.Set(ctx, "bookings", "[]"))
		v, err := st.sqlite.Get(ctx, "bookings")
		require.NoError(t, err)
		assert.Equal(t, "[]", v)
	})
}

func TestConfigureLogger(t *testing.T) {
	base := zerolog.New(io.Discard)

	cfg := &config.Config{}
	cfg.Logging.Pretty = true
	cfg.Logging.Level = "debug"
	assert.Equal(t, zerolog.DebugLevel, configureLogger(cfg, base).GetLevel())

	cfg.Logging.Level = "loud"
	assert.Equal(t, zerolog.InfoLevel, configureLogger(cfg, base).GetLevel())
}
