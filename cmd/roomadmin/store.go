package main

import (
	"context"
	"fmt"

	"roomadmin/internal/config"
	"roomadmin/internal/kvstore"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// openedStore is the store selected by config plus what main needs to manage it.
type openedStore struct {
	store  kvstore.Store
	pinger kvstore.Pinger
	// sqlite is set when a sqlite file backs the store, for backups.
	sqlite *kvstore.SQLiteStore
	rdb    *redis.Client
}

func (s *openedStore) Close() {
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
	if s.sqlite != nil {
		_ = s.sqlite.Close()
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*openedStore, error) {
	out := &openedStore{}
	switch cfg.StorageDriver() {
	case config.DriverMemory:
		out.store = kvstore.NewMemoryStore()

	case config.DriverSQLite:
		db, err := kvstore.NewSQLiteStore(cfg.SQLitePath(), logger)
		if err != nil {
			return nil, err
		}
		out.store, out.pinger, out.sqlite = db, db, db

	case config.DriverRedis:
		out.rdb = newRedisClient(cfg)
		rs := kvstore.NewRedisStore(out.rdb, cfg.Storage.Redis.Prefix)
		if err := rs.Ping(ctx); err != nil {
			_ = out.rdb.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddress(), err)
		}
		out.store, out.pinger = rs, rs

	case config.DriverFailover:
		db, err := kvstore.NewSQLiteStore(cfg.SQLitePath(), logger)
		if err != nil {
			return nil, err
		}
		out.sqlite = db
		out.rdb = newRedisClient(cfg)
		rs := kvstore.NewRedisStore(out.rdb, cfg.Storage.Redis.Prefix)
		if err := rs.Ping(ctx); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.RedisAddress()).Msg("Redis unreachable at start, serving from sqlite")
		}
		fs := kvstore.NewFailoverStore(rs, db, logger)
		out.store, out.pinger = fs, fs

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver())
	}
	return out, nil
}

func newRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress(),
		Password: cfg.Storage.Redis.Password,
		DB:       cfg.Storage.Redis.DB,
	})
}
