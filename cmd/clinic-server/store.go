package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"clinic/backend/internal/config"
	"clinic/backend/internal/store"
	"clinic/backend/internal/store/file"
	"clinic/backend/internal/store/postgres"
	"clinic/backend/internal/store/redis"
)

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendFile:
		log.Info("opening file store", slog.String("path", cfg.DataFile))
		st, err := file.Open(afero.NewOsFs(), cfg.DataFile)
		if err != nil {
			return nil, err
		}
		return st, nil

	case config.BackendPostgres:
		log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
		st, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		})
		if err != nil {
			args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
			log.Error("database connection failed", args...)
			return nil, err
		}
		return st, nil

	case config.BackendRedis:
		log.Info("connecting to redis", slog.String("redis_addr", cfg.RedisAddr), slog.Int("redis_db", cfg.RedisDB))
		client, err := redis.Dial(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return redis.New(client, cfg.RedisKey), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
