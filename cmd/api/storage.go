package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sga-feedback/backend/internal/storage"
	"github.com/sga-feedback/backend/internal/storage/memory"
	"github.com/sga-feedback/backend/internal/storage/redis"
	"github.com/sga-feedback/backend/internal/storage/sqlite"
	"github.com/sga-feedback/backend/pkg/config"
	appLogger "github.com/sga-feedback/backend/pkg/logger"
	"github.com/sga-feedback/backend/pkg/retry"
)

// backends holds the store for each storage area. Areas configured with the
// same backend share one connection.
type backends struct {
	settings storage.Store
	history  storage.Store
	closers  []func() error
}

func (b *backends) Close() {
	for _, closeFn := range b.closers {
		if err := closeFn(); err != nil {
			appLogger.Warn("Failed to close storage", zap.Error(err))
		}
	}
}

func openBackends(ctx context.Context, cfg *config.Config) (*backends, error) {
	b := &backends{}
	opened := map[string]storage.Store{
		config.BackendMemory: memory.New(),
	}

	if cfg.Uses(config.BackendSQLite) {
		client, err := openSQLite(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		opened[config.BackendSQLite] = client
		b.closers = append(b.closers, client.Close)
	}

	if cfg.Uses(config.BackendRedis) {
		client, err := openRedis(ctx, cfg.Redis)
		if err != nil {
			b.Close()
			return nil, err
		}
		opened[config.BackendRedis] = client
		b.closers = append(b.closers, client.Close)
	}

	b.settings = opened[cfg.Storage.SettingsBackend]
	b.history = opened[cfg.Storage.HistoryBackend]

	appLogger.Info("Storage ready",
		zap.String("settings_backend", cfg.Storage.SettingsBackend),
		zap.String("history_backend", cfg.Storage.HistoryBackend),
	)
	return b, nil
}

func openSQLite(ctx context.Context, path string) (*sqlite.Client, error) {
	client, err := sqlite.NewClient(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite client: %w", err)
	}

	rc := retry.DefaultConfig("sqlite-schema")
	rc.Logger = appLogger.Log
	err = retry.Do(ctx, rc, client.InitSchema)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return client, nil
}

func openRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rc := retry.DefaultConfig("redis-connect")
	rc.Logger = appLogger.Log

	client, err := retry.DoWithResult(ctx, rc, func(ctx context.Context) (*redis.Client, error) {
		return redis.NewClient(ctx, redis.Options{
			Host:      cfg.Host,
			Port:      cfg.Port,
			Password:  cfg.Password,
			DB:        cfg.DB,
			KeyPrefix: cfg.KeyPrefix,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
