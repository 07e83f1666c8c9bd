// Package app builds the store, cache and service described by a config.Config.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/joshdurbin/hashlink/internal/cache"
	cachememory "github.com/joshdurbin/hashlink/internal/cache/memory"
	cacheredis "github.com/joshdurbin/hashlink/internal/cache/redis"
	"github.com/joshdurbin/hashlink/internal/config"
	"github.com/joshdurbin/hashlink/internal/repository"
	"github.com/joshdurbin/hashlink/internal/repository/gormstore"
	"github.com/joshdurbin/hashlink/internal/repository/memory"
	"github.com/joshdurbin/hashlink/internal/repository/postgres"
	"github.com/joshdurbin/hashlink/internal/repository/sqlite"
	"github.com/joshdurbin/hashlink/internal/service"
	"github.com/joshdurbin/hashlink/internal/shortener"
)

// NewStore opens the store selected by cfg.Driver
func NewStore(ctx context.Context, cfg config.DatabaseConfig) (repository.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.New(cfg.URL)
	case config.DriverPostgres:
		return postgres.New(ctx, postgres.DefaultConfig(cfg.URL, cfg.MaxConnections))
	case config.DriverMySQL:
		return gormstore.NewMySQL(cfg.URL, cfg.MaxConnections)
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// NewCache builds the cache selected by cfg.Driver
func NewCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Driver {
	case config.CacheMemory:
		return cachememory.New(cfg.TTL), nil
	case config.CacheRedis:
		return cacheredis.New(ctx, cacheredis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.TTL,
		})
	case config.CacheNone:
		return cache.Nop{}, nil
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", cfg.Driver)
	}
}

// NewService wires a store, cache and allocator into a service.Shortener.
// On error everything opened so far is closed.
func NewService(ctx context.Context, cfg *config.Config, observer shortener.Observer, logger *zap.Logger) (service.Shortener, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := NewStore(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	c, err := NewCache(ctx, cfg.Cache)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	opts := []shortener.Option{shortener.WithLogger(logger)}
	if observer != nil {
		opts = append(opts, shortener.WithObserver(observer))
	}
	allocator, err := shortener.NewAllocator(store, cfg.Shortener, opts...)
	if err != nil {
		c.Close()
		store.Close()
		return nil, fmt.Errorf("failed to create allocator: %w", err)
	}

	svc, err := service.NewURLShortener(store, c, allocator, logger)
	if err != nil {
		c.Close()
		store.Close()
		return nil, err
	}

	logger.Info("service initialized",
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.Int("hash_length", cfg.Shortener.HashLength))
	return svc, nil
}
