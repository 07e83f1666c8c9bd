// Package redis implements cache.Cache on a Redis server.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joshdurbin/hashlink/internal/cache"
)

// KeyPrefix namespaces every key written by the cache
const KeyPrefix = "shortlink:"

// Config holds the Redis connection settings
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Cache implements cache.Cache using Redis
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// New connects to Redis and verifies the connection
func New(ctx context.Context, cfg Config) (*Cache, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 20,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewWithClient(client, cfg.TTL), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client redis.UniversalClient, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get retrieves the URL for a short code
func (c *Cache) Get(ctx context.Context, shortCode string) (string, bool, error) {
	url, err := c.client.Get(ctx, key(shortCode)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get cache entry: %w", err)
	}
	return url, true, nil
}

// Set stores the URL for a short code with the configured TTL
func (c *Cache) Set(ctx context.Context, shortCode, url string) error {
	if err := c.client.Set(ctx, key(shortCode), url, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *Cache) Close() error {
	return c.client.Close()
}

func key(shortCode string) string {
	return KeyPrefix + shortCode
}

var _ cache.Cache = (*Cache)(nil)
