package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig selects a Redis server for the shared cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// DefaultRedisPrefix namespaces ghinline keys inside a shared Redis.
const DefaultRedisPrefix = "ghinline:"

// Dial connects to Redis and verifies the connection with PING.
func Dial(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// Redis is a Cache backed by Redis. Values are stored as JSON and expire
// through Redis key expiry, so a stale entry is never returned.
// Backend failures are logged and reported as misses.
type Redis[T any] struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedis wraps an existing client. The namespace is appended to prefix
// so several value types can share one database.
func NewRedis[T any](client redis.UniversalClient, prefix, namespace string, ttl time.Duration, logger *slog.Logger) *Redis[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis[T]{
		client: client,
		prefix: prefix + namespace + ":",
		ttl:    ttl,
		logger: logger.With("component", "cache.redis"),
	}
}

// Get loads and decodes the value stored under key.
func (r *Redis[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T

	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false
	}
	if err != nil {
		r.logger.Warn("cache read failed", "key", key, "error", err)
		return zero, false
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		r.logger.Warn("cache entry undecodable", "key", key, "error", err)
		return zero, false
	}
	return v, true
}

// Set encodes value and stores it with the cache TTL.
func (r *Redis[T]) Set(ctx context.Context, key string, value T) {
	data, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn("cache entry unencodable", "key", key, "error", err)
		return
	}
	if err := r.client.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		r.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

var _ Cache[int] = (*Redis[int])(nil)
