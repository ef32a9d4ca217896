package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const redisLabel = "redis"

// DefaultKeyPrefix namespaces keys written by the Redis backend.
const DefaultKeyPrefix = "lenta_cache"

// RedisConfig holds the Redis backend configuration.
type RedisConfig struct {
	// Addr is the host:port of the Redis server
	Addr string

	// Password for AUTH (empty for none)
	Password string

	// DB is the logical database number
	DB int

	// PoolSize is the maximum number of socket connections (0 for the go-redis default)
	PoolSize int

	// KeyPrefix is prepended to every key as "prefix:key".
	// An empty prefix makes Reset flush the whole database.
	KeyPrefix string

	// DialTimeout bounds connection establishment (0 for the go-redis default)
	DialTimeout time.Duration
}

// RedisBackend stores JSON documents in Redis with native expiry.
// The connection is created on first use.
type RedisBackend struct {
	cfg    RedisConfig
	logger zerolog.Logger

	mu  sync.Mutex
	rdb *redis.Client
}

// NewRedisBackend creates a backend for cfg. No connection is made until the
// first operation.
func NewRedisBackend(cfg RedisConfig) *RedisBackend {
	return &RedisBackend{
		cfg:    cfg,
		logger: log.With().Str("component", "cache").Str("backend", redisLabel).Logger(),
	}
}

// client returns the shared connection, creating it if needed.
// A failed connection attempt is not remembered; the next caller retries.
func (r *RedisBackend) client(ctx context.Context) (*redis.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rdb != nil {
		return r.rdb, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        r.cfg.Addr,
		Password:    r.cfg.Password,
		DB:          r.cfg.DB,
		PoolSize:    r.cfg.PoolSize,
		DialTimeout: r.cfg.DialTimeout,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		CacheErrors.WithLabelValues(redisLabel, "connect").Inc()
		return nil, fmt.Errorf("redis connect %s: %w", r.cfg.Addr, err)
	}

	r.logger.Info().Str("addr", r.cfg.Addr).Int("db", r.cfg.DB).Msg("Connected to Redis")
	r.rdb = rdb
	return rdb, nil
}

func (r *RedisBackend) key(key string) string {
	if r.cfg.KeyPrefix == "" {
		return key
	}
	return r.cfg.KeyPrefix + ":" + key
}

// Get retrieves a value by key.
// Returns ErrCacheMiss if the key doesn't exist.
func (r *RedisBackend) Get(ctx context.Context, key string) (json.RawMessage, error) {
	rdb, err := r.client(ctx)
	if err != nil {
		return nil, err
	}

	data, err := rdb.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.WithLabelValues(redisLabel).Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues(redisLabel, "get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	if !json.Valid(data) {
		CacheErrors.WithLabelValues(redisLabel, "get").Inc()
		return nil, fmt.Errorf("%w: key %q does not hold a JSON document", ErrInvalidEntry, key)
	}

	CacheHits.WithLabelValues(redisLabel).Inc()
	return json.RawMessage(data), nil
}

// Set stores value under key with a Redis expiry of ttl.
func (r *RedisBackend) Set(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if !json.Valid(value) {
		CacheErrors.WithLabelValues(redisLabel, "set").Inc()
		return fmt.Errorf("%w: refusing to store non-JSON value", ErrInvalidEntry)
	}

	rdb, err := r.client(ctx)
	if err != nil {
		return err
	}

	if err := rdb.Set(ctx, r.key(key), []byte(value), ttl).Err(); err != nil {
		CacheErrors.WithLabelValues(redisLabel, "set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Reset removes cached entries. With a key prefix only keys under the prefix
// are deleted, otherwise the whole logical database is flushed.
func (r *RedisBackend) Reset(ctx context.Context) error {
	rdb, err := r.client(ctx)
	if err != nil {
		return err
	}

	if r.cfg.KeyPrefix == "" {
		if err := rdb.FlushDB(ctx).Err(); err != nil {
			CacheErrors.WithLabelValues(redisLabel, "reset").Inc()
			return fmt.Errorf("redis flushdb: %w", err)
		}
		return nil
	}

	var batch []string
	iter := rdb.Scan(ctx, 0, r.cfg.KeyPrefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := rdb.Del(ctx, batch...).Err(); err != nil {
				CacheErrors.WithLabelValues(redisLabel, "reset").Inc()
				return fmt.Errorf("redis del: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		CacheErrors.WithLabelValues(redisLabel, "reset").Inc()
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(batch) > 0 {
		if err := rdb.Del(ctx, batch...).Err(); err != nil {
			CacheErrors.WithLabelValues(redisLabel, "reset").Inc()
			return fmt.Errorf("redis del: %w", err)
		}
	}

	return nil
}

// Close releases the connection if one was made.
func (r *RedisBackend) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rdb == nil {
		return nil
	}

	err := r.rdb.Close()
	r.rdb = nil
	if err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}
