package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache or has expired
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the stored value is not a valid JSON document
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Backend is a key/value store for JSON documents with per-key expiry.
type Backend interface {
	// Get returns the value stored under key.
	// Returns ErrCacheMiss if the key is absent or expired.
	Get(ctx context.Context, key string) (json.RawMessage, error)

	// Set stores value under key for ttl. Existing values are overwritten.
	// A non-positive ttl stores nothing.
	Set(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) error

	// Reset removes every entry owned by the backend.
	Reset(ctx context.Context) error

	// Close releases backend resources. Calling Close more than once is safe.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	// Backend is one of "memory", "redis" or "none"
	Backend string

	// Redis is used when Backend is "redis"
	Redis RedisConfig
}

// New creates the backend selected by cfg.
// Returns a nil Backend when caching is disabled.
func New(cfg Config) (Backend, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendMemory, "":
		return NewMemoryBackend(), nil
	case BackendRedis:
		if cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("redis address is required for redis cache backend")
		}
		return NewRedisBackend(cfg.Redis), nil
	case BackendNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

var (
	_ Backend = (*MemoryBackend)(nil)
	_ Backend = (*RedisBackend)(nil)
)
