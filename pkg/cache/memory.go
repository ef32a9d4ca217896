package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const memoryLabel = "memory"

// MemoryBackend keeps entries in a process-local map.
// Expired entries are evicted when they are read; there is no background sweep.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string]Entry
	now     func() time.Time
	logger  zerolog.Logger
}

// MemoryOption configures a MemoryBackend.
type MemoryOption func(*MemoryBackend)

// WithClock replaces the time source used for expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryBackend) {
		m.now = now
	}
}

// NewMemoryBackend creates an empty in-process backend.
func NewMemoryBackend(opts ...MemoryOption) *MemoryBackend {
	m := &MemoryBackend{
		entries: make(map[string]Entry),
		now:     time.Now,
		logger:  log.With().Str("component", "cache").Str("backend", memoryLabel).Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get retrieves a value by key.
// Returns ErrCacheMiss if the key doesn't exist or the entry is expired.
func (m *MemoryBackend) Get(_ context.Context, key string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		CacheMisses.WithLabelValues(memoryLabel).Inc()
		return nil, ErrCacheMiss
	}

	now := m.now()
	if entry.IsExpired(now) {
		delete(m.entries, key)
		CacheEntries.WithLabelValues(memoryLabel).Set(float64(len(m.entries)))
		CacheMisses.WithLabelValues(memoryLabel).Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues(memoryLabel).Inc()
	m.logger.Debug().Str("key", key).Dur("ttl", entry.TTL(now)).Msg("Cache hit")

	return cloneValue(entry.Value), nil
}

// Set stores value under key until ttl elapses.
func (m *MemoryBackend) Set(_ context.Context, key string, value json.RawMessage, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = NewEntry(value, m.now(), ttl)
	CacheEntries.WithLabelValues(memoryLabel).Set(float64(len(m.entries)))
	return nil
}

// Reset drops every entry.
func (m *MemoryBackend) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]Entry)
	CacheEntries.WithLabelValues(memoryLabel).Set(0)
	return nil
}

// Close drops every entry. The backend stays usable afterwards.
func (m *MemoryBackend) Close() error {
	return m.Reset(context.Background())
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
