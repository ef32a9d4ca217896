package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by backend (memory, redis)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lenta_cache_hits_total",
			Help: "Total number of Lenta API cache hits",
		},
		[]string{"backend"},
	)

	// CacheMisses tracks cache misses by backend
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lenta_cache_misses_total",
			Help: "Total number of Lenta API cache misses",
		},
		[]string{"backend"},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lenta_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"backend", "operation"}, // "connect", "get", "set", "reset"
	)

	// CacheEntries tracks the number of entries held in process memory
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lenta_cache_entries",
			Help: "Current number of entries in the in-process cache",
		},
		[]string{"backend"}, // "memory"
	)
)
