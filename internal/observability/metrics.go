package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheLookups counts read cache lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bitacora_read_cache_lookups_total",
		Help: "Read cache lookups by result",
	}, []string{"result"})

	// CacheInvalidations counts tag invalidations by tag family.
	CacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bitacora_read_cache_invalidations_total",
		Help: "Read cache tag invalidations by tag family",
	}, []string{"tag"})

	// DatabaseQueryLatency records repository latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bitacora_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// SearchFallbacks counts searches served by the database because the index was unavailable.
	SearchFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bitacora_search_fallbacks_total",
		Help: "Searches served by the database fallback",
	})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
