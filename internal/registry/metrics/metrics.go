package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks registry lookups and foreign-asset cache traffic.
type Metrics struct {
	Lookups          *prometheus.CounterVec
	CacheHits        *prometheus.CounterVec
	CacheMisses      *prometheus.CounterVec
	CacheLatency     *prometheus.HistogramVec
	ForeignAssetsSet prometheus.Counter
}

// New registers registry metrics on reg. A nil reg uses the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Lookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "xcmkit_registry_lookups_total",
			Help: "Registry lookups by kind and outcome",
		}, []string{"kind", "outcome"}),
		CacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "xcmkit_registry_cache_hits_total",
			Help: "Foreign-asset cache hits by backend",
		}, []string{"backend"}),
		CacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "xcmkit_registry_cache_misses_total",
			Help: "Foreign-asset cache misses by backend",
		}, []string{"backend"}),
		CacheLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "xcmkit_registry_cache_duration_seconds",
			Help:    "Foreign-asset cache operation latency",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}, []string{"backend", "op"}),
		ForeignAssetsSet: f.NewCounter(prometheus.CounterOpts{
			Name: "xcmkit_registry_foreign_assets_cached_total",
			Help: "Foreign assets written to the cache",
		}),
	}
}

func (m *Metrics) RecordLookup(kind string, found bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if found {
		outcome = "hit"
	}
	m.Lookups.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) RecordCacheHit(backend string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(backend).Inc()
}

func (m *Metrics) RecordCacheMiss(backend string) {
	if m == nil {
		return
	}
	m.CacheMisses.WithLabelValues(backend).Inc()
}

func (m *Metrics) ObserveCacheDuration(backend, op string, seconds float64) {
	if m == nil {
		return
	}
	m.CacheLatency.WithLabelValues(backend, op).Observe(seconds)
}

func (m *Metrics) IncForeignAssetsCached() {
	if m == nil {
		return
	}
	m.ForeignAssetsSet.Inc()
}
