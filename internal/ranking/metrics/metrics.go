package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SnapshotRecomputes prometheus.Counter
	SnapshotDurationMs prometheus.Histogram
	CacheHits          *prometheus.CounterVec
	Invalidations      prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		SnapshotRecomputes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "itrust_ranking_snapshot_recomputes_total",
			Help: "Total number of leaderboard snapshot recomputations",
		}),
		SnapshotDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "itrust_ranking_snapshot_duration_ms",
			Help:    "Latency of leaderboard snapshot recomputation in milliseconds",
			Buckets: []float64{1, 2.5, 5, 10, 25, 50, 100, 250},
		}),
		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "itrust_ranking_cache_hits_total",
			Help: "Total number of ranking snapshot cache hits by layer",
		}, []string{"layer"}),
		Invalidations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "itrust_ranking_invalidations_total",
			Help: "Total number of ranking cache invalidations from committed vouches",
		}),
	}
}

func (m *Metrics) ObserveRecompute(d time.Duration) {
	m.SnapshotRecomputes.Inc()
	m.SnapshotDurationMs.Observe(float64(d.Microseconds()) / 1000.0)
}

func (m *Metrics) IncrementCacheHit(layer string) {
	m.CacheHits.WithLabelValues(layer).Inc()
}

func (m *Metrics) IncrementInvalidations() {
	m.Invalidations.Inc()
}
