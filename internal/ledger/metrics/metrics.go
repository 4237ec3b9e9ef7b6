package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	VouchesCommitted  prometheus.Counter
	VouchFailures     *prometheus.CounterVec
	VouchDurationMs   prometheus.Histogram
	IdempotentReplays prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		VouchesCommitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "itrust_vouches_committed_total",
			Help: "Total number of committed vouch transactions",
		}),
		VouchFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "itrust_vouch_failures_total",
			Help: "Total number of failed vouch attempts by error code",
		}, []string{"code"}),
		VouchDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "itrust_vouch_duration_ms",
			Help:    "Latency of vouch transactions in milliseconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500},
		}),
		IdempotentReplays: promauto.NewCounter(prometheus.CounterOpts{
			Name: "itrust_vouch_idempotent_replays_total",
			Help: "Total number of vouch requests answered from the idempotency cache",
		}),
	}
}

func (m *Metrics) ObserveCommit(d time.Duration) {
	m.VouchesCommitted.Inc()
	m.VouchDurationMs.Observe(float64(d.Microseconds()) / 1000.0)
}

func (m *Metrics) IncrementFailure(code string) {
	m.VouchFailures.WithLabelValues(code).Inc()
}

func (m *Metrics) IncrementIdempotentReplay() {
	m.IdempotentReplays.Inc()
}
