package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// InsightMetrics records timing and failure counts for analytics computations.
type InsightMetrics struct {
	duration *prometheus.HistogramVec
	failure  *prometheus.CounterVec
}

// NewInsightMetrics registers the insight metrics on the provided registerer.
func NewInsightMetrics(reg prometheus.Registerer) *InsightMetrics {
	if reg == nil {
		return &InsightMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "insight_computation_duration_seconds",
		Help:    "Duration of analytics computations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"computation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "insight_computation_failures_total",
		Help: "Failed analytics computations.",
	}, []string{"computation"})
	reg.MustRegister(duration, failure)
	return &InsightMetrics{
		duration: duration,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named computation.
func (m *InsightMetrics) ObserveDuration(computation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(computation)).Observe(duration.Seconds())
}

// IncFailure increments the failure counter for the named computation.
func (m *InsightMetrics) IncFailure(computation string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(computation)).Inc()
}

func normalizeLabel(computation string) string {
	if computation == "" {
		return "unknown"
	}
	return computation
}
