package feed

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricGenerateTotal    = "feed_generate_total"
	MetricGenerateErrors   = "feed_generate_errors_total"
	MetricGenerateDuration = "feed_generate_duration_seconds"
	MetricCandidateCount   = "feed_candidate_count"
	MetricSourceFailures   = "feed_source_failures_total"
)

// Metrics contains Prometheus metrics for the feed pipeline.
// All operations are thread-safe.
type Metrics struct {
	generateTotal    prometheus.Counter
	generateErrors   prometheus.Counter
	generateDuration prometheus.Histogram
	candidateCount   prometheus.Histogram
	sourceFailures   *prometheus.CounterVec
}

// NewMetrics creates and returns a new Metrics instance with all
// collectors initialized. The metrics are not registered; call Register
// to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		generateTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricGenerateTotal,
				Help: "Total number of feed generation requests",
			},
		),
		generateErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricGenerateErrors,
				Help: "Total number of failed feed generation requests",
			},
		),
		generateDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricGenerateDuration,
				Help:    "Feed generation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		candidateCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricCandidateCount,
				Help:    "Number of unique candidates gathered per feed request",
				Buckets: []float64{0, 10, 25, 50, 100, 150, 200, 300},
			},
		),
		sourceFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricSourceFailures,
				Help: "Total number of candidate source failures, by source",
			},
			[]string{"source"},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.generateTotal,
		m.generateErrors,
		m.generateDuration,
		m.candidateCount,
		m.sourceFailures,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveGenerate records one feed generation outcome.
func (m *Metrics) ObserveGenerate(duration time.Duration, candidates int, err error) {
	m.generateTotal.Inc()
	if err != nil {
		m.generateErrors.Inc()
		return
	}
	m.generateDuration.Observe(duration.Seconds())
	m.candidateCount.Observe(float64(candidates))
}

// IncSourceFailure records a candidate source failure.
func (m *Metrics) IncSourceFailure(source string) {
	m.sourceFailures.WithLabelValues(source).Inc()
}
