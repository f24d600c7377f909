package trending

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricEngagementEventsTotal = "trending_engagement_events_total"
	MetricEngagementErrors      = "trending_engagement_errors_total"
)

// Metrics contains Prometheus metrics for trending updates.
// All operations are thread-safe.
type Metrics struct {
	eventsTotal *prometheus.CounterVec
	eventErrors prometheus.Counter
}

// NewMetrics creates and returns a new Metrics instance with all
// collectors initialized. The metrics are not registered; call Register
// to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricEngagementEventsTotal,
				Help: "Total number of engagement events recorded, by interaction type",
			},
			[]string{"type"},
		),
		eventErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricEngagementErrors,
				Help: "Total number of failed trending updates",
			},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.eventsTotal,
		m.eventErrors,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// IncEvent increments the events counter for an interaction type.
func (m *Metrics) IncEvent(interactionType string) {
	m.eventsTotal.WithLabelValues(interactionType).Inc()
}

// IncEventError increments the failed-update counter.
func (m *Metrics) IncEventError() {
	m.eventErrors.Inc()
}
