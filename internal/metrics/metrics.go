// Package metrics provides prometheus instrumentation for lookup runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "urlookup"

// Metrics tracks registry attempts, per-name outcomes, records produced and run
// durations. A nil *Metrics is a valid no-op recorder.
type Metrics struct {
	Attempts    prometheus.Counter
	Failures    *prometheus.CounterVec
	Outcomes    *prometheus.CounterVec
	Records     prometheus.Counter
	RunDuration prometheus.Histogram
}

// New creates a Metrics instance registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Attempts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_attempts_total",
			Help:      "Total number of registry queries issued, retries included",
		}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_failures_total",
			Help:      "Failed registry queries, by error category",
		}, []string{"category"}),
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "names_total",
			Help:      "Entity names looked up, by outcome",
		}, []string{"outcome"}),
		Records: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Normalized records produced",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of complete lookup runs",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}),
	}
}

// IncAttempt records one registry query.
func (m *Metrics) IncAttempt() {
	if m == nil {
		return
	}
	m.Attempts.Inc()
}

// IncFailure records one failed registry query of the given category.
func (m *Metrics) IncFailure(category string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(category).Inc()
}

// IncOutcome records the terminal outcome of one name.
func (m *Metrics) IncOutcome(outcome string) {
	if m == nil {
		return
	}
	m.Outcomes.WithLabelValues(outcome).Inc()
}

// AddRecords records n normalized records.
func (m *Metrics) AddRecords(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Records.Add(float64(n))
}

// ObserveRun records the duration of one run in seconds.
func (m *Metrics) ObserveRun(seconds float64) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(seconds)
}
