package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncAttempt()
	m.IncAttempt()
	m.IncFailure("transport")
	m.IncOutcome("matched")
	m.IncOutcome("matched")
	m.IncOutcome("exhausted")
	m.AddRecords(3)
	m.AddRecords(0)
	m.ObserveRun(1.5)

	assert.InDelta(t, 2, testutil.ToFloat64(m.Attempts), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Failures.WithLabelValues("transport")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.Outcomes.WithLabelValues("matched")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Outcomes.WithLabelValues("exhausted")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.Records), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"urlookup_registry_attempts_total",
		"urlookup_registry_failures_total",
		"urlookup_names_total",
		"urlookup_records_total",
		"urlookup_run_duration_seconds",
	}, names)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncAttempt()
		m.IncFailure("timeout")
		m.IncOutcome("matched")
		m.AddRecords(1)
		m.ObserveRun(1)
	})
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
