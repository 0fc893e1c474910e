package engine

// MetricsRecorder receives lookup counters. Implementations must be safe for
// concurrent use.
type MetricsRecorder interface {
	IncAttempt()
	IncFailure(category string)
	IncOutcome(outcome string)
	AddRecords(n int)
	ObserveRun(seconds float64)
}

type nopMetrics struct{}

func (nopMetrics) IncAttempt()        {}
func (nopMetrics) IncFailure(string)  {}
func (nopMetrics) IncOutcome(string)  {}
func (nopMetrics) AddRecords(int)     {}
func (nopMetrics) ObserveRun(float64) {}
