package engine

import "time"

// Outcome is the terminal state of one name lookup.
type Outcome int

const (
	// OutcomeMatched means the registry answered 200. Records may be empty.
	OutcomeMatched Outcome = iota
	// OutcomeExhausted means every attempt failed with a retryable error.
	OutcomeExhausted
	// OutcomeRejected means the registry answered with a non-200 status.
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// NameResult is the outcome of looking up one entity name.
type NameResult struct {
	Name     string
	Shard    int
	Outcome  Outcome
	Records  []Record
	Attempts int
	// Reason holds the rejection status or the last retry error.
	Reason string
}

// Summary counts outcomes across a run.
type Summary struct {
	Names     int
	Matched   int
	NoRecords int
	Exhausted int
	Rejected  int
	Records   int
}

// ResultSet is the flattened output of one run.
type ResultSet struct {
	// Records holds every normalized record in shard order.
	Records []Record
	// Names holds one result per input name in input order.
	Names    []NameResult
	Summary  Summary
	Duration time.Duration
}

// Failures returns the names whose lookup did not match.
func (rs *ResultSet) Failures() []NameResult {
	var out []NameResult
	for _, r := range rs.Names {
		if r.Outcome != OutcomeMatched {
			out = append(out, r)
		}
	}
	return out
}

func newResultSet(perShard [][]NameResult) *ResultSet {
	rs := &ResultSet{Records: []Record{}, Names: []NameResult{}}
	for _, shard := range perShard {
		for _, nr := range shard {
			rs.Names = append(rs.Names, nr)
			rs.Records = append(rs.Records, nr.Records...)
			rs.Summary.add(nr)
		}
	}
	return rs
}

func (s *Summary) add(nr NameResult) {
	s.Names++
	switch nr.Outcome {
	case OutcomeMatched:
		s.Matched++
		if len(nr.Records) == 0 {
			s.NoRecords++
		}
	case OutcomeExhausted:
		s.Exhausted++
	case OutcomeRejected:
		s.Rejected++
	}
	s.Records += len(nr.Records)
}
