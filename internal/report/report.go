// Package report aggregates per-variation verdicts into run-level
// conformance figures and renders them as CSV, XML or console output.
//
// Aggregation is pure: writers consume a finished Run read-only, and
// output iterates the suite's original testcase/variation order rather
// than completion order, so reports are stable across runs.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/altova/sec-edgar-tools/internal/classify"
	"github.com/altova/sec-edgar-tools/internal/suite"
)

// Run is the collected result of one full suite execution. It is created
// once, after every variation has exactly one outcome, and never mutated
// afterwards.
type Run struct {
	ID       string
	SuiteURI string
	Started  time.Time
	Runtime  time.Duration
	Results  map[suite.VariationKey]classify.Outcome
}

// NewRun allocates an empty run with a fresh id.
func NewRun(suiteURI string) *Run {
	return &Run{
		ID:       uuid.NewString(),
		SuiteURI: suiteURI,
		Started:  time.Now(),
		Results:  make(map[suite.VariationKey]classify.Outcome),
	}
}

// Summary holds the aggregate conformance figures of a run.
type Summary struct {
	Total       int
	Failed      int
	Skipped     int
	Conformance float64
}

// Summarize folds a run's verdicts into totals. A run with no results
// counts as fully conformant.
func Summarize(r *Run) Summary {
	s := Summary{Total: len(r.Results)}
	for _, outcome := range r.Results {
		switch {
		case outcome.Verdict == classify.Skip:
			s.Skipped++
		case outcome.Verdict.Failing():
			s.Failed++
		}
	}
	if s.Total == 0 {
		s.Conformance = 100
		return s
	}
	s.Conformance = float64(s.Total-s.Failed) * 100 / float64(s.Total)
	return s
}
