// Package classify turns one variation's observed validator behavior
// into a verdict by comparing it against the recorded expectation.
package classify

import (
	"fmt"

	"github.com/altova/sec-edgar-tools/internal/canon"
	"github.com/altova/sec-edgar-tools/internal/diag"
	"github.com/altova/sec-edgar-tools/internal/suite"
)

// Verdict is the classification outcome of one variation. Verdicts are
// created once per execution and never mutated.
type Verdict int

const (
	Pass Verdict = iota
	Fail
	Skip
	OutputMismatch
	InvalidResultCount
	Exception
)

// String renders the verdict in report notation.
func (v Verdict) String() string {
	switch v {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	case Skip:
		return "SKIP"
	case OutputMismatch:
		return "OUTPUT_MISMATCH"
	case InvalidResultCount:
		return "INVALID_RESULT_COUNT"
	case Exception:
		return "EXCEPTION"
	}
	return fmt.Sprintf("Verdict(%d)", int(v))
}

// ParseVerdict converts report notation back to a Verdict.
func ParseVerdict(s string) (Verdict, error) {
	for v := Pass; v <= Exception; v++ {
		if v.String() == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown verdict %q", s)
}

// Failing reports whether the verdict counts against conformance.
// SKIP is neutral: neither passing nor failing.
func (v Verdict) Failing() bool {
	return v != Pass && v != Skip
}

// Outcome is the full classification result for one variation: the
// verdict plus the observed fingerprint and any extra codes, which are
// surfaced in reports without affecting a lenient-mode verdict.
type Outcome struct {
	Verdict  Verdict
	Observed diag.Fingerprint

	// Extras lists observed codes beyond the expected set, sorted.
	Extras []string

	// Err carries the fault detail for EXCEPTION verdicts.
	Err string
}

// ExceptionOutcome builds the outcome recorded for a per-variation fault.
func ExceptionOutcome(err error) Outcome {
	return Outcome{Verdict: Exception, Observed: diag.Fingerprint{}, Err: err.Error()}
}

// Classifier compares observed behavior against expectations.
//
// In lenient mode (Strict == false) codes observed beyond the expected
// set are annotated on the outcome but do not change the verdict; in
// strict mode they are classified as INVALID_RESULT_COUNT.
type Classifier struct {
	Strict bool
	Hasher *canon.Hasher

	// LoadReference loads a variation's expected output document. Only
	// consulted for variations carrying a reference document.
	LoadReference func(uri string) (canon.Node, error)
}

// Classify evaluates the ordered checks for one variation; the first
// decisive check wins.
func (c *Classifier) Classify(v suite.Variation, observed diag.Fingerprint, outputDoc canon.Node) Outcome {
	if v.SkipReason != "" {
		return Outcome{Verdict: Skip, Observed: diag.Fingerprint{}}
	}

	out := Outcome{Verdict: Pass, Observed: observed}

	if v.Expectation.HasCodes {
		if len(v.Expectation.Codes) == 0 && observed.Total() > 0 {
			// An expectation of "no diagnostics" is violated by any
			// diagnostic of interest.
			out.Verdict = Fail
		}
		if !observed.MatchesExpected(v.Expectation.Codes) {
			out.Verdict = Fail
		}
		out.Extras = observed.Extras(v.Expectation.Codes)
		if out.Verdict == Pass && len(out.Extras) > 0 && c.Strict {
			out.Verdict = InvalidResultCount
			return out
		}
	}

	if out.Verdict == Pass && v.Expectation.ReferenceDocument != "" && outputDoc != nil {
		ref, err := c.LoadReference(v.Expectation.ReferenceDocument)
		if err != nil {
			return ExceptionOutcome(fmt.Errorf("load reference document %s: %w", v.Expectation.ReferenceDocument, err))
		}
		if !c.Hasher.Equal(outputDoc, ref) {
			out.Verdict = OutputMismatch
		}
	}

	return out
}
