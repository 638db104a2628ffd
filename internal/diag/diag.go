// Package diag models validation-engine diagnostics and their reduction
// to code-count fingerprints.
//
// A validator run produces a stream of free-text diagnostic messages.
// The conformance suite only cares about which rule codes fired how many
// times, so the stream is reduced to a Fingerprint (code -> count
// histogram) before comparison against a variation's expectation.
package diag

import "fmt"

// Severity classifies a diagnostic record.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the canonical lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// ParseSeverity converts a severity name to a Severity.
// Accepts the canonical names plus the abbreviated forms used by
// testcase result files ("err", "wrn").
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "info":
		return SeverityInfo, nil
	case "warning", "wrn":
		return SeverityWarning, nil
	case "error", "err":
		return SeverityError, nil
	}
	return 0, fmt.Errorf("unknown severity %q", s)
}

// Record is a single diagnostic emitted by the validator.
// The rule code, if any, is embedded in the free-form message text and
// extracted later by a Fingerprinter.
type Record struct {
	Severity Severity
	Message  string
}

// SeveritySet is a set of severities of interest.
type SeveritySet uint8

// Severities builds a SeveritySet from the given severities.
func Severities(severities ...Severity) SeveritySet {
	var set SeveritySet
	for _, s := range severities {
		set |= 1 << uint(s)
	}
	return set
}

// Contains reports whether the set includes the given severity.
func (set SeveritySet) Contains(s Severity) bool {
	return set&(1<<uint(s)) != 0
}
