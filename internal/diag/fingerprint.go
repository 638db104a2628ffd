package diag

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// OtherCode is the sentinel bucket for diagnostics whose message carries
// no recognizable rule code.
const OtherCode = "other"

// Fingerprint is an immutable rule-code -> occurrence-count histogram
// derived from one validator run. Missing keys count as zero.
type Fingerprint map[string]int

// Total returns the number of diagnostics folded into the fingerprint.
func (f Fingerprint) Total() int {
	n := 0
	for _, count := range f {
		n += count
	}
	return n
}

// MatchesExpected reports whether the fingerprint agrees with the
// expected histogram on every expected key. Codes observed beyond the
// expected set do not affect the result; see Extras.
func (f Fingerprint) MatchesExpected(expected Fingerprint) bool {
	for code, want := range expected {
		if f[code] != want {
			return false
		}
	}
	return true
}

// Extras returns the sorted codes observed but absent from the expected
// set. These are surfaced as a non-fatal annotation in reports.
func (f Fingerprint) Extras(expected Fingerprint) []string {
	var extras []string
	for code := range f {
		if _, ok := expected[code]; !ok {
			extras = append(extras, code)
		}
	}
	sort.Strings(extras)
	return extras
}

// String renders the fingerprint as space-separated "NxCODE" terms in
// code order, e.g. "2xEFM.6.05.12 1xother".
func (f Fingerprint) String() string {
	codes := make([]string, 0, len(f))
	for code := range f {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	terms := make([]string, 0, len(codes))
	for _, code := range codes {
		terms = append(terms, fmt.Sprintf("%dx%s", f[code], code))
	}
	return strings.Join(terms, " ")
}

// Fingerprinter reduces a diagnostic stream to a Fingerprint.
//
// Pattern must contain at least one capture group; the first group is
// taken as the rule code. Records whose message does not match the
// pattern are counted under OtherCode. Records outside Severities are
// ignored entirely.
type Fingerprinter struct {
	Pattern    *regexp.Regexp
	Severities SeveritySet
}

// Fingerprint folds the given records into a histogram. It is a pure
// function: the same records always produce the same fingerprint.
func (fp Fingerprinter) Fingerprint(records []Record) Fingerprint {
	counts := make(Fingerprint)
	for _, rec := range records {
		if !fp.Severities.Contains(rec.Severity) {
			continue
		}
		if m := fp.Pattern.FindStringSubmatch(rec.Message); m != nil {
			counts[m[1]]++
		} else {
			counts[OtherCode]++
		}
	}
	return counts
}
