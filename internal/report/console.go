package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/altova/sec-edgar-tools/internal/classify"
	"github.com/altova/sec-edgar-tools/internal/suite"
)

// Print writes a human-readable run summary: one line per non-passing
// variation, one per passing variation with additional codes, then the
// aggregate conformance figure.
func Print(w io.Writer, s *suite.Suite, run *Run) error {
	sum := Summarize(run)
	for _, tc := range s.Testcases {
		for _, v := range tc.Variations {
			outcome, ok := run.Results[v.Key]
			if !ok {
				continue
			}
			switch {
			case outcome.Verdict.Failing():
				fmt.Fprintf(w, "ERROR: Testcase %s, variation %s %s; actual [%s]; expected [%s]\n",
					tc.Number, v.Key.Variation, outcome.Verdict, outcome.Observed, v.Expectation.Codes)
			case outcome.Verdict == classify.Pass && len(outcome.Extras) > 0:
				fmt.Fprintf(w, "Warning: Testcase %s, variation %s had additional errors: [%s]\n",
					tc.Number, v.Key.Variation, strings.Join(outcome.Extras, " "))
			}
		}
	}
	_, err := fmt.Fprintf(w, "Conformance: %.2f%% (%d total; %d failed; %d skipped)\n",
		sum.Conformance, sum.Total, sum.Failed, sum.Skipped)
	return err
}
