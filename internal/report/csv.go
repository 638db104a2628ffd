package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/altova/sec-edgar-tools/internal/classify"
	"github.com/altova/sec-edgar-tools/internal/suite"
)

// Options control report rendering.
type Options struct {
	// RelativeURIs strips the suite directory prefix from testcase and
	// instance URIs.
	RelativeURIs bool

	// Timestamp is the execution date stamped on the report; the zero
	// value means time.Now(). Tests pin it for stable output.
	Timestamp time.Time
}

func (o Options) timestamp() time.Time {
	if o.Timestamp.IsZero() {
		return time.Now()
	}
	return o.Timestamp
}

func (o Options) formatURI(uri, suiteDir string) string {
	if !o.RelativeURIs {
		return uri
	}
	if rel, err := filepath.Rel(suiteDir, uri); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return uri
}

// WriteCSV renders a run as a CSV summary: one header block with the
// aggregate figures, then a row per testcase and a row per executed
// variation.
func WriteCSV(w io.Writer, s *suite.Suite, run *Run, opts Options) error {
	sum := Summarize(run)
	suiteDir := filepath.Dir(s.URI)

	cw := csv.NewWriter(w)
	header := []string{"Date", "Total", "Failed", "Skipped", "Conformance", "Runtime", "Testsuite", "Testcase", "Variation", "ReadMeFirst", "Status", "Actual", "Expected", "Warnings"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv report: %w", err)
	}
	totals := []string{
		opts.timestamp().Format("2006-01-02 15:04:05"),
		fmt.Sprint(sum.Total),
		fmt.Sprint(sum.Failed),
		fmt.Sprint(sum.Skipped),
		fmt.Sprintf("%.2f", sum.Conformance),
		fmt.Sprintf("%.1f", run.Runtime.Seconds()),
		s.URI,
		"", "", "", "", "", "", "",
	}
	if err := cw.Write(totals); err != nil {
		return fmt.Errorf("write csv report: %w", err)
	}

	for _, tc := range s.Testcases {
		row := make([]string, len(header))
		row[7] = tc.Number
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv report: %w", err)
		}
		for _, v := range tc.Variations {
			outcome, ok := run.Results[v.Key]
			if !ok {
				continue
			}
			row := make([]string, len(header))
			row[8] = v.Key.Variation
			row[9] = opts.formatURI(v.EntryPoint, suiteDir)
			row[10] = outcome.Verdict.String()
			row[11] = outcome.Observed.String()
			row[12] = v.Expectation.Codes.String()
			row[13] = warningsCell(outcome)
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv report: %w", err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv report: %w", err)
	}
	return nil
}

func warningsCell(outcome classify.Outcome) string {
	if outcome.Verdict == classify.Pass && len(outcome.Extras) > 0 {
		return "Additional errors reported: " + strings.Join(outcome.Extras, " ")
	}
	if outcome.Verdict == classify.Exception && outcome.Err != "" {
		return outcome.Err
	}
	return ""
}
