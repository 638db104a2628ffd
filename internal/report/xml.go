package report

import (
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"

	"github.com/altova/sec-edgar-tools/internal/suite"
)

const reportNamespace = "http://www.altova.com/testsuite/results"

type xmlReport struct {
	XMLName       xml.Name      `xml:"testsuite"`
	Xmlns         string        `xml:"xmlns,attr"`
	URI           string        `xml:"uri,attr"`
	Name          string        `xml:"name,attr"`
	Total         int           `xml:"total,attr"`
	Failed        int           `xml:"failed,attr"`
	Skipped       int           `xml:"skipped,attr"`
	Conformance   string        `xml:"conformance,attr"`
	Runtime       string        `xml:"runtime,attr"`
	ExecutionDate string        `xml:"execution-date,attr"`
	Testcases     []xmlTestcase `xml:"testcase"`
}

type xmlTestcase struct {
	URI        string         `xml:"uri,attr"`
	Number     string         `xml:"number,attr"`
	Name       string         `xml:"name,attr,omitempty"`
	Variations []xmlVariation `xml:"variation"`
}

type xmlVariation struct {
	ID       string    `xml:"id,attr"`
	Name     string    `xml:"name,attr,omitempty"`
	Instance string    `xml:"instance,attr"`
	Result   xmlResult `xml:"result"`
}

type xmlResult struct {
	Status     string `xml:"status,attr"`
	Actual     string `xml:"actual,attr"`
	Expected   string `xml:"expected,attr"`
	Additional string `xml:"additional,attr,omitempty"`
}

// WriteXML renders a run as an XML summary document.
func WriteXML(w io.Writer, s *suite.Suite, run *Run, opts Options) error {
	sum := Summarize(run)
	suiteDir := filepath.Dir(s.URI)

	doc := xmlReport{
		Xmlns:         reportNamespace,
		URI:           s.URI,
		Name:          s.Name,
		Total:         sum.Total,
		Failed:        sum.Failed,
		Skipped:       sum.Skipped,
		Conformance:   fmt.Sprintf("%.2f", sum.Conformance),
		Runtime:       fmt.Sprintf("%.1f", run.Runtime.Seconds()),
		ExecutionDate: opts.timestamp().Format("2006-01-02T15:04:05"),
	}

	for _, tc := range s.Testcases {
		xtc := xmlTestcase{
			URI:    opts.formatURI(tc.URI, suiteDir),
			Number: tc.Number,
			Name:   tc.Name,
		}
		for _, v := range tc.Variations {
			outcome, ok := run.Results[v.Key]
			if !ok {
				continue
			}
			xtc.Variations = append(xtc.Variations, xmlVariation{
				ID:       v.Key.Variation,
				Name:     v.Name,
				Instance: opts.formatURI(v.EntryPoint, suiteDir),
				Result: xmlResult{
					Status:     outcome.Verdict.String(),
					Actual:     outcome.Observed.String(),
					Expected:   v.Expectation.Codes.String(),
					Additional: warningsCell(outcome),
				},
			})
		}
		if len(xtc.Variations) > 0 {
			doc.Testcases = append(doc.Testcases, xtc)
		}
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write xml report: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write xml report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("write xml report: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
