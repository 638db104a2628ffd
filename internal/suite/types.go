// Package suite models a conformance test suite: an index of testcase
// files, each holding independent variations with recorded expectations.
//
// Suite, Testcase and Variation records are loaded once before a run and
// are immutable afterwards; the scheduler and classifier only ever read
// them.
package suite

import "github.com/altova/sec-edgar-tools/internal/diag"

// VariationKey identifies one variation uniquely within a suite run.
type VariationKey struct {
	Testcase  string // testcase file URI
	Variation string // variation id, unique within its testcase
}

func (k VariationKey) String() string {
	return k.Testcase + "#" + k.Variation
}

// Suite is a loaded test-suite index.
type Suite struct {
	URI       string
	Name      string
	Date      string
	Testcases []Testcase
}

// Testcase groups the variations of one testcase file.
type Testcase struct {
	URI        string
	Number     string
	Name       string
	Variations []Variation
}

// Input is one document participating in a variation.
type Input struct {
	Kind        string // instance, linkbase or schema
	URI         string
	ReadMeFirst bool
}

// Variation is one concrete conformance test: an entry-point document,
// optional named parameters and a recorded expectation.
type Variation struct {
	Key         VariationKey
	Name        string
	Description string

	// EntryPoint is the document handed to the validator; selected from
	// the input marked readMeFirst.
	EntryPoint string
	Inputs     []Input
	Parameters map[string]string

	Expectation Expectation

	// SkipReason marks variations exercising features this harness
	// deliberately does not cover; non-empty means verdict SKIP.
	SkipReason string
}

// Expectation is the recorded outcome a variation is checked against:
// a code-count histogram, a reference output document, or both.
type Expectation struct {
	// Codes maps expected diagnostic codes to occurrence counts. An
	// empty-but-present histogram means "no diagnostics expected".
	Codes    diag.Fingerprint
	HasCodes bool

	// ReferenceDocument is the URI of the expected transformed output
	// document, empty when the variation checks diagnostics only.
	ReferenceDocument string
}

// Valid reports whether at least one form of expectation is present.
// A variation violating this is malformed and rejected at load time.
func (e Expectation) Valid() bool {
	return e.HasCodes || e.ReferenceDocument != ""
}

// Filter restricts a run to specific testcase numbers or variation ids.
// Empty lists match everything.
type Filter struct {
	Testcases  []string
	Variations []string
}

// MatchTestcase reports whether the testcase number is selected.
func (f Filter) MatchTestcase(number string) bool {
	return len(f.Testcases) == 0 || contains(f.Testcases, number)
}

// MatchVariation reports whether the variation id is selected.
func (f Filter) MatchVariation(id string) bool {
	return len(f.Variations) == 0 || contains(f.Variations, id)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Variations returns the suite's variations selected by the filter, in
// suite order.
func (s *Suite) Variations(f Filter) []Variation {
	var out []Variation
	for _, tc := range s.Testcases {
		if !f.MatchTestcase(tc.Number) {
			continue
		}
		for _, v := range tc.Variations {
			if f.MatchVariation(v.Key.Variation) {
				out = append(out, v)
			}
		}
	}
	return out
}
