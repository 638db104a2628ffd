package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/altova/sec-edgar-tools/internal/report"
	"github.com/altova/sec-edgar-tools/internal/suite"
)

// SaveRun archives a completed run and all its per-variation verdicts in
// one transaction. Saving the same run twice is an error.
func (s *Store) SaveRun(ctx context.Context, run *report.Run) error {
	sum := report.Summarize(run)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, suite_uri, started, runtime_ms, total, failed, skipped, conformance)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SuiteURI, run.Started.UTC().Format(time.RFC3339),
		run.Runtime.Milliseconds(), sum.Total, sum.Failed, sum.Skipped, sum.Conformance)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (run_id, testcase_uri, variation_id, verdict, observed, extras)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	defer stmt.Close()

	// Insertion order is irrelevant to queries but a sorted pass keeps
	// the write pattern deterministic.
	keys := make([]suite.VariationKey, 0, len(run.Results))
	for k := range run.Results {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	for _, k := range keys {
		outcome := run.Results[k]
		_, err := stmt.ExecContext(ctx, run.ID, k.Testcase, k.Variation,
			outcome.Verdict.String(), outcome.Observed.String(), strings.Join(outcome.Extras, " "))
		if err != nil {
			return fmt.Errorf("save run %s: variation %s: %w", run.ID, k.String(), err)
		}
	}
	return tx.Commit()
}
