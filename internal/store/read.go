package store

import (
	"context"
	"fmt"
	"time"
)

// RunRecord is one archived run's aggregate figures.
type RunRecord struct {
	ID          string
	SuiteURI    string
	Started     time.Time
	Runtime     time.Duration
	Total       int
	Failed      int
	Skipped     int
	Conformance float64
}

// ResultRecord is one archived variation verdict.
type ResultRecord struct {
	TestcaseURI string
	VariationID string
	Verdict     string
	Observed    string
	Extras      string
}

// ListRuns returns archived runs newest first, capped at limit; a limit
// < 1 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	q := `SELECT id, suite_uri, started, runtime_ms, total, failed, skipped, conformance
	      FROM runs ORDER BY started DESC`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var started string
		var runtimeMS int64
		if err := rows.Scan(&r.ID, &r.SuiteURI, &started, &runtimeMS,
			&r.Total, &r.Failed, &r.Skipped, &r.Conformance); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		r.Started, err = time.Parse(time.RFC3339, started)
		if err != nil {
			return nil, fmt.Errorf("list runs: run %s: %w", r.ID, err)
		}
		r.Runtime = time.Duration(runtimeMS) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunResults returns the per-variation verdicts of one archived run in
// testcase then variation order.
func (s *Store) RunResults(ctx context.Context, runID string) ([]ResultRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT testcase_uri, variation_id, verdict, observed, extras
		 FROM results WHERE run_id = ? ORDER BY testcase_uri, variation_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("results for run %s: %w", runID, err)
	}
	defer rows.Close()

	var results []ResultRecord
	for rows.Next() {
		var r ResultRecord
		if err := rows.Scan(&r.TestcaseURI, &r.VariationID, &r.Verdict, &r.Observed, &r.Extras); err != nil {
			return nil, fmt.Errorf("results for run %s: %w", runID, err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
