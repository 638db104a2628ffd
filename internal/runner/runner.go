// Package runner schedules variation executions across a bounded worker
// pool and collects exactly one verdict per variation.
//
// Variations are independent: a fault in one is caught, converted to an
// EXCEPTION outcome and never aborts sibling variations or the run. No
// ordering is guaranteed between variations; stable report order is
// imposed later by iterating the suite model.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/altova/sec-edgar-tools/internal/classify"
	"github.com/altova/sec-edgar-tools/internal/report"
	"github.com/altova/sec-edgar-tools/internal/suite"
)

// Exec performs one variation end to end: validator invocation followed
// by classification. Implementations should honor ctx cancellation where
// they can; a callback that ignores it past its deadline leaks its
// worker goroutine until it returns.
type Exec func(ctx context.Context, v suite.Variation) classify.Outcome

// Runner executes variations on a bounded pool.
type Runner struct {
	// Workers bounds concurrent executions; values < 1 mean one worker
	// per CPU.
	Workers int

	// Timeout limits a single variation's execution; zero disables the
	// limit. Expiry is recorded as EXCEPTION for that variation only.
	Timeout time.Duration

	Logger *slog.Logger
}

// Run executes every variation exactly once and returns the completed
// run. Every input variation has exactly one outcome in the result; no
// outcome is ever lost or overwritten.
func (r *Runner) Run(ctx context.Context, suiteURI string, variations []suite.Variation, exec Exec) *report.Run {
	workers := r.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("start executing variations", "count", len(variations), "workers", workers)
	run := report.NewRun(suiteURI)
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(workers)
	for _, v := range variations {
		p.Go(func() {
			outcome := r.execute(ctx, v, exec, logger)
			// Each worker writes its own variation's key exactly once;
			// the mutex scopes only the map insert.
			mu.Lock()
			run.Results[v.Key] = outcome
			mu.Unlock()
		})
	}
	p.Wait()

	run.Runtime = time.Since(run.Started)
	logger.Info("finished executing variations", "count", len(run.Results), "runtime", run.Runtime)
	return run
}

func (r *Runner) execute(ctx context.Context, v suite.Variation, exec Exec, logger *slog.Logger) classify.Outcome {
	logger.Info("start executing variation", "variation", v.Key.String())

	var outcome classify.Outcome
	if r.Timeout > 0 {
		outcome = r.executeWithTimeout(ctx, v, exec)
	} else {
		outcome = guarded(ctx, v, exec)
	}

	if outcome.Verdict == classify.Exception {
		logger.Error("variation raised exception", "variation", v.Key.String(), "err", outcome.Err)
	} else {
		logger.Info("finished executing variation",
			"variation", v.Key.String(), "verdict", outcome.Verdict.String(), "observed", outcome.Observed.String())
	}
	return outcome
}

// executeWithTimeout abandons the callback once the deadline passes; the
// expired variation is recorded as EXCEPTION and the worker slot is
// reclaimed immediately.
func (r *Runner) executeWithTimeout(ctx context.Context, v suite.Variation, exec Exec) classify.Outcome {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	done := make(chan classify.Outcome, 1)
	go func() {
		done <- guarded(ctx, v, exec)
	}()

	select {
	case outcome := <-done:
		return outcome
	case <-ctx.Done():
		return classify.ExceptionOutcome(fmt.Errorf("variation %s: %w after %s", v.Key.String(), ctx.Err(), r.Timeout))
	}
}

// guarded invokes the callback with panic containment: a fault in one
// variation becomes its own EXCEPTION outcome and nothing more.
func guarded(ctx context.Context, v suite.Variation, exec Exec) (outcome classify.Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			outcome = classify.ExceptionOutcome(fmt.Errorf("variation %s panicked: %v", v.Key.String(), rec))
		}
	}()
	return exec(ctx, v)
}
