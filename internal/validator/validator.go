// Package validator defines the boundary to the document-validation
// engine under conformance test. The harness never interprets documents
// itself; it hands an entry point to a Validator and classifies the
// diagnostics (and optional transformed output document) coming back.
package validator

import (
	"context"

	"github.com/altova/sec-edgar-tools/internal/canon"
	"github.com/altova/sec-edgar-tools/internal/diag"
)

// Result is one validation run's observable behavior.
type Result struct {
	Diagnostics []diag.Record

	// Output is the validator's transformed output document, nil when
	// the engine produced none.
	Output canon.Node
}

// Validator runs the engine under test against one entry point.
// Implementations must be safe for concurrent use by multiple workers;
// any shared configuration or catalog state they cache must be read-only
// during a run.
type Validator interface {
	Validate(ctx context.Context, entryPoint string, params map[string]string) (*Result, error)
}

// Func adapts a function to the Validator interface.
type Func func(ctx context.Context, entryPoint string, params map[string]string) (*Result, error)

// Validate implements Validator.
func (f Func) Validate(ctx context.Context, entryPoint string, params map[string]string) (*Result, error) {
	return f(ctx, entryPoint, params)
}
