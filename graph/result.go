package graph

import (
	"context"
	"time"
)

// Executor runs one statement against the graph store. Implementations
// must classify failures so callers can distinguish syntax errors,
// schema mismatches, timeouts, and transport problems.
type Executor interface {
	Execute(ctx context.Context, statement string) (Result, error)
}

// Result holds the tabular outcome of one statement.
type Result struct {
	Columns []string
	Rows    [][]string
	Elapsed time.Duration
}

// Empty reports whether the statement ran successfully but matched
// nothing.
func (r Result) Empty() bool {
	return len(r.Rows) == 0
}
