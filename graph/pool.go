package graph

import (
	"context"
	"log/slog"
	"time"

	"github.com/c360/graphgate/errors"
	"github.com/c360/graphgate/metric"
	"github.com/c360/graphgate/pkg/worker"
)

// PooledExecutor bounds concurrent statement executions with a worker
// pool. A full queue rejects immediately instead of queueing unbounded
// work against the store.
type PooledExecutor struct {
	inner  Executor
	pool   *worker.Pool[execJob]
	logger *slog.Logger
}

type execJob struct {
	ctx       context.Context
	statement string
	reply     chan execOutcome
}

type execOutcome struct {
	result Result
	err    error
}

// NewPooledExecutor wraps inner with a pool of the given size.
func NewPooledExecutor(inner Executor, workers int, logger *slog.Logger, registry *metric.MetricsRegistry) *PooledExecutor {
	p := &PooledExecutor{
		inner:  inner,
		logger: logger.With("component", "graph_pool"),
	}

	var opts []worker.Option[execJob]
	if registry != nil {
		opts = append(opts, worker.WithMetricsRegistry[execJob](registry, "graph_exec"))
	}
	p.pool = worker.NewPool(workers, workers*4, p.process, opts...)
	return p
}

// Start launches the pool workers.
func (p *PooledExecutor) Start(ctx context.Context) error {
	return p.pool.Start(ctx)
}

// Stop drains in-flight executions.
func (p *PooledExecutor) Stop(timeout time.Duration) error {
	return p.pool.Stop(timeout)
}

// Execute dispatches the statement to a pool worker and waits for the
// outcome or caller cancellation.
func (p *PooledExecutor) Execute(ctx context.Context, statement string) (Result, error) {
	job := execJob{
		ctx:       ctx,
		statement: statement,
		reply:     make(chan execOutcome, 1),
	}

	if err := p.pool.Submit(job); err != nil {
		return Result{}, errors.WrapKind(errors.KindExecutorUnavailable, err,
			"graph_pool", "Execute", "dispatch statement")
	}

	select {
	case outcome := <-job.reply:
		return outcome.result, outcome.err
	case <-ctx.Done():
		return Result{}, errors.WrapKind(errors.KindOf(ctx.Err()), ctx.Err(),
			"graph_pool", "Execute", "wait for statement")
	}
}

func (p *PooledExecutor) process(_ context.Context, job execJob) error {
	if err := job.ctx.Err(); err != nil {
		// Caller gave up while the job sat in the queue.
		job.reply <- execOutcome{err: errors.WrapKind(errors.KindOf(err), err,
			"graph_pool", "process", "run statement")}
		return err
	}

	result, err := p.inner.Execute(job.ctx, job.statement)
	job.reply <- execOutcome{result: result, err: err}
	return err
}
