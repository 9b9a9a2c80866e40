package worker

import "errors"

// Sentinel errors returned by pool lifecycle and submission.
var (
	// ErrPoolNotStarted means Submit was called before Start.
	ErrPoolNotStarted = errors.New("worker pool not started")

	// ErrPoolStopped means the pool no longer accepts work.
	ErrPoolStopped = errors.New("worker pool stopped")

	// ErrPoolAlreadyStarted means Start was called twice.
	ErrPoolAlreadyStarted = errors.New("worker pool already started")

	// ErrQueueFull means the work queue is at capacity.
	ErrQueueFull = errors.New("worker pool queue full")

	// ErrNilProcessor means no processor function was provided.
	ErrNilProcessor = errors.New("processor function cannot be nil")

	// ErrStopTimeout means workers did not drain within the Stop timeout.
	ErrStopTimeout = errors.New("timeout waiting for workers to stop")
)
