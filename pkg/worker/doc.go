// Package worker provides a generic, thread-safe worker pool.
//
// A Pool manages a fixed number of goroutines draining a bounded queue
// of work items of type T. Submit is non-blocking: when the queue is at
// capacity it returns ErrQueueFull, which callers treat as a
// backpressure signal. Stop closes the queue and waits for in-flight
// work to drain.
//
// Statistics are always tracked with atomics; Prometheus metrics are
// opt-in through WithMetricsRegistry. Per-item timeouts belong in the
// processor function via its context.
package worker
