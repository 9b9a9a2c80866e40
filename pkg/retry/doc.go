// Package retry provides simple exponential backoff retry logic for transient failures.
//
// Do executes a function with exponential backoff and optional jitter;
// DoWithResult does the same for functions returning a value. Wrap an
// error with NonRetryable to stop the attempts immediately. All retry
// operations respect context cancellation, both during execution and
// during backoff delay.
//
// The package is intentionally minimal: no circuit breakers, no metrics,
// no error classification. Callers decide what to retry.
package retry
