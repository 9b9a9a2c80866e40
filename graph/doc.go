// Package graph executes read-mostly statements against a FalkorDB
// graph over the RESP protocol.
//
// A Client owns the connection and applies the per-statement execution
// deadline, both as a context timeout and as the server-side TIMEOUT
// argument. A PooledExecutor bounds concurrent executions with a worker
// pool so a burst of sessions cannot exhaust the store.
//
// Schema probing and free-text search are built on the same Executor
// interface, so they work against any executor, pooled or not.
package graph
