// Package metric provides Prometheus-based metrics for the gateway.
//
// A single MetricsRegistry owns the Prometheus registry, the core
// pipeline metrics (sessions, turns, stages, statements, model calls),
// and any component-specific collectors registered through the
// Registrar interface. The gateway exposes everything through
// Handler() on its own HTTP mux.
//
// Core metric recording is lock-free; Register and Unregister are
// mutex-protected and safe for concurrent use.
package metric
