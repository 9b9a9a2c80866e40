// Package session owns the client-facing orchestration: the connection
// manager that admits and tracks sessions, and the per-session
// supervisor that turns one user message into one validated, executed,
// and formatted graph query.
//
// A session processes one turn at a time. The supervisor drives the turn
// through analyze, plan, execute, and format stages, emitting ordered
// progress events through the session's queue; the connection's write
// loop is the single consumer, which makes per-session event ordering
// structural rather than incidental.
package session
