// Package health tracks the gateway's dependency health.
//
// A Checker probes the graph store, the model endpoint, and session
// occupancy on an interval, recording each verdict in a Monitor. The
// health endpoint reads the monitor's aggregate, so serving a health
// request never touches a dependency directly.
//
// Status messages built from probe errors are sanitized: endpoint
// addresses, file paths, and credential fragments are redacted before
// they can reach a client.
package health
