package health

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/c360/graphgate/metric"
)

// probeTimeout bounds each individual dependency probe.
const probeTimeout = 5 * time.Second

// Pinger is the liveness probe of the graph store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionCounter reports session occupancy against the admission bound.
type SessionCounter interface {
	Count() int
	Capacity() int
}

// Checker probes the gateway's dependencies on an interval and records
// each verdict in the monitor and the metrics. The health endpoint then
// serves the monitor's aggregate without touching any dependency on the
// request path.
type Checker struct {
	monitor  *Monitor
	graph    Pinger
	llmHost  string
	sessions SessionCounter
	metrics  *metric.Metrics
	interval time.Duration
	client   *http.Client
	logger   *slog.Logger
}

// NewChecker creates a checker. graph, llmHost, and sessions may each be
// zero-valued; the corresponding probe is then skipped.
func NewChecker(monitor *Monitor, graph Pinger, llmHost string, sessions SessionCounter,
	metrics *metric.Metrics, interval time.Duration, logger *slog.Logger) *Checker {
	return &Checker{
		monitor:  monitor,
		graph:    graph,
		llmHost:  llmHost,
		sessions: sessions,
		metrics:  metrics,
		interval: interval,
		client:   &http.Client{Timeout: probeTimeout},
		logger:   logger.With("component", "health"),
	}
}

// Run probes immediately, then on every tick until ctx is cancelled.
func (c *Checker) Run(ctx context.Context) {
	c.CheckAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.CheckAll(ctx)
		}
	}
}

// CheckAll runs every configured probe once.
func (c *Checker) CheckAll(ctx context.Context) {
	if c.graph != nil {
		c.checkGraph(ctx)
	}
	if c.llmHost != "" {
		c.checkLLM(ctx)
	}
	if c.sessions != nil {
		c.checkSessions()
	}
}

func (c *Checker) checkGraph(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	err := c.graph.Ping(probeCtx)
	healthy := err == nil
	if healthy {
		c.monitor.UpdateHealthy("graph", "graph store reachable")
	} else {
		c.monitor.Update("graph", NewUnhealthyErr("graph", err))
		c.logger.Warn("graph probe failed", "error", err)
	}
	c.metrics.RecordGraphStatus(healthy)
	c.metrics.RecordHealthStatus("graph", healthy)
}

// checkLLM treats any HTTP response as reachable; the model endpoint
// does not need to answer the probe path, only the connection.
func (c *Checker) checkLLM(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.llmHost, nil)
	if err != nil {
		c.monitor.Update("llm", NewUnhealthyErr("llm", err))
		c.metrics.RecordHealthStatus("llm", false)
		return
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.monitor.Update("llm", NewUnhealthyErr("llm", err))
		c.metrics.RecordHealthStatus("llm", false)
		c.logger.Warn("llm probe failed", "error", err)
		return
	}
	_ = resp.Body.Close()

	c.monitor.UpdateHealthy("llm", "model endpoint reachable")
	c.metrics.RecordHealthStatus("llm", true)
}

func (c *Checker) checkSessions() {
	count := c.sessions.Count()
	capacity := c.sessions.Capacity()
	message := fmt.Sprintf("%d/%d sessions active", count, capacity)

	if count >= capacity {
		c.monitor.UpdateDegraded("sessions", message)
	} else {
		c.monitor.UpdateHealthy("sessions", message)
	}
	c.metrics.RecordHealthStatus("sessions", count < capacity)
}
