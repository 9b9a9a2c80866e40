package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the platform-level metrics for the gateway pipeline.
type Metrics struct {
	// Session metrics
	SessionsActive prometheus.Gauge
	SessionsTotal  prometheus.Counter
	TurnsTotal     *prometheus.CounterVec
	TurnDuration   prometheus.Histogram

	// Pipeline metrics
	StageDuration      *prometheus.HistogramVec
	QueriesTotal       *prometheus.CounterVec
	QueryFixesTotal    *prometheus.CounterVec
	ValidationRejected prometheus.Counter

	// Model metrics
	LLMRequestsTotal *prometheus.CounterVec
	LLMDuration      prometheus.Histogram

	// Store metrics
	GraphConnected prometheus.Gauge

	// Service metrics
	ErrorsTotal       *prometheus.CounterVec
	HealthCheckStatus *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance with all platform metrics
func NewMetrics() *Metrics {
	return &Metrics{
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "graphgate",
				Subsystem: "sessions",
				Name:      "active",
				Help:      "Number of currently connected sessions",
			},
		),

		SessionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "graphgate",
				Subsystem: "sessions",
				Name:      "total",
				Help:      "Total number of sessions accepted",
			},
		),

		TurnsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "graphgate",
				Subsystem: "turns",
				Name:      "total",
				Help:      "Total number of conversational turns by outcome",
			},
			[]string{"outcome"},
		),

		TurnDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "graphgate",
				Subsystem: "turns",
				Name:      "duration_seconds",
				Help:      "End-to-end turn duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),

		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "graphgate",
				Subsystem: "pipeline",
				Name:      "stage_duration_seconds",
				Help:      "Duration of individual pipeline stages in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"stage"},
		),

		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "graphgate",
				Subsystem: "queries",
				Name:      "total",
				Help:      "Total number of statements executed by origin and status",
			},
			[]string{"origin", "status"},
		),

		QueryFixesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "graphgate",
				Subsystem: "queries",
				Name:      "fixes_total",
				Help:      "Total number of sanitizer fixes applied by fix tag",
			},
			[]string{"fix"},
		),

		ValidationRejected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "graphgate",
				Subsystem: "queries",
				Name:      "validation_rejected_total",
				Help:      "Total number of statements rejected by validation",
			},
		),

		LLMRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "graphgate",
				Subsystem: "llm",
				Name:      "requests_total",
				Help:      "Total number of model completion requests by status",
			},
			[]string{"status"},
		),

		LLMDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "graphgate",
				Subsystem: "llm",
				Name:      "duration_seconds",
				Help:      "Model completion latency in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),

		GraphConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "graphgate",
				Subsystem: "graph",
				Name:      "connected",
				Help:      "Graph store connection status (0=disconnected, 1=connected)",
			},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "graphgate",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors by component and kind",
			},
			[]string{"component", "kind"},
		),

		HealthCheckStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "graphgate",
				Subsystem: "health",
				Name:      "status",
				Help:      "Health check status (0=unhealthy, 1=healthy)",
			},
			[]string{"component"},
		),
	}
}

// RecordSessionOpened increments the session counters.
func (m *Metrics) RecordSessionOpened() {
	m.SessionsTotal.Inc()
	m.SessionsActive.Inc()
}

// RecordSessionClosed decrements the active session gauge.
func (m *Metrics) RecordSessionClosed() {
	m.SessionsActive.Dec()
}

// RecordTurn records a completed turn with its outcome and duration.
func (m *Metrics) RecordTurn(outcome string, duration time.Duration) {
	m.TurnsTotal.WithLabelValues(outcome).Inc()
	m.TurnDuration.Observe(duration.Seconds())
}

// RecordStage records the duration of one pipeline stage.
func (m *Metrics) RecordStage(stage string, duration time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordQuery increments the statement counter for an origin and status.
func (m *Metrics) RecordQuery(origin, status string) {
	m.QueriesTotal.WithLabelValues(origin, status).Inc()
}

// RecordQueryFixes increments the fix counter for each applied fix tag.
func (m *Metrics) RecordQueryFixes(fixes []string) {
	for _, fix := range fixes {
		m.QueryFixesTotal.WithLabelValues(fix).Inc()
	}
}

// RecordValidationRejection increments the validation rejection counter.
func (m *Metrics) RecordValidationRejection() {
	m.ValidationRejected.Inc()
}

// RecordLLMRequest records one model completion attempt.
func (m *Metrics) RecordLLMRequest(status string, duration time.Duration) {
	m.LLMRequestsTotal.WithLabelValues(status).Inc()
	m.LLMDuration.Observe(duration.Seconds())
}

// RecordGraphStatus updates the graph store connection gauge.
func (m *Metrics) RecordGraphStatus(connected bool) {
	value := 0.0
	if connected {
		value = 1.0
	}
	m.GraphConnected.Set(value)
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(component, kind string) {
	m.ErrorsTotal.WithLabelValues(component, kind).Inc()
}

// RecordHealthStatus updates health check status
func (m *Metrics) RecordHealthStatus(component string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(value)
}
