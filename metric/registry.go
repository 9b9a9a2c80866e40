package metric

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/c360/graphgate/errors"
)

// Registrar is the interface components use to register their own
// collectors alongside the core platform metrics.
type Registrar interface {
	Register(component, name string, collector prometheus.Collector) error
	Unregister(component, name string) bool
}

// MetricsRegistry manages the registration and lifecycle of metrics
type MetricsRegistry struct {
	prometheusRegistry *prometheus.Registry
	Metrics            *Metrics
	registered         map[string]prometheus.Collector
	mu                 sync.Mutex
}

// NewMetricsRegistry creates a new metrics registry with core platform metrics
func NewMetricsRegistry() *MetricsRegistry {
	registry := &MetricsRegistry{
		prometheusRegistry: prometheus.NewRegistry(),
		registered:         make(map[string]prometheus.Collector),
	}

	registry.Metrics = NewMetrics()
	registry.registerCore()

	registry.prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return registry
}

// PrometheusRegistry returns the underlying Prometheus registry
func (r *MetricsRegistry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// CoreMetrics returns the core platform metrics
func (r *MetricsRegistry) CoreMetrics() *Metrics {
	return r.Metrics
}

// Register registers a collector under a component-scoped key. Duplicate
// registrations, either in this registry or in the underlying Prometheus
// registry, are rejected.
func (r *MetricsRegistry) Register(component, name string, collector prometheus.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", component, name)

	if _, exists := r.registered[key]; exists {
		return errors.New(errors.KindInternal, "MetricsRegistry", "Register",
			fmt.Sprintf("metric %s already registered for component %s", name, component))
	}

	if err := r.prometheusRegistry.Register(collector); err != nil {
		return errors.WrapKind(errors.KindInternal, err, "MetricsRegistry", "Register",
			fmt.Sprintf("register metric %s", key))
	}

	r.registered[key] = collector
	return nil
}

// Unregister removes a metric from the registry
func (r *MetricsRegistry) Unregister(component, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", component, name)

	collector, exists := r.registered[key]
	if !exists {
		return false
	}

	success := r.prometheusRegistry.Unregister(collector)
	if success {
		delete(r.registered, key)
	}

	return success
}

func (r *MetricsRegistry) registerCore() {
	r.prometheusRegistry.MustRegister(
		r.Metrics.SessionsActive,
		r.Metrics.SessionsTotal,
		r.Metrics.TurnsTotal,
		r.Metrics.TurnDuration,
		r.Metrics.StageDuration,
		r.Metrics.QueriesTotal,
		r.Metrics.QueryFixesTotal,
		r.Metrics.ValidationRejected,
		r.Metrics.LLMRequestsTotal,
		r.Metrics.LLMDuration,
		r.Metrics.GraphConnected,
		r.Metrics.ErrorsTotal,
		r.Metrics.HealthCheckStatus,
	)
}
