// Package gateway serves the client-facing surface: the websocket
// session endpoint, the health endpoint, and the metrics exposition.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/c360/graphgate/health"
	"github.com/c360/graphgate/metric"
	"github.com/c360/graphgate/session"
)

// shutdownTimeout bounds graceful drain of in-flight connections.
const shutdownTimeout = 10 * time.Second

// Server hosts the HTTP endpoints and owns their listener.
type Server struct {
	addr     string
	manager  *session.Manager
	registry *metric.MetricsRegistry
	monitor  *health.Monitor
	logger   *slog.Logger

	upgrader websocket.Upgrader
	server   *http.Server

	// base is the parent of every session context; it outlives the
	// upgrade request, whose context dies with the handler.
	base context.Context
}

// NewServer creates the gateway server. It does not listen until Run.
func NewServer(addr string, manager *session.Manager, registry *metric.MetricsRegistry,
	monitor *health.Monitor, logger *slog.Logger) *Server {
	return &Server{
		addr:     addr,
		manager:  manager,
		registry: registry,
		monitor:  monitor,
		logger:   logger.With("component", "gateway"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The gateway fronts a single-origin deployment; tighten this
			// behind a reverse proxy if exposed directly.
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}
}

// Routes builds the endpoint mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", metric.Handler(s.registry))
	return mux
}

// Run serves until ctx is cancelled, then drains connections gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.base = ctx
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errCh
	return nil
}

// handleHealth reports the aggregated monitor verdict. Unhealthy returns
// 503 so load balancers stop routing here.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := "healthy"
	code := http.StatusOK
	if s.monitor != nil {
		aggregate := s.monitor.AggregateHealth("graphgate")
		status = aggregate.State
		if aggregate.IsUnhealthy() {
			code = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
