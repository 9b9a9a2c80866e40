package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/graphgate/errors"
	"github.com/c360/graphgate/format"
	"github.com/c360/graphgate/graph"
	"github.com/c360/graphgate/health"
	"github.com/c360/graphgate/metric"
	"github.com/c360/graphgate/pattern"
	"github.com/c360/graphgate/session"
)

const planCustomQuery = `{"reasoning": "counting people", "tools": ["custom_query"], "response_type": "custom"}`

// scriptedCompleter returns canned replies in order.
type scriptedCompleter struct {
	mu      sync.Mutex
	replies []string
}

func (c *scriptedCompleter) Complete(_ context.Context, _ string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.replies) == 0 {
		return "", io.EOF
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return reply, nil
}

// countExec answers count statements and leaves schema probes empty.
type countExec struct{}

func (countExec) Execute(_ context.Context, statement string) (graph.Result, error) {
	if strings.Contains(statement, "count(p)") {
		return graph.Result{Columns: []string{"total"}, Rows: [][]string{{"42"}}}, nil
	}
	return graph.Result{}, nil
}

// wedgedExec tolerates schema probes but fails the turn's statement
// with an unrecoverable error.
type wedgedExec struct{}

func (wedgedExec) Execute(_ context.Context, statement string) (graph.Result, error) {
	if strings.Contains(statement, "AS total") {
		return graph.Result{}, errors.New(errors.KindInternal, "graph", "Execute", "store wedged")
	}
	return graph.Result{}, nil
}

func testServer(t *testing.T, maxSessions int) (*Server, *session.Manager, *health.Monitor) {
	t.Helper()
	return testServerExec(t, maxSessions, countExec{},
		[]string{planCustomQuery, "There are 42 employees."})
}

func testServerExec(t *testing.T, maxSessions int, exec graph.Executor, replies []string) (*Server, *session.Manager, *health.Monitor) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := metric.NewMetricsRegistry()
	completer := &scriptedCompleter{replies: replies}

	svc := &session.Services{
		Completer:   completer,
		Executor:    exec,
		Prober:      graph.NewProber(exec, 500*time.Millisecond, 100*time.Millisecond, logger),
		Searcher:    graph.NewSearcher(exec, 5, logger),
		Matcher:     pattern.NewMatcher(logger),
		Summarizer:  format.NewSummarizer(completer, logger),
		Metrics:     registry.CoreMetrics(),
		TurnTimeout: 5 * time.Second,
	}

	manager := session.NewManager(svc, maxSessions, time.Minute, logger)
	monitor := health.NewMonitor()
	monitor.UpdateHealthy("graph", "ok")

	return NewServer(":0", manager, registry, monitor, logger), manager, monitor
}

func dialWS(t *testing.T, httpURL string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(httpURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn
}

func TestWebsocketTurnDeliversOrderedEvents(t *testing.T) {
	server, _, _ := testServer(t, 4)
	srv := httptest.NewServer(server.Routes())
	defer srv.Close()

	conn := dialWS(t, srv.URL)
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("How many employees are there?")))

	var types []string
	var final string
	deadline := time.Now().Add(5 * time.Second)
	for final == "" {
		require.NoError(t, conn.SetReadDeadline(deadline))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var ev map[string]any
		if json.Unmarshal(data, &ev) != nil || ev["type"] == nil {
			final = string(data)
			break
		}
		if ev["type"] == "ping" {
			continue
		}
		types = append(types, ev["type"].(string))
	}

	assert.Equal(t, []string{"info", "info", "query", "results"}, types)
	assert.Equal(t, "There are 42 employees.", final)
}

func TestWebsocketFatalErrorArrivesBeforeClose(t *testing.T) {
	server, _, _ := testServerExec(t, 4, wedgedExec{}, []string{planCustomQuery})
	srv := httptest.NewServer(server.Routes())
	defer srv.Close()

	conn := dialWS(t, srv.URL)
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("How many employees are there?")))

	// The session closes itself after an unrecoverable failure; the
	// error event must still reach the client ahead of the close frame.
	sawError := false
	deadline := time.Now().Add(5 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		_, data, err := conn.ReadMessage()
		if err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure),
				"unexpected read error: %v", err)
			break
		}

		var ev map[string]any
		if json.Unmarshal(data, &ev) != nil || ev["type"] == nil {
			continue
		}
		if ev["type"] == "error" {
			sawError = true
			assert.Equal(t, errors.UserMessage(errors.KindInternal), ev["message"])
		}
	}
	assert.True(t, sawError, "error event was not delivered before the close")
}

func TestWebsocketRejectsAtCapacity(t *testing.T) {
	server, _, _ := testServer(t, 0)
	srv := httptest.NewServer(server.Routes())
	defer srv.Close()

	conn := dialWS(t, srv.URL)
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev map[string]any
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, "error", ev["type"])
	assert.Contains(t, ev["message"], "capacity")
}

func TestWebsocketSessionRemovedOnDisconnect(t *testing.T) {
	server, manager, _ := testServer(t, 4)
	srv := httptest.NewServer(server.Routes())
	defer srv.Close()

	conn := dialWS(t, srv.URL)
	require.Eventually(t, func() bool { return manager.Count() == 1 },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return manager.Count() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestHealthEndpoint(t *testing.T) {
	server, _, monitor := testServer(t, 4)
	srv := httptest.NewServer(server.Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])

	monitor.UpdateUnhealthy("graph", "unreachable")
	resp2, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp2.Body.Close() }()
	assert.Equal(t, http.StatusServiceUnavailable, resp2.StatusCode)
}

func TestHealthEndpointRejectsPost(t *testing.T) {
	server, _, _ := testServer(t, 4)
	srv := httptest.NewServer(server.Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/health", "application/json", nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	server, _, _ := testServer(t, 4)
	srv := httptest.NewServer(server.Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "graphgate_sessions_active")
}
