package metric

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordSessionLifecycle(t *testing.T) {
	m := NewMetrics()

	m.RecordSessionOpened()
	m.RecordSessionOpened()
	m.RecordSessionClosed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsActive))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionsTotal))
}

func TestMetricsRecordTurn(t *testing.T) {
	m := NewMetrics()

	m.RecordTurn("delivered", 2*time.Second)
	m.RecordTurn("delivered", time.Second)
	m.RecordTurn("error", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TurnsTotal.WithLabelValues("delivered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TurnsTotal.WithLabelValues("error")))
}

func TestMetricsRecordQueryFixes(t *testing.T) {
	m := NewMetrics()

	m.RecordQueryFixes([]string{"removed_trailing_semicolon", "normalized_quotes", "removed_trailing_semicolon"})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.QueryFixesTotal.WithLabelValues("removed_trailing_semicolon")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueryFixesTotal.WithLabelValues("normalized_quotes")))

	m.RecordQueryFixes(nil)
}

func TestMetricsRecordGraphStatus(t *testing.T) {
	m := NewMetrics()

	m.RecordGraphStatus(true)
	require.Equal(t, 1.0, testutil.ToFloat64(m.GraphConnected))

	m.RecordGraphStatus(false)
	require.Equal(t, 0.0, testutil.ToFloat64(m.GraphConnected))
}

func TestMetricsRecordError(t *testing.T) {
	m := NewMetrics()

	m.RecordError("graph", "timeout")
	m.RecordError("graph", "timeout")
	m.RecordError("llm", "llm_unavailable")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("graph", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("llm", "llm_unavailable")))
}
