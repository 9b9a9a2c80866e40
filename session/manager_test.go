package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, max int, heartbeat time.Duration) *Manager {
	t.Helper()
	svc := newTestServices(&scriptedCompleter{}, &scriptedExec{})
	return NewManager(svc, max, heartbeat, testLogger())
}

func TestManagerOpenAndClose(t *testing.T) {
	m := newTestManager(t, 4, time.Minute)

	s, ctx, err := m.Open(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s.Supervisor)
	assert.Equal(t, 1, m.Count())

	m.Close(s.ID)
	assert.Equal(t, 0, m.Count())

	// Closing the session cancels its context.
	select {
	case <-ctx.Done():
	default:
		t.Fatal("session context still live after close")
	}

	// Close is idempotent.
	m.Close(s.ID)
	assert.Equal(t, 0, m.Count())
}

func TestManagerEnforcesSessionLimit(t *testing.T) {
	m := newTestManager(t, 2, time.Minute)

	_, _, err := m.Open(context.Background())
	require.NoError(t, err)
	_, _, err = m.Open(context.Background())
	require.NoError(t, err)

	_, _, err = m.Open(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "maximum session count")
}

func TestManagerHeartbeat(t *testing.T) {
	m := newTestManager(t, 1, 20*time.Millisecond)

	s, _, err := m.Open(context.Background())
	require.NoError(t, err)
	defer m.Close(s.ID)

	select {
	case ev := <-s.Events():
		assert.Equal(t, TypePing, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("no heartbeat ping received")
	}
}

func TestManagerHeartbeatRemovesClosedSession(t *testing.T) {
	m := newTestManager(t, 1, 10*time.Millisecond)

	s, _, err := m.Open(context.Background())
	require.NoError(t, err)

	s.Close()
	require.Eventually(t, func() bool { return m.Count() == 0 }, time.Second, 5*time.Millisecond)
}

func TestManagerBroadcastSkipsSlowSessions(t *testing.T) {
	m := newTestManager(t, 2, time.Minute)

	fast, _, err := m.Open(context.Background())
	require.NoError(t, err)
	slow, _, err := m.Open(context.Background())
	require.NoError(t, err)
	defer m.Close(fast.ID)
	defer m.Close(slow.ID)

	// Saturate the slow session's queue.
	for i := 0; i < sendBuffer; i++ {
		require.NoError(t, slow.Send(Info("fill")))
	}

	done := make(chan struct{})
	go func() {
		m.Broadcast(Info("update"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow session")
	}

	ev := <-fast.Events()
	assert.Equal(t, "update", ev.Message)
}

func TestSessionSendAfterClose(t *testing.T) {
	m := newTestManager(t, 1, time.Minute)

	s, _, err := m.Open(context.Background())
	require.NoError(t, err)

	s.Close()
	assert.Error(t, s.Send(Info("too late")))
}

func TestSessionTouchUpdatesActivity(t *testing.T) {
	m := newTestManager(t, 1, time.Minute)

	s, _, err := m.Open(context.Background())
	require.NoError(t, err)
	defer m.Close(s.ID)

	before := s.LastActivity()
	time.Sleep(5 * time.Millisecond)
	s.Touch()
	assert.True(t, s.LastActivity().After(before))
}
