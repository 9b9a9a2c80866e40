package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/c360/graphgate/errors"
	"github.com/c360/graphgate/metric"
)

// sendBuffer bounds the per-session event queue between the supervisor
// and the connection's write loop.
const sendBuffer = 64

// Session is one active client connection. It owns its event queue and
// its supervisor; the manager holds it by id only.
type Session struct {
	ID        string
	CreatedAt time.Time

	Supervisor *Supervisor

	mu           sync.Mutex
	lastActivity time.Time

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
	cancel    context.CancelFunc
}

// Send queues one event for delivery. It blocks while the queue is full
// and fails once the session is closed.
func (s *Session) Send(ev Event) error {
	select {
	case <-s.done:
		return errors.ErrSessionClosed
	default:
	}
	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return errors.ErrSessionClosed
	}
}

// Events exposes the queue drained by the connection's write loop. The
// channel is never closed; the write loop must also select on Done.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Done is closed when the session closes.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Touch records client activity, keeping the session from looking idle.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// LastActivity returns the time of the most recent client frame.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Close cancels the in-flight turn and unblocks every pending Send.
// Idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.cancel != nil {
			s.cancel()
		}
	})
}

func (s *Session) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Manager tracks active sessions: bounded admission, per-session
// heartbeats, and best-effort broadcast. It is the only process-wide
// mutable state in the gateway.
type Manager struct {
	svc       *Services
	max       int
	heartbeat time.Duration
	logger    *slog.Logger
	metrics   *metric.Metrics

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager admitting at most max sessions.
func NewManager(svc *Services, max int, heartbeat time.Duration, logger *slog.Logger) *Manager {
	return &Manager{
		svc:       svc,
		max:       max,
		heartbeat: heartbeat,
		logger:    logger.With("component", "session"),
		metrics:   svc.Metrics,
		sessions:  make(map[string]*Session),
	}
}

// Open admits a new session and starts its heartbeat. parent is the
// connection's context; closing the session cancels everything derived
// from it. Returns ErrSessionLimit at capacity.
func (m *Manager) Open(parent context.Context) (*Session, context.Context, error) {
	m.mu.Lock()
	if len(m.sessions) >= m.max {
		m.mu.Unlock()
		return nil, nil, errors.WrapKind(errors.KindInternal, errors.ErrSessionLimit,
			"session", "Open", "admission")
	}

	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now(),
		lastActivity: time.Now(),
		events:       make(chan Event, sendBuffer),
		done:         make(chan struct{}),
		cancel:       cancel,
	}

	logger := m.logger.With("session_id", s.ID)
	s.Supervisor = NewSupervisor(m.svc, s.Send, s.Close, logger)

	m.sessions[s.ID] = s
	count := len(m.sessions)
	m.mu.Unlock()

	m.metrics.RecordSessionOpened()
	logger.Info("session opened", "active", count)

	go m.heartbeatLoop(s)
	return s, ctx, nil
}

// Close removes a session from the registry and tears it down.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	count := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return
	}
	s.Close()
	m.metrics.RecordSessionClosed()
	m.logger.Info("session closed", "session_id", id, "active", count)
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Capacity returns the admission bound.
func (m *Manager) Capacity() int {
	return m.max
}

// Broadcast queues an event on every session, best effort and
// non-blocking: a slow or dead session never delays the others.
func (m *Manager) Broadcast(ev Event) {
	m.mu.RLock()
	targets := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		targets = append(targets, s)
	}
	m.mu.RUnlock()

	for _, s := range targets {
		if s.closed() {
			continue
		}
		select {
		case s.events <- ev:
		default:
			m.logger.Debug("broadcast dropped", "session_id", s.ID)
		}
	}
}

// heartbeatLoop emits a ping on the session's event queue at the
// configured interval. A failed send means the session closed; the loop
// then removes it from the registry.
func (m *Manager) heartbeatLoop(s *Session) {
	ticker := time.NewTicker(m.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			// Closed from elsewhere (fatal turn failure, connection
			// teardown); drop it from the registry.
			m.Close(s.ID)
			return
		case <-ticker.C:
			if err := s.Send(Ping()); err != nil {
				m.Close(s.ID)
				return
			}
		}
	}
}
