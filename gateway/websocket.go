package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/c360/graphgate/session"
)

const (
	writeTimeout = 10 * time.Second
	// readLimit bounds a single inbound frame. User questions are short;
	// anything larger is abuse.
	readLimit = 16 * 1024
)

// handleWS upgrades the connection and runs the session until either
// side goes away. The handler goroutine is the sole reader; a companion
// goroutine is the sole writer, draining the session's event queue so
// event ordering is the channel's ordering.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	base := s.base
	if base == nil {
		base = context.Background()
	}

	sess, ctx, err := s.manager.Open(base)
	if err != nil {
		s.logger.Warn("session rejected", "error", err)
		data, _ := session.Error("The server is at capacity. Please try again later.", nil, "").Encode()
		_ = conn.WriteMessage(websocket.TextMessage, data)
		return
	}
	defer s.manager.Close(sess.ID)

	writerDone := make(chan struct{})
	go s.writeLoop(conn, sess, writerDone)

	conn.SetReadLimit(readLimit)
	s.readLoop(ctx, conn, sess)

	sess.Close()
	<-writerDone
}

// readLoop services inbound frames until the client disconnects.
func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, sess *session.Session) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("client read failed", "session_id", sess.ID, "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		sess.Touch()
		in := session.ParseInbound(data)
		if in.Control() {
			continue
		}
		sess.Supervisor.HandleMessage(ctx, in.Text())
	}
}

// writeLoop is the connection's single writer: session events, heartbeat
// pings, and the final answers all flow through here in order.
func (s *Server) writeLoop(conn *websocket.Conn, sess *session.Session, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-sess.Done():
			// Events queued before the close must still reach the
			// client; a fatal error's event races the done signal.
			s.drainEvents(conn, sess)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeTimeout))
			return
		case ev := <-sess.Events():
			if err := s.writeEvent(conn, sess, ev); err != nil {
				sess.Close()
				return
			}
		}
	}
}

// drainEvents flushes whatever is already queued without blocking for
// new events.
func (s *Server) drainEvents(conn *websocket.Conn, sess *session.Session) {
	for {
		select {
		case ev := <-sess.Events():
			if err := s.writeEvent(conn, sess, ev); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (s *Server) writeEvent(conn *websocket.Conn, sess *session.Session, ev session.Event) error {
	data, err := ev.Encode()
	if err != nil {
		s.logger.Error("event encoding failed", "session_id", sess.ID, "error", err)
		return nil
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Debug("client write failed", "session_id", sess.ID, "error", err)
		return err
	}
	return nil
}
