package server

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mfreitas/chat-relay/internal/config"
	"github.com/mfreitas/chat-relay/internal/event"
)

// session is one live client connection. It implements registry.Conn.
type session struct {
	id     string
	conn   *websocket.Conn
	cfg    config.SocketConfig
	logger *slog.Logger

	send chan []byte
	done chan struct{}
	once sync.Once
}

func newSession(conn *websocket.Conn, cfg config.SocketConfig, logger *slog.Logger) *session {
	id := uuid.NewString()

	return &session{
		id:     id,
		conn:   conn,
		cfg:    cfg,
		logger: logger.With("conn_id", id),
		send:   make(chan []byte, cfg.SendBufferSize),
		done:   make(chan struct{}),
	}
}

// ID returns the session identifier, stable for the session lifetime.
func (s *session) ID() string { return s.id }

// Send queues an event frame. Best effort: a full buffer or a closed
// session drops the frame without blocking the caller.
func (s *session) Send(ev event.Envelope) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.logger.Warn("marshal outbound event", "event", ev.Event, "error", err)
		return
	}

	select {
	case <-s.done:
	case s.send <- data:
	default:
		s.logger.Warn("send buffer full, dropping frame", "event", ev.Event)
	}
}

// writePump serializes all writes to the connection and keeps it alive
// with periodic pings.
func (s *session) writePump() {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return

		case data := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logger.Debug("write failed", "error", err)
				return
			}

		case <-ticker.C:
			deadline := time.Now().Add(s.cfg.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Debug("ping failed", "error", err)
				return
			}
		}
	}
}

// close releases the transport. Safe to call more than once.
func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		s.conn.Close()
	})
}
