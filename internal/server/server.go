package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mfreitas/chat-relay/internal/config"
	"github.com/mfreitas/chat-relay/internal/registry"
	"github.com/mfreitas/chat-relay/internal/router"
)

// Server upgrades HTTP requests to WebSocket sessions and feeds their
// frames to the event router.
type Server struct {
	cfg      config.SocketConfig
	logger   *slog.Logger
	registry *registry.Registry
	router   *router.Router
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*session
	closed   bool
}

// New creates a server. allowedOrigin restricts the upgrade handshake to
// one frontend origin; empty allows any origin, matching the permissive
// CORS default of the legacy deployment.
func New(cfg config.SocketConfig, allowedOrigin string, reg *registry.Registry, rt *router.Router, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		router:   rt,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: cfg.HandshakeTimeout,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			CheckOrigin:      originChecker(allowedOrigin),
		},
		sessions: make(map[string]*session),
	}
}

func originChecker(allowed string) func(*http.Request) bool {
	if allowed == "" {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || origin == allowed
	}
}

// Handler returns the HTTP handler for the WebSocket endpoint.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.serveWS)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		s.logger.Debug("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	sess := newSession(conn, s.cfg, s.logger)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.registry.Register(sess)
	s.logger.Debug("connection established", "conn_id", sess.id, "remote", r.RemoteAddr)

	go sess.writePump()
	go s.readPump(sess)
}

// readPump dispatches inbound frames in order until the connection drops,
// then tears the session down.
func (s *Server) readPump(sess *session) {
	defer s.teardown(sess)

	sess.conn.SetReadLimit(s.cfg.ReadLimit)
	sess.conn.SetReadDeadline(time.Now().Add(s.cfg.PingTimeout))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(s.cfg.PingTimeout))
	})

	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				sess.logger.Debug("read failed", "error", err)
			}
			return
		}
		s.router.Dispatch(sess, data)
	}
}

// teardown runs the disconnect cascade: typing cleanup via the registry's
// deregister hooks, then membership drop, then transport release.
func (s *Server) teardown(sess *session) {
	s.registry.Deregister(sess.id)

	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()

	sess.close()
	s.logger.Debug("connection closed", "conn_id", sess.id)
}

// Close tears down every live session and refuses new ones.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range sessions {
		s.registry.Deregister(sess.id)
		sess.close()
	}
}
