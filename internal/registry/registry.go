package registry

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/mfreitas/chat-relay/internal/event"
)

// Conn is a live client connection the registry can deliver to.
type Conn interface {
	// ID returns the connection identifier, stable for the session lifetime.
	ID() string

	// Send queues an event for delivery. It must not block; a frame that
	// cannot be queued is dropped.
	Send(ev event.Envelope)
}

// Stats is a point-in-time snapshot of registry state.
type Stats struct {
	Connections int `json:"connections"`
	Rooms       int `json:"rooms"`
}

// Registry tracks connections and room membership. All mutation happens
// behind one lock; no lock is held while sending.
type Registry struct {
	logger *slog.Logger

	mu         sync.RWMutex
	conns      map[string]Conn
	rooms      map[string]map[string]Conn      // room key → conn ID → conn
	membership map[string]map[string]struct{} // conn ID → room keys

	hookMu sync.Mutex
	hooks  []func(connID string)
}

// New creates an empty registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		logger:     logger,
		conns:      make(map[string]Conn),
		rooms:      make(map[string]map[string]Conn),
		membership: make(map[string]map[string]struct{}),
	}
}

// OnDeregister registers a cleanup hook. Hooks run during Deregister while
// the connection is still a member of its rooms, so events they emit reach
// the rooms it is leaving.
func (r *Registry) OnDeregister(fn func(connID string)) {
	r.hookMu.Lock()
	r.hooks = append(r.hooks, fn)
	r.hookMu.Unlock()
}

// Register adds a connection with empty room membership. Registering the
// same ID twice is a no-op.
func (r *Registry) Register(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[c.ID()]; ok {
		return
	}
	r.conns[c.ID()] = c
	r.membership[c.ID()] = make(map[string]struct{})
}

// Join adds the connection to a room. Idempotent; unknown connections and
// empty room keys are ignored.
func (r *Registry) Join(connID, roomKey string) {
	if roomKey == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[connID]
	if !ok {
		return
	}

	room := r.rooms[roomKey]
	if room == nil {
		room = make(map[string]Conn)
		r.rooms[roomKey] = room
	}
	room[connID] = c
	r.membership[connID][roomKey] = struct{}{}
}

// Deliver sends ev to every member of roomKey except exclude (empty string
// excludes nobody) and returns the recipient count. A room with no members
// is a no-op, not an error.
func (r *Registry) Deliver(roomKey string, ev event.Envelope, exclude string) int {
	r.mu.RLock()
	recipients := make([]Conn, 0, len(r.rooms[roomKey]))
	for id, c := range r.rooms[roomKey] {
		if id == exclude {
			continue
		}
		recipients = append(recipients, c)
	}
	r.mu.RUnlock()

	for _, c := range recipients {
		c.Send(ev)
	}
	return len(recipients)
}

// Deregister removes the connection from every room and releases it. Only
// the first call for a given connection has any effect.
func (r *Registry) Deregister(connID string) {
	r.mu.Lock()
	if _, ok := r.conns[connID]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.conns, connID)
	r.mu.Unlock()

	// Cleanup hooks fire before membership is dropped.
	r.hookMu.Lock()
	hooks := append([]func(string){}, r.hooks...)
	r.hookMu.Unlock()
	for _, fn := range hooks {
		fn(connID)
	}

	r.mu.Lock()
	for roomKey := range r.membership[connID] {
		room := r.rooms[roomKey]
		delete(room, connID)
		if len(room) == 0 {
			delete(r.rooms, roomKey)
		}
	}
	delete(r.membership, connID)
	r.mu.Unlock()

	r.logger.Debug("connection deregistered", "conn_id", connID)
}

// Rooms returns the room keys the connection is a member of, sorted.
func (r *Registry) Rooms(connID string) []string {
	r.mu.RLock()
	keys := lo.Keys(r.membership[connID])
	r.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// Members returns the connection IDs currently in a room, sorted.
func (r *Registry) Members(roomKey string) []string {
	r.mu.RLock()
	ids := lo.Keys(r.rooms[roomKey])
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Stats returns a snapshot of current state.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{Connections: len(r.conns), Rooms: len(r.rooms)}
}
