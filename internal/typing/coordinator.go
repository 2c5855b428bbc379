package typing

import (
	"log/slog"
	"sync"

	"github.com/samber/lo"

	"github.com/mfreitas/chat-relay/internal/event"
)

// Deliverer fans an event out to a room. *registry.Registry satisfies it.
type Deliverer interface {
	Deliver(roomKey string, ev event.Envelope, exclude string) int
}

// Stats is a point-in-time snapshot of typing state.
type Stats struct {
	Rooms   int `json:"rooms"`
	Typists int `json:"typists"`
}

// Coordinator owns the per-room typist sets. Transitions are computed under
// the lock and emissions performed after release, so a room's last-typist
// edge fires exactly once even under racing stops.
type Coordinator struct {
	logger  *slog.Logger
	deliver Deliverer

	mu      sync.Mutex
	typists map[string]map[string]struct{} // room key → conn IDs
}

// New creates a coordinator that emits through deliver.
func New(deliver Deliverer, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Coordinator{
		logger:  logger,
		deliver: deliver,
		typists: make(map[string]map[string]struct{}),
	}
}

// Typing marks the connection as typing in the room and emits a typing
// event to the room's other members. Emission happens on every call, not
// only on the idle-to-active edge.
func (c *Coordinator) Typing(connID, roomKey string) {
	if roomKey == "" {
		return
	}

	c.mu.Lock()
	set := c.typists[roomKey]
	if set == nil {
		set = make(map[string]struct{})
		c.typists[roomKey] = set
	}
	set[connID] = struct{}{}
	c.mu.Unlock()

	c.deliver.Deliver(roomKey, event.Raw(event.Typing, nil), connID)
}

// Stop clears the connection's typing state in the room. A stop typing
// event is emitted only when the last typist leaves; a connection that was
// not typing, or an untracked room, is a no-op.
func (c *Coordinator) Stop(connID, roomKey string) {
	if roomKey == "" {
		return
	}

	c.mu.Lock()
	set, ok := c.typists[roomKey]
	if !ok {
		c.mu.Unlock()
		return
	}
	if _, ok := set[connID]; !ok {
		c.mu.Unlock()
		return
	}
	delete(set, connID)
	emptied := len(set) == 0
	if emptied {
		delete(c.typists, roomKey)
	}
	c.mu.Unlock()

	if emptied {
		c.deliver.Deliver(roomKey, event.Raw(event.StopTyping, nil), connID)
	}
}

// Disconnect clears the connection from every room's typist set, emitting
// stop typing for each room it was the last typist in. Runs as a registry
// deregister hook; a set already cleared by an explicit Stop is simply
// absent here, so the two paths compose.
func (c *Coordinator) Disconnect(connID string) {
	c.mu.Lock()
	var emptied []string
	for roomKey, set := range c.typists {
		if _, ok := set[connID]; !ok {
			continue
		}
		delete(set, connID)
		if len(set) == 0 {
			delete(c.typists, roomKey)
			emptied = append(emptied, roomKey)
		}
	}
	c.mu.Unlock()

	for _, roomKey := range emptied {
		c.deliver.Deliver(roomKey, event.Raw(event.StopTyping, nil), connID)
		c.logger.Debug("cleared dangling typist", "conn_id", connID, "room", roomKey)
	}
}

// Stats returns a snapshot of current typing state.
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Rooms: len(c.typists),
		Typists: lo.SumBy(lo.Values(c.typists), func(set map[string]struct{}) int {
			return len(set)
		}),
	}
}
