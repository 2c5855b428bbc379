package router

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"

	"github.com/mfreitas/chat-relay/internal/event"
	"github.com/mfreitas/chat-relay/internal/registry"
	"github.com/mfreitas/chat-relay/internal/typing"
)

// Stats contains dispatch counters.
type Stats struct {
	Setups    int64 `json:"setups"`
	Joins     int64 `json:"joins"`
	Typing    int64 `json:"typing"`
	Messages  int64 `json:"messages"`
	Reactions int64 `json:"reactions"`
	Dropped   int64 `json:"dropped"`
}

// Router is a stateless dispatcher over the inbound event surface. All
// state lives in the registry and the coordinator.
type Router struct {
	logger   *slog.Logger
	registry *registry.Registry
	typing   *typing.Coordinator

	setups    atomic.Int64
	joins     atomic.Int64
	typings   atomic.Int64
	messages  atomic.Int64
	reactions atomic.Int64
	dropped   atomic.Int64
}

// New creates a router over the given registry and typing coordinator.
func New(reg *registry.Registry, coord *typing.Coordinator, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}

	return &Router{
		logger:   logger,
		registry: reg,
		typing:   coord,
	}
}

// Dispatch processes one inbound frame from a connection. Frames from one
// connection are dispatched in order by its read loop; frames from
// different connections run concurrently.
func (r *Router) Dispatch(c registry.Conn, data []byte) {
	ev, err := event.Decode(data)
	if err != nil {
		r.drop(c, "malformed frame", "error", err)
		return
	}

	switch ev.Event {
	case event.Setup:
		r.handleSetup(c, ev.Payload)

	case event.JoinChat:
		room := event.RoomKey(ev.Payload)
		if room == "" {
			r.drop(c, "joinchat without room")
			return
		}
		r.registry.Join(c.ID(), room)
		r.joins.Add(1)
		r.logger.Debug("joined room", "conn_id", c.ID(), "room", room)

	case event.Typing:
		room := event.RoomKey(ev.Payload)
		if room == "" {
			r.drop(c, "typing without room")
			return
		}
		r.typing.Typing(c.ID(), room)
		r.typings.Add(1)

	case event.StopTyping:
		room := event.RoomKey(ev.Payload)
		if room == "" {
			r.drop(c, "stop typing without room")
			return
		}
		r.typing.Stop(c.ID(), room)
		r.typings.Add(1)

	case event.NewMessage:
		r.handleNewMessage(c, ev.Payload)

	case event.ReactionUpdate:
		r.handleReaction(c, ev.Payload)

	default:
		r.drop(c, "unknown event", "event", ev.Event)
	}
}

// handleSetup binds the connection to its user's personal room and confirms
// with a connected event. An absent or empty user id is silently ignored.
func (r *Router) handleSetup(c registry.Conn, payload json.RawMessage) {
	var user event.UserRef
	if err := json.Unmarshal(payload, &user); err != nil || user.ID == "" {
		r.drop(c, "setup without user id")
		return
	}

	r.registry.Join(c.ID(), user.ID)
	c.Send(event.Raw(event.Connected, nil))
	r.setups.Add(1)
	r.logger.Debug("user setup", "conn_id", c.ID(), "user_id", user.ID)
}

// handleNewMessage fans the message out to every participant's personal
// room except the sender's. The payload is forwarded unchanged; its schema
// belongs to the persistence layer.
func (r *Router) handleNewMessage(c registry.Conn, payload json.RawMessage) {
	var msg event.MessageView
	if err := json.Unmarshal(payload, &msg); err != nil || msg.Chat == nil {
		r.drop(c, "message without chat")
		return
	}
	if msg.Chat.Users == nil {
		r.drop(c, "chat.users not defined")
		return
	}

	out := event.Raw(event.MessageReceived, payload)
	for _, u := range msg.Chat.Users {
		if u.ID == msg.Sender.ID {
			continue
		}
		r.registry.Deliver(u.ID, out, c.ID())
	}
	r.messages.Add(1)
}

// handleReaction broadcasts the updated message to the chat room. No
// exclusion: the reacting user's own connections in the room receive it
// too, so every tab converges on the same reaction state.
func (r *Router) handleReaction(c registry.Conn, payload json.RawMessage) {
	var re event.ReactionView
	if err := json.Unmarshal(payload, &re); err != nil || re.ChatID == "" || !re.HasMessage() {
		r.drop(c, "reaction update missing chatId or message")
		return
	}

	r.registry.Deliver(re.ChatID, event.Raw(event.ReactionUpdated, re.Message), "")
	r.reactions.Add(1)
}

func (r *Router) drop(c registry.Conn, msg string, args ...interface{}) {
	r.dropped.Add(1)
	r.logger.Warn(msg, append([]interface{}{"conn_id", c.ID()}, args...)...)
}

// Stats returns a snapshot of dispatch counters.
func (r *Router) Stats() Stats {
	return Stats{
		Setups:    r.setups.Load(),
		Joins:     r.joins.Load(),
		Typing:    r.typings.Load(),
		Messages:  r.messages.Load(),
		Reactions: r.reactions.Load(),
		Dropped:   r.dropped.Load(),
	}
}
