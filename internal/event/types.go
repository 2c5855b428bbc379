package event

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Inbound event names.
const (
	Setup          = "setup"
	JoinChat       = "joinchat"
	Typing         = "typing"
	StopTyping     = "stop typing"
	NewMessage     = "new message"
	ReactionUpdate = "reaction update"
)

// Outbound event names. Typing and StopTyping are used in both directions.
const (
	Connected       = "connected"
	MessageReceived = "message received"
	ReactionUpdated = "reaction updated"
)

// Envelope is the wire form of every event, inbound and outbound.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Raw builds an envelope around already-encoded payload bytes. A nil
// payload produces an envelope with no payload field.
func Raw(name string, payload json.RawMessage) Envelope {
	return Envelope{Event: name, Payload: payload}
}

// New builds an envelope, marshaling v as the payload. A nil v produces an
// envelope with no payload field.
func New(name string, v interface{}) (Envelope, error) {
	if v == nil {
		return Envelope{Event: name}, nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %q payload: %w", name, err)
	}
	return Envelope{Event: name, Payload: payload}, nil
}

// Decode parses an inbound frame.
func Decode(data []byte) (Envelope, error) {
	var ev Envelope
	if err := json.Unmarshal(data, &ev); err != nil {
		return Envelope{}, fmt.Errorf("parse frame: %w", err)
	}
	if ev.Event == "" {
		return Envelope{}, fmt.Errorf("frame without event name")
	}
	return ev, nil
}

// RoomKey decodes a payload that is a bare JSON string room key. Returns ""
// for anything else.
func RoomKey(payload json.RawMessage) string {
	var room string
	if err := json.Unmarshal(payload, &room); err != nil {
		return ""
	}
	return room
}

// UserRef is the slice of a user record the relay reads.
type UserRef struct {
	ID string `json:"_id"`
}

// ChatRef is the slice of a chat record the relay reads.
type ChatRef struct {
	Users []UserRef `json:"users"`
}

// MessageView is the slice of a message record the relay reads. The chat
// and sender schemas belong to the persistence layer; only presence is
// checked here.
type MessageView struct {
	Chat   *ChatRef `json:"chat"`
	Sender UserRef  `json:"sender"`
}

// ReactionView is the payload of a reaction update.
type ReactionView struct {
	ChatID  string          `json:"chatId"`
	Message json.RawMessage `json:"message"`
}

// HasMessage reports whether the reaction carries a message payload.
func (r ReactionView) HasMessage() bool {
	return len(r.Message) > 0 && !bytes.Equal(r.Message, []byte("null"))
}
