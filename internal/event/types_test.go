package event

import (
	"encoding/json"
	"testing"
)

func TestDecode(t *testing.T) {
	ev, err := Decode([]byte(`{"event":"joinchat","payload":"room1"}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if ev.Event != JoinChat {
		t.Errorf("Event = %q, want %q", ev.Event, JoinChat)
	}
	if got := RoomKey(ev.Payload); got != "room1" {
		t.Errorf("RoomKey = %q, want %q", got, "room1")
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"event":`},
		{"missing event name", `{"payload":"room1"}`},
		{"empty event name", `{"event":"","payload":"room1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.data)); err == nil {
				t.Errorf("Decode(%q) succeeded, want error", tt.data)
			}
		})
	}
}

func TestRoomKey_NonString(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"object", `{"room":"x"}`},
		{"number", `42`},
		{"null", `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoomKey(json.RawMessage(tt.payload)); got != "" {
				t.Errorf("RoomKey(%s) = %q, want empty", tt.payload, got)
			}
		})
	}
}

func TestRaw_NoPayloadOmitted(t *testing.T) {
	data, err := json.Marshal(Raw(Connected, nil))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"event":"connected"}` {
		t.Errorf("Marshal = %s, want %s", data, `{"event":"connected"}`)
	}
}

func TestNew_RoundTrip(t *testing.T) {
	ev, err := New(Setup, UserRef{ID: "u1"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var user UserRef
	if err := json.Unmarshal(ev.Payload, &user); err != nil {
		t.Fatalf("Unmarshal payload failed: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("ID = %q, want %q", user.ID, "u1")
	}
}

func TestMessageView_MissingFields(t *testing.T) {
	var msg MessageView
	if err := json.Unmarshal([]byte(`{"sender":{"_id":"u1"}}`), &msg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if msg.Chat != nil {
		t.Errorf("Chat = %v, want nil", msg.Chat)
	}

	if err := json.Unmarshal([]byte(`{"chat":{}}`), &msg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if msg.Chat == nil {
		t.Fatal("Chat = nil, want present")
	}
	if msg.Chat.Users != nil {
		t.Errorf("Users = %v, want nil", msg.Chat.Users)
	}
}

func TestReactionView_HasMessage(t *testing.T) {
	tests := []struct {
		name string
		data string
		want bool
	}{
		{"present", `{"chatId":"c1","message":{"_id":"m1"}}`, true},
		{"absent", `{"chatId":"c1"}`, false},
		{"null", `{"chatId":"c1","message":null}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var re ReactionView
			if err := json.Unmarshal([]byte(tt.data), &re); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if got := re.HasMessage(); got != tt.want {
				t.Errorf("HasMessage = %v, want %v", got, tt.want)
			}
		})
	}
}
