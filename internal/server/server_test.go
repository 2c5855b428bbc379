package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mfreitas/chat-relay/internal/config"
	"github.com/mfreitas/chat-relay/internal/event"
	"github.com/mfreitas/chat-relay/internal/registry"
	"github.com/mfreitas/chat-relay/internal/router"
	"github.com/mfreitas/chat-relay/internal/typing"
)

func newTestServer(t *testing.T) (*httptest.Server, *registry.Registry) {
	t.Helper()

	cfg := config.Default().Socket
	reg := registry.New(nil)
	coord := typing.New(reg, nil)
	reg.OnDeregister(coord.Disconnect)
	rt := router.New(reg, coord, nil)
	ws := New(cfg, "", reg, rt, nil)

	srv := httptest.NewServer(ws.Handler())
	t.Cleanup(srv.Close)
	t.Cleanup(ws.Close)
	return srv, reg
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, name string, payload interface{}) {
	t.Helper()

	ev, err := event.New(name, payload)
	if err != nil {
		t.Fatalf("build %q frame: %v", name, err)
	}
	data, _ := json.Marshal(ev)
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write %q frame: %v", name, err)
	}
}

func read(t *testing.T, conn *websocket.Conn) event.Envelope {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	ev, err := event.Decode(data)
	if err != nil {
		t.Fatalf("decode frame %s: %v", data, err)
	}
	return ev
}

// waitForMembers blocks until the room has n members or the test times out.
func waitForMembers(t *testing.T, reg *registry.Registry, room string, n int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(reg.Members(room)) == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("room %q never reached %d members (have %v)", room, n, reg.Members(room))
}

func TestSetup_RoundTrip(t *testing.T) {
	srv, reg := newTestServer(t)
	conn := dial(t, srv)

	send(t, conn, event.Setup, event.UserRef{ID: "u1"})

	if ev := read(t, conn); ev.Event != event.Connected {
		t.Errorf("first event = %q, want %q", ev.Event, event.Connected)
	}
	waitForMembers(t, reg, "u1", 1)
}

func TestTypingRelay_EndToEnd(t *testing.T) {
	srv, reg := newTestServer(t)
	c1 := dial(t, srv)
	c2 := dial(t, srv)

	send(t, c1, event.Setup, event.UserRef{ID: "u1"})
	send(t, c2, event.Setup, event.UserRef{ID: "u2"})
	read(t, c1)
	read(t, c2)

	send(t, c1, event.JoinChat, "room1")
	send(t, c2, event.JoinChat, "room1")
	waitForMembers(t, reg, "room1", 2)

	send(t, c1, event.Typing, "room1")
	if ev := read(t, c2); ev.Event != event.Typing {
		t.Errorf("c2 got %q, want %q", ev.Event, event.Typing)
	}

	send(t, c1, event.StopTyping, "room1")
	if ev := read(t, c2); ev.Event != event.StopTyping {
		t.Errorf("c2 got %q, want %q", ev.Event, event.StopTyping)
	}
}

func TestDisconnect_CleansUpTypingState(t *testing.T) {
	srv, reg := newTestServer(t)
	c1 := dial(t, srv)
	c2 := dial(t, srv)

	send(t, c1, event.Setup, event.UserRef{ID: "u1"})
	send(t, c2, event.Setup, event.UserRef{ID: "u2"})
	read(t, c1)
	read(t, c2)

	send(t, c1, event.JoinChat, "room1")
	send(t, c2, event.JoinChat, "room1")
	waitForMembers(t, reg, "room1", 2)

	send(t, c1, event.Typing, "room1")
	if ev := read(t, c2); ev.Event != event.Typing {
		t.Fatalf("c2 got %q, want %q", ev.Event, event.Typing)
	}

	// c1 vanishes without signaling stop; the deregister cascade must
	// still clear its typing indicator.
	c1.Close()

	if ev := read(t, c2); ev.Event != event.StopTyping {
		t.Errorf("c2 got %q, want %q", ev.Event, event.StopTyping)
	}
	waitForMembers(t, reg, "room1", 1)
}

func TestMessageFanOut_EndToEnd(t *testing.T) {
	srv, reg := newTestServer(t)
	sender := dial(t, srv)
	receiver := dial(t, srv)

	send(t, sender, event.Setup, event.UserRef{ID: "uB"})
	send(t, receiver, event.Setup, event.UserRef{ID: "uA"})
	read(t, sender)
	read(t, receiver)
	waitForMembers(t, reg, "uA", 1)

	send(t, sender, event.NewMessage, map[string]interface{}{
		"chat": map[string]interface{}{
			"users": []map[string]string{{"_id": "uA"}, {"_id": "uB"}},
		},
		"sender":  map[string]string{"_id": "uB"},
		"content": "hi",
	})

	ev := read(t, receiver)
	if ev.Event != event.MessageReceived {
		t.Fatalf("receiver got %q, want %q", ev.Event, event.MessageReceived)
	}

	var msg struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(ev.Payload, &msg); err != nil {
		t.Fatalf("unmarshal forwarded payload: %v", err)
	}
	if msg.Content != "hi" {
		t.Errorf("forwarded content = %q, want %q", msg.Content, "hi")
	}
}
