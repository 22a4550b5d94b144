package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/icegen/game/engine"
)

func newTestClient(hub *Hub, channel string) *Client {
	return &Client{
		hub:     hub,
		channel: channel,
		send:    make(chan []byte, 256),
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.channels == nil {
		t.Error("Hub channels map is nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels are not initialised")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.channels["test-session"][client] {
		t.Error("Client was not registered in channel")
	}
	if len(hub.channels["test-session"]) != 1 {
		t.Errorf("Expected 1 client in channel, got %d", len(hub.channels["test-session"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.channels["test-session"]; exists {
		t.Error("Channel should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Client send channel should be closed")
	}

	// A second unregister is a no-op
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInChannel(t *testing.T) {
	hub := NewHub()
	client1 := newTestClient(hub, "multi")
	client2 := newTestClient(hub, "multi")

	hub.registerClient(client1)
	hub.registerClient(client2)
	if len(hub.channels["multi"]) != 2 {
		t.Errorf("Expected 2 clients in channel, got %d", len(hub.channels["multi"]))
	}

	hub.unregisterClient(client1)
	if len(hub.channels["multi"]) != 1 || !hub.channels["multi"][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := newTestClient(hub, "broadcast-test")
	other := newTestClient(hub, "elsewhere")
	hub.register <- client
	hub.register <- other

	state := &engine.GameState{
		PlayerPos: engine.Position{X: 5, Y: 3},
		MovesUsed: 2,
	}
	hub.BroadcastToSession("broadcast-test", state)

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.Channel != "broadcast-test" {
			t.Errorf("Expected channel broadcast-test, got %s", message.Channel)
		}
		if message.Event != EventStateUpdate {
			t.Errorf("Expected event '%s', got %s", EventStateUpdate, message.Event)
		}
		if message.GameState.PlayerPos != (engine.Position{X: 5, Y: 3}) || message.GameState.MovesUsed != 2 {
			t.Error("GameState not correctly transmitted")
		}
	case <-time.After(time.Second):
		t.Fatal("No message received within timeout")
	}

	select {
	case <-other.send:
		t.Error("Client on another channel should not receive the update")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()

	hub.BroadcastEvent("event-test", "custom-event", "test-data")

	select {
	case message := <-hub.broadcast:
		if message.Channel != "event-test" {
			t.Errorf("Expected channel 'event-test', got %s", message.Channel)
		}
		if message.Event != "custom-event" {
			t.Errorf("Expected event 'custom-event', got %s", message.Event)
		}
		if message.Data != "test-data" {
			t.Errorf("Expected data 'test-data', got %v", message.Data)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No broadcast message queued")
	}
}

func TestHubSlowClientIsDropped(t *testing.T) {
	hub := NewHub()
	client := &Client{hub: hub, channel: "slow", send: make(chan []byte)}
	hub.registerClient(client)

	hub.broadcastMessage(&Message{Channel: "slow", Event: "x"})

	if _, exists := hub.channels["slow"]; exists {
		t.Error("Client with a full send buffer should be unregistered")
	}
}

func TestHubStop(t *testing.T) {
	hub := NewHub()
	finished := make(chan struct{})
	go func() {
		hub.Run()
		close(finished)
	}()

	client := newTestClient(hub, "stop")
	hub.register <- client
	hub.Stop()
	hub.Stop()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
	if _, ok := <-client.send; ok {
		t.Error("Stop should close client send channels")
	}

	// Broadcasting after Stop must not block
	hub.BroadcastToSession("stop", &engine.GameState{})
	if hub.ClientCount("stop") != 0 {
		t.Error("Expected no clients after Stop")
	}
}

func newWSServer(hub *Hub) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		channel := r.URL.Query().Get("session")
		if channel == "" {
			channel = "default"
		}
		hub.ServeWS(w, r, channel)
	}))
}

func waitForClients(t *testing.T, hub *Hub, channel string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount(channel) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Expected %d clients on %s, got %d", want, channel, hub.ClientCount(channel))
}

func TestWebSocketUpgrade(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	server := newWSServer(hub)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}

	waitForClients(t, hub, "ws-test", 1)

	conn.Close()
	waitForClients(t, hub, "ws-test", 0)
}

func TestWebSocketMessageReceive(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	server := newWSServer(hub)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=msg-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	waitForClients(t, hub, "msg-test", 1)

	hub.BroadcastToSession("msg-test", &engine.GameState{PlayerPos: engine.Position{X: 10, Y: 15}, Victory: true})
	hub.BroadcastEvent("msg-test", EventGenerator, map[string]int{"attempt": 3})

	conn.SetReadDeadline(time.Now().Add(time.Second))

	var first Message
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("Failed to read state message: %v", err)
	}
	if first.GameState == nil || first.GameState.PlayerPos != (engine.Position{X: 10, Y: 15}) || !first.GameState.Victory {
		t.Errorf("GameState not correctly received: %+v", first.GameState)
	}

	var second Message
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("Failed to read event message: %v", err)
	}
	if second.Event != EventGenerator {
		t.Errorf("Expected generator event, got %s", second.Event)
	}
	data, ok := second.Data.(map[string]interface{})
	if !ok || data["attempt"] != float64(3) {
		t.Errorf("Unexpected event data: %v", second.Data)
	}
}
