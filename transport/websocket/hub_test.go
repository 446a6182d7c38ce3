package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/mcp-training/battleship/game/engine"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
}

func battleState() *engine.GameState {
	eng := engine.NewEngineWithDefaults()
	eng.PlaceShip("A1 A3")
	eng.PlaceShip("F8 H8")
	eng.Shoot("G8")
	return eng.GetState()
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.broadcast == nil {
		t.Error("Hub broadcast channel is nil")
	}
	if hub.register == nil {
		t.Error("Hub register channel is nil")
	}
	if hub.unregister == nil {
		t.Error("Hub unregister channel is nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if got := hub.ClientCount("test-session"); got != 1 {
		t.Errorf("Expected 1 client in session, got %d", got)
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}

	// A second unregister must not close the channel twice
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := newTestClient(hub, sessionID)
	client2 := newTestClient(hub, sessionID)

	hub.registerClient(client1)
	hub.registerClient(client2)

	if got := hub.ClientCount(sessionID); got != 2 {
		t.Errorf("Expected 2 clients in session, got %d", got)
	}

	hub.unregisterClient(client1)

	if got := hub.ClientCount(sessionID); got != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", got)
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := NewHub()
	sessionID := "broadcast-test"

	client := newTestClient(hub, sessionID)
	other := newTestClient(hub, "other-session")
	hub.registerClient(client)
	hub.registerClient(other)

	hub.BroadcastToSession(sessionID, battleState())

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.SessionID != sessionID {
			t.Errorf("Expected sessionID %s, got %s", sessionID, message.SessionID)
		}
		if message.Event != EventStateUpdate {
			t.Errorf("Expected event %q, got %s", EventStateUpdate, message.Event)
		}
		if message.GameState.Phase != engine.PhaseBattle || message.GameState.CurrentPlayer != 2 {
			t.Errorf("GameState not correctly transmitted: %+v", message.GameState)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No message received within timeout")
	}

	select {
	case <-other.send:
		t.Error("Clients of other sessions should not receive the update")
	default:
	}
}

func TestHubBroadcastShot(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "shot-test")
	hub.registerClient(client)

	hub.BroadcastShot("shot-test", battleState(), map[string]interface{}{"location": "G8", "hit": true})

	data := <-client.send
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if message.Event != EventShot {
		t.Errorf("Expected event %q, got %s", EventShot, message.Event)
	}
	shot, ok := message.Data.(map[string]interface{})
	if !ok || shot["location"] != "G8" || shot["hit"] != true {
		t.Errorf("Expected shot data, got %v", message.Data)
	}
}

func TestHubStateEvents(t *testing.T) {
	tests := []struct {
		name      string
		broadcast func(h *Hub, state *engine.GameState)
		expected  string
	}{
		{"placement", func(h *Hub, state *engine.GameState) {
			h.BroadcastPlacement("events", state, map[string]interface{}{"location": "A1 A3"})
		}, EventPlacement},
		{"reset", func(h *Hub, state *engine.GameState) {
			h.BroadcastReset("events", state, []string{"reset"})
		}, EventReset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub()
			client := newTestClient(hub, "events")
			hub.registerClient(client)

			tt.broadcast(hub, battleState())

			var message Message
			if err := json.Unmarshal(<-client.send, &message); err != nil {
				t.Fatalf("Failed to unmarshal message: %v", err)
			}
			if message.Event != tt.expected {
				t.Errorf("Expected event %q, got %s", tt.expected, message.Event)
			}
			if message.GameState == nil || message.Data == nil {
				t.Errorf("Expected state and data, got %+v", message)
			}
		})
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{hub: hub, sessionID: "slow", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.BroadcastToSession("slow", battleState())

	if got := hub.ClientCount("slow"); got != 0 {
		t.Errorf("Expected slow client to be dropped, got %d clients", got)
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()
	done := make(chan bool)

	go func() {
		select {
		case message := <-hub.broadcast:
			if message.SessionID != "event-test" {
				t.Errorf("Expected sessionID 'event-test', got %s", message.SessionID)
			}
			if message.Event != EventSessionDeleted {
				t.Errorf("Expected event %q, got %s", EventSessionDeleted, message.Event)
			}
			if message.Data != "test-data" {
				t.Errorf("Expected data 'test-data', got %v", message.Data)
			}
			done <- true
		case <-time.After(100 * time.Millisecond):
			t.Error("No broadcast message received within timeout")
			done <- false
		}
	}()

	hub.BroadcastEvent("event-test", EventSessionDeleted, "test-data")
	<-done
}

func newTestServer(hub *Hub) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			sessionID = "default"
		}
		hub.ServeWS(w, r, sessionID)
	}))
}

func waitForClients(hub *Hub, sessionID string, want int) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount(sessionID) == want {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestWebSocketUpgrade(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := newTestServer(hub)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws-test"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}

	if !waitForClients(hub, "ws-test", 1) {
		t.Errorf("Expected 1 client in session, got %d", hub.ClientCount("ws-test"))
	}

	conn.Close()

	if !waitForClients(hub, "ws-test", 0) {
		t.Error("Session should have been cleaned up after WebSocket close")
	}
}

func TestWebSocketMessageReceive(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := newTestServer(hub)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=msg-test"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	if !waitForClients(hub, "msg-test", 1) {
		t.Fatal("Client never registered")
	}

	hub.BroadcastToSession("msg-test", battleState())

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, messageData, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	var message Message
	if err := json.Unmarshal(messageData, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}

	if message.SessionID != "msg-test" {
		t.Errorf("Expected sessionID 'msg-test', got %s", message.SessionID)
	}
	if message.GameState.Players[1].SuccessfulShotsReceived != 1 {
		t.Errorf("Expected 1 hit on player 2, got %d", message.GameState.Players[1].SuccessfulShotsReceived)
	}
	if message.GameState.Players[0].Board[0][0] != engine.Ship {
		t.Error("Board not correctly received")
	}
}
