package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/mcp-training/battleship/api"
	"github.com/wricardo/mcp-training/battleship/game/config"
	"github.com/wricardo/mcp-training/battleship/game/engine"
	"github.com/wricardo/mcp-training/battleship/game/service"
	"github.com/wricardo/mcp-training/battleship/game/session"
)

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

// newBackedClient starts a real REST API over httptest and points a client at it
func newBackedClient(t *testing.T) *Client {
	t.Helper()
	configManager, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	gameService := service.NewGameService(session.NewManager(), configManager)

	ts := httptest.NewServer(api.NewServer(gameService, nil))
	t.Cleanup(ts.Close)

	return NewClient(ts.URL)
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "ab12", "phase": "battle"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	if err := client.apiCall("GET", "/api", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["id"] != "ab12" {
		t.Errorf("Expected id ab12, got %v", response["id"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall("GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"JSON error body", `{"error":"session not found: zz"}`, "session not found: zz"},
		{"Plain body", "Internal Server Error", "API error: 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := NewClient(server.URL).apiCall("GET", "/api", nil, nil)
			if err == nil || err.Error() != tt.expected {
				t.Errorf("Expected error %q, got %v", tt.expected, err)
			}
		})
	}
}

func TestClient_createSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}

		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["config_id"] != "fog_of_war" {
			t.Errorf("Expected config_id fog_of_war, got %q", body["config_id"])
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(service.SessionInfo{
			ID:         "ab12",
			ConfigName: "fog_of_war",
			GameState:  engine.InitGameStateFromConfig(engine.DefaultGameConfig()),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleCreateSession(context.Background(), callTool("create_session", map[string]interface{}{"config_id": "fog_of_war"}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"Created session: ab12", "Config: fog_of_war", "Waiting for player 1 to place a ship"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestClient_MissingArguments(t *testing.T) {
	client := newBackedClient(t)

	// No argument map at all must not panic
	result, err := client.handleGameState(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("handleGameState failed: %v", err)
	}
	if !result.IsError {
		t.Error("Expected an error result for a missing session")
	}

	result, err = client.handleShowBoard(context.Background(), callTool("show_board", map[string]interface{}{"session_id": "ab12"}))
	if err != nil {
		t.Fatalf("handleShowBoard failed: %v", err)
	}
	if !result.IsError || !strings.Contains(resultText(t, result), "player_id is required") {
		t.Error("Expected player_id error")
	}
}

func TestFormatGameState(t *testing.T) {
	eng := engine.NewEngineWithDefaults()
	eng.PlaceShip("A1 A3")
	eng.PlaceShip("F8 H8")
	eng.Shoot("G8")

	text := formatGameState(eng.GetState())

	for _, want := range []string{
		"Phase: battle",
		"Player 2 to shoot",
		"Player 1: ship placed, hits taken 0/3, shots fired 1",
		"Player 2: ship placed, hits taken 1/3, shots fired 0",
		"Total actions: 3",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in state, got:\n%s", want, text)
		}
	}

	if formatGameState(nil) != "No game state available" {
		t.Error("Expected placeholder for nil state")
	}
}

func TestFormatGameState_GameOver(t *testing.T) {
	state := &engine.GameState{Phase: engine.PhaseFinished, GameOver: true, Winner: 2}

	if text := formatGameState(state); !strings.Contains(text, "GAME OVER - Player 2 wins") {
		t.Errorf("Expected game over line, got:\n%s", text)
	}
}

func TestFormatShotResult(t *testing.T) {
	tests := []struct {
		name   string
		result service.ShotResult
		want   []string
	}{
		{
			name:   "Miss",
			result: service.ShotResult{Success: true, ShooterID: 2, Location: "H1"},
			want:   []string{"Player 2 fired at H1: miss"},
		},
		{
			name:   "Sinking hit",
			result: service.ShotResult{Success: true, ShooterID: 1, TargetID: 2, Location: "H8", Hit: true, Sunk: true, ShotsReceived: 3, GameOver: true, Winner: 1},
			want:   []string{"HIT (3/3)", "Player 2's ship is sunk!", "GAME OVER - Player 1 wins"},
		},
		{
			name:   "Rejected",
			result: service.ShotResult{Success: false, ShooterID: 1, Location: "Z9", Reason: "out_of_range"},
			want:   []string{`Shot "Z9" rejected (out_of_range)`, "Still player 1's turn"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := formatShotResult(&tt.result)
			for _, want := range tt.want {
				if !strings.Contains(text, want) {
					t.Errorf("Expected %q, got:\n%s", want, text)
				}
			}
		})
	}
}

func TestFormatPlacementResult(t *testing.T) {
	accepted := formatPlacementResult(&service.PlacementResult{Success: true, PlayerID: 2, Location: "F8 H8", Phase: engine.PhaseBattle})
	if !strings.Contains(accepted, "Player 2 placed a ship at F8 H8") || !strings.Contains(accepted, "The battle begins!") {
		t.Errorf("Unexpected accepted placement text:\n%s", accepted)
	}

	rejected := formatPlacementResult(&service.PlacementResult{Location: "A1 B2", Reason: "invalid_shape"})
	if !strings.Contains(rejected, `Placement "A1 B2" rejected (invalid_shape)`) {
		t.Errorf("Unexpected rejected placement text:\n%s", rejected)
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), callTool("game_instructions", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := resultText(t, result)
	expectedContent := []string{
		"Battleship - Complete Instructions",
		"GAME OBJECTIVE:",
		"COORDINATES:",
		"PLACEMENT PHASE:",
		"BATTLE PHASE:",
		"LEGEND:",
		"STRATEGY TIPS:",
		"VICTORY CONDITIONS:",
	}
	for _, content := range expectedContent {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
}

// TestClient_FullMatch drives a match through the tool handlers against the real API
func TestClient_FullMatch(t *testing.T) {
	client := newBackedClient(t)
	ctx := context.Background()

	result, err := client.handleCreateSession(ctx, callTool("create_session", map[string]interface{}{"config_id": "fog_of_war"}))
	if err != nil {
		t.Fatalf("create_session failed: %v", err)
	}
	text := resultText(t, result)
	sessionID := strings.TrimSpace(strings.SplitN(strings.TrimPrefix(text, "Created session: "), "\n", 2)[0])
	if len(sessionID) != 4 {
		t.Fatalf("Could not read session id from %q", text)
	}

	args := func(extra map[string]interface{}) map[string]interface{} {
		m := map[string]interface{}{"session_id": sessionID}
		for k, v := range extra {
			m[k] = v
		}
		return m
	}

	for _, location := range []string{"A1 A3", "F8 H8"} {
		result, _ := client.handlePlaceShip(ctx, callTool("place_ship", args(map[string]interface{}{"location": location, "intent": "corner"})))
		if text := resultText(t, result); !strings.Contains(text, "placed a ship") {
			t.Fatalf("Placement %s failed: %s", location, text)
		}
	}

	// Fog of war hides ships while the match is running
	result, _ = client.handleShowBoard(ctx, callTool("show_board", args(map[string]interface{}{"player_id": float64(2), "reveal": true})))
	text = resultText(t, result)
	if !strings.Contains(text, "ships hidden by this config") || strings.Contains(text, " S") {
		t.Errorf("Expected hidden board, got:\n%s", text)
	}

	for _, location := range []string{"F8", "H1", "G8", "H1"} {
		client.handleShoot(ctx, callTool("shoot", args(map[string]interface{}{"location": location})))
	}

	// The second H1 by player 2 is a duplicate and keeps the turn
	result, _ = client.handleGameState(ctx, callTool("game_state", args(nil)))
	if text := resultText(t, result); !strings.Contains(text, "Player 2 to shoot") {
		t.Errorf("Expected player 2 still on turn, got:\n%s", text)
	}

	for _, location := range []string{"H2", "H8"} {
		result, _ = client.handleShoot(ctx, callTool("shoot", args(map[string]interface{}{"location": location})))
	}
	if text := resultText(t, result); !strings.Contains(text, "GAME OVER - Player 1 wins") {
		t.Errorf("Expected player 1 to win, got:\n%s", text)
	}

	result, _ = client.handleActionHistory(ctx, callTool("action_history", args(map[string]interface{}{"order": "asc", "limit": float64(50)})))
	text = resultText(t, result)
	for _, want := range []string{"Total: 8", "1. ✓ Player 1 place A1 A3 -> placed", "(duplicate_shot)", "-> sunk"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in history, got:\n%s", want, text)
		}
	}

	result, _ = client.handleReset(ctx, callTool("reset_game", args(nil)))
	if text := resultText(t, result); !strings.Contains(text, "Game reset successfully") || !strings.Contains(text, "Phase: placement") {
		t.Errorf("Unexpected reset result:\n%s", text)
	}

	result, _ = client.handleListSessions(ctx, callTool("list_sessions", nil))
	if text := resultText(t, result); !strings.Contains(text, sessionID) {
		t.Errorf("Expected %s in session list, got:\n%s", sessionID, text)
	}

	result, _ = client.handleListConfigs(ctx, callTool("list_configs", nil))
	if text := resultText(t, result); !strings.Contains(text, "config_id: fog_of_war") || !strings.Contains(text, "ships hidden until game over") {
		t.Errorf("Unexpected config list:\n%s", text)
	}
}
