package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/battleship/game/engine"
	"github.com/wricardo/mcp-training/battleship/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Battleship",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Battleship - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Two players share one session. Each hides a 3-cell ship on an 8x8 board,
then they take turns shooting. The first to land 3 hits wins.

AVAILABLE TOOLS:
- create_session: Create a new match
- list_sessions / get_session: Inspect matches
- game_state: Phase, whose turn it is, hits so far
- place_ship: Place the ship for the player whose turn it is ("A1 A3")
- shoot: Fire at the opponent for the player on turn ("B4")
- show_board: Render a board (own ships only when allowed)
- action_history: Past placements and shots
- reset_game: Start a new match in the same session
- list_configs: Available rule texts
- game_instructions: Full rules and tips

NOTE: The optional 'intent' parameter on place_ship/shoot is for rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func intentProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Why you chose this location (optional)",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new Battleship session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use, e.g. classic or fog_of_war (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state: phase, turn, hits and the last message",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place_ship",
		Description: "Place the 3-cell ship of the player whose turn it is. Player 1 places first, then player 2.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"location": map[string]interface{}{
					"type":        "string",
					"description": "Two end cells separated by a space, same row or column, e.g. \"A1 A3\" or \"B2 D2\"",
				},
				"intent": intentProperty(),
			},
			Required: []string{"session_id", "location"},
		},
	}, c.handlePlaceShip)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "shoot",
		Description: "Fire at the opponent's board for the player whose turn it is",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"location": map[string]interface{}{
					"type":        "string",
					"description": "Target cell, column letter A-H then row 1-8, e.g. \"C5\"",
				},
				"intent": intentProperty(),
			},
			Required: []string{"session_id", "location"},
		},
	}, c.handleShoot)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Start a new match in the same session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "action_history",
		Description: "View past placements and shots with pagination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "number",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Entries per page (default 20)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"description": "asc or desc (default desc)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleActionHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "show_board",
		Description: "Render one player's board. X marks misses against that player. Ships show only with reveal and only when the config allows it.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"player_id": map[string]interface{}{
					"type":        "number",
					"description": "1 or 2",
				},
				"reveal": map[string]interface{}{
					"type":        "boolean",
					"description": "Show ship cells (default false)",
				},
			},
			Required: []string{"session_id", "player_id"},
		},
	}, c.handleShowBoard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete rules, coordinate format and tips",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// stringArg reads a string argument, tolerating a missing argument map
func stringArg(request mcp.CallToolRequest, key string) string {
	v, _ := request.GetArguments()[key].(string)
	return v
}

func numberArg(request mcp.CallToolRequest, key string) (int, bool) {
	v, ok := request.GetArguments()[key].(float64)
	return int(v), ok
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{}
	if configID := stringArg(request, "config_id"); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall("POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		phase := "unknown"
		if s.GameState != nil {
			phase = string(s.GameState.Phase)
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Phase: %s, Created: %s)\n",
			s.ID, s.ConfigName, phase, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")

	var session service.SessionInfo
	if err := c.apiCall("GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")

	var state engine.GameState
	if err := c.apiCall("GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handlePlaceShip(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")
	body := map[string]string{"location": stringArg(request, "location")}

	var result service.PlacementResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/place"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPlacementResult(&result)), nil
}

func (c *Client) handleShoot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")
	body := map[string]string{"location": stringArg(request, "location")}

	var result service.ShotResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/shoot"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatShotResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")

	var response service.ResetResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleActionHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")

	params := url.Values{}
	if page, ok := numberArg(request, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := numberArg(request, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order := stringArg(request, "order"); order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall("GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleShowBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")
	playerID, ok := numberArg(request, "player_id")
	if !ok {
		return mcp.NewToolResultError("player_id is required (1 or 2)"), nil
	}
	reveal, _ := request.GetArguments()["reveal"].(bool)

	path := sessionPath(sessionID, fmt.Sprintf("/board/%d", playerID))
	if reveal {
		path += "?reveal=true"
	}

	var board service.BoardView
	if err := c.apiCall("GET", path, nil, &board); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoard(&board, reveal)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall("GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		visibility := "ships revealed on request"
		if config.HideOpponentShips {
			visibility = "ships hidden until game over"
		}
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  %s\n\n", config.Name, config.ConfigID, config.Description, visibility)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(gameInstructions), nil
}

const gameInstructions = `Battleship - Complete Instructions

GAME OBJECTIVE:
Sink the opponent's ship. Every ship is 3 cells long and sinks after exactly
3 hits. The first player to sink the other ship wins.

BOARD:
  A B C D E F G H   <- columns
1 - - - - - - - -
2 - - - - - - - -   <- rows 1 to 8
...
8 - - - - - - - -

COORDINATES:
• A cell is a column letter A-H followed by a row digit 1-8: "C5"
• Letters are case-insensitive: "c5" is the same cell
• Anything else (like "Z9", "5C" or "C10") is rejected

PLACEMENT PHASE:
• Player 1 places first, then player 2
• A ship is given by its two end cells separated by one space: "A1 A3"
• Both ends must share a row or a column and be exactly 2 apart
  Valid:   "A1 A3", "B2 D2", "h6 h8"
  Invalid: "A1 B2" (diagonal), "A1 A2" (too short), "A1 A4" (too long)
• Once both ships are placed the battle starts with player 1

BATTLE PHASE:
• Players alternate one shot each, whether it hits or misses
• A miss is marked X on the target board; hits are only counted
• Shooting the same cell twice is rejected and you keep your turn
• Any rejected shot leaves the turn unchanged

LEGEND:
• - = water (or a hidden ship)
• S = ship (only when revealed)
• X = a miss against this board

STRATEGY TIPS:
• A ship covers 3 consecutive cells, so after a hit try the 4 neighbours
• After two hits in a line the third cell is on the same line
• Use show_board on the opponent to avoid repeating misses
• Use action_history to see every shot and its result

VICTORY CONDITIONS:
The match ends at the third hit. After that every action is rejected with
reason game_over until reset_game starts a new match.

Good luck, Admiral!`

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Phase: %s\n", state.Phase)

	switch {
	case state.GameOver:
		fmt.Fprintf(&b, "GAME OVER - Player %d wins\n", state.Winner)
	case state.Phase == engine.PhasePlacement:
		fmt.Fprintf(&b, "Waiting for player %d to place a ship\n", state.CurrentPlayer)
	default:
		fmt.Fprintf(&b, "Player %d to shoot\n", state.CurrentPlayer)
	}

	for _, p := range state.Players {
		shipStatus := "not placed"
		if len(p.ShipPosition) > 0 {
			shipStatus = "placed"
		}
		fmt.Fprintf(&b, "Player %d: ship %s, hits taken %d/%d, shots fired %d\n",
			p.ID, shipStatus, p.SuccessfulShotsReceived, engine.ShotsToSink, len(p.HitsGiven))
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s\n", state.Message)
	}
	fmt.Fprintf(&b, "Total actions: %d\n", state.TotalActions)

	return b.String()
}

func formatPlacementResult(result *service.PlacementResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ Player %d placed a ship at %s\n", result.PlayerID, result.Location)
		if result.Phase == engine.PhaseBattle {
			b.WriteString("Both ships are placed. The battle begins!\n")
		}
	} else {
		fmt.Fprintf(&b, "✗ Placement %q rejected (%s)\n", result.Location, result.Reason)
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "%s\n", result.Message)
	}
	return b.String()
}

func formatShotResult(result *service.ShotResult) string {
	var b strings.Builder
	switch {
	case !result.Success:
		fmt.Fprintf(&b, "✗ Shot %q rejected (%s). Still player %d's turn.\n", result.Location, result.Reason, result.ShooterID)
	case result.Hit:
		fmt.Fprintf(&b, "💥 Player %d fired at %s: HIT (%d/%d)\n", result.ShooterID, result.Location, result.ShotsReceived, engine.ShotsToSink)
	default:
		fmt.Fprintf(&b, "🌊 Player %d fired at %s: miss\n", result.ShooterID, result.Location)
	}

	if result.Sunk {
		fmt.Fprintf(&b, "Player %d's ship is sunk!\n", result.TargetID)
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "%s\n", result.Message)
	}
	if result.GameOver {
		fmt.Fprintf(&b, "GAME OVER - Player %d wins\n", result.Winner)
	}
	return b.String()
}

func formatBoard(board *service.BoardView, requestedReveal bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Player %d board", board.PlayerID)
	switch {
	case board.Revealed:
		b.WriteString(" (ships revealed)")
	case requestedReveal:
		b.WriteString(" (ships hidden by this config until game over)")
	}
	b.WriteString("\n\n")
	for _, line := range board.Lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nHits taken: %d/%d, shots fired: %d\n", board.ShotsReceived, engine.ShotsToSink, board.ShotsFired)
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Action History (Page %d/%d) - Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalActions)

	if len(history.Actions) == 0 {
		b.WriteString("(no actions yet)\n")
		return b.String()
	}

	for _, action := range history.Actions {
		status := "✓"
		if action.Result == "rejected" {
			status = "✗"
		}
		line := fmt.Sprintf("%d. %s Player %d %s %s -> %s", action.ActionNumber, status, action.PlayerID, action.Action, action.Location, action.Result)
		if action.Reason != "" {
			line += " (" + action.Reason + ")"
		}
		b.WriteString(line + "\n")
	}

	return b.String()
}
