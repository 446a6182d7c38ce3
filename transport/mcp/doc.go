// Package mcp exposes Battleship to AI agents over the Model Context Protocol.
//
// Client is a thin proxy: every tool call becomes a REST request against
// the api package and the JSON answer is turned into short readable text.
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - game_state: phase, whose turn it is, hits so far
//   - place_ship: place the next ship ("A1 A3")
//   - shoot: fire for the player on turn ("B4")
//   - show_board: render one board, ships only when allowed
//   - action_history: paginated placements and shots
//   - reset_game: new match in the same session
//   - list_configs, game_instructions
//
// Transport Modes:
//
// The same server works over stdio (server.ServeStdio) and behind the
// HTTP /mcp endpoint mounted by the serve command.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
