// Package websocket provides live match updates for spectators and players.
//
// A central Hub keeps the connected clients grouped by session ID. Each
// client connection runs a read pump and a write pump; the hub fans out
// messages to every client watching the same session and drops clients
// whose send buffer is full.
//
// Message Protocol:
//
// Outgoing messages are JSON:
//
//	{"session_id": "ab12", "event": "shot", "game_state": {...}, "data": {...}}
//
// Events carry the new game_state and, where it applies, details in data:
//   - placement: an accepted ship placement
//   - shot: an accepted shot with its outcome
//   - reset: a new match replaced the old one
//   - state_update: a rejected action changed the prompt or history
//   - session_deleted: the session is gone, no game_state
//
// Incoming frames are ignored.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
