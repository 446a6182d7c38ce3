// Package api provides the HTTP REST API for Battleship matches.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "classic"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=n)
//   - GET /api/sessions/unified - Several sessions plus phase and win counts
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Full game state
//   - POST /api/sessions/{id}/place - Place the next ship ({"location": "A1 A3"})
//   - POST /api/sessions/{id}/shoot - Fire for the player on turn ({"location": "B4"})
//   - POST /api/sessions/{id}/reset - Start a new match in the same session
//   - GET /api/sessions/{id}/history - Paginated action history (?page=&limit=&order=)
//   - GET /api/sessions/{id}/board/{player} - Rendered board (?reveal=true)
//
// Configuration:
//   - GET /api/configs - List configurations
//   - POST /api/configs - Save a configuration
//   - GET /api/configs/{name} - Get one configuration
//
// Other:
//   - GET /health
//   - GET /ws?session={id} - Live updates (see transport/websocket)
//
// A rejected placement or shot is not an HTTP error: the response is 200
// with "success": false and a machine-friendly "reason" (malformed,
// out_of_range, invalid_shape, duplicate_shot, wrong_phase, game_over).
// Unknown sessions answer 404 and invalid request bodies 400, always as
//
//	{"error": "message"}
//
// Every request passes through chi's RequestID, RealIP and Recoverer
// middleware and is logged at debug level with zerolog.
package api
