package service

import (
	"time"

	"github.com/wricardo/mcp-training/battleship/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// PlacementResult contains the result of a ship placement
type PlacementResult struct {
	Success   bool              `json:"success"`
	PlayerID  int               `json:"player_id"`
	Location  string            `json:"location"`
	Points    []engine.Point    `json:"points,omitempty"`
	Reason    string            `json:"reason,omitempty"` // Machine-friendly code: empty|malformed|out_of_range|invalid_shape|wrong_phase|game_over
	Message   string            `json:"message"`
	Phase     engine.Phase      `json:"phase"`
	GameState *engine.GameState `json:"game_state"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// ShotResult contains the result of a shot
type ShotResult struct {
	Success       bool              `json:"success"`
	ShooterID     int               `json:"shooter_id"`
	TargetID      int               `json:"target_id"`
	Location      string            `json:"location"`
	Hit           bool              `json:"hit"`
	Sunk          bool              `json:"sunk"`
	ShotsReceived int               `json:"shots_received"`
	Reason        string            `json:"reason,omitempty"` // Machine-friendly code: empty|malformed|out_of_range|duplicate_shot|wrong_phase|game_over
	Message       string            `json:"message"`
	GameOver      bool              `json:"game_over"`
	Winner        int               `json:"winner,omitempty"`
	GameState     *engine.GameState `json:"game_state"`
	Events        []GameEvent       `json:"events,omitempty"`
}

// ResetResult contains the fresh match started by a reset
type ResetResult struct {
	Message   string            `json:"message"`
	GameState *engine.GameState `json:"state"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// BoardView is a rendered board of one player
type BoardView struct {
	PlayerID      int      `json:"player_id"`
	Revealed      bool     `json:"revealed"`
	Lines         []string `json:"lines"`
	ShotsReceived int      `json:"shots_received"`
	ShotsFired    int      `json:"shots_fired"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string        `json:"type"` // "placement", "battle_started", "shot", "hit", "miss", "sunk", "rejected", "reset"
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	PlayerID  int           `json:"player_id,omitempty"`
	Point     *engine.Point `json:"point,omitempty"`
}

// HistoryOptions configures action history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated action history
type HistoryResponse struct {
	Actions      []engine.ActionHistoryEntry `json:"actions"`
	TotalActions int                         `json:"total_actions"`
	Page         int                         `json:"page"`
	PageSize     int                         `json:"page_size"`
	TotalPages   int                         `json:"total_pages"`
	HasNext      bool                        `json:"has_next"`
	HasPrevious  bool                        `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename          string `json:"filename"`
	ConfigID          string `json:"config_id"` // The identifier to use for session creation
	Name              string `json:"name"`      // Display name
	Description       string `json:"description"`
	HideOpponentShips bool   `json:"hide_opponent_ships"`
}
