package engine

// CellState is the symbol stored in a board cell
type CellState string

const (
	Empty CellState = "-"
	Ship  CellState = "S"
	Hit   CellState = "X"

	// Board geometry and ship rules
	BoardRows    = 8
	BoardColumns = 8
	ShipSize     = 3
	ShotsToSink  = 3

	// ValidLetters maps column letters to column indexes by position
	ValidLetters = "ABCDEFGH"
)

// Phase is the stage a match is in
type Phase string

const (
	PhasePlacement Phase = "placement"
	PhaseBattle    Phase = "battle"
	PhaseFinished  Phase = "finished"
)

// Point is a zero-based (row, column) pair
type Point struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Board is a player's fixed 8x8 grid. It is a value type so copying a
// Player never shares cells with the copy.
type Board [BoardRows][BoardColumns]CellState

// Player holds everything one side of the match owns
type Player struct {
	ID                      int     `json:"id"`
	Board                   Board   `json:"board"`
	ShipPosition            []Point `json:"ship_position"`
	HitsGiven               []Point `json:"hits_given"`
	SuccessfulShotsReceived int     `json:"successful_shots_received"`
	Turn                    bool    `json:"turn"`
}

// GameConfig represents the game configuration from JSON
type GameConfig struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	HideOpponentShips bool   `json:"hide_opponent_ships"`
	Messages          struct {
		Welcome          string `json:"welcome"`
		PlacementPrompt  string `json:"placement_prompt"`
		InvalidPlacement string `json:"invalid_placement"`
		ShotPrompt       string `json:"shot_prompt"`
		InvalidShot      string `json:"invalid_shot"`
		AlreadyShot      string `json:"already_shot"`
		Hit              string `json:"hit"`
		Miss             string `json:"miss"`
		Victory          string `json:"victory"`
		GameOver         string `json:"game_over"`
	} `json:"messages"`
}

// GameState represents the complete state of one match
type GameState struct {
	GameID        string               `json:"game_id"`
	ConfigName    string               `json:"config_name"`
	Players       []*Player            `json:"players"`
	Phase         Phase                `json:"phase"`
	CurrentPlayer int                  `json:"current_player"`
	Winner        int                  `json:"winner,omitempty"`
	Message       string               `json:"message"`
	GameOver      bool                 `json:"game_over"`
	History       []ActionHistoryEntry `json:"history"`
	TotalActions  int                  `json:"total_actions"`
}

// ActionHistoryEntry records one placement or shot attempt
type ActionHistoryEntry struct {
	Action       string  `json:"action"` // "place" or "shoot"
	PlayerID     int     `json:"player_id"`
	Location     string  `json:"location"`
	Points       []Point `json:"points,omitempty"`
	Result       string  `json:"result"` // placed, hit, miss, sunk, rejected
	Reason       string  `json:"reason,omitempty"`
	Timestamp    int64   `json:"timestamp"`
	ActionNumber int     `json:"action_number"`
}

// Placement describes an accepted ship placement
type Placement struct {
	PlayerID int     `json:"player_id"`
	Location string  `json:"location"`
	Points   []Point `json:"points"`
}

// ShotOutcome describes a resolved shot
type ShotOutcome struct {
	ShooterID     int    `json:"shooter_id"`
	TargetID      int    `json:"target_id"`
	Location      string `json:"location"`
	Point         Point  `json:"point"`
	Hit           bool   `json:"hit"`
	Sunk          bool   `json:"sunk"`
	ShotsReceived int    `json:"shots_received"`
}
