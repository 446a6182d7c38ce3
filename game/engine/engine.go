package engine

import (
	"errors"
	"fmt"
	"time"
)

// Engine provides the main interface for match operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsGameOver() bool
	GetWinner() int
	GetPhase() Phase

	// Turn operations
	PlaceShip(location string) (*Placement, error)
	Shoot(location string) (*ShotOutcome, error)
	CurrentPlayer() *Player
	Opponent() *Player

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetHistory() []ActionHistoryEntry
	GetLastAction() *ActionHistoryEntry

	// Rendering
	RenderBoard(playerID int, revealShips bool) ([]string, error)
}

// GameEngine implements the Engine interface for a single match
type GameEngine struct {
	state  *GameState
	config *GameConfig
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	engine := &GameEngine{
		config: config,
		state:  InitGameStateFromConfig(config),
	}

	return engine, nil
}

// NewEngineWithDefaults creates a new game engine with DefaultGameConfig
func NewEngineWithDefaults() *GameEngine {
	config := DefaultGameConfig()
	return &GameEngine{
		config: config,
		state:  InitGameStateFromConfig(config),
	}
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if len(state.Players) != 2 {
		return fmt.Errorf("state must have 2 players, got %d", len(state.Players))
	}
	e.state = state
	return nil
}

// Reset starts a new match with the same configuration
func (e *GameEngine) Reset() *GameState {
	e.state = InitGameStateFromConfig(e.config)
	return e.state
}

// IsGameOver returns whether a ship has been sunk
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// GetWinner returns the winning player's id, or 0 while the match runs
func (e *GameEngine) GetWinner() int {
	return e.state.Winner
}

// GetPhase returns the current phase
func (e *GameEngine) GetPhase() Phase {
	return e.state.Phase
}

// CurrentPlayer returns the player expected to act next
func (e *GameEngine) CurrentPlayer() *Player {
	return e.player(e.state.CurrentPlayer)
}

// Opponent returns the player who is not CurrentPlayer
func (e *GameEngine) Opponent() *Player {
	for _, p := range e.state.Players {
		if p.ID != e.state.CurrentPlayer {
			return p
		}
	}
	return nil
}

// PlaceShip places the ship of the next player that has none yet.
// Player 1 places first; once both ships are down the battle starts.
func (e *GameEngine) PlaceShip(location string) (*Placement, error) {
	if e.state.GameOver {
		return nil, ErrGameOver
	}
	if e.state.Phase != PhasePlacement {
		return nil, ErrWrongPhase
	}

	player := e.nextToPlace()
	if player == nil {
		return nil, ErrShipAlreadyPlaced
	}

	if err := CheckLocation(location); err != nil {
		e.state.Message = fmt.Sprintf(e.config.Messages.InvalidPlacement, player.ID)
		e.addToHistory("place", player.ID, location, nil, "rejected", ReasonCode(err))
		return nil, err
	}

	if err := AddShipPosition(location, player); err != nil {
		e.state.Message = fmt.Sprintf(e.config.Messages.InvalidPlacement, player.ID)
		e.addToHistory("place", player.ID, location, nil, "rejected", ReasonCode(err))
		return nil, err
	}

	points := append([]Point(nil), player.ShipPosition...)
	e.addToHistory("place", player.ID, location, points, "placed", "")

	if next := e.nextToPlace(); next != nil {
		e.state.CurrentPlayer = next.ID
		e.state.Message = fmt.Sprintf(e.config.Messages.PlacementPrompt, next.ID)
	} else {
		e.startBattle()
	}

	return &Placement{
		PlayerID: player.ID,
		Location: NormalizeLocation(location),
		Points:   points,
	}, nil
}

// Shoot fires the current player's shot at the opponent, then passes the
// turn. Sinking the opponent's ship ends the match.
func (e *GameEngine) Shoot(location string) (*ShotOutcome, error) {
	if e.state.GameOver {
		return nil, ErrGameOver
	}
	if e.state.Phase != PhaseBattle {
		return nil, ErrWrongPhase
	}

	current, next := e.turnPlayers()

	if err := CheckShootLocation(location, current); err != nil {
		if errors.Is(err, ErrDuplicateShot) {
			e.state.Message = e.config.Messages.AlreadyShot
		} else {
			e.state.Message = fmt.Sprintf(e.config.Messages.InvalidShot, next.ID)
		}
		e.addToHistory("shoot", current.ID, location, nil, "rejected", ReasonCode(err))
		return nil, err
	}

	hit, err := SetShoot(location, current, next)
	if err != nil {
		return nil, err
	}
	e.assignBattleRound()

	outcome := &ShotOutcome{
		ShooterID:     current.ID,
		TargetID:      next.ID,
		Location:      NormalizeLocation(location),
		Point:         current.HitsGiven[len(current.HitsGiven)-1],
		Hit:           hit,
		ShotsReceived: next.SuccessfulShotsReceived,
	}

	result := "miss"
	if hit {
		result = "hit"
	}

	if ValidateShipSink(next) {
		outcome.Sunk = true
		result = "sunk"
		e.state.Phase = PhaseFinished
		e.state.GameOver = true
		e.state.Winner = current.ID
		e.state.Message = fmt.Sprintf(e.config.Messages.Victory, current.ID)
		if e.config.Messages.GameOver != "" {
			e.state.Message += " " + e.config.Messages.GameOver
		}
	} else {
		e.state.Message = e.shotMessage(hit, next, current)
	}

	e.addToHistory("shoot", current.ID, location, []Point{outcome.Point}, result, "")
	return outcome, nil
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and resets the match
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	e.config = config
	e.state = InitGameStateFromConfig(config)
	return nil
}

// GetHistory returns every recorded action
func (e *GameEngine) GetHistory() []ActionHistoryEntry {
	return e.state.History
}

// GetLastAction returns the last recorded action, or nil if none
func (e *GameEngine) GetLastAction() *ActionHistoryEntry {
	if len(e.state.History) == 0 {
		return nil
	}
	return &e.state.History[len(e.state.History)-1]
}

// RenderBoard renders the board of the given player
func (e *GameEngine) RenderBoard(playerID int, revealShips bool) ([]string, error) {
	p := e.player(playerID)
	if p == nil {
		return nil, fmt.Errorf("player %d does not exist", playerID)
	}
	return RenderBoard(p, revealShips), nil
}

func (e *GameEngine) player(id int) *Player {
	for _, p := range e.state.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (e *GameEngine) nextToPlace() *Player {
	for _, p := range e.state.Players {
		if len(p.ShipPosition) == 0 {
			return p
		}
	}
	return nil
}

// turnPlayers returns the player whose Turn flag is set and the other one
func (e *GameEngine) turnPlayers() (*Player, *Player) {
	current, next := e.state.Players[0], e.state.Players[1]
	if !current.Turn {
		current, next = next, current
	}
	return current, next
}

func (e *GameEngine) startBattle() {
	e.state.Phase = PhaseBattle
	current, next := e.turnPlayers()
	e.state.CurrentPlayer = current.ID
	e.state.Message = fmt.Sprintf(e.config.Messages.ShotPrompt, current.ID, next.ID)
}

// assignBattleRound flips every player's Turn flag
func (e *GameEngine) assignBattleRound() {
	for _, p := range e.state.Players {
		p.Turn = !p.Turn
	}
	current, _ := e.turnPlayers()
	e.state.CurrentPlayer = current.ID
}

// shotMessage reports the last shot and prompts the player now on turn.
// Called after the turn flips, so nowShooting is the previous target.
func (e *GameEngine) shotMessage(hit bool, nowShooting, nowTarget *Player) string {
	text := e.config.Messages.Miss
	if hit {
		text = e.config.Messages.Hit
	}
	prompt := fmt.Sprintf(e.config.Messages.ShotPrompt, nowShooting.ID, nowTarget.ID)
	if text == "" {
		return prompt
	}
	return text + " " + prompt
}

// addToHistory appends an action to the match history
func (e *GameEngine) addToHistory(action string, playerID int, location string, points []Point, result, reason string) {
	entry := ActionHistoryEntry{
		Action:       action,
		PlayerID:     playerID,
		Location:     NormalizeLocation(location),
		Points:       points,
		Result:       result,
		Reason:       reason,
		Timestamp:    time.Now().Unix(),
		ActionNumber: e.state.TotalActions + 1,
	}
	e.state.History = append(e.state.History, entry)
	e.state.TotalActions++
}
