package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wricardo/mcp-training/battleship/game/engine"
)

// ErrInvalidPlayer is returned when a board is requested for an unknown player
var ErrInvalidPlayer = errors.New("player must be 1 or 2")

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "classic"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

// session looks up a session and refreshes its access time
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		log.Debug().Err(err).Str("session", sessionID).Msg("failed to update last accessed")
	}
	return sess, nil
}

// save persists a session; storage failures never fail the game action
func (s *gameServiceImpl) save(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Str("after", after).Msg("failed to persist session")
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: config '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: config '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := strings.TrimSuffix(configName, ".json")
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	log.Info().Str("session", sess.ID).Str("config", configID).Msg("session created")
	return s.sessionInfo(sess, configID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	return s.sessionInfo(sess, s.getConfigID(sess.Config.Name)), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getConfigID(sess.Config.Name)))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	log.Info().Str("session", sessionID).Msg("session deleted")
	return nil
}

// PlaceShip places the ship of the next player that still needs one.
// Invalid locations are reported through Success and Reason, not as errors.
func (s *gameServiceImpl) PlaceShip(ctx context.Context, sessionID, location string) (*PlacementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	playerID := sess.Engine.GetState().CurrentPlayer
	placement, placeErr := sess.Engine.PlaceShip(location)
	state := sess.Engine.GetState()

	result := &PlacementResult{
		PlayerID:  playerID,
		Location:  engine.NormalizeLocation(location),
		Phase:     state.Phase,
		Message:   state.Message,
		GameState: state,
		Events:    []GameEvent{},
	}

	if placeErr != nil {
		result.Reason = engine.ReasonCode(placeErr)
		result.Message = rejectionMessage(placeErr, state)
		result.Events = append(result.Events, GameEvent{
			Type:      "rejected",
			Message:   fmt.Sprintf("Placement %q rejected: %v", result.Location, placeErr),
			Timestamp: time.Now(),
			PlayerID:  playerID,
		})
		s.save(sessionID, "placement")
		return result, nil
	}

	result.Success = true
	result.PlayerID = placement.PlayerID
	result.Points = placement.Points
	result.Events = append(result.Events, GameEvent{
		Type:      "placement",
		Message:   fmt.Sprintf("Player %d placed a ship at %s", placement.PlayerID, placement.Location),
		Timestamp: time.Now(),
		PlayerID:  placement.PlayerID,
	})

	if state.Phase == engine.PhaseBattle {
		result.Events = append(result.Events, GameEvent{
			Type:      "battle_started",
			Message:   fmt.Sprintf("Both ships placed. Player %d fires first", state.CurrentPlayer),
			Timestamp: time.Now(),
			PlayerID:  state.CurrentPlayer,
		})
	}

	s.save(sessionID, "placement")
	return result, nil
}

// Shoot fires the current player's shot. Invalid or repeated locations are
// reported through Success and Reason, not as errors.
func (s *gameServiceImpl) Shoot(ctx context.Context, sessionID, location string) (*ShotResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	shooterID := sess.Engine.GetState().CurrentPlayer
	outcome, shotErr := sess.Engine.Shoot(location)
	state := sess.Engine.GetState()

	result := &ShotResult{
		ShooterID: shooterID,
		Location:  engine.NormalizeLocation(location),
		Message:   state.Message,
		GameOver:  state.GameOver,
		Winner:    state.Winner,
		GameState: state,
		Events:    []GameEvent{},
	}

	if shotErr != nil {
		result.Reason = engine.ReasonCode(shotErr)
		result.Message = rejectionMessage(shotErr, state)
		result.Events = append(result.Events, GameEvent{
			Type:      "rejected",
			Message:   fmt.Sprintf("Shot %q rejected: %v", result.Location, shotErr),
			Timestamp: time.Now(),
			PlayerID:  shooterID,
		})
		s.save(sessionID, "shot")
		return result, nil
	}

	result.Success = true
	result.ShooterID = outcome.ShooterID
	result.TargetID = outcome.TargetID
	result.Hit = outcome.Hit
	result.Sunk = outcome.Sunk
	result.ShotsReceived = outcome.ShotsReceived
	result.Events = append(result.Events, shotEvents(outcome)...)

	if outcome.Sunk {
		log.Info().Str("session", sessionID).Int("winner", state.Winner).Msg("match finished")
	}

	s.save(sessionID, "shot")
	return result, nil
}

// Reset starts a new match in the session with the same configuration
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*ResetResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.Reset()
	s.save(sessionID, "reset")

	return &ResetResult{
		Message:   "Game reset successfully",
		GameState: state,
		Events: []GameEvent{{
			Type:      "reset",
			Message:   fmt.Sprintf("New match started. Player %d places first", state.CurrentPlayer),
			Timestamp: time.Now(),
			PlayerID:  state.CurrentPlayer,
		}},
	}, nil
}

// GetGameState returns the full state of a session's match
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	return sess.Engine.GetState(), nil
}

// GetBoard renders one player's board. Ships are only revealed on request,
// and never before the match ends when the configuration hides them.
func (s *gameServiceImpl) GetBoard(ctx context.Context, sessionID string, playerID int, reveal bool) (*BoardView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	if playerID != 1 && playerID != 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPlayer, playerID)
	}

	state := sess.Engine.GetState()
	if sess.Config.HideOpponentShips && !state.GameOver {
		reveal = false
	}

	lines, err := sess.Engine.RenderBoard(playerID, reveal)
	if err != nil {
		return nil, err
	}

	view := &BoardView{
		PlayerID: playerID,
		Revealed: reveal,
		Lines:    lines,
	}
	for _, p := range state.Players {
		if p.ID == playerID {
			view.ShotsReceived = p.SuccessfulShotsReceived
			view.ShotsFired = len(p.HitsGiven)
		}
	}

	return view, nil
}

// GetActionHistory returns a page of the session's action history
func (s *gameServiceImpl) GetActionHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}

	history := sess.Engine.GetHistory()
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var actions []engine.ActionHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			actions = append(actions, history[i])
		}
	} else if start < total {
		actions = history[start:end]
	}

	if actions == nil {
		actions = []engine.ActionHistoryEntry{}
	}

	return &HistoryResponse{
		Actions:      actions,
		TotalActions: total,
		Page:         opts.Page,
		PageSize:     opts.Limit,
		TotalPages:   totalPages,
		HasNext:      opts.Page < totalPages,
		HasPrevious:  opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// rejectionMessage picks the text shown for a rejected action. Location
// errors already set a prompt on the state; phase errors do not.
func rejectionMessage(err error, state *engine.GameState) string {
	if errors.Is(err, engine.ErrWrongPhase) || errors.Is(err, engine.ErrGameOver) || errors.Is(err, engine.ErrShipAlreadyPlaced) {
		return fmt.Sprintf("%v (phase: %s)", err, state.Phase)
	}
	return state.Message
}

// shotEvents generates events from a resolved shot
func shotEvents(outcome *engine.ShotOutcome) []GameEvent {
	now := time.Now()
	point := outcome.Point

	events := []GameEvent{{
		Type:      "shot",
		Message:   fmt.Sprintf("Player %d fired at %s", outcome.ShooterID, outcome.Location),
		Timestamp: now,
		PlayerID:  outcome.ShooterID,
		Point:     &point,
	}}

	if outcome.Hit {
		events = append(events, GameEvent{
			Type:      "hit",
			Message:   fmt.Sprintf("Hit on player %d (%d/%d)", outcome.TargetID, outcome.ShotsReceived, engine.ShotsToSink),
			Timestamp: now,
			PlayerID:  outcome.ShooterID,
			Point:     &point,
		})
	} else {
		events = append(events, GameEvent{
			Type:      "miss",
			Message:   fmt.Sprintf("Miss at %s", outcome.Location),
			Timestamp: now,
			PlayerID:  outcome.ShooterID,
			Point:     &point,
		})
	}

	if outcome.Sunk {
		events = append(events, GameEvent{
			Type:      "sunk",
			Message:   fmt.Sprintf("Player %d sank player %d's ship", outcome.ShooterID, outcome.TargetID),
			Timestamp: now,
			PlayerID:  outcome.ShooterID,
		})
	}

	return events
}
