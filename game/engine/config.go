package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ValidateGameConfig validates a game configuration for required text and
// the format verbs each prompt is rendered with
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Victory == "" {
		return fmt.Errorf("config validation: messages.victory is required")
	}
	if config.Messages.AlreadyShot == "" {
		return fmt.Errorf("config validation: messages.already_shot is required")
	}

	// Validate format strings
	verbs := []struct {
		field string
		value string
		count int
	}{
		{"placement_prompt", config.Messages.PlacementPrompt, 1},
		{"invalid_placement", config.Messages.InvalidPlacement, 1},
		{"shot_prompt", config.Messages.ShotPrompt, 2},
		{"invalid_shot", config.Messages.InvalidShot, 1},
		{"victory", config.Messages.Victory, 1},
	}
	for _, v := range verbs {
		if got := strings.Count(v.value, "%d"); got != v.count {
			return fmt.Errorf("config validation: messages.%s must contain %d %%d verb(s), got %d", v.field, v.count, got)
		}
	}

	return nil
}

// DefaultGameConfig returns the built-in configuration using the classic
// console wording
func DefaultGameConfig() *GameConfig {
	config := &GameConfig{
		Name:        "classic",
		Description: "One 3-cell ship each on an 8x8 board. Sink the enemy ship to win.",
	}
	config.Messages.Welcome = "Welcome to Battleship!"
	config.Messages.PlacementPrompt = "Please enter the ship location for Player %d. Format: A3 A5"
	config.Messages.InvalidPlacement = "Please introduce a valid ship location for Player %d. Format: A3 A5"
	config.Messages.ShotPrompt = "Player %d : Provide a location to hit Player %d ship. Format: B5"
	config.Messages.InvalidShot = "Please introduce a valid location to hit Player %d ship. Format: B5"
	config.Messages.AlreadyShot = "You have already hit that location"
	config.Messages.Hit = "Hit!"
	config.Messages.Miss = "Miss!"
	config.Messages.Victory = "Congratulations Player %d, you sunk my battleship"
	config.Messages.GameOver = "Game over...."
	return config
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", filename, err)
	}

	return &config, nil
}

// InitGameStateFromConfig creates a new match in the placement phase
func InitGameStateFromConfig(config *GameConfig) *GameState {
	if config == nil {
		config = DefaultGameConfig()
	}

	players := GetPlayers()

	return &GameState{
		GameID:        uuid.NewString(),
		ConfigName:    config.Name,
		Players:       players,
		Phase:         PhasePlacement,
		CurrentPlayer: players[0].ID,
		Message:       config.Messages.Welcome + " " + fmt.Sprintf(config.Messages.PlacementPrompt, players[0].ID),
		History:       []ActionHistoryEntry{},
	}
}
