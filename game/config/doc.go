// Package config provides configuration management for Battleship.
//
// The config package handles:
//   - Loading game configurations from JSON files
//   - Configuration validation and caching
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Game configurations are stored as JSON files in the configs directory.
// The board and ship rules are fixed; a configuration only changes how a
// match is presented:
//   - Name and description shown in listings
//   - hide_opponent_ships, which keeps enemy ships out of rendered boards
//   - Message templates for prompts, rejections, hits, misses and victory
//
// Available Configurations:
//   - classic: the original console wording, boards fully revealed
//   - fog_of_war: opponent ships hidden from rendered boards
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("fog_of_war")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// When the directory holds no valid configuration the manager falls back
// to engine.DefaultGameConfig.
package config
