// Command validate checks the game configuration JSON files in ../configs
// (or the directory given as the first argument). It checks:
//   - JSON structure and required fields
//   - Format verbs in every prompt that renders player numbers
//   - Presence of the hit, miss, and game over texts
//   - Unique configuration names across files
//   - Playthrough: a scripted match renders every message cleanly
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/battleship/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Name   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}
	result.Name = config.Name

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.fail("%v", err)
	}

	optional := map[string]string{
		"hit":       config.Messages.Hit,
		"miss":      config.Messages.Miss,
		"game_over": config.Messages.GameOver,
	}
	for _, key := range []string{"hit", "miss", "game_over"} {
		if optional[key] == "" {
			result.fail("Missing required message: %s", key)
		}
	}

	if result.Valid {
		playthrough := validatePlaythrough(&config)
		if !playthrough.Valid {
			result.Valid = false
		}
		result.Errors = append(result.Errors, playthrough.Errors...)
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Hide opponent ships: %v", config.HideOpponentShips))
	}

	return result
}

// playthroughMoves is a short match that touches every message: a bad
// placement, both placements, a hit, a miss, a repeated shot, a bad shot,
// and the sinking shot.
var playthroughMoves = []string{"A1 B2", "A1 A3", "F8 H8", "F8", "H1", "G8", "H1", "H2", "Z9", "H8"}

// validatePlaythrough plays a scripted match on the config and reports any
// message that renders with a broken format verb.
func validatePlaythrough(config *engine.GameConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		result.fail("Cannot start a match: %v", err)
		return result
	}

	messages := []string{eng.GetState().Message}
	for _, move := range playthroughMoves {
		switch eng.GetPhase() {
		case engine.PhasePlacement:
			eng.PlaceShip(move)
		case engine.PhaseBattle:
			eng.Shoot(move)
		}
		messages = append(messages, eng.GetState().Message)
	}

	for i, msg := range messages {
		if strings.Contains(msg, "%!") {
			result.fail("Broken message after step %d: %q", i, msg)
		}
	}

	if !eng.IsGameOver() || eng.GetWinner() != 1 {
		result.fail("Playthrough did not finish: phase %s, winner %d", eng.GetPhase(), eng.GetWinner())
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Playthrough: %d moves, %d actions recorded", len(playthroughMoves), len(eng.GetHistory())))
	}

	return result
}

// findDuplicateNames reports configuration names used by more than one file.
func findDuplicateNames(results []ValidationResult) []string {
	files := make(map[string][]string)
	var order []string
	for _, r := range results {
		if r.Name == "" {
			continue
		}
		if _, seen := files[r.Name]; !seen {
			order = append(order, r.Name)
		}
		files[r.Name] = append(files[r.Name], r.File)
	}

	var duplicates []string
	for _, name := range order {
		if len(files[name]) > 1 {
			duplicates = append(duplicates, fmt.Sprintf("Name %q used by %s", name, strings.Join(files[name], ", ")))
		}
	}
	return duplicates
}

// main scans the config directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No config files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	var results []ValidationResult
	for _, file := range files {
		result := validateConfig(file)
		results = append(results, result)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	if duplicates := findDuplicateNames(results); len(duplicates) > 0 {
		allValid = false
		fmt.Printf("\n%s\n", strings.Repeat("=", 40))
		for _, dup := range duplicates {
			fmt.Println("❌ " + dup)
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
