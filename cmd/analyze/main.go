// Command analyze prints quick, human-readable statistics about persisted
// Battleship sessions in the sessions directory (or the directory given as
// the first argument). It summarizes phase and winner, shots and accuracy
// per player, how far misses landed from the enemy ship, and why actions
// were rejected.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/battleship/game/engine"
	"github.com/wricardo/mcp-training/battleship/game/session"
)

// PlayerReport holds shooting statistics for one player.
type PlayerReport struct {
	ID           int
	ShotsFired   int
	HitsLanded   int
	Accuracy     float64
	MissDistance float64 // average Manhattan distance from a miss to the nearest enemy ship cell
}

// SessionReport summarizes one persisted session.
type SessionReport struct {
	ID         string
	ConfigName string
	Phase      engine.Phase
	Winner     int
	Actions    int
	Players    []PlayerReport
	Rejections map[string]int
}

func main() {
	sessionsDir := "sessions"
	if len(os.Args) > 1 {
		sessionsDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(sessionsDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding session files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No sessions found in %s\n", sessionsDir)
		return
	}

	var reports []SessionReport
	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		data, err := loadSession(file)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		report := analyzeSession(data)
		printReport(os.Stdout, report)
		reports = append(reports, report)
	}

	fmt.Printf("\n=== Totals ===\n")
	printTotals(os.Stdout, reports)
}

// loadSession reads one session file written by the file store.
func loadSession(path string) (*session.PersistedSessionData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var data session.PersistedSessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if data.GameState == nil {
		return nil, fmt.Errorf("session %s has no game state", data.ID)
	}
	return &data, nil
}

// analyzeSession computes the report for a loaded session.
func analyzeSession(data *session.PersistedSessionData) SessionReport {
	state := data.GameState
	report := SessionReport{
		ID:         data.ID,
		ConfigName: data.ConfigName,
		Phase:      state.Phase,
		Winner:     state.Winner,
		Actions:    len(state.History),
		Rejections: make(map[string]int),
	}

	for _, entry := range state.History {
		if entry.Result == "rejected" {
			report.Rejections[entry.Reason]++
		}
	}

	for i, player := range state.Players {
		var opponent *engine.Player
		if len(state.Players) == 2 {
			opponent = state.Players[1-i]
		}
		report.Players = append(report.Players, analyzePlayer(player, opponent))
	}

	return report
}

func analyzePlayer(player, opponent *engine.Player) PlayerReport {
	report := PlayerReport{
		ID:         player.ID,
		ShotsFired: len(player.HitsGiven),
	}
	if opponent == nil {
		return report
	}

	report.HitsLanded = opponent.SuccessfulShotsReceived
	if report.ShotsFired > 0 {
		report.Accuracy = float64(report.HitsLanded) / float64(report.ShotsFired) * 100
	}

	misses, total := 0, 0
	for _, shot := range player.HitsGiven {
		dist := nearestDistance(shot, opponent.ShipPosition)
		if dist <= 0 {
			continue
		}
		misses++
		total += dist
	}
	if misses > 0 {
		report.MissDistance = float64(total) / float64(misses)
	}

	return report
}

// nearestDistance returns the Manhattan distance from p to the closest ship
// cell, or -1 when there is no ship.
func nearestDistance(p engine.Point, ship []engine.Point) int {
	best := -1
	for _, cell := range ship {
		dist := abs(p.Row-cell.Row) + abs(p.Column-cell.Column)
		if best < 0 || dist < best {
			best = dist
		}
	}
	return best
}

func printReport(w io.Writer, r SessionReport) {
	fmt.Fprintf(w, "Session: %s\n", r.ID)
	fmt.Fprintf(w, "Config: %s\n", r.ConfigName)
	fmt.Fprintf(w, "Phase: %s\n", r.Phase)
	if r.Winner > 0 {
		fmt.Fprintf(w, "Winner: Player %d\n", r.Winner)
	}
	fmt.Fprintf(w, "Actions: %d\n", r.Actions)

	for _, p := range r.Players {
		fmt.Fprintf(w, "Player %d: %d shots, %d hits, %.1f%% accuracy", p.ID, p.ShotsFired, p.HitsLanded, p.Accuracy)
		if p.MissDistance > 0 {
			fmt.Fprintf(w, ", misses %.1f cells off", p.MissDistance)
		}
		fmt.Fprintln(w)
	}

	if len(r.Rejections) == 0 {
		fmt.Fprintf(w, "✅ No rejected actions\n")
		return
	}
	fmt.Fprintf(w, "⚠️  Rejected actions: %s\n", formatCounts(r.Rejections))
}

func printTotals(w io.Writer, reports []SessionReport) {
	finished := 0
	wins := make(map[int]int)
	shots, hits := 0, 0
	rejections := make(map[string]int)

	for _, r := range reports {
		if r.Winner > 0 {
			finished++
			wins[r.Winner]++
		}
		for _, p := range r.Players {
			shots += p.ShotsFired
			hits += p.HitsLanded
		}
		for reason, n := range r.Rejections {
			rejections[reason] += n
		}
	}

	fmt.Fprintf(w, "Sessions: %d (%d finished)\n", len(reports), finished)
	fmt.Fprintf(w, "Wins: Player 1 %d, Player 2 %d\n", wins[1], wins[2])
	if shots > 0 {
		fmt.Fprintf(w, "Overall accuracy: %.1f%% (%d/%d)\n", float64(hits)/float64(shots)*100, hits, shots)
	}
	if len(rejections) > 0 {
		fmt.Fprintf(w, "Rejections: %s\n", formatCounts(rejections))
	}
}

// formatCounts renders counts as "reason=n" pairs sorted by reason.
func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		name := k
		if name == "" {
			name = "unknown"
		}
		parts = append(parts, fmt.Sprintf("%s=%d", name, counts[k]))
	}
	return strings.Join(parts, " ")
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
