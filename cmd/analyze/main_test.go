package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/battleship/game/engine"
	"github.com/wricardo/mcp-training/battleship/game/session"
)

// playedSession returns a finished classic match won by player 1 with
// three rejected actions along the way.
func playedSession(t *testing.T) *session.PersistedSessionData {
	t.Helper()

	eng := engine.NewEngineWithDefaults()
	for _, move := range []string{"A1 B2", "A1 A3", "F8 H8"} {
		eng.PlaceShip(move)
	}
	for _, move := range []string{"F8", "H1", "G8", "H1", "H2", "Z9", "H8"} {
		eng.Shoot(move)
	}
	if !eng.IsGameOver() {
		t.Fatal("Expected scripted match to finish")
	}

	return &session.PersistedSessionData{
		ID:             "ab12",
		ConfigName:     "classic",
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
		GameState:      eng.GetState(),
	}
}

func writeSession(t *testing.T, dir string, data interface{}) string {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Failed to marshal session: %v", err)
	}
	path := filepath.Join(dir, "ab12.json")
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatalf("Failed to write session: %v", err)
	}
	return path
}

func TestAnalyzeSession(t *testing.T) {
	report := analyzeSession(playedSession(t))

	if report.Winner != 1 {
		t.Errorf("Expected winner 1, got %d", report.Winner)
	}
	if report.Phase != engine.PhaseFinished {
		t.Errorf("Expected phase %s, got %s", engine.PhaseFinished, report.Phase)
	}
	if len(report.Players) != 2 {
		t.Fatalf("Expected 2 player reports, got %d", len(report.Players))
	}

	p1, p2 := report.Players[0], report.Players[1]
	if p1.ShotsFired != 3 || p1.HitsLanded != 3 || p1.Accuracy != 100 {
		t.Errorf("Expected player 1 at 3/3 100%%, got %d/%d %.1f%%", p1.HitsLanded, p1.ShotsFired, p1.Accuracy)
	}
	if p1.MissDistance != 0 {
		t.Errorf("Expected no miss distance for player 1, got %.1f", p1.MissDistance)
	}
	if p2.ShotsFired != 2 || p2.HitsLanded != 0 || p2.Accuracy != 0 {
		t.Errorf("Expected player 2 at 0/2, got %d/%d", p2.HitsLanded, p2.ShotsFired)
	}
	if p2.MissDistance != 7 {
		t.Errorf("Expected player 2 misses 7 cells off, got %.1f", p2.MissDistance)
	}

	expected := map[string]int{"invalid_shape": 1, "duplicate_shot": 1, "out_of_range": 1}
	for reason, n := range expected {
		if report.Rejections[reason] != n {
			t.Errorf("Expected %d %s rejections, got %d", n, reason, report.Rejections[reason])
		}
	}
}

func TestLoadSession(t *testing.T) {
	dir := t.TempDir()

	t.Run("Valid", func(t *testing.T) {
		path := writeSession(t, dir, playedSession(t))
		data, err := loadSession(path)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if data.ID != "ab12" || data.GameState.Winner != 1 {
			t.Errorf("Expected session ab12 won by player 1, got %s won by %d", data.ID, data.GameState.Winner)
		}
	})

	t.Run("Missing State", func(t *testing.T) {
		path := writeSession(t, dir, map[string]string{"id": "ab12"})
		if _, err := loadSession(path); err == nil || !strings.Contains(err.Error(), "no game state") {
			t.Errorf("Expected missing state error, got %v", err)
		}
	})

	t.Run("Bad JSON", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		os.WriteFile(path, []byte("{"), 0644)
		if _, err := loadSession(path); err == nil {
			t.Error("Expected parse error")
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		if _, err := loadSession(filepath.Join(dir, "nope.json")); err == nil {
			t.Error("Expected read error")
		}
	})
}

func TestPrintReport(t *testing.T) {
	var out bytes.Buffer
	printReport(&out, analyzeSession(playedSession(t)))

	text := out.String()
	for _, want := range []string{
		"Session: ab12",
		"Winner: Player 1",
		"Player 1: 3 shots, 3 hits, 100.0% accuracy",
		"Player 2: 2 shots, 0 hits, 0.0% accuracy, misses 7.0 cells off",
		"Rejected actions: duplicate_shot=1 invalid_shape=1 out_of_range=1",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in report, got:\n%s", want, text)
		}
	}
}

func TestPrintTotals(t *testing.T) {
	fresh := analyzeSession(&session.PersistedSessionData{
		ID:        "cd34",
		GameState: engine.NewEngineWithDefaults().GetState(),
	})
	finished := analyzeSession(playedSession(t))

	var out bytes.Buffer
	printTotals(&out, []SessionReport{fresh, finished})

	text := out.String()
	for _, want := range []string{
		"Sessions: 2 (1 finished)",
		"Wins: Player 1 1, Player 2 0",
		"Overall accuracy: 60.0% (3/5)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in totals, got:\n%s", want, text)
		}
	}
}

func TestNearestDistance(t *testing.T) {
	ship := []engine.Point{{Row: 0, Column: 0}, {Row: 1, Column: 0}, {Row: 2, Column: 0}}

	tests := []struct {
		point    engine.Point
		expected int
	}{
		{engine.Point{Row: 1, Column: 0}, 0},
		{engine.Point{Row: 1, Column: 3}, 3},
		{engine.Point{Row: 7, Column: 7}, 12},
	}
	for _, test := range tests {
		if got := nearestDistance(test.point, ship); got != test.expected {
			t.Errorf("nearestDistance(%v) = %d, expected %d", test.point, got, test.expected)
		}
	}

	if got := nearestDistance(engine.Point{}, nil); got != -1 {
		t.Errorf("Expected -1 without a ship, got %d", got)
	}
}

func TestAbs(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{5, 5},
		{-5, 5},
		{0, 0},
	}

	for _, test := range tests {
		if result := abs(test.input); result != test.expected {
			t.Errorf("abs(%d) = %d, expected %d", test.input, result, test.expected)
		}
	}
}
