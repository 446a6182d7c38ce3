package main

import (
	"math/rand"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/battleship/api"
	"github.com/wricardo/mcp-training/battleship/game/config"
	"github.com/wricardo/mcp-training/battleship/game/engine"
	"github.com/wricardo/mcp-training/battleship/game/service"
	"github.com/wricardo/mcp-training/battleship/game/session"
)

// newTestServer starts the real REST API over httptest
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	configManager, err := config.NewManager("../configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	gameService := service.NewGameService(session.NewManager(), configManager)

	ts := httptest.NewServer(api.NewServer(gameService, nil))
	t.Cleanup(ts.Close)
	return ts
}

func TestRandomPlacement(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		location := RandomPlacement(rng)
		if err := engine.CheckLocation(location); err != nil {
			t.Fatalf("RandomPlacement produced invalid location %q: %v", location, err)
		}
	}
}

func TestSystematicStrategy_HuntCoversShip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	// Any horizontal or vertical ship is found within the lattice alone
	for i := 0; i < 50; i++ {
		strategy := NewSystematicStrategy(rng)
		player := &engine.Player{ID: 2, Board: engine.CreateBoard()}
		if err := engine.AddShipPosition(RandomPlacement(rng), player); err != nil {
			t.Fatalf("Failed to place ship: %v", err)
		}

		lattice := engine.BoardRows * engine.BoardColumns / ShipLength
		found := false
		for shot := 0; shot <= lattice && !found; shot++ {
			location := strategy.NextShot()
			p, _ := engine.ParsePoint(location)
			found = containsPoint(player.ShipPosition, p)
			strategy.Record(location, found)
		}
		if !found {
			t.Fatalf("Expected a hit within %d hunting shots on %v", lattice+1, player.ShipPosition)
		}
	}
}

func TestSystematicStrategy_TargetsAlongLine(t *testing.T) {
	strategy := NewSystematicStrategy(rand.New(rand.NewSource(3)))

	strategy.Record("C4", true)
	strategy.Record("D4", true)

	next := strategy.NextShot()
	if next != "B4" && next != "E4" {
		t.Errorf("Expected B4 or E4 after hits on C4 and D4, got %s", next)
	}

	strategy.Record("B4", false)
	if next := strategy.NextShot(); next != "E4" {
		t.Errorf("Expected E4 after B4 missed, got %s", next)
	}
}

func TestSystematicStrategy_NeverRepeats(t *testing.T) {
	strategy := NewSystematicStrategy(rand.New(rand.NewSource(11)))
	seen := map[string]bool{}

	for i := 0; i < engine.BoardRows*engine.BoardColumns; i++ {
		location := strategy.NextShot()
		if location == "" {
			t.Fatalf("Ran out of shots after %d", i)
		}
		if seen[location] {
			t.Fatalf("Repeated shot %s", location)
		}
		seen[location] = true
		strategy.Record(location, false)
	}

	if next := strategy.NextShot(); next != "" {
		t.Errorf("Expected no shots left, got %s", next)
	}
	if strategy.ShotsTaken() != engine.BoardRows*engine.BoardColumns {
		t.Errorf("Expected %d shots taken, got %d", engine.BoardRows*engine.BoardColumns, strategy.ShotsTaken())
	}
}

func TestSystematicStrategy_RecordRejectsBadLocation(t *testing.T) {
	strategy := NewSystematicStrategy(rand.New(rand.NewSource(1)))
	if err := strategy.Record("??", true); err == nil {
		t.Error("Expected error for malformed location")
	}
}

func TestPlayMatch(t *testing.T) {
	ts := newTestServer(t)
	client := NewClient(ts.URL + "/")

	if _, err := client.CreateSession("classic"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	for game := 0; game < 3; game++ {
		if _, err := client.Reset(); err != nil {
			t.Fatalf("Reset failed: %v", err)
		}

		result, err := playMatch(client, rng, 0)
		if err != nil {
			t.Fatalf("playMatch failed: %v", err)
		}
		if result.Winner != 1 && result.Winner != 2 {
			t.Errorf("Expected a winner, got %d", result.Winner)
		}
		if result.Moves != result.Shots[1]+result.Shots[2] {
			t.Errorf("Expected moves %d to equal shots %d+%d", result.Moves, result.Shots[1], result.Shots[2])
		}

		state, err := client.GetState()
		if err != nil {
			t.Fatalf("GetState failed: %v", err)
		}
		if !state.GameOver || state.Winner != result.Winner {
			t.Errorf("Expected server to agree on winner %d, got %d", result.Winner, state.Winner)
		}
	}
}

func TestClientErrors(t *testing.T) {
	ts := newTestServer(t)
	client := NewClient(ts.URL)

	if _, err := client.CreateSession("does_not_exist"); err == nil {
		t.Error("Expected error for unknown config")
	}

	client.sessionID = "zzzz"
	if _, err := client.GetState(); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Expected 404 error for unknown session, got %v", err)
	}
	if _, err := client.Shoot("A1"); err == nil {
		t.Error("Expected error shooting in unknown session")
	}
}

func TestOpenSession(t *testing.T) {
	ts := newTestServer(t)
	sessionFile := filepath.Join(t.TempDir(), ".session")

	first := NewClient(ts.URL)
	if err := openSession(first, "", "", sessionFile); err != nil {
		t.Fatalf("openSession failed: %v", err)
	}

	data, err := os.ReadFile(sessionFile)
	if err != nil {
		t.Fatalf("Expected session file to be written: %v", err)
	}
	if string(data) != first.sessionID {
		t.Errorf("Expected saved ID %s, got %s", first.sessionID, data)
	}

	second := NewClient(ts.URL)
	if err := openSession(second, "", "", sessionFile); err != nil {
		t.Fatalf("openSession failed: %v", err)
	}
	if second.sessionID != first.sessionID {
		t.Errorf("Expected to resume %s, got %s", first.sessionID, second.sessionID)
	}

	third := NewClient(ts.URL)
	if err := openSession(third, "gone", "", ""); err != nil {
		t.Fatalf("openSession failed: %v", err)
	}
	if third.sessionID == "gone" {
		t.Error("Expected a new session when the requested one does not exist")
	}
}

func containsPoint(points []engine.Point, p engine.Point) bool {
	for _, q := range points {
		if q == p {
			return true
		}
	}
	return false
}
