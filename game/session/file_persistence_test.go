package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/battleship/game/config"
	"github.com/wricardo/mcp-training/battleship/game/engine"
	"github.com/wricardo/mcp-training/battleship/game/service"
)

func newTestConfigManager(t *testing.T) *config.Manager {
	t.Helper()
	configManager, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	return configManager
}

func newTestSession(t *testing.T, id string, gameConfig *engine.GameConfig) *service.Session {
	t.Helper()
	eng, err := engine.NewEngine(gameConfig)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         gameConfig,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
}

// persistenceContract exercises any SessionPersistence implementation
func persistenceContract(t *testing.T, persistence SessionPersistence, configManager *config.Manager) {
	gameConfig := configManager.GetDefault()
	session := newTestSession(t, "test1", gameConfig)

	t.Run("Save and Load Session", func(t *testing.T) {
		if err := persistence.Save(session); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}

		if !persistence.Exists("test1") {
			t.Error("Session should exist after save")
		}

		loadedSession, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}

		if loadedSession.ID != session.ID {
			t.Errorf("Expected ID %s, got %s", session.ID, loadedSession.ID)
		}
		if loadedSession.Config.Name != session.Config.Name {
			t.Errorf("Expected config name %s, got %s", session.Config.Name, loadedSession.Config.Name)
		}
		if loadedSession.Engine.GetState().GameID != session.Engine.GetState().GameID {
			t.Errorf("Expected game id %s, got %s", session.Engine.GetState().GameID, loadedSession.Engine.GetState().GameID)
		}
		if !loadedSession.CreatedAt.Equal(session.CreatedAt) {
			t.Errorf("Expected created_at %v, got %v", session.CreatedAt, loadedSession.CreatedAt)
		}
	})

	t.Run("Save State Changes", func(t *testing.T) {
		for _, location := range []string{"A1 A3", "F8 H8"} {
			if _, err := session.Engine.PlaceShip(location); err != nil {
				t.Fatalf("PlaceShip(%q) failed: %v", location, err)
			}
		}
		if _, err := session.Engine.Shoot("G8"); err != nil {
			t.Fatalf("Shoot failed: %v", err)
		}

		if err := persistence.Save(session); err != nil {
			t.Fatalf("Failed to save updated session: %v", err)
		}

		loadedSession, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load updated session: %v", err)
		}

		loaded := loadedSession.Engine.GetState()
		if loaded.Phase != engine.PhaseBattle {
			t.Errorf("Expected battle phase, got %q", loaded.Phase)
		}
		if loaded.CurrentPlayer != 2 {
			t.Errorf("Expected player 2 on turn, got %d", loaded.CurrentPlayer)
		}
		if loaded.Players[1].SuccessfulShotsReceived != 1 {
			t.Errorf("Expected 1 hit on player 2, got %d", loaded.Players[1].SuccessfulShotsReceived)
		}
		if loaded.Players[0].Board[0][0] != engine.Ship {
			t.Errorf("Expected board to be persisted, got %q", loaded.Players[0].Board[0][0])
		}
		if len(loadedSession.Engine.GetHistory()) != len(session.Engine.GetHistory()) {
			t.Errorf("Action history not persisted correctly")
		}

		// The restored match keeps playing
		if _, err := loadedSession.Engine.Shoot("A1"); err != nil {
			t.Errorf("Expected restored match to accept a shot: %v", err)
		}
	})

	t.Run("List All Sessions", func(t *testing.T) {
		session2 := newTestSession(t, "test2", gameConfig)
		if err := persistence.Save(session2); err != nil {
			t.Fatalf("Failed to save second session: %v", err)
		}

		sessionIDs, err := persistence.ListAll()
		if err != nil {
			t.Fatalf("Failed to list sessions: %v", err)
		}

		found := make(map[string]bool)
		for _, id := range sessionIDs {
			found[id] = true
		}
		if !found["test1"] || !found["test2"] {
			t.Errorf("Expected sessions not found in list: %v", sessionIDs)
		}
	})

	t.Run("Delete Session", func(t *testing.T) {
		if err := persistence.Delete("test2"); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}

		if persistence.Exists("test2") {
			t.Error("Session should not exist after delete")
		}

		if _, err := persistence.Load("test2"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound loading deleted session, got %v", err)
		}
	})

	t.Run("Error Cases", func(t *testing.T) {
		if _, err := persistence.Load("nonexistent"); err == nil {
			t.Error("Should get error when loading non-existent session")
		}

		if err := persistence.Delete("nonexistent"); err == nil {
			t.Error("Should get error when deleting non-existent session")
		}

		if err := persistence.Save(nil); err == nil {
			t.Error("Should get error when saving nil session")
		}
	})
}

func TestFilePersistence(t *testing.T) {
	configManager := newTestConfigManager(t)

	persistence, err := NewFilePersistence(t.TempDir(), configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	persistenceContract(t, persistence, configManager)
}

func TestFilePersistenceFileStructure(t *testing.T) {
	tempDir := t.TempDir()
	configManager := newTestConfigManager(t)

	persistence, err := NewFilePersistence(tempDir, configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	fog, err := configManager.LoadConfig("fog_of_war")
	if err != nil {
		t.Fatalf("Failed to load fog_of_war: %v", err)
	}
	session := newTestSession(t, "file_test", fog)

	if err := persistence.Save(session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	expectedFile := filepath.Join(tempDir, "file_test.json")
	data, err := os.ReadFile(expectedFile)
	if err != nil {
		t.Fatalf("Failed to read session file: %v", err)
	}

	content := string(data)
	expectedFields := []string{`"id"`, `"config_name": "fog_of_war"`, `"created_at"`, `"game_state"`, `"players"`, `"hits_given"`}
	for _, field := range expectedFields {
		if !strings.Contains(content, field) {
			t.Errorf("Session file should contain %s", field)
		}
	}

	if _, err := os.Stat(expectedFile + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temporary file should not be left behind")
	}

	loaded, err := persistence.Load("file_test")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	if !loaded.Config.HideOpponentShips {
		t.Error("Expected the session to be restored with its own config")
	}
}

func TestFilePersistenceUnknownConfigFallsBack(t *testing.T) {
	tempDir := t.TempDir()
	configManager := newTestConfigManager(t)

	persistence, err := NewFilePersistence(tempDir, configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	retired := engine.DefaultGameConfig()
	retired.Name = "retired_config"
	if err := persistence.Save(newTestSession(t, "old", retired)); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	loaded, err := persistence.Load("old")
	if err != nil {
		t.Fatalf("Expected fallback to default config, got %v", err)
	}
	if loaded.Config != configManager.GetDefault() {
		t.Error("Expected default config for unknown config name")
	}
}
