package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"github.com/wricardo/mcp-training/battleship/game/engine"
	"github.com/wricardo/mcp-training/battleship/game/service"
)

const sessionsSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id               TEXT PRIMARY KEY,
	config_name      TEXT NOT NULL,
	phase            TEXT NOT NULL,
	game_over        INTEGER NOT NULL DEFAULT 0,
	winner           INTEGER NOT NULL DEFAULT 0,
	created_at       TEXT NOT NULL,
	last_accessed_at TEXT NOT NULL,
	game_state       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_last_accessed ON sessions(last_accessed_at);
`

// storeTimeLayout is fixed width so stored timestamps sort as text
const storeTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLitePersistence implements SessionPersistence on a SQLite database,
// one row per session with the game state stored as JSON
type SQLitePersistence struct {
	db            *sql.DB
	configManager service.ConfigManager
}

// NewSQLitePersistence opens (and creates if missing) the database at dbPath
func NewSQLitePersistence(dbPath string, configManager service.ConfigManager) (*SQLitePersistence, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sessions db: %w", err)
	}

	if _, err := db.Exec(sessionsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite session store ready")

	return &SQLitePersistence{
		db:            db,
		configManager: configManager,
	}, nil
}

// Close releases the database handle
func (sp *SQLitePersistence) Close() error {
	return sp.db.Close()
}

// Save upserts a session row
func (sp *SQLitePersistence) Save(session *service.Session) error {
	data, err := newPersistedSessionData(session, sp.configManager)
	if err != nil {
		return err
	}

	stateJSON, err := json.Marshal(data.GameState)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}

	state := data.GameState
	_, err = sp.db.Exec(`
		INSERT INTO sessions
			(id, config_name, phase, game_over, winner, created_at, last_accessed_at, game_state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			config_name      = excluded.config_name,
			phase            = excluded.phase,
			game_over        = excluded.game_over,
			winner           = excluded.winner,
			last_accessed_at = excluded.last_accessed_at,
			game_state       = excluded.game_state`,
		data.ID,
		data.ConfigName,
		string(state.Phase),
		state.GameOver,
		state.Winner,
		data.CreatedAt.UTC().Format(storeTimeLayout),
		data.LastAccessedAt.UTC().Format(storeTimeLayout),
		string(stateJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", data.ID, err)
	}

	return nil
}

// Load retrieves a session row by ID
func (sp *SQLitePersistence) Load(id string) (*service.Session, error) {
	var (
		data              PersistedSessionData
		createdAt, lastAt string
		stateJSON         string
	)

	err := sp.db.QueryRow(
		`SELECT id, config_name, created_at, last_accessed_at, game_state FROM sessions WHERE id = ?`, id,
	).Scan(&data.ID, &data.ConfigName, &createdAt, &lastAt, &stateJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session %s: %w", id, err)
	}

	if data.CreatedAt, err = time.Parse(storeTimeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at for session %s: %w", id, err)
	}
	if data.LastAccessedAt, err = time.Parse(storeTimeLayout, lastAt); err != nil {
		return nil, fmt.Errorf("bad last_accessed_at for session %s: %w", id, err)
	}

	var state engine.GameState
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}
	data.GameState = &state

	return restoreSession(&data, sp.configManager)
}

// Delete removes a session row
func (sp *SQLitePersistence) Delete(id string) error {
	res, err := sp.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all persisted session IDs, most recently used first
func (sp *SQLitePersistence) ListAll() ([]string, error) {
	rows, err := sp.db.Query(`SELECT id FROM sessions ORDER BY last_accessed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a session row exists
func (sp *SQLitePersistence) Exists(id string) bool {
	var one int
	err := sp.db.QueryRow(`SELECT 1 FROM sessions WHERE id = ?`, id).Scan(&one)
	return err == nil
}

// PurgeOlderThan deletes rows not accessed since the cutoff and returns how many went
func (sp *SQLitePersistence) PurgeOlderThan(cutoff time.Time) (int64, error) {
	res, err := sp.db.Exec(
		`DELETE FROM sessions WHERE last_accessed_at < ?`,
		cutoff.UTC().Format(storeTimeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return res.RowsAffected()
}
