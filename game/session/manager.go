package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wricardo/mcp-training/battleship/game/engine"
	"github.com/wricardo/mcp-training/battleship/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// idBytes is the number of random bytes behind a generated ID (4 hex chars)
const idBytes = 2

// Manager keeps live matches in memory, keyed by lower-cased session ID.
// With a store attached, every change is written through and sessions that
// are missing from memory are loaded on demand.
type Manager struct {
	sessions map[string]*service.Session
	store    SessionPersistence
	mu       sync.RWMutex
}

// NewManager creates an in-memory session manager
func NewManager() *Manager {
	return NewManagerWithPersistence(nil)
}

// NewManagerWithPersistence creates a session manager backed by store
func NewManagerWithPersistence(store SessionPersistence) *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
		store:    store,
	}
}

func key(id string) string {
	return strings.ToLower(id)
}

// checkID rejects IDs that cannot be used as a store key or file name
func checkID(id string) error {
	if strings.TrimSpace(id) == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	return nil
}

// Create starts a new match under id, or under a generated ID when id is empty
func (m *Manager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.newIDLocked()
	} else if err := checkID(id); err != nil {
		return nil, err
	}

	if _, exists := m.sessions[key(id)]; exists {
		return nil, ErrSessionAlreadyExists
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	now := time.Now()
	sess := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[key(id)] = sess
	m.writeThrough(sess, "create")

	return sess, nil
}

// Get returns a live session, loading it from the store when it is not in memory
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	sess, exists := m.sessions[key(id)]
	m.mu.RUnlock()
	if exists {
		return sess, nil
	}

	if m.store == nil || checkID(id) != nil || !m.store.Exists(id) {
		return nil, ErrSessionNotFound
	}

	loaded, err := m.store.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have loaded it first
	if sess, exists := m.sessions[key(id)]; exists {
		return sess, nil
	}
	m.sessions[key(id)] = loaded
	return loaded, nil
}

// List returns every session held in memory
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, sess)
	}
	return result
}

// Delete removes a session from memory and from the store
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, inMemory := m.sessions[key(id)]
	delete(m.sessions, key(id))

	if m.store != nil && m.store.Exists(id) {
		if err := m.store.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// Evict drops a session from memory only. A stored copy stays loadable.
func (m *Manager) Evict(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[key(id)]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, key(id))
	return nil
}

// EvictIdle drops sessions not accessed within maxIdle and returns how many went
func (m *Manager) EvictIdle(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	evicted := 0
	for k, sess := range m.sessions {
		if sess.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, k)
			evicted++
		}
	}
	return evicted
}

// UpdateLastAccessed marks a session as used now
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.sessions[key(id)]
	if !exists {
		return ErrSessionNotFound
	}
	sess.LastAccessedAt = time.Now()
	m.writeThrough(sess, "access")
	return nil
}

// Save writes one session to the store
func (m *Manager) Save(id string) error {
	if m.store == nil {
		return nil
	}

	m.mu.RLock()
	sess, exists := m.sessions[key(id)]
	m.mu.RUnlock()
	if !exists {
		return ErrSessionNotFound
	}
	return m.store.Save(sess)
}

// Flush writes every in-memory session to the store. It keeps going past
// failures and reports how many sessions could not be written.
func (m *Manager) Flush() error {
	if m.store == nil {
		return nil
	}

	failed := 0
	for _, sess := range m.List() {
		if err := m.store.Save(sess); err != nil {
			log.Warn().Err(err).Str("session", sess.ID).Msg("failed to flush session")
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to flush %d sessions", failed)
	}
	return nil
}

// LoadAll brings every stored session into memory. Records that cannot be
// restored are logged and skipped.
func (m *Manager) LoadAll() error {
	if m.store == nil {
		return nil
	}

	ids, err := m.store.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := 0
	for _, id := range ids {
		if _, exists := m.sessions[key(id)]; exists {
			continue
		}
		sess, err := m.store.Load(id)
		if err != nil {
			log.Warn().Err(err).Str("session", id).Msg("failed to load persisted session")
			continue
		}
		m.sessions[key(id)] = sess
		loaded++
	}

	if loaded > 0 {
		log.Info().Int("count", loaded).Msg("loaded persisted sessions")
	}
	return nil
}

// Count returns the number of sessions in memory
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// writeThrough saves a session; a failing store never fails the caller
func (m *Manager) writeThrough(sess *service.Session, after string) {
	if m.store == nil {
		return
	}
	if err := m.store.Save(sess); err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Str("after", after).Msg("failed to persist session")
	}
}

// newIDLocked returns a random 4-hex-char ID unused in memory and in the store.
// Called with m.mu held.
func (m *Manager) newIDLocked() string {
	buf := make([]byte, idBytes)
	for {
		rand.Read(buf)
		id := hex.EncodeToString(buf)
		if _, exists := m.sessions[id]; exists {
			continue
		}
		if m.store != nil && m.store.Exists(id) {
			continue
		}
		return id
	}
}
