// Package session provides session management for Battleship.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management
//   - Session cleanup and expiration
//   - Pluggable persistence (JSON files or SQLite)
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each service.Session owns its own engine instance and tracks creation
// and last access time.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. Lookups are
// case-insensitive and generated IDs never collide with a live or stored
// session.
//
// Persistence:
//
// SessionPersistence stores one record per session: the config ID plus the
// full engine.GameState as JSON. FilePersistence writes one file per
// session into a directory. SQLitePersistence keeps a sessions table and
// upserts on every save.
//
// Usage:
//
//	store, err := session.NewSQLitePersistence("data/sessions.db", configManager)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(store)
//	manager.LoadAll()
//
//	sess, err := manager.Create("", config)
//	sess, err = manager.Get(sessionID)
//	sessions := manager.List()
package session
