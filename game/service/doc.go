// Package service provides the business logic layer for Battleship.
//
// The service package implements:
//   - Multi-session game management
//   - Ship placement and shot processing
//   - Board rendering with configurable ship visibility
//   - Paginated action history
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns its own engine instance. A rejected
// placement or shot is a normal outcome: it comes back with Success=false
// and a Reason code, while Go errors are kept for unknown sessions and
// storage problems.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameService.PlaceShip(ctx, info.ID, "A1 A3")
//	gameService.PlaceShip(ctx, info.ID, "F8 H8")
//	result, err := gameService.Shoot(ctx, info.ID, "G8")
package service
