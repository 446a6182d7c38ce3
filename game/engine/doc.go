// Package engine provides the core game logic for Battleship.
//
// The engine package implements the game rules including:
//   - Coordinate parsing ("B5" <-> row 4, column 1) and board bounds
//   - Ship placement validation and writing a 3-cell ship onto a board
//   - Shot validation, duplicate shot detection and hit resolution
//   - Sink detection and match phases (placement, battle, finished)
//
// Core Types:
//
// Player owns its 8x8 Board, its ship cells and the shots it has fired.
// The rule functions (ValidateLocation, AddShipPosition,
// ValidateShootLocation, SetShoot, ValidateShipSink) operate on players
// directly and keep no state of their own. GameEngine drives one match on
// top of them, alternating turns and recording history.
//
// Usage:
//
//	gameEngine := engine.NewEngineWithDefaults()
//
//	// Player 1, then player 2, place their ships
//	if _, err := gameEngine.PlaceShip("A1 A3"); err != nil {
//		log.Fatal(err)
//	}
//	gameEngine.PlaceShip("F8 H8")
//
//	// Players alternate shots
//	outcome, err := gameEngine.Shoot("F8")
//
// Game Rules:
//
// Each player hides one ship three cells long, horizontal or vertical,
// given by its two end points. Players then take turns naming a cell of
// the enemy board. A cell may only be fired at once. Three hits sink the
// ship and win the game. Misses are marked on the target board with "X";
// hits are only counted.
package engine
