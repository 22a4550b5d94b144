// Package engine provides the grid model, the slide simulator and the play
// engine for the ice puzzle.
//
// The engine package implements:
//   - The tile grid with start and end tiles (out-of-bounds reads as Solid)
//   - Slide resolution: a player keeps moving over ice until floor or solid stops it
//   - Level import and export through the integer tile-code layer
//   - Interactive play state with move budgets and history
//
// Core Types:
//
// Grid holds the tiles. Slide is the pure move simulator every other package
// builds on. LevelConfig is the file representation of a level, converted to a
// Grid with BuildGrid. The Engine interface, implemented by GameEngine, drives a
// single play session over a level.
//
// Usage:
//
//	level, err := engine.LoadLevelByName("classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(level)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Slide the player
//	success := gameEngine.Move("up")
//	state := gameEngine.GetState()
//
// Game Rules:
//
// The player starts on the start tile and picks one of four directions. On ice
// the player keeps sliding; stepping on a floor tile stops the slide on it, and
// a solid tile or the edge of the grid stops it just before. Reaching the end
// tile wins. Levels may cap the number of slides, in which case running out of
// slides ends the game.
package engine
