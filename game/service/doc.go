// Package service provides the business logic layer for the ice puzzle server.
//
// The service package implements:
//   - Multi-session play with per-session engines
//   - Level loading through a ConfigManager
//   - Solving levels and hints from the player's position
//   - Level generation, optionally saved and opened as a session
//   - Move history tracking
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages level loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the engine, solver and generator packages. Each session owns its engine.
// Searches never run against a session's live grid: the grid is cloned under
// the service lock and the search runs on the clone after the lock is released.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	levelMgr, _ := config.NewManager("levels")
//	gameService := service.NewGameService(sessionMgr, levelMgr)
//
//	sessionInfo, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, sessionInfo.ID, "up", false)
package service
