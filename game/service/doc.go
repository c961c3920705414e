// Package service provides the business logic layer for the Plant Merge game.
//
// The service package implements:
//   - Multi-session game management
//   - Button moves, bulk moves and geolocation position updates
//   - Token interactions (pick up, merge, swap) and victory tracking
//   - Move history pagination
//   - Gameplay metrics
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
// PositionPublisher delivers absolute positions to sessions in geolocation mode.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and
// the game engine. A single mutex serializes every session access, including
// background eviction, pruning and storage flushes, so the engine itself
// stays synchronous. Returned game states are snapshots that
// callers may encode without holding the lock.
//
// Usage:
//
//	broker := geo.NewBroker(true, logger)
//	sessionMgr := session.NewManager()
//	sessionMgr.SetFeedProvider(broker)
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr, broker, logger)
//
//	info, err := gameService.CreateSession(ctx, "classroom")
//	result, err := gameService.Move(ctx, info.ID, "north", false)
//	tokens, err := gameService.NearbyTokens(ctx, info.ID, 30)
//	outcome, err := gameService.Interact(ctx, info.ID, tokens.Tokens[0].Key)
package service
