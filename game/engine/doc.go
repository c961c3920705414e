// Package engine provides the core game logic for the Plant Merge map game.
//
// The engine package implements the game mechanics including:
//   - Deterministic luck values derived from string seed keys
//   - Grid cell indexing of geographic coordinates
//   - Sparse per-token state overrides (the token store)
//   - Deterministic token spawning around the player's cell
//   - Pick-up, merge and swap interactions with a winning value
//   - Button and geolocation movement modes
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState represents the current game state,
// while GameConfig defines the game rules loaded from JSON files.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/classroom.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Walk one step north and pick up the closest plant
//	gameEngine.Move("north")
//	nearby := engine.NearbyTokens(gameEngine.GetState(), 0, config.InteractDistance)
//	if len(nearby) > 0 {
//		outcome, _ := gameEngine.Interact(nearby[0].Key)
//		fmt.Println(outcome.Kind)
//	}
//
// Game Rules:
//
// Plants spawn around the cell containing the player. A plant within the
// interaction distance can be picked up into the player's single hand slot.
// Clicking a plant of the same value merges the two into one plant of double
// value; clicking a plant of a different value swaps it with the one in hand.
// Growing a plant to the winning value (256, a tree) wins the game.
package engine
