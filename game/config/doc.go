// Package config provides configuration management for the Plant Merge game.
//
// The config package handles:
//   - Loading game configurations from JSON files
//   - Configuration validation and defaults for missing messages
//   - Default configuration management
//   - Process settings read from the environment
//
// Configuration Format:
//
// Game configurations are stored as JSON files in the configs directory.
// Each configuration defines:
//   - The origin (starting latitude/longitude) and map zoom
//   - Grid cell size and the spawn radius of plants inside a cell
//   - How many plants each cell holds and how close the player must be to touch one
//   - The plant value that wins the game
//   - Player-facing messages
//
// Available Configurations:
//   - classroom: the default, 80 plants per cell, win with a 🌳 (256)
//   - garden: smaller cells and a 🌴 (64) win for short sessions
//   - meadow: sparse plants with a shorter reach
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//
//	// Load specific configuration
//	gameConfig, err := manager.LoadConfig("garden")
//
//	// Get default configuration
//	defaultConfig := manager.GetDefault()
//
//	// List available configurations
//	configs, err := manager.ListConfigs()
//
// Process settings (port, storage backend, log file, ngrok, ...) are parsed
// from environment variables by LoadSettings.
package config
