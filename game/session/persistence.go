package session

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/plantmerge/game/engine"
	"github.com/wricardo/mcp-training/plantmerge/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData represents the JSON structure for persisted sessions
type PersistedSessionData struct {
	ID             string          `json:"id"`
	ConfigName     string          `json:"config_name"`
	CreatedAt      time.Time       `json:"created_at"`
	LastAccessedAt time.Time       `json:"last_accessed_at"`
	GameState      json.RawMessage `json:"game_state"`
}

// decodeState parses a stored game state; nil data decodes to nil
func decodeState(data []byte) (*engine.GameState, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var state engine.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// restoreSession rebuilds a session around a stored state. A malformed state
// falls back to a fresh game at the configured origin instead of failing.
func restoreSession(data PersistedSessionData, configManager service.ConfigManager, logger *zap.Logger) (*service.Session, error) {
	gameConfig, err := configManager.LoadConfig(data.ConfigName)
	if err != nil {
		return nil, fmt.Errorf("failed to load config '%s': %w", data.ConfigName, err)
	}

	gameEngine, err := engine.NewEngine(gameConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}

	state, err := decodeState(data.GameState)
	switch {
	case err != nil:
		logger.Warn("malformed persisted game state, starting fresh",
			zap.String("session_id", data.ID), zap.Error(err))
	case state != nil:
		if err := gameEngine.SetState(state); err != nil {
			logger.Warn("failed to restore game state, starting fresh",
				zap.String("session_id", data.ID), zap.Error(err))
		}
	}

	return &service.Session{
		ID:             data.ID,
		Engine:         gameEngine,
		Config:         gameConfig,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

// configIDFromName returns the config ID (filename without extension) for a display name
func configIDFromName(configManager service.ConfigManager, displayName string) (string, error) {
	configs, err := configManager.ListConfigs()
	if err != nil {
		return "", fmt.Errorf("failed to list configs: %w", err)
	}

	for _, config := range configs {
		if config.Name == displayName {
			return config.ConfigID, nil
		}
	}

	// If not found, assume the displayName is already the config ID
	return displayName, nil
}
