package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ClassroomOrigin is the starting location of the default configuration
var ClassroomOrigin = LatLng{Lat: 36.997936938057016, Lng: -122.05703507501151}

// DefaultMessages returns the stock player-facing texts
func DefaultMessages() Messages {
	return Messages{
		Welcome:   "Welcome! Pick up a plant and merge matching ones to grow a tree.",
		TooFar:    "Too far! Move closer. Distance: %.0fm (max %.0fm)",
		PickedUp:  "Picked up %s (%d)",
		Merged:    "Merged into %s (%d)!",
		Swapped:   "Swapped for %s (%d)",
		Victory:   "You grew a 🌳 TREE! You win!",
		WrongMode: "Buttons are disabled while following your location",
		NoGeo:     "Geolocation is not supported by this client",
	}
}

// DefaultGameConfig returns the built-in classroom configuration
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:             "classroom",
		Description:      "Plants around the classroom",
		Origin:           ClassroomOrigin,
		Zoom:             DefaultZoom,
		CellSize:         DefaultCellSize,
		SpawnRadius:      DefaultSpawnRadius,
		TokenCount:       DefaultTokenCount,
		InteractDistance: DefaultInteractDistance,
		WinValue:         DefaultWinValue,
		StepDegrees:      DefaultStepDegrees,
		Messages:         DefaultMessages(),
	}
}

// ApplyDefaults fills in the zoom, step and messages left empty in a loaded configuration
func (c *GameConfig) ApplyDefaults() {
	defaults := DefaultMessages()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&c.Messages.Welcome, defaults.Welcome)
	fill(&c.Messages.TooFar, defaults.TooFar)
	fill(&c.Messages.PickedUp, defaults.PickedUp)
	fill(&c.Messages.Merged, defaults.Merged)
	fill(&c.Messages.Swapped, defaults.Swapped)
	fill(&c.Messages.Victory, defaults.Victory)
	fill(&c.Messages.WrongMode, defaults.WrongMode)
	fill(&c.Messages.NoGeo, defaults.NoGeo)
	if c.Zoom == 0 {
		c.Zoom = DefaultZoom
	}
	if c.StepDegrees == 0 {
		c.StepDegrees = DefaultStepDegrees
	}
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is required")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate origin
	if config.Origin.Lat < -90 || config.Origin.Lat > 90 {
		return fmt.Errorf("config validation: origin.lat must be between -90 and 90, got %v", config.Origin.Lat)
	}
	if config.Origin.Lng < -180 || config.Origin.Lng > 180 {
		return fmt.Errorf("config validation: origin.lng must be between -180 and 180, got %v", config.Origin.Lng)
	}

	// Validate grid and spawn geometry
	if config.CellSize <= 0 || config.CellSize > MaxCellSize {
		return fmt.Errorf("config validation: cell_size must be in (0, %v], got %v", MaxCellSize, config.CellSize)
	}
	if config.SpawnRadius <= 0 || config.SpawnRadius > MaxCellSize {
		return fmt.Errorf("config validation: spawn_radius must be in (0, %v], got %v", MaxCellSize, config.SpawnRadius)
	}
	if config.SpawnRadius > config.CellSize/2 {
		return fmt.Errorf("config validation: spawn_radius %v must be at most half of cell_size %v so plants stay inside their cell", config.SpawnRadius, config.CellSize)
	}
	if config.TokenCount < MinTokenCount || config.TokenCount > MaxTokenCount {
		return fmt.Errorf("config validation: token_count must be between %d and %d, got %d", MinTokenCount, MaxTokenCount, config.TokenCount)
	}
	if config.StepDegrees <= 0 || config.StepDegrees > MaxStepDegrees {
		return fmt.Errorf("config validation: step_degrees must be in (0, %v], got %v", MaxStepDegrees, config.StepDegrees)
	}

	// Validate interaction rules
	if config.InteractDistance <= 0 {
		return fmt.Errorf("config validation: interact_distance must be positive, got %v", config.InteractDistance)
	}
	if config.WinValue < 2 || !isPowerOfTwo(config.WinValue) {
		return fmt.Errorf("config validation: win_value must be a power of two >= 2, got %d", config.WinValue)
	}
	if EmojiFor(config.WinValue) == "" {
		return fmt.Errorf("config validation: win_value %d has no plant stage", config.WinValue)
	}

	// Validate messages
	if config.Messages.Victory == "" {
		return fmt.Errorf("config validation: messages.victory is required")
	}
	if strings.Count(config.Messages.TooFar, "%") != 2 {
		return fmt.Errorf("config validation: messages.too_far must contain two verbs for distance and limit")
	}
	for name, msg := range map[string]string{
		"picked_up": config.Messages.PickedUp,
		"merged":    config.Messages.Merged,
		"swapped":   config.Messages.Swapped,
	} {
		if !strings.Contains(msg, "%s") || !strings.Contains(msg, "%d") {
			return fmt.Errorf("config validation: messages.%s must contain %%s for emoji and %%d for value", name)
		}
	}

	return nil
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	return ParseGameConfig(data)
}

// ParseGameConfig decodes, defaults and validates a JSON configuration
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	config.ApplyDefaults()

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// InitGameStateFromConfig creates a new game state using the provided configuration
func InitGameStateFromConfig(config *GameConfig) *GameState {
	if config == nil {
		config = DefaultGameConfig()
	}

	state := &GameState{
		PlayerPos:         config.Origin,
		ViewCenter:        config.Origin,
		Mode:              ModeButtons,
		TokenOverrides:    MemoryStore{},
		Status:            StatusText(0),
		Message:           config.Messages.Welcome,
		ConfigName:        config.Name,
		MoveHistory:       []MoveHistoryEntry{},
		CurrentMoves:      []MoveHistoryEntry{},
		CurrentMovesCount: 0,
	}
	state.Respawn(config)
	return state
}

// Respawn replaces the materialized tokens with a fresh spawn for the player's cell
func (gs *GameState) Respawn(config *GameConfig) {
	gs.Cell = CellOf(gs.PlayerPos, config.CellSize)
	gs.Tokens = Spawn(gs.PlayerPos, config, gs.TokenOverrides)
}
