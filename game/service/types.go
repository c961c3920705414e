package service

import (
	"time"

	"github.com/wricardo/mcp-training/plantmerge/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a button move
type MoveResult struct {
	Success   bool              `json:"success"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
	Step      *StepInfo         `json:"step,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // invalid_direction|wrong_mode
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos       engine.LatLng `json:"start_pos"`
	EndPos         engine.LatLng `json:"end_pos"`
	StartCell      engine.Cell   `json:"start_cell"`
	EndCell        engine.Cell   `json:"end_cell"`
	DistanceMeters float64       `json:"distance_meters"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	Message string `json:"message,omitempty"`
}

// StepInfo is a compact record for each executed move
type StepInfo struct {
	Idx          int           `json:"idx"`
	Dir          string        `json:"dir"`
	From         engine.LatLng `json:"from"`
	To           engine.LatLng `json:"to"`
	Cell         engine.Cell   `json:"cell"`
	CellChanged  bool          `json:"cell_changed,omitempty"`
	TokensInCell int           `json:"tokens_in_cell"`
}

// PositionResult contains the result of an absolute position update
type PositionResult struct {
	Accepted  bool              `json:"accepted"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
	Step      *StepInfo         `json:"step,omitempty"`
}

// InteractResult contains the outcome of clicking a token
type InteractResult struct {
	Outcome   engine.Outcome    `json:"outcome"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// TokensResult lists tokens around the player
type TokensResult struct {
	PlayerPos        engine.LatLng        `json:"player_pos"`
	HeldValue        int                  `json:"held_value"`
	Within           float64              `json:"within,omitempty"`
	InteractDistance float64              `json:"interact_distance"`
	Tokens           []engine.NearbyToken `json:"tokens"`
}

// Event types emitted by game operations
const (
	EventMove        = "move"
	EventCellChanged = "cell_changed"
	EventModeChanged = "mode_changed"
	EventPickUp      = "pick_up"
	EventMerge       = "merge"
	EventSwap        = "swap"
	EventRejected    = "rejected"
	EventVictory     = "victory"
	EventReset       = "reset"
)

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Position  *engine.LatLng `json:"position,omitempty"`
	Token     string         `json:"token,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename         string        `json:"filename"`
	ConfigID         string        `json:"config_id"` // The identifier to use for session creation
	Name             string        `json:"name"`      // Display name
	Description      string        `json:"description"`
	Origin           engine.LatLng `json:"origin"`
	TokenCount       int           `json:"token_count"`
	InteractDistance float64       `json:"interact_distance"`
	WinValue         int           `json:"win_value"`
	WinEmoji         string        `json:"win_emoji"`
}
