package engine

// MoveMode identifies the active movement strategy
type MoveMode string

const (
	ModeButtons     MoveMode = "buttons"
	ModeGeolocation MoveMode = "geolocation"
)

// OutcomeKind classifies the result of clicking a token
type OutcomeKind string

const (
	Rejected OutcomeKind = "rejected"
	PickedUp OutcomeKind = "picked_up"
	Merged   OutcomeKind = "merged"
	Swapped  OutcomeKind = "swapped"
)

const (
	DefaultZoom             = 19
	DefaultCellSize         = 0.004
	DefaultSpawnRadius      = 0.002
	DefaultStepDegrees      = 0.0001
	DefaultTokenCount       = 80
	DefaultInteractDistance = 30.0
	DefaultWinValue         = 256

	// Validation constants
	MinTokenCount       = 2
	MaxTokenCount       = 500
	MaxCellSize         = 1.0
	MaxStepDegrees      = 0.01
	MaxBulkMoves        = 50
	EarthRadiusMeters   = 6371000.0
	WebSocketBufferSize = 256
)

// LatLng is a geographic coordinate in degrees
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Cell is a discrete grid square identified by row (latitude) and column (longitude)
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Token is a spawned plant. Tokens are derived on every spawn and never stored.
type Token struct {
	Key   string `json:"key"`
	Pos   LatLng `json:"pos"`
	Value int    `json:"value"`
	Emoji string `json:"emoji"`
	Label string `json:"label"`
}

// Messages holds the player-facing texts of a configuration
type Messages struct {
	Welcome   string `json:"welcome"`
	TooFar    string `json:"too_far"`
	PickedUp  string `json:"picked_up"`
	Merged    string `json:"merged"`
	Swapped   string `json:"swapped"`
	Victory   string `json:"victory"`
	WrongMode string `json:"wrong_mode"`
	NoGeo     string `json:"no_geolocation"`
}

// GameConfig represents the game configuration from JSON
type GameConfig struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Origin           LatLng   `json:"origin"`
	Zoom             int      `json:"zoom"`
	CellSize         float64  `json:"cell_size"`
	SpawnRadius      float64  `json:"spawn_radius"`
	TokenCount       int      `json:"token_count"`
	InteractDistance float64  `json:"interact_distance"`
	WinValue         int      `json:"win_value"`
	StepDegrees      float64  `json:"step_degrees"`
	Messages         Messages `json:"messages"`
}

// GameState represents the complete game state
type GameState struct {
	PlayerPos      LatLng             `json:"player_pos"`
	ViewCenter     LatLng             `json:"view_center"`
	Cell           Cell               `json:"cell"`
	HeldValue      int                `json:"held_value"` // 0 means empty hand
	Mode           MoveMode           `json:"mode"`
	Tokens         []Token            `json:"tokens"`
	TokenOverrides MemoryStore        `json:"token_overrides"`
	Status         string             `json:"status"`
	Message        string             `json:"message"`
	Victory        bool               `json:"victory"`
	Merges         int                `json:"merges"`
	BestValue      int                `json:"best_value"`
	ConfigName     string             `json:"config_name"`
	MoveHistory    []MoveHistoryEntry `json:"move_history"`
	TotalMoves     int                `json:"total_moves"`

	// CurrentMoves tracks only the entries since the last reset. It mirrors MoveHistory
	// but gets cleared on reset while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`
}

// MoveHistoryEntry represents a single move or interaction in the game history
type MoveHistoryEntry struct {
	Action       string      `json:"action"`
	FromPosition LatLng      `json:"from_position"`
	ToPosition   LatLng      `json:"to_position"`
	HeldValue    int         `json:"held_value"`
	Token        string      `json:"token,omitempty"`
	Outcome      OutcomeKind `json:"outcome,omitempty"`
	Timestamp    int64       `json:"timestamp"`
	Success      bool        `json:"success"`
	MoveNumber   int         `json:"move_number"`
}

// Outcome describes what an interaction did. It carries the new values so the
// caller can apply them; Resolve itself never mutates state.
type Outcome struct {
	Kind          OutcomeKind `json:"kind"`
	Token         Token       `json:"token"`
	Distance      float64     `json:"distance"`
	HeldValue     int         `json:"held_value"`
	NewTokenValue int         `json:"new_token_value"`
	Victory       bool        `json:"victory"`
	Message       string      `json:"message"`
}

// NearbyToken is a token annotated with its distance from the player
type NearbyToken struct {
	Token
	Distance  float64 `json:"distance"`
	InRange   bool    `json:"in_range"`
	Mergeable bool    `json:"mergeable"`
}
