package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/mcp-training/plantmerge/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidPosition = errors.New("invalid position")
	ErrNoPositionFeed  = errors.New("position updates are not enabled")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Movement
	Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error)
	ReportPosition(ctx context.Context, sessionID string, pos engine.LatLng) (*PositionResult, error)
	SetMode(ctx context.Context, sessionID, mode string) (*engine.GameState, error)

	// Interaction
	Interact(ctx context.Context, sessionID, tokenKey string) (*InteractResult, error)
	NearbyTokens(ctx context.Context, sessionID string, within float64) (*TokensResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error

	// Maintenance
	EvictIdleSessions(ctx context.Context, maxAge time.Duration) int
	PruneSessions(ctx context.Context, keep func(sessionID string) bool) int
	SaveAllSessions(ctx context.Context) error

	// Observability
	Metrics(ctx context.Context) MetricsSnapshot
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
	SaveAllSessions() error
	DeleteFromMemory(id string) error
	CleanupExpiredSessions(maxAge time.Duration) int
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// PositionPublisher delivers absolute positions to the engines following a session
type PositionPublisher interface {
	Publish(sessionID string, pos engine.LatLng) bool
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
