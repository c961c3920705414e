package engine

import (
	"errors"
	"fmt"
)

var ErrUnknownToken = errors.New("token not found near player")

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsVictory() bool
	GetHeldValue() int
	GetPlayerPosition() LatLng

	// Movement operations
	Move(direction string) bool
	GetMode() MoveMode
	SetMode(mode MoveMode) error
	SetLocationFeed(feed LocationFeed)
	Stop()

	// Interactions
	Interact(tokenKey string) (Outcome, error)
	GetTokens() []Token
	GetNearbyTokens(within float64) []NearbyToken

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface. It owns one player's state and
// is not safe for concurrent use; callers serialize access.
type GameEngine struct {
	state   *GameState
	config  *GameConfig
	feed    LocationFeed
	unwatch func()

	// resumeGeo is set when a restored geolocation mode could not start yet
	resumeGeo bool
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	engine := &GameEngine{
		config: config,
		state:  InitGameStateFromConfig(config),
	}

	return engine, nil
}

// NewEngineWithDefaults creates a new game engine with the built-in classroom configuration
func NewEngineWithDefaults() *GameEngine {
	config := DefaultGameConfig()
	return &GameEngine{
		config: config,
		state:  InitGameStateFromConfig(config),
	}
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used for persistence loading).
// Malformed overrides are dropped and tokens are respawned for the restored position.
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if state.TokenOverrides == nil {
		state.TokenOverrides = MemoryStore{}
	}
	state.TokenOverrides.Sanitize()
	if state.HeldValue < 0 || (state.HeldValue != 0 && !isPowerOfTwo(state.HeldValue)) {
		state.HeldValue = 0
	}
	if !validLatLng(state.PlayerPos) {
		state.PlayerPos = e.config.Origin
	}
	if state.MoveHistory == nil {
		state.MoveHistory = []MoveHistoryEntry{}
	}
	if state.CurrentMoves == nil {
		state.CurrentMoves = []MoveHistoryEntry{}
	}

	// A restored geolocation mode has no live subscription; try to resume it.
	wantGeo := state.Mode == ModeGeolocation
	e.stopWatching()
	state.Mode = ModeButtons

	e.state = state
	e.state.ViewCenter = state.PlayerPos
	e.state.Status = StatusText(state.HeldValue)
	e.state.Respawn(e.config)

	e.resumeGeo = false
	if wantGeo && e.SetMode(ModeGeolocation) != nil {
		e.resumeGeo = true
	}
	return nil
}

// Reset resets the game to initial state
func (e *GameEngine) Reset() *GameState {
	e.stopWatching()
	e.resumeGeo = false

	// Preserve cumulative history and totals across resets
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	e.state = InitGameStateFromConfig(e.config)

	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal
	e.state.CurrentMoves = []MoveHistoryEntry{}
	e.state.CurrentMovesCount = 0

	return e.state
}

// IsVictory returns whether the player has grown a plant to the winning value
func (e *GameEngine) IsVictory() bool {
	return e.state.Victory
}

// GetHeldValue returns the value in hand, 0 when empty
func (e *GameEngine) GetHeldValue() int {
	return e.state.HeldValue
}

// GetPlayerPosition returns the current player position
func (e *GameEngine) GetPlayerPosition() LatLng {
	return e.state.PlayerPos
}

// Move steps the player one button step in the given direction
func (e *GameEngine) Move(direction string) bool {
	if e.config == nil {
		return false
	}

	dir, err := ParseDirection(direction)
	if err != nil {
		e.state.Message = fmt.Sprintf("Can't move %q", direction)
		e.state.AddMoveToHistory(MoveHistoryEntry{
			Action:       direction,
			FromPosition: e.state.PlayerPos,
			ToPosition:   e.state.PlayerPos,
		})
		return false
	}

	if e.state.Mode != ModeButtons {
		e.state.Message = e.config.Messages.WrongMode
		e.state.AddMoveToHistory(MoveHistoryEntry{
			Action:       string(dir),
			FromPosition: e.state.PlayerPos,
			ToPosition:   e.state.PlayerPos,
		})
		return false
	}

	e.state.ApplyDelta(dir.Delta(e.config.StepDegrees), string(dir), e.config)
	e.state.Message = e.state.Status
	return true
}

// GetMode returns the active movement mode
func (e *GameEngine) GetMode() MoveMode {
	return e.state.Mode
}

// SetLocationFeed attaches the geolocation source used by geolocation mode.
// A restored geolocation mode that could not start yet is retried on every
// attachment until it succeeds or the player picks buttons.
func (e *GameEngine) SetLocationFeed(feed LocationFeed) {
	e.feed = feed
	if !e.resumeGeo {
		return
	}
	message := e.state.Message
	if err := e.SetMode(ModeGeolocation); err != nil {
		e.state.Message = message
		return
	}
	e.resumeGeo = false
}

// SetMode switches the movement strategy. The previous strategy is stopped
// before the next one starts; when geolocation is unavailable the switch is
// aborted and the current mode stays active.
func (e *GameEngine) SetMode(mode MoveMode) error {
	switch mode {
	case ModeButtons:
		e.stopWatching()
		e.resumeGeo = false
		e.state.Mode = ModeButtons
		return nil

	case ModeGeolocation:
		if e.state.Mode == ModeGeolocation && e.unwatch != nil {
			return nil
		}
		if e.feed == nil || !e.feed.Supported() {
			e.state.Message = e.config.Messages.NoGeo
			return ErrGeolocationUnsupported
		}

		e.stopWatching()
		e.state.Mode = ModeButtons

		stop, err := e.feed.Watch(e.onLocation)
		if err != nil {
			e.state.Message = e.config.Messages.NoGeo
			return fmt.Errorf("%w: %v", ErrGeolocationUnsupported, err)
		}
		e.unwatch = stop
		e.state.Mode = ModeGeolocation
		return nil
	}

	return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
}

// Stop releases the geolocation subscription, if any
func (e *GameEngine) Stop() {
	e.stopWatching()
}

func (e *GameEngine) stopWatching() {
	if e.unwatch != nil {
		e.unwatch()
		e.unwatch = nil
	}
}

// onLocation converts an absolute position update into a movement delta
func (e *GameEngine) onLocation(pos LatLng) {
	if e.state.Mode != ModeGeolocation {
		return
	}
	e.state.ApplyDelta(pos.Sub(e.state.PlayerPos), "geolocation", e.config)
	e.state.Message = e.state.Status
}

// Interact clicks the token with the given seed key
func (e *GameEngine) Interact(tokenKey string) (Outcome, error) {
	token, ok := FindToken(e.state, tokenKey)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownToken, tokenKey)
	}

	out := Resolve(e.state.HeldValue, e.state.PlayerPos, token, e.config)
	e.state.Message = out.Message

	entry := MoveHistoryEntry{
		Action:       "interact",
		FromPosition: e.state.PlayerPos,
		ToPosition:   e.state.PlayerPos,
		Token:        tokenKey,
		Outcome:      out.Kind,
		Success:      out.Changed(),
	}

	if !out.Changed() {
		e.state.AddMoveToHistory(entry)
		return out, nil
	}

	e.apply(out)
	e.state.AddMoveToHistory(entry)
	return out, nil
}

// apply writes an interaction outcome into the state and the token store
func (e *GameEngine) apply(out Outcome) {
	s := e.state
	s.HeldValue = out.HeldValue
	s.TokenOverrides.Set(out.Token.Key, out.NewTokenValue)

	// Replace the token's visual representation
	for i := range s.Tokens {
		if s.Tokens[i].Key != out.Token.Key {
			continue
		}
		if out.NewTokenValue == 0 {
			s.Tokens = append(s.Tokens[:i], s.Tokens[i+1:]...)
		} else {
			s.Tokens[i] = out.Token
		}
		break
	}

	if out.Kind == Merged {
		s.Merges++
	}
	if v := out.resultValue(); v > s.BestValue {
		s.BestValue = v
	}
	if out.Victory {
		s.Victory = true
	}
	s.Status = StatusText(s.HeldValue)
}

// GetTokens returns the currently materialized tokens
func (e *GameEngine) GetTokens() []Token {
	return e.state.Tokens
}

// GetNearbyTokens returns tokens within the given distance, closest first
func (e *GameEngine) GetNearbyTokens(within float64) []NearbyToken {
	return NearbyTokens(e.state, within, e.config.InteractDistance)
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and resets the game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	e.stopWatching()
	e.config = config
	e.state = InitGameStateFromConfig(config)
	return nil
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last history entry, or nil if there is none
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}
