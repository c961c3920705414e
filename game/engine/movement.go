package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidDirection       = errors.New("invalid direction")
	ErrInvalidMode            = errors.New("invalid movement mode")
	ErrWrongMode              = errors.New("action not available in current movement mode")
	ErrGeolocationUnsupported = errors.New("geolocation is not supported")
)

// Direction is one of the four button directions
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// Directions lists the button directions in display order
var Directions = []Direction{North, South, East, West}

// ParseDirection accepts compass names and the arrow aliases up/down/right/left
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "up", "n":
		return North, nil
	case "south", "down", "s":
		return South, nil
	case "east", "right", "e":
		return East, nil
	case "west", "left", "w":
		return West, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Delta returns the coordinate offset of one step in this direction
func (d Direction) Delta(step float64) LatLng {
	switch d {
	case North:
		return LatLng{Lat: step}
	case South:
		return LatLng{Lat: -step}
	case East:
		return LatLng{Lng: step}
	case West:
		return LatLng{Lng: -step}
	}
	return LatLng{}
}

// ParseMode validates a movement mode name
func ParseMode(s string) (MoveMode, error) {
	switch MoveMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeButtons:
		return ModeButtons, nil
	case ModeGeolocation, "geo", "gps":
		return ModeGeolocation, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// LocationFeed is a source of continuous absolute position updates
type LocationFeed interface {
	// Supported reports whether a geolocation-capable source is available
	Supported() bool
	// Watch subscribes onUpdate to position updates and returns the unsubscribe func
	Watch(onUpdate func(LatLng)) (stop func(), err error)
}

// Sub returns a - b
func (a LatLng) Sub(b LatLng) LatLng {
	return LatLng{Lat: a.Lat - b.Lat, Lng: a.Lng - b.Lng}
}

// Add returns a + b
func (a LatLng) Add(b LatLng) LatLng {
	return LatLng{Lat: a.Lat + b.Lat, Lng: a.Lng + b.Lng}
}

// ApplyDelta moves the player, recenters the view and respawns tokens.
// Every movement mode funnels through here.
func (gs *GameState) ApplyDelta(delta LatLng, action string, config *GameConfig) {
	from := gs.PlayerPos
	gs.PlayerPos = from.Add(delta)
	gs.ViewCenter = gs.PlayerPos
	gs.Respawn(config)
	gs.AddMoveToHistory(MoveHistoryEntry{
		Action:       action,
		FromPosition: from,
		ToPosition:   gs.PlayerPos,
		Success:      true,
	})
}

// AddMoveToHistory adds an entry to the game's history, stamping number, time and hand
func (gs *GameState) AddMoveToHistory(entry MoveHistoryEntry) {
	entry.HeldValue = gs.HeldValue
	entry.Timestamp = time.Now().Unix()
	entry.MoveNumber = gs.TotalMoves + 1

	// Append to cumulative history (never cleared by reset) and increment total
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++

	// Append to current segment history and increment its counter
	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++
}
