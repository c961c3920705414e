package engine

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
)

var emojiByValue = map[int]string{
	1:   "🌱",
	2:   "🌿",
	4:   "🌸",
	8:   "🌻",
	16:  "🌷",
	32:  "🌺",
	64:  "🌴",
	128: "🌾",
	256: "🌳",
}

// EmojiFor returns the plant emoji for a value, or "" when there is none
func EmojiFor(v int) string {
	return emojiByValue[v]
}

// StatusText renders the status panel line for the value in hand
func StatusText(held int) string {
	if held == 0 {
		return "In hand: empty"
	}
	return fmt.Sprintf("In hand: %s (%d)", EmojiFor(held), held)
}

// TokenLabel renders the hover text of a token
func TokenLabel(t Token, interactDistance float64) string {
	return fmt.Sprintf("%s Value %d — move within %.0fm to interact", t.Emoji, t.Value, interactDistance)
}

// Distance returns the great-circle distance in meters between a and b
func Distance(a, b LatLng) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// FindToken returns the materialized token with the given key
func FindToken(state *GameState, key string) (Token, bool) {
	for _, t := range state.Tokens {
		if t.Key == key {
			return t, true
		}
	}
	return Token{}, false
}

// NearbyTokens lists tokens within the given distance of the player, closest first.
// A non-positive within returns every materialized token. InRange is judged
// against interactDistance.
func NearbyTokens(state *GameState, within, interactDistance float64) []NearbyToken {
	result := make([]NearbyToken, 0)
	for _, t := range state.Tokens {
		d := Distance(state.PlayerPos, t.Pos)
		if within > 0 && d > within {
			continue
		}
		result = append(result, NearbyToken{
			Token:     t,
			Distance:  d,
			InRange:   d <= interactDistance,
			Mergeable: state.HeldValue != 0 && state.HeldValue == t.Value,
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Distance < result[j].Distance
	})
	return result
}

// Clone returns a deep copy that stays stable while the original keeps changing
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	c := *gs
	c.Tokens = slices.Clone(gs.Tokens)
	c.TokenOverrides = maps.Clone(gs.TokenOverrides)
	c.MoveHistory = slices.Clone(gs.MoveHistory)
	c.CurrentMoves = slices.Clone(gs.CurrentMoves)
	return &c
}

func validLatLng(p LatLng) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}
