package main

import (
	"math"

	"github.com/wricardo/mcp-training/plantmerge/game/engine"
)

// Action is the next thing the bot does: click Token, or step in Direction
type Action struct {
	Token     string
	Direction engine.Direction
}

// GreedyStrategy merges the lowest available pair first. When the current
// cell has nothing left to merge it carries its best plant north into the
// next cell and keeps going there.
type GreedyStrategy struct {
	explore engine.Direction
}

func NewGreedyStrategy() *GreedyStrategy {
	return &GreedyStrategy{explore: engine.North}
}

// Next picks an action from the tokens of the current cell
func (s *GreedyStrategy) Next(pos engine.LatLng, held int, tokens []engine.NearbyToken) Action {
	target, ok := s.target(held, tokens)
	if !ok {
		return Action{Direction: s.explore}
	}
	if target.InRange {
		return Action{Token: target.Key}
	}
	return Action{Direction: stepToward(pos, target.Pos)}
}

func (s *GreedyStrategy) target(held int, tokens []engine.NearbyToken) (engine.NearbyToken, bool) {
	if len(tokens) == 0 {
		return engine.NearbyToken{}, false
	}

	counts := make(map[int]int, len(tokens))
	for _, t := range tokens {
		counts[t.Value]++
	}

	if held > 0 {
		// tokens are sorted closest first
		for _, t := range tokens {
			if t.Value == held {
				return t, true
			}
		}
		// Swap into a plant that still has a partner here
		for _, t := range tokens {
			if counts[t.Value] >= 2 {
				return t, true
			}
		}
		return engine.NearbyToken{}, false
	}

	lowest := 0
	for v, n := range counts {
		if n >= 2 && (lowest == 0 || v < lowest) {
			lowest = v
		}
	}
	if lowest > 0 {
		for _, t := range tokens {
			if t.Value == lowest {
				return t, true
			}
		}
	}

	// Nothing pairs up: take the best plant along to the next cell
	best := tokens[0]
	for _, t := range tokens[1:] {
		if t.Value > best.Value {
			best = t
		}
	}
	return best, true
}

// stepToward returns the button direction that closes the larger gap, in meters
func stepToward(from, to engine.LatLng) engine.Direction {
	north := to.Lat - from.Lat
	east := (to.Lng - from.Lng) * math.Cos(from.Lat*math.Pi/180)

	if math.Abs(north) >= math.Abs(east) {
		if north >= 0 {
			return engine.North
		}
		return engine.South
	}
	if east >= 0 {
		return engine.East
	}
	return engine.West
}
