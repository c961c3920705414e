package engine

import (
	"fmt"
	"math"
)

// Resolve decides what clicking token does for a player at player holding held.
// It is a pure function: the returned Outcome carries the new held value and the
// new token value, and the caller is responsible for applying them.
func Resolve(held int, player LatLng, token Token, config *GameConfig) Outcome {
	dist := Distance(player, token.Pos)
	out := Outcome{
		Token:         token,
		Distance:      dist,
		HeldValue:     held,
		NewTokenValue: token.Value,
	}

	switch {
	case dist > config.InteractDistance:
		out.Kind = Rejected
		out.Message = fmt.Sprintf(config.Messages.TooFar, shownDistance(dist, config.InteractDistance), config.InteractDistance)
		return out

	case held == 0:
		out.Kind = PickedUp
		out.HeldValue = token.Value
		out.NewTokenValue = 0
		out.Message = fmt.Sprintf(config.Messages.PickedUp, EmojiFor(token.Value), token.Value)

	case held == token.Value:
		merged := held * 2
		out.Kind = Merged
		out.HeldValue = 0
		out.NewTokenValue = merged
		out.Message = fmt.Sprintf(config.Messages.Merged, EmojiFor(merged), merged)

	default:
		// Holding a different value: the token and the hand trade places.
		out.Kind = Swapped
		out.HeldValue = token.Value
		out.NewTokenValue = held
		out.Message = fmt.Sprintf(config.Messages.Swapped, EmojiFor(token.Value), token.Value)
	}

	out.Token.Value = out.NewTokenValue
	out.Token.Emoji = EmojiFor(out.NewTokenValue)
	out.Token.Label = TokenLabel(out.Token, config.InteractDistance)
	out.Victory = IsWinningValue(out.resultValue(), config)
	if out.Victory {
		out.Message = config.Messages.Victory
	}
	return out
}

// shownDistance rounds a rejected distance for the too-far message so that it
// never reads as within the limit
func shownDistance(dist, limit float64) float64 {
	shown := math.Round(dist)
	if shown <= limit {
		shown = math.Floor(limit) + 1
	}
	return shown
}

// resultValue is the value the interaction produced: the merged plant for a
// merge, otherwise whatever ended up in the hand.
func (o Outcome) resultValue() int {
	if o.Kind == Merged {
		return o.NewTokenValue
	}
	return o.HeldValue
}

// IsWinningValue reports whether v reaches the configured winning value
func IsWinningValue(v int, config *GameConfig) bool {
	return v > 0 && v >= config.WinValue
}

// Changed reports whether the outcome mutates any state
func (o Outcome) Changed() bool {
	return o.Kind != Rejected
}
