package engine

import "math"

// Spawn derives the full token set for the cell containing center.
// Positions depend only on the cell, so re-entering a cell reproduces the same
// candidates; values come from the store and removed tokens are skipped.
func Spawn(center LatLng, config *GameConfig, store TokenStore) []Token {
	cell := CellOf(center, config.CellSize)
	anchor := cell.Center(config.CellSize)

	tokens := make([]Token, 0, config.TokenCount)
	for n := 0; n < config.TokenCount; n++ {
		key := cell.SeedKey(n)
		value := ValueOf(store, key)
		if value == 0 {
			continue
		}
		token := Token{
			Key:   key,
			Pos:   tokenPosition(anchor, key, config.SpawnRadius),
			Value: value,
			Emoji: EmojiFor(value),
		}
		token.Label = TokenLabel(token, config.InteractDistance)
		tokens = append(tokens, token)
	}
	return tokens
}

// tokenPosition offsets anchor by a polar vector drawn from the key's luck
func tokenPosition(anchor LatLng, key string, radius float64) LatLng {
	angle := Luck(key+"/angle") * 2 * math.Pi
	dist := Luck(key+"/radius") * radius
	return LatLng{
		Lat: anchor.Lat + math.Cos(angle)*dist,
		Lng: anchor.Lng + math.Sin(angle)*dist,
	}
}
