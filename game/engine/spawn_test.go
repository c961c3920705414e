package engine

import (
	"reflect"
	"testing"
)

func TestSpawn_Count(t *testing.T) {
	config := DefaultGameConfig()
	tokens := Spawn(config.Origin, config, MemoryStore{})

	if len(tokens) != DefaultTokenCount {
		t.Fatalf("Expected %d tokens, got %d", DefaultTokenCount, len(tokens))
	}
	for _, tok := range tokens {
		if tok.Value != 1 {
			t.Errorf("Expected untouched token %s to have value 1, got %d", tok.Key, tok.Value)
		}
		if tok.Emoji != "🌱" {
			t.Errorf("Expected seedling emoji for %s, got %q", tok.Key, tok.Emoji)
		}
		if tok.Label != "🌱 Value 1 — move within 30m to interact" {
			t.Errorf("Unexpected label for %s: %q", tok.Key, tok.Label)
		}
	}
}

func TestSpawn_Deterministic(t *testing.T) {
	config := DefaultGameConfig()
	first := Spawn(config.Origin, config, MemoryStore{})
	second := Spawn(config.Origin, config, MemoryStore{})

	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical spawns for the same cell")
	}
}

func TestSpawn_DependsOnlyOnCell(t *testing.T) {
	config := DefaultGameConfig()
	cell := CellOf(config.Origin, config.CellSize)
	center := cell.Center(config.CellSize)

	// Two different points inside the same cell
	a := Spawn(center, config, MemoryStore{})
	b := Spawn(LatLng{Lat: center.Lat + config.CellSize/4, Lng: center.Lng - config.CellSize/4}, config, MemoryStore{})

	if !reflect.DeepEqual(a, b) {
		t.Error("Expected the same candidates anywhere inside one cell")
	}
}

func TestSpawn_TokensStayInCell(t *testing.T) {
	config := DefaultGameConfig()
	cell := CellOf(config.Origin, config.CellSize)

	for _, tok := range Spawn(config.Origin, config, MemoryStore{}) {
		if got := CellOf(tok.Pos, config.CellSize); got != cell {
			t.Errorf("Token %s at %v lies in cell %v, expected %v", tok.Key, tok.Pos, got, cell)
		}
		keyCell, _, err := ParseSeedKey(tok.Key)
		if err != nil || keyCell != cell {
			t.Errorf("Token key %s does not belong to cell %v", tok.Key, cell)
		}
	}
}

func TestSpawn_NewCellNewTokens(t *testing.T) {
	config := DefaultGameConfig()
	here := Spawn(config.Origin, config, MemoryStore{})
	there := Spawn(LatLng{Lat: config.Origin.Lat + config.CellSize, Lng: config.Origin.Lng}, config, MemoryStore{})

	if here[0].Key == there[0].Key {
		t.Error("Expected different seed keys in a neighboring cell")
	}
}

func TestSpawn_AppliesOverrides(t *testing.T) {
	config := DefaultGameConfig()
	cell := CellOf(config.Origin, config.CellSize)
	store := MemoryStore{}
	store.Set(cell.SeedKey(0), 0)
	store.Set(cell.SeedKey(1), 8)

	tokens := Spawn(config.Origin, config, store)
	if len(tokens) != DefaultTokenCount-1 {
		t.Fatalf("Expected removed token to be skipped, got %d tokens", len(tokens))
	}

	for _, tok := range tokens {
		switch tok.Key {
		case cell.SeedKey(0):
			t.Error("Removed token was materialized")
		case cell.SeedKey(1):
			if tok.Value != 8 || tok.Emoji != "🌻" {
				t.Errorf("Expected overridden value 8 🌻, got %d %s", tok.Value, tok.Emoji)
			}
		}
	}

	// Positions are unaffected by values
	plain := Spawn(config.Origin, config, MemoryStore{})
	if plain[1].Pos != tokens[0].Pos {
		t.Error("Expected overrides not to move tokens")
	}
}
