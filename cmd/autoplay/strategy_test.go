package main

import (
	"testing"

	"github.com/wricardo/mcp-training/plantmerge/game/engine"
)

func nearby(key string, value int, pos engine.LatLng, inRange bool) engine.NearbyToken {
	return engine.NearbyToken{
		Token:   engine.Token{Key: key, Pos: pos, Value: value},
		InRange: inRange,
	}
}

func TestGreedyStrategy_Next(t *testing.T) {
	here := engine.LatLng{Lat: 37, Lng: -122}
	north := engine.LatLng{Lat: 37.001, Lng: -122}

	tests := []struct {
		name   string
		held   int
		tokens []engine.NearbyToken
		want   Action
	}{
		{
			name: "empty cell explores",
			want: Action{Direction: engine.North},
		},
		{
			name: "empty hand picks the lowest pair",
			tokens: []engine.NearbyToken{
				nearby("a", 4, here, true),
				nearby("b", 2, here, true),
				nearby("c", 4, here, true),
				nearby("d", 2, here, true),
			},
			want: Action{Token: "b"},
		},
		{
			name: "holding merges with the closest match",
			held: 2,
			tokens: []engine.NearbyToken{
				nearby("a", 1, here, true),
				nearby("b", 2, here, true),
			},
			want: Action{Token: "b"},
		},
		{
			name: "walks toward a match out of reach",
			held: 2,
			tokens: []engine.NearbyToken{
				nearby("a", 2, north, false),
			},
			want: Action{Direction: engine.North},
		},
		{
			name: "swaps into a plant that has a partner",
			held: 32,
			tokens: []engine.NearbyToken{
				nearby("a", 8, here, true),
				nearby("b", 1, here, true),
				nearby("c", 1, here, true),
			},
			want: Action{Token: "b"},
		},
		{
			name: "carries its plant on when nothing pairs",
			held: 32,
			tokens: []engine.NearbyToken{
				nearby("a", 8, here, true),
			},
			want: Action{Direction: engine.North},
		},
		{
			name: "picks up the best plant when nothing pairs",
			tokens: []engine.NearbyToken{
				nearby("a", 8, here, true),
				nearby("b", 32, here, true),
			},
			want: Action{Token: "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewGreedyStrategy().Next(here, tt.held, tt.tokens)
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestStepToward(t *testing.T) {
	from := engine.LatLng{Lat: 37, Lng: -122}

	tests := []struct {
		to   engine.LatLng
		want engine.Direction
	}{
		{engine.LatLng{Lat: 37.001, Lng: -122}, engine.North},
		{engine.LatLng{Lat: 36.999, Lng: -122}, engine.South},
		{engine.LatLng{Lat: 37, Lng: -121.999}, engine.East},
		{engine.LatLng{Lat: 37, Lng: -122.001}, engine.West},
		// 0.001° of longitude is shorter than 0.0009° of latitude at 37°N
		{engine.LatLng{Lat: 37.0009, Lng: -121.999}, engine.North},
	}

	for _, tt := range tests {
		if got := stepToward(from, tt.to); got != tt.want {
			t.Errorf("stepToward(%v) = %s, want %s", tt.to, got, tt.want)
		}
	}
}
