package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultGameConfigIsValid(t *testing.T) {
	if err := ValidateGameConfig(DefaultGameConfig()); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestValidateGameConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *GameConfig)
		wantErr string
	}{
		{"missing name", func(c *GameConfig) { c.Name = "" }, "name is required"},
		{"missing description", func(c *GameConfig) { c.Description = "" }, "description is required"},
		{"latitude out of range", func(c *GameConfig) { c.Origin.Lat = 91 }, "origin.lat"},
		{"longitude out of range", func(c *GameConfig) { c.Origin.Lng = -181 }, "origin.lng"},
		{"zero cell size", func(c *GameConfig) { c.CellSize = 0 }, "cell_size"},
		{"spawn radius too wide", func(c *GameConfig) { c.SpawnRadius = c.CellSize }, "half of cell_size"},
		{"too few tokens", func(c *GameConfig) { c.TokenCount = 1 }, "token_count"},
		{"too many tokens", func(c *GameConfig) { c.TokenCount = MaxTokenCount + 1 }, "token_count"},
		{"zero step", func(c *GameConfig) { c.StepDegrees = 0 }, "step_degrees"},
		{"zero interact distance", func(c *GameConfig) { c.InteractDistance = 0 }, "interact_distance"},
		{"win value not power of two", func(c *GameConfig) { c.WinValue = 100 }, "win_value"},
		{"win value without plant", func(c *GameConfig) { c.WinValue = 1024 }, "no plant stage"},
		{"missing victory", func(c *GameConfig) { c.Messages.Victory = "" }, "messages.victory"},
		{"too far without verbs", func(c *GameConfig) { c.Messages.TooFar = "Too far" }, "messages.too_far"},
		{"merged without verbs", func(c *GameConfig) { c.Messages.Merged = "Merged!" }, "messages.merged"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultGameConfig()
			tt.mutate(config)
			err := ValidateGameConfig(config)
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	if err := ValidateGameConfig(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestParseGameConfig_AppliesDefaultMessages(t *testing.T) {
	data := []byte(`{
		"name": "park",
		"description": "A small park",
		"origin": {"lat": 37.0, "lng": -122.0},
		"cell_size": 0.004,
		"spawn_radius": 0.002,
		"token_count": 10,
		"interact_distance": 25,
		"win_value": 64,
		"step_degrees": 0.0001
	}`)

	config, err := ParseGameConfig(data)
	if err != nil {
		t.Fatalf("ParseGameConfig failed: %v", err)
	}
	if config.Messages.TooFar != DefaultMessages().TooFar {
		t.Errorf("Expected default too_far message, got %q", config.Messages.TooFar)
	}
	if config.Zoom != DefaultZoom {
		t.Errorf("Expected default zoom %d, got %d", DefaultZoom, config.Zoom)
	}
	if config.WinValue != 64 {
		t.Errorf("Expected win value 64, got %d", config.WinValue)
	}
}

func TestParseGameConfig_DefaultsStepDegrees(t *testing.T) {
	data := []byte(`{
		"name": "park",
		"description": "A small park",
		"origin": {"lat": 37.0, "lng": -122.0},
		"cell_size": 0.004,
		"spawn_radius": 0.002,
		"token_count": 10,
		"interact_distance": 25,
		"win_value": 64
	}`)

	config, err := ParseGameConfig(data)
	if err != nil {
		t.Fatalf("ParseGameConfig failed: %v", err)
	}
	if config.StepDegrees != DefaultStepDegrees {
		t.Errorf("Expected default step %v, got %v", DefaultStepDegrees, config.StepDegrees)
	}
}

func TestParseGameConfig_Invalid(t *testing.T) {
	if _, err := ParseGameConfig([]byte(`{not json`)); err == nil {
		t.Error("Expected error for malformed JSON")
	}
	if _, err := ParseGameConfig([]byte(`{"name": "x"}`)); err == nil {
		t.Error("Expected validation error for incomplete config")
	}
}

func TestLoadGameConfig_ConfigDir(t *testing.T) {
	dir := t.TempDir()
	data := `{"name":"tmp","description":"d","origin":{"lat":1,"lng":2},"cell_size":0.004,"spawn_radius":0.001,"token_count":5,"interact_distance":30,"win_value":256,"step_degrees":0.0001}`
	if err := os.WriteFile(filepath.Join(dir, "tmp.json"), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_DIR", dir)

	config, err := LoadGameConfig("configs/tmp.json")
	if err != nil {
		t.Fatalf("LoadGameConfig failed: %v", err)
	}
	if config.Name != "tmp" || config.TokenCount != 5 {
		t.Errorf("Unexpected config %+v", config)
	}

	if _, err := LoadGameConfig("configs/missing.json"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestInitGameStateFromConfig(t *testing.T) {
	state := InitGameStateFromConfig(nil)
	if state.ConfigName != "classroom" {
		t.Errorf("Expected classroom config, got %s", state.ConfigName)
	}
	if state.Cell != CellOf(ClassroomOrigin, DefaultCellSize) {
		t.Errorf("Unexpected starting cell %v", state.Cell)
	}
	if len(state.Tokens) != DefaultTokenCount {
		t.Errorf("Expected %d tokens, got %d", DefaultTokenCount, len(state.Tokens))
	}
	if state.TokenOverrides == nil {
		t.Error("Expected an empty override store")
	}
}
