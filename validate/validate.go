// Command validate provides a small CLI that validates game configuration JSON
// files in the ../configs directory (or the directory given as argument). It checks:
//   - JSON structure, unknown keys and required fields
//   - The engine's own rules (geometry ranges, win value, message verbs)
//   - Reachability: a button step never leaves a token out of reach
//   - Playability: the starting cell spawns enough plants for a first merge
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/plantmerge/game/engine"
)

// requiredKeys must be present in the file; everything else has a default
var requiredKeys = []string{
	"name",
	"description",
	"origin",
	"cell_size",
	"spawn_radius",
	"token_count",
	"interact_distance",
	"win_value",
}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}
	for _, key := range requiredKeys {
		if _, ok := raw[key]; !ok {
			result.fail("Missing required field: %s", key)
		}
	}

	var config engine.GameConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		result.fail("Invalid config: %v", err)
		return result
	}
	if !result.Valid {
		return result
	}

	defaulted := defaultedFields(raw, &config)
	config.ApplyDefaults()

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.fail("%v", err)
		return result
	}

	reach := validateReachability(&config)
	result.Errors = append(result.Errors, reach.Errors...)
	if !reach.Valid {
		result.Valid = false
		return result
	}

	play := validatePlayability(&config)
	result.Errors = append(result.Errors, play.Errors...)
	if !play.Valid {
		result.Valid = false
		return result
	}

	// Add informational data
	result.info("Name: %s", config.Name)
	result.info("Origin: %.6f, %.6f (zoom %d)", config.Origin.Lat, config.Origin.Lng, config.Zoom)
	result.info("Cell: %v° with %d plants, spawn radius %v°", config.CellSize, config.TokenCount, config.SpawnRadius)
	result.info("Win: %s (%d)", engine.EmojiFor(config.WinValue), config.WinValue)
	if len(defaulted) > 0 {
		result.info("Defaulted: %s", strings.Join(defaulted, ", "))
	}

	return result
}

// defaultedFields lists optional fields that the file leaves to defaults
func defaultedFields(raw map[string]json.RawMessage, config *engine.GameConfig) []string {
	var fields []string
	for _, key := range []string{"zoom", "step_degrees"} {
		if _, ok := raw[key]; !ok {
			fields = append(fields, key)
		}
	}
	messages := map[string]string{
		"welcome":        config.Messages.Welcome,
		"too_far":        config.Messages.TooFar,
		"picked_up":      config.Messages.PickedUp,
		"merged":         config.Messages.Merged,
		"swapped":        config.Messages.Swapped,
		"victory":        config.Messages.Victory,
		"wrong_mode":     config.Messages.WrongMode,
		"no_geolocation": config.Messages.NoGeo,
	}
	for _, key := range []string{"welcome", "too_far", "picked_up", "merged", "swapped", "victory", "wrong_mode", "no_geolocation"} {
		if messages[key] == "" {
			fields = append(fields, "messages."+key)
		}
	}
	return fields
}

// stepMeters returns the length in meters of one north and one east step at the origin
func stepMeters(config *engine.GameConfig) (north, east float64) {
	o := config.Origin
	north = engine.Distance(o, engine.LatLng{Lat: o.Lat + config.StepDegrees, Lng: o.Lng})
	east = engine.Distance(o, engine.LatLng{Lat: o.Lat, Lng: o.Lng + config.StepDegrees})
	return north, east
}

// validateReachability ensures every point of the map is within interact
// distance of some position a button player can stand on. Button positions
// form a lattice of step_degrees, so the farthest point sits in the middle
// of a lattice square.
func validateReachability(config *engine.GameConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	north, east := stepMeters(config)
	worst := math.Hypot(north, east) / 2

	if worst > config.InteractDistance {
		result.fail("Reachability failure: a step of %.1fm x %.1fm leaves points %.1fm away, beyond the %.0fm reach",
			north, east, worst, config.InteractDistance)
		return result
	}

	result.info("Reachability: steps of %.1fm x %.1fm, every plant within %.0fm reach", north, east, config.InteractDistance)
	return result
}

// validatePlayability spawns the starting cell and checks the player can make
// a first merge there.
func validatePlayability(config *engine.GameConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	state := engine.InitGameStateFromConfig(config)
	if len(state.Tokens) < 2 {
		result.fail("Playability failure: starting cell spawns %d plants, need at least 2 to merge", len(state.Tokens))
		return result
	}

	farthest := 0.0
	for _, t := range state.Tokens {
		farthest = math.Max(farthest, engine.Distance(config.Origin, t.Pos))
	}

	cells := int(math.Ceil(float64(config.WinValue) / float64(len(state.Tokens))))
	result.info("Playability: %d plants in the starting cell, farthest %.0fm from origin", len(state.Tokens), farthest)
	result.info("Winning needs the plants of at least %d cell(s)", cells)
	return result
}

// main scans the config directory for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
