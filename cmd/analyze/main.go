// Command analyze prints quick, human-readable heuristics about the
// configurations in the project's configs directory. It summarizes geometry
// in meters, how many plants the starting cell spawns and how many are in
// reach, the typical walk between plants, and a rough effort estimate to win.
package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/wricardo/mcp-training/plantmerge/game/config"
	"github.com/wricardo/mcp-training/plantmerge/game/engine"
)

// Analysis holds the derived numbers for one configuration
type Analysis struct {
	Name              string
	WinValue          int
	CellMeters        float64
	SpawnRadiusMeters float64
	StepMeters        float64
	Reach             float64
	Tokens            int
	InReach           int
	Nearest           float64
	MeanSpacing       float64
	CellsToWin        int
	StepsToWin        int
}

// Warnings returns the problems a designer should look at
func (a Analysis) Warnings() []string {
	var w []string
	if a.InReach == 0 {
		w = append(w, "no plant is within reach at the start")
	}
	if a.MeanSpacing > a.Reach {
		w = append(w, fmt.Sprintf("plants are sparse (%.0fm apart, %.0fm reach); most merges need walking", a.MeanSpacing, a.Reach))
	}
	if a.StepMeters > a.Reach {
		w = append(w, fmt.Sprintf("one step (%.0fm) is longer than the reach", a.StepMeters))
	}
	return w
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	manager, err := config.NewManager(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configs: %v\n", err)
		os.Exit(1)
	}

	infos, err := manager.ListConfigs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing configs: %v\n", err)
		os.Exit(1)
	}

	for _, info := range infos {
		fmt.Printf("\n=== Analyzing %s ===\n", info.Filename)
		cfg, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			continue
		}
		printAnalysis(os.Stdout, analyzeConfig(cfg))
	}
}

// analyzeConfig spawns the starting cell and derives distances from it
func analyzeConfig(cfg *engine.GameConfig) Analysis {
	origin := cfg.Origin
	a := Analysis{
		Name:              cfg.Name,
		WinValue:          cfg.WinValue,
		CellMeters:        engine.Distance(origin, engine.LatLng{Lat: origin.Lat + cfg.CellSize, Lng: origin.Lng}),
		SpawnRadiusMeters: engine.Distance(origin, engine.LatLng{Lat: origin.Lat + cfg.SpawnRadius, Lng: origin.Lng}),
		StepMeters:        engine.Distance(origin, engine.LatLng{Lat: origin.Lat + cfg.StepDegrees, Lng: origin.Lng}),
		Reach:             cfg.InteractDistance,
	}

	state := engine.InitGameStateFromConfig(cfg)
	a.Tokens = len(state.Tokens)
	if a.Tokens == 0 {
		return a
	}

	nearby := engine.NearbyTokens(state, 0, cfg.InteractDistance)
	a.Nearest = nearby[0].Distance
	for _, t := range nearby {
		if t.InRange {
			a.InReach++
		}
	}

	a.MeanSpacing = meanNearestNeighbor(state.Tokens)
	a.CellsToWin = int(math.Ceil(float64(cfg.WinValue) / float64(a.Tokens)))

	// Every merge from value 1 up needs a walk between two plants
	merges := cfg.WinValue - 1
	if a.StepMeters > 0 {
		a.StepsToWin = int(math.Ceil(float64(merges) * a.MeanSpacing / a.StepMeters))
	}
	return a
}

// meanNearestNeighbor averages, over all tokens, the distance to the closest other token
func meanNearestNeighbor(tokens []engine.Token) float64 {
	if len(tokens) < 2 {
		return 0
	}
	total := 0.0
	for i, t := range tokens {
		best := math.Inf(1)
		for j, u := range tokens {
			if i == j {
				continue
			}
			best = math.Min(best, engine.Distance(t.Pos, u.Pos))
		}
		total += best
	}
	return total / float64(len(tokens))
}

func printAnalysis(w io.Writer, a Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Win: %s (%d)\n", engine.EmojiFor(a.WinValue), a.WinValue)
	fmt.Fprintf(w, "Cell: %.0fm, spawn radius %.0fm, step %.1fm, reach %.0fm\n",
		a.CellMeters, a.SpawnRadiusMeters, a.StepMeters, a.Reach)
	fmt.Fprintf(w, "Starting cell: %d plants, %d in reach, nearest %.0fm\n", a.Tokens, a.InReach, a.Nearest)
	fmt.Fprintf(w, "Mean spacing between plants: %.1fm\n", a.MeanSpacing)
	fmt.Fprintf(w, "Effort to win: %d cell(s), about %d steps\n", a.CellsToWin, a.StepsToWin)

	warnings := a.Warnings()
	if len(warnings) == 0 {
		fmt.Fprintf(w, "✅ No playability warnings\n")
		return
	}
	for _, warning := range warnings {
		fmt.Fprintf(w, "⚠️  WARNING: %s\n", warning)
	}
}
