package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CellOf returns the grid cell containing pos for the given cell size in degrees
func CellOf(pos LatLng, cellSize float64) Cell {
	return Cell{
		Row: int(math.Floor(pos.Lat / cellSize)),
		Col: int(math.Floor(pos.Lng / cellSize)),
	}
}

// Center returns the coordinate at the middle of the cell
func (c Cell) Center(cellSize float64) LatLng {
	return LatLng{
		Lat: (float64(c.Row) + 0.5) * cellSize,
		Lng: (float64(c.Col) + 0.5) * cellSize,
	}
}

// SeedKey returns the stable key of token slot n in this cell
func (c Cell) SeedKey(n int) string {
	return fmt.Sprintf("%d:%d#%d", c.Row, c.Col, n)
}

func (c Cell) String() string {
	return fmt.Sprintf("%d:%d", c.Row, c.Col)
}

// ParseSeedKey splits a seed key back into its cell and slot index
func ParseSeedKey(key string) (Cell, int, error) {
	cellPart, slotPart, ok := strings.Cut(key, "#")
	if !ok {
		return Cell{}, 0, fmt.Errorf("seed key %q: missing slot", key)
	}
	rowPart, colPart, ok := strings.Cut(cellPart, ":")
	if !ok {
		return Cell{}, 0, fmt.Errorf("seed key %q: missing column", key)
	}
	row, err := strconv.Atoi(rowPart)
	if err != nil {
		return Cell{}, 0, fmt.Errorf("seed key %q: bad row: %w", key, err)
	}
	col, err := strconv.Atoi(colPart)
	if err != nil {
		return Cell{}, 0, fmt.Errorf("seed key %q: bad column: %w", key, err)
	}
	slot, err := strconv.Atoi(slotPart)
	if err != nil || slot < 0 {
		return Cell{}, 0, fmt.Errorf("seed key %q: bad slot", key)
	}
	return Cell{Row: row, Col: col}, slot, nil
}
