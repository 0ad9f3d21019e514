// Package models defines the core value types shared by drafts, looms and codecs.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Cell is the tri-state interlacement value of one warp/weft crossing.
// The zero value is Unset.
type Cell uint8

const (
	// Unset marks a crossing with no heddle assignment.
	Unset Cell = iota
	// Down means the heddle is lowered.
	Down
	// Up means the heddle is raised.
	Up
)

// CellOf converts a boolean heddle state to a set Cell.
func CellOf(up bool) Cell {
	if up {
		return Up
	}
	return Down
}

// IsSet reports whether the cell carries a heddle state.
func (c Cell) IsSet() bool {
	return c == Up || c == Down
}

// IsUp reports whether the heddle is raised.
func (c Cell) IsUp() bool {
	return c == Up
}

// Invert swaps Up and Down. Unset stays Unset.
func (c Cell) Invert() Cell {
	switch c {
	case Up:
		return Down
	case Down:
		return Up
	default:
		return Unset
	}
}

func (c Cell) String() string {
	switch c {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unset"
	}
}

// MarshalJSON encodes a cell as true, false or null.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c {
	case Up:
		return []byte("true"), nil
	case Down:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// legacyCell covers the object forms older files used for cells.
type legacyCell struct {
	IsSet  *bool `json:"is_set"`
	IsUp   *bool `json:"is_up"`
	Heddle *bool `json:"heddle"`
}

// UnmarshalJSON accepts true/false/null and the legacy object forms.
func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true":
		*c = Up
		return nil
	case "false":
		*c = Down
		return nil
	case "null", "":
		*c = Unset
		return nil
	}

	var legacy legacyCell
	if err := json.Unmarshal(data, &legacy); err != nil {
		return fmt.Errorf("invalid cell %s: %w", string(data), err)
	}

	switch {
	case legacy.IsSet != nil && !*legacy.IsSet:
		*c = Unset
	case legacy.IsUp != nil:
		*c = CellOf(*legacy.IsUp)
	case legacy.Heddle != nil:
		*c = CellOf(*legacy.Heddle)
	default:
		*c = Unset
	}
	return nil
}

// Grid allocates a rows x cols grid filled with value.
func Grid(rows, cols int, value Cell) [][]Cell {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	grid := make([][]Cell, rows)
	for i := range grid {
		row := make([]Cell, cols)
		if value != Unset {
			for j := range row {
				row[j] = value
			}
		}
		grid[i] = row
	}
	return grid
}

// CopyGrid deep copies a grid of cells.
func CopyGrid(src [][]Cell) [][]Cell {
	out := make([][]Cell, len(src))
	for i, row := range src {
		out[i] = append([]Cell(nil), row...)
	}
	return out
}

// Bounds is a rectangular region of a draft. X is the first column and Y the
// first screen row.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}
