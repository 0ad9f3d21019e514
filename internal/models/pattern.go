package models

import (
	"errors"
	"fmt"
)

// Pattern errors.
var (
	ErrEmptyPattern     = errors.New("pattern has no cells")
	ErrPatternDimension = errors.New("pattern dimensions do not match its cells")
)

// Pattern is a named, reusable rectangular tile of cells.
type Pattern struct {
	// ID is the pattern identifier inside a document.
	ID int `json:"id"`

	// Name is the human-friendly name.
	Name string `json:"name"`

	// Width is the number of columns.
	Width int `json:"width"`

	// Height is the number of rows.
	Height int `json:"height"`

	// Cells holds Height rows of Width cells.
	Cells [][]Cell `json:"pattern"`

	// Favorite pins the pattern in pattern pickers.
	Favorite bool `json:"favorite,omitempty"`
}

// NewPattern builds a pattern from a grid. Ragged rows are padded with Unset
// to the widest row.
func NewPattern(name string, cells [][]Cell) *Pattern {
	width := 0
	for _, row := range cells {
		if len(row) > width {
			width = len(row)
		}
	}
	grid := Grid(len(cells), width, Unset)
	for i, row := range cells {
		copy(grid[i], row)
	}
	return &Pattern{
		Name:   name,
		Width:  width,
		Height: len(cells),
		Cells:  grid,
	}
}

// At returns the cell at (i, j) with the pattern tiled in both directions.
func (p *Pattern) At(i, j int) Cell {
	if p == nil || p.Height == 0 || p.Width == 0 {
		return Unset
	}
	return p.Cells[mod(i, p.Height)][mod(j, p.Width)]
}

// Validate checks that Width and Height describe Cells.
func (p *Pattern) Validate() error {
	validation := &ValidationErrors{}
	if len(p.Cells) == 0 {
		validation.Add("pattern", ErrEmptyPattern)
		return validation.Err()
	}
	if p.Height != len(p.Cells) {
		validation.Add("height", fmt.Errorf("%w: height %d, rows %d", ErrPatternDimension, p.Height, len(p.Cells)))
	}
	for i, row := range p.Cells {
		if len(row) != p.Width {
			validation.Add(fmt.Sprintf("pattern[%d]", i), fmt.Errorf("%w: width %d, row has %d", ErrPatternDimension, p.Width, len(row)))
		}
	}
	return validation.Err()
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
