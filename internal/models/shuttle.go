package models

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// MaterialType classifies what a shuttle carries.
type MaterialType int

const (
	MaterialYarn       MaterialType = 0
	MaterialConductive MaterialType = 1
)

// Shuttle is a yarn carrier assigned to rows or columns.
type Shuttle struct {
	ID        int          `json:"id"`
	Name      string       `json:"name"`
	Type      MaterialType `json:"type"`
	Thickness float64      `json:"thickness"`
	Color     string       `json:"color"`
	Visible   bool         `json:"visible"`
	Insert    bool         `json:"insert"`
	Notes     string       `json:"notes"`
}

// DefaultShuttle returns the shuttle every new draft starts with.
func DefaultShuttle() Shuttle {
	return Shuttle{
		ID:        0,
		Name:      "Color 1",
		Type:      MaterialYarn,
		Thickness: 50,
		Color:     "#333333",
		Visible:   true,
	}
}

// RGB returns the shuttle color as 8-bit channels.
func (s Shuttle) RGB() (r, g, b uint8, err error) {
	c, err := colorful.Hex(s.Color)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("shuttle %d color %q: %w", s.ID, s.Color, err)
	}
	r, g, b = c.RGB255()
	return r, g, b, nil
}

// ShuttleColorFromRGB formats 8-bit channels as a #rrggbb shuttle color.
func ShuttleColorFromRGB(r, g, b uint8) string {
	return colorful.Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
	}.Hex()
}

// System groups rows or columns that play the same structural role.
type System struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
	Notes   string `json:"notes"`
}

// NewSystem returns a visible system with a generated name.
func NewSystem(id int) System {
	return System{
		ID:      id,
		Name:    fmt.Sprintf("System %d", id+1),
		Visible: true,
	}
}
