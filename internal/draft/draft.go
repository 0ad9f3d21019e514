// Package draft implements the drawdown: the warp/weft interlacement grid with
// its shuttle and system assignments, the fill engine and the yarn-path cache.
//
// A Draft is mutated in place and is not safe for concurrent mutation. Callers
// that pair a Draft with a loom must re-run the loom's consistency
// recomputation after every edit.
package draft

import (
	"fmt"

	"github.com/tOgg1/weaver/internal/models"
)

// Draft is a wefts x warps grid of cells plus row/column assignments.
type Draft struct {
	// ID identifies the draft inside a document.
	ID int

	// Name is the human-friendly name.
	Name string

	// Wefts is the number of rows.
	Wefts int

	// Warps is the number of columns.
	Warps int

	// Pattern holds Wefts rows of Warps cells.
	Pattern [][]models.Cell

	Shuttles    []models.Shuttle
	WarpSystems []models.System
	WeftSystems []models.System

	RowShuttleMapping []int
	ColShuttleMapping []int
	RowSystemMapping  []int
	ColSystemMapping  []int

	// Notes is free text attached to the draft.
	Notes string

	visibleRows []int
	yarnPaths   []YarnPath
}

// New creates an Unset draft with one shuttle and one system per direction.
func New(wefts, warps int) *Draft {
	if wefts < 0 {
		wefts = 0
	}
	if warps < 0 {
		warps = 0
	}
	d := &Draft{
		Wefts:       wefts,
		Warps:       warps,
		Pattern:     models.Grid(wefts, warps, models.Unset),
		Shuttles:    []models.Shuttle{models.DefaultShuttle()},
		WarpSystems: []models.System{models.NewSystem(0)},
		WeftSystems: []models.System{models.NewSystem(0)},

		RowShuttleMapping: filled(wefts, 0),
		ColShuttleMapping: filled(warps, 0),
		RowSystemMapping:  filled(wefts, 0),
		ColSystemMapping:  filled(warps, 0),
	}
	d.UpdateVisible()
	return d
}

// FromPattern creates a draft whose grid is a copy of cells. Ragged rows are
// padded with Unset.
func FromPattern(cells [][]models.Cell) *Draft {
	p := models.NewPattern("", cells)
	d := New(p.Height, p.Width)
	d.Pattern = p.Cells
	return d
}

// Clone returns a deep copy. The yarn-path cache is not copied.
func (d *Draft) Clone() *Draft {
	out := &Draft{
		ID:          d.ID,
		Name:        d.Name,
		Wefts:       d.Wefts,
		Warps:       d.Warps,
		Pattern:     models.CopyGrid(d.Pattern),
		Shuttles:    append([]models.Shuttle(nil), d.Shuttles...),
		WarpSystems: append([]models.System(nil), d.WarpSystems...),
		WeftSystems: append([]models.System(nil), d.WeftSystems...),

		RowShuttleMapping: append([]int(nil), d.RowShuttleMapping...),
		ColShuttleMapping: append([]int(nil), d.ColShuttleMapping...),
		RowSystemMapping:  append([]int(nil), d.RowSystemMapping...),
		ColSystemMapping:  append([]int(nil), d.ColSystemMapping...),

		Notes:       d.Notes,
		visibleRows: append([]int(nil), d.visibleRows...),
	}
	return out
}

// Reload replaces every attribute of d with a copy of other.
func (d *Draft) Reload(other *Draft) {
	*d = *other.Clone()
	d.UpdateVisible()
}

// HasCell reports whether (i, j) lies inside the grid.
func (d *Draft) HasCell(i, j int) bool {
	return i >= 0 && i < d.Wefts && j >= 0 && j < d.Warps
}

// Cell returns the cell at row i, column j, or Unset outside the grid.
func (d *Draft) Cell(i, j int) models.Cell {
	if !d.HasCell(i, j) {
		return models.Unset
	}
	return d.Pattern[i][j]
}

// SetCell writes a cell. Writes outside the grid are ignored.
func (d *Draft) SetCell(i, j int, c models.Cell) {
	if !d.HasCell(i, j) {
		return
	}
	d.Pattern[i][j] = c
	d.invalidate()
}

// Row returns a copy of row i.
func (d *Draft) Row(i int) []models.Cell {
	if i < 0 || i >= d.Wefts {
		return nil
	}
	return append([]models.Cell(nil), d.Pattern[i]...)
}

// Col returns a copy of column j, top to bottom.
func (d *Draft) Col(j int) []models.Cell {
	if j < 0 || j >= d.Warps {
		return nil
	}
	col := make([]models.Cell, d.Wefts)
	for i := range col {
		col[i] = d.Pattern[i][j]
	}
	return col
}

// Validate checks the size and mapping invariants.
func (d *Draft) Validate() error {
	validation := &models.ValidationErrors{}
	if len(d.Pattern) != d.Wefts {
		validation.AddMessage("pattern", fmt.Sprintf("has %d rows, want %d wefts", len(d.Pattern), d.Wefts))
	}
	for i, row := range d.Pattern {
		if len(row) != d.Warps {
			validation.AddMessage(fmt.Sprintf("pattern[%d]", i), fmt.Sprintf("has %d cells, want %d warps", len(row), d.Warps))
		}
	}
	checkMapping(validation, "rowShuttleMapping", d.RowShuttleMapping, d.Wefts, len(d.Shuttles))
	checkMapping(validation, "colShuttleMapping", d.ColShuttleMapping, d.Warps, len(d.Shuttles))
	checkMapping(validation, "rowSystemMapping", d.RowSystemMapping, d.Wefts, len(d.WeftSystems))
	checkMapping(validation, "colSystemMapping", d.ColSystemMapping, d.Warps, len(d.WarpSystems))
	return validation.Err()
}

func checkMapping(validation *models.ValidationErrors, field string, mapping []int, length, limit int) {
	if len(mapping) != length {
		validation.AddMessage(field, fmt.Sprintf("has %d entries, want %d", len(mapping), length))
	}
	for i, v := range mapping {
		if v < -1 || v >= limit {
			validation.AddMessage(fmt.Sprintf("%s[%d]", field, i), fmt.Sprintf("index %d out of range", v))
		}
	}
}

// OverloadID sets the draft id.
func (d *Draft) OverloadID(id int) { d.ID = id }

// OverloadName sets the draft name.
func (d *Draft) OverloadName(name string) { d.Name = name }

// OverloadNotes sets the draft notes.
func (d *Draft) OverloadNotes(notes string) { d.Notes = notes }

// OverloadShuttles replaces the shuttle list and drops mapping entries that
// no longer resolve.
func (d *Draft) OverloadShuttles(shuttles []models.Shuttle) {
	d.Shuttles = append([]models.Shuttle(nil), shuttles...)
	d.RowShuttleMapping = normalizeMapping(d.RowShuttleMapping, d.Wefts, len(d.Shuttles))
	d.ColShuttleMapping = normalizeMapping(d.ColShuttleMapping, d.Warps, len(d.Shuttles))
	d.invalidate()
}

// OverloadWarpSystems replaces the warp system list.
func (d *Draft) OverloadWarpSystems(systems []models.System) {
	d.WarpSystems = append([]models.System(nil), systems...)
	d.ColSystemMapping = normalizeMapping(d.ColSystemMapping, d.Warps, len(d.WarpSystems))
}

// OverloadWeftSystems replaces the weft system list.
func (d *Draft) OverloadWeftSystems(systems []models.System) {
	d.WeftSystems = append([]models.System(nil), systems...)
	d.RowSystemMapping = normalizeMapping(d.RowSystemMapping, d.Wefts, len(d.WeftSystems))
	d.UpdateVisible()
}

// OverloadRowShuttleMapping sets the per-row shuttle assignment, resized to
// Wefts.
func (d *Draft) OverloadRowShuttleMapping(mapping []int) {
	d.RowShuttleMapping = normalizeMapping(mapping, d.Wefts, len(d.Shuttles))
	d.invalidate()
}

// OverloadColShuttleMapping sets the per-column shuttle assignment, resized
// to Warps.
func (d *Draft) OverloadColShuttleMapping(mapping []int) {
	d.ColShuttleMapping = normalizeMapping(mapping, d.Warps, len(d.Shuttles))
	d.invalidate()
}

// OverloadRowSystemMapping sets the per-row system assignment.
func (d *Draft) OverloadRowSystemMapping(mapping []int) {
	d.RowSystemMapping = normalizeMapping(mapping, d.Wefts, len(d.WeftSystems))
	d.UpdateVisible()
}

// OverloadColSystemMapping sets the per-column system assignment.
func (d *Draft) OverloadColSystemMapping(mapping []int) {
	d.ColSystemMapping = normalizeMapping(mapping, d.Warps, len(d.WarpSystems))
}

// AddShuttle appends a shuttle, assigning it the next id.
func (d *Draft) AddShuttle(s models.Shuttle) int {
	s.ID = len(d.Shuttles)
	d.Shuttles = append(d.Shuttles, s)
	return s.ID
}

// AddWarpSystem appends a warp system, assigning it the next id.
func (d *Draft) AddWarpSystem(s models.System) int {
	s.ID = len(d.WarpSystems)
	d.WarpSystems = append(d.WarpSystems, s)
	return s.ID
}

// AddWeftSystem appends a weft system, assigning it the next id.
func (d *Draft) AddWeftSystem(s models.System) int {
	s.ID = len(d.WeftSystems)
	d.WeftSystems = append(d.WeftSystems, s)
	d.UpdateVisible()
	return s.ID
}

// UpdateWarpShuttlesFromPattern tiles pattern across the columns.
func (d *Draft) UpdateWarpShuttlesFromPattern(pattern []int) {
	d.ColShuttleMapping = normalizeMapping(tile(pattern, d.Warps), d.Warps, len(d.Shuttles))
	d.invalidate()
}

// UpdateWeftShuttlesFromPattern tiles pattern down the rows.
func (d *Draft) UpdateWeftShuttlesFromPattern(pattern []int) {
	d.RowShuttleMapping = normalizeMapping(tile(pattern, d.Wefts), d.Wefts, len(d.Shuttles))
	d.invalidate()
}

// UpdateWarpSystemsFromPattern tiles pattern across the columns.
func (d *Draft) UpdateWarpSystemsFromPattern(pattern []int) {
	d.ColSystemMapping = normalizeMapping(tile(pattern, d.Warps), d.Warps, len(d.WarpSystems))
}

// UpdateWeftSystemsFromPattern tiles pattern down the rows.
func (d *Draft) UpdateWeftSystemsFromPattern(pattern []int) {
	d.RowSystemMapping = normalizeMapping(tile(pattern, d.Wefts), d.Wefts, len(d.WeftSystems))
	d.UpdateVisible()
}

// UpdateVisible recomputes the visible-rows projection from weft system
// visibility. Rows without a system are visible.
func (d *Draft) UpdateVisible() {
	visible := make([]int, 0, d.Wefts)
	for i := 0; i < d.Wefts; i++ {
		sys := -1
		if i < len(d.RowSystemMapping) {
			sys = d.RowSystemMapping[i]
		}
		if sys >= 0 && sys < len(d.WeftSystems) && !d.WeftSystems[sys].Visible {
			continue
		}
		visible = append(visible, i)
	}
	d.visibleRows = visible
}

// VisibleRows returns the absolute row index of each visible screen row.
func (d *Draft) VisibleRows() []int {
	return append([]int(nil), d.visibleRows...)
}

func (d *Draft) invalidate() {
	d.yarnPaths = nil
}

func filled(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// tile repeats pattern to length n.
func tile(pattern []int, n int) []int {
	out := make([]int, n)
	if len(pattern) == 0 {
		return out
	}
	for i := range out {
		out[i] = pattern[i%len(pattern)]
	}
	return out
}

// normalizeMapping resizes mapping to length and replaces indices that do not
// resolve against limit with -1. Missing entries repeat the last value.
func normalizeMapping(mapping []int, length, limit int) []int {
	out := make([]int, length)
	fill := 0
	if limit == 0 {
		fill = -1
	}
	for i := range out {
		v := fill
		switch {
		case i < len(mapping):
			v = mapping[i]
		case len(mapping) > 0:
			v = mapping[len(mapping)-1]
		}
		if v < -1 || v >= limit {
			v = -1
		}
		out[i] = v
	}
	return out
}
