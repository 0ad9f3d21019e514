package draft

import "github.com/tOgg1/weaver/internal/models"

// InsertRow inserts an Unset row before row i. i is clamped to [0, Wefts].
func (d *Draft) InsertRow(i, shuttle, system int) {
	i = clamp(i, 0, d.Wefts)
	d.Pattern = insertAt(d.Pattern, i, make([]models.Cell, d.Warps))
	d.RowShuttleMapping = insertAt(d.RowShuttleMapping, i, validIndex(shuttle, len(d.Shuttles)))
	d.RowSystemMapping = insertAt(d.RowSystemMapping, i, validIndex(system, len(d.WeftSystems)))
	d.Wefts++
	d.UpdateVisible()
	d.invalidate()
}

// CloneRow inserts a copy of row src before row i.
func (d *Draft) CloneRow(i, src, shuttle, system int) {
	if src < 0 || src >= d.Wefts {
		return
	}
	row := d.Row(src)
	i = clamp(i, 0, d.Wefts)
	d.Pattern = insertAt(d.Pattern, i, row)
	d.RowShuttleMapping = insertAt(d.RowShuttleMapping, i, validIndex(shuttle, len(d.Shuttles)))
	d.RowSystemMapping = insertAt(d.RowSystemMapping, i, validIndex(system, len(d.WeftSystems)))
	d.Wefts++
	d.UpdateVisible()
	d.invalidate()
}

// DeleteRow removes row i.
func (d *Draft) DeleteRow(i int) {
	if i < 0 || i >= d.Wefts {
		return
	}
	d.Pattern = removeAt(d.Pattern, i)
	d.RowShuttleMapping = removeAt(d.RowShuttleMapping, i)
	d.RowSystemMapping = removeAt(d.RowSystemMapping, i)
	d.Wefts--
	d.UpdateVisible()
	d.invalidate()
}

// InsertCol inserts an Unset column before column i. i is clamped to
// [0, Warps].
func (d *Draft) InsertCol(i, shuttle, system int) {
	i = clamp(i, 0, d.Warps)
	for r := range d.Pattern {
		d.Pattern[r] = insertAt(d.Pattern[r], i, models.Unset)
	}
	d.ColShuttleMapping = insertAt(d.ColShuttleMapping, i, validIndex(shuttle, len(d.Shuttles)))
	d.ColSystemMapping = insertAt(d.ColSystemMapping, i, validIndex(system, len(d.WarpSystems)))
	d.Warps++
	d.invalidate()
}

// CloneCol inserts a copy of column src before column i.
func (d *Draft) CloneCol(i, src, shuttle, system int) {
	if src < 0 || src >= d.Warps {
		return
	}
	col := d.Col(src)
	i = clamp(i, 0, d.Warps)
	for r := range d.Pattern {
		d.Pattern[r] = insertAt(d.Pattern[r], i, col[r])
	}
	d.ColShuttleMapping = insertAt(d.ColShuttleMapping, i, validIndex(shuttle, len(d.Shuttles)))
	d.ColSystemMapping = insertAt(d.ColSystemMapping, i, validIndex(system, len(d.WarpSystems)))
	d.Warps++
	d.invalidate()
}

// DeleteCol removes column i.
func (d *Draft) DeleteCol(i int) {
	if i < 0 || i >= d.Warps {
		return
	}
	for r := range d.Pattern {
		d.Pattern[r] = removeAt(d.Pattern[r], i)
	}
	d.ColShuttleMapping = removeAt(d.ColShuttleMapping, i)
	d.ColSystemMapping = removeAt(d.ColSystemMapping, i)
	d.Warps--
	d.invalidate()
}

func insertAt[T any](s []T, i int, v T) []T {
	s = append(s, v)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func removeAt[T any](s []T, i int) []T {
	return append(s[:i], s[i+1:]...)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func validIndex(v, limit int) int {
	if v < 0 || v >= limit {
		return -1
	}
	return v
}
