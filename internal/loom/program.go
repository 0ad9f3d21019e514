package loom

// OverloadType sets the loom type.
func (l *Loom) OverloadType(t Type) {
	l.Type = t
}

// OverloadEPI sets ends per unit. Non-positive values are ignored.
func (l *Loom) OverloadEPI(epi int) {
	if epi > 0 {
		l.EPI = epi
	}
}

// OverloadUnits sets the EPI unit ("in" or "cm"). Other values are ignored.
func (l *Loom) OverloadUnits(units string) {
	if units == UnitsInches || units == UnitsCentimeters {
		l.Units = units
	}
}

// OverloadThreading replaces the threading. It is resized to the bound
// draft's warps, padding with unassigned ends, and frame capacity grows to
// cover every frame used.
func (l *Loom) OverloadThreading(threading []int) {
	n := len(threading)
	if l.draft != nil {
		n = l.draft.Warps
	}
	l.Threading = normalize(threading, n)
	if used := l.FramesInUse(); used > l.MinFrames {
		l.resize(used, l.MinTreadles)
	}
}

// OverloadTreadling replaces the treadling, resized to the bound draft's
// wefts, growing treadle capacity as needed.
func (l *Loom) OverloadTreadling(treadling []int) {
	n := len(treadling)
	if l.draft != nil {
		n = l.draft.Wefts
	}
	l.Treadling = normalize(treadling, n)
	if used := l.TreadlesInUse(); used > l.MinTreadles {
		l.resize(l.MinFrames, used)
	}
}

// OverloadTieup replaces the tieup. Capacity grows to the tieup's extent and
// the matrix is then padded to capacity.
func (l *Loom) OverloadTieup(tieup [][]bool) {
	frames, treadles := l.MinFrames, l.MinTreadles
	if len(tieup) > frames {
		frames = len(tieup)
	}
	for _, row := range tieup {
		if len(row) > treadles {
			treadles = len(row)
		}
	}
	l.MinFrames, l.MinTreadles = frames, treadles
	l.Tieup = newTieup(frames, treadles)
	for f, row := range tieup {
		copy(l.Tieup[f], row)
	}
}

// SetMinFrames changes frame capacity. It never drops below the frames in
// use, and returns the capacity actually set.
func (l *Loom) SetMinFrames(n int) int {
	n = max(n, l.FramesInUse(), 1)
	l.resize(n, l.MinTreadles)
	return n
}

// SetMinTreadles changes treadle capacity. It never drops below the
// treadles in use, and returns the capacity actually set.
func (l *Loom) SetMinTreadles(n int) int {
	n = max(n, l.TreadlesInUse(), 1)
	l.resize(l.MinFrames, n)
	return n
}

// resize changes capacity, keeping the tieup entries that still fit.
func (l *Loom) resize(frames, treadles int) {
	next := newTieup(frames, treadles)
	for f := 0; f < frames && f < len(l.Tieup); f++ {
		copy(next[f], l.Tieup[f])
	}
	l.MinFrames, l.MinTreadles = frames, treadles
	l.Tieup = next
}

// InsertRow inserts an unassigned pass before row i, mirroring
// draft.InsertRow.
func (l *Loom) InsertRow(i int) {
	l.Treadling = insertAt(l.Treadling, clamp(i, 0, len(l.Treadling)), -1)
}

// CloneRow inserts a copy of pass src before row i, mirroring draft.CloneRow.
func (l *Loom) CloneRow(i, src int) {
	if src < 0 || src >= len(l.Treadling) {
		return
	}
	v := l.Treadling[src]
	l.Treadling = insertAt(l.Treadling, clamp(i, 0, len(l.Treadling)), v)
}

// DeleteRow removes pass i.
func (l *Loom) DeleteRow(i int) {
	if i < 0 || i >= len(l.Treadling) {
		return
	}
	l.Treadling = append(l.Treadling[:i], l.Treadling[i+1:]...)
}

// InsertCol inserts an unassigned end before column i.
func (l *Loom) InsertCol(i int) {
	l.Threading = insertAt(l.Threading, clamp(i, 0, len(l.Threading)), -1)
}

// CloneCol inserts a copy of end src before column i.
func (l *Loom) CloneCol(i, src int) {
	if src < 0 || src >= len(l.Threading) {
		return
	}
	v := l.Threading[src]
	l.Threading = insertAt(l.Threading, clamp(i, 0, len(l.Threading)), v)
}

// DeleteCol removes end i.
func (l *Loom) DeleteCol(i int) {
	if i < 0 || i >= len(l.Threading) {
		return
	}
	l.Threading = append(l.Threading[:i], l.Threading[i+1:]...)
}

func normalize(s []int, n int) []int {
	out := unassigned(n)
	for i := 0; i < n && i < len(s); i++ {
		if s[i] >= 0 {
			out[i] = s[i]
		}
	}
	return out
}

func insertAt(s []int, i, v int) []int {
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
