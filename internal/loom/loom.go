// Package loom models the mechanical program that realizes a draft: the
// threading of warp ends onto frames, the treadling of weft passes and the
// tieup between them.
//
// A Loom holds a back-reference to the Draft it realizes. The Draft owns the
// grid; the Loom is rebuilt when an incompatible draft is loaded. Neither is
// safe for concurrent mutation, and callers must pair every Draft edit with
// the matching Loom edit followed by RecomputeLoom or RecalculateDraft.
package loom

import (
	"fmt"
	"strings"

	"github.com/tOgg1/weaver/internal/draft"
	"github.com/tOgg1/weaver/internal/logging"
	"github.com/tOgg1/weaver/internal/models"
)

// Type is the kind of loom.
type Type string

const (
	// TypeFrame is a shaft loom driven by threading, treadling and tieup.
	TypeFrame Type = "frame"
	// TypeJacquard lifts every end individually; the drawdown is authoritative.
	TypeJacquard Type = "jacquard"
)

// ParseType validates a loom type name.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeFrame, TypeJacquard:
		return t, nil
	default:
		return "", fmt.Errorf("unknown loom type %q", s)
	}
}

// Units for EPI.
const (
	UnitsInches      = "in"
	UnitsCentimeters = "cm"
)

// Defaults used when a loom is created without explicit values.
const (
	DefaultEPI   = 10
	DefaultUnits = UnitsInches
)

// Loom is the threading/treadling/tieup program for one draft.
type Loom struct {
	Type        Type     `json:"type"`
	MinFrames   int      `json:"min_frames"`
	MinTreadles int      `json:"min_treadles"`
	Threading   []int    `json:"threading"`
	Treadling   []int    `json:"treadling"`
	Tieup       [][]bool `json:"tieup"`
	EPI         int      `json:"epi"`
	Units       string   `json:"units"`

	draft *draft.Draft
}

// New creates a frame loom bound to d with every end and pass unassigned.
// d may be nil, in which case the program is empty until OverloadDraft.
func New(d *draft.Draft, frames, treadles int) *Loom {
	if frames < 1 {
		frames = 1
	}
	if treadles < 1 {
		treadles = 1
	}
	l := &Loom{
		Type:        TypeFrame,
		MinFrames:   frames,
		MinTreadles: treadles,
		EPI:         DefaultEPI,
		Units:       DefaultUnits,
		draft:       d,
	}
	warps, wefts := 0, 0
	if d != nil {
		warps, wefts = d.Warps, d.Wefts
	}
	l.ClearAllData(warps, wefts)
	return l
}

// Draft returns the bound draft, or nil.
func (l *Loom) Draft() *draft.Draft {
	return l.draft
}

// OverloadDraft rebinds the loom to d. It reports false, leaving the binding
// unchanged, when the threading or treadling length does not match d.
func (l *Loom) OverloadDraft(d *draft.Draft) bool {
	if d == nil || len(l.Threading) != d.Warps || len(l.Treadling) != d.Wefts {
		log := logging.Component("loom")
		ev := log.Warn().Int("threading", len(l.Threading)).Int("treadling", len(l.Treadling))
		if d != nil {
			ev = ev.Int("warps", d.Warps).Int("wefts", d.Wefts)
		}
		ev.Msg("loom does not fit draft")
		return false
	}
	l.draft = d
	return true
}

// ClearAllData resets the program to warps unassigned ends, wefts unassigned
// passes and an empty tieup at the current capacity.
func (l *Loom) ClearAllData(warps, wefts int) {
	l.Threading = unassigned(warps)
	l.Treadling = unassigned(wefts)
	l.Tieup = newTieup(l.MinFrames, l.MinTreadles)
}

// CopyFrom replaces the program with a copy of other. The draft binding is
// not copied.
func (l *Loom) CopyFrom(other *Loom) {
	l.Type = other.Type
	l.MinFrames = other.MinFrames
	l.MinTreadles = other.MinTreadles
	l.Threading = append([]int(nil), other.Threading...)
	l.Treadling = append([]int(nil), other.Treadling...)
	l.Tieup = make([][]bool, len(other.Tieup))
	for i, row := range other.Tieup {
		l.Tieup[i] = append([]bool(nil), row...)
	}
	l.EPI = other.EPI
	l.Units = other.Units
}

// RecomputeLoom derives threading, treadling and tieup from the drawdown of
// d, binding the loom to d. Columns with identical lift sequences share a
// frame and rows with identical sequences share a treadle; the earliest
// column or row claims the lower index. All-Unset columns and rows stay
// unassigned.
//
// It reports false when more frames or treadles were needed than the
// capacity allowed (capacity is grown to fit), or when the drawdown has
// Gaps the tieup cannot carry.
func (l *Loom) RecomputeLoom(d *draft.Draft) bool {
	l.draft = d

	colRep := make([]int, 0)
	l.Threading = partition(d.Warps, d.Col, &colRep)

	rowRep := make([]int, 0)
	l.Treadling = partition(d.Wefts, d.Row, &rowRep)

	ok := true
	if len(colRep) > l.MinFrames {
		log := logging.Component("loom")
		log.Warn().
			Int("needed", len(colRep)).Int("capacity", l.MinFrames).
			Msg("distinct threading sequences exceed frame capacity")
		l.MinFrames = len(colRep)
		ok = false
	}
	if len(rowRep) > l.MinTreadles {
		log := logging.Component("loom")
		log.Warn().
			Int("needed", len(rowRep)).Int("capacity", l.MinTreadles).
			Msg("distinct treadling sequences exceed treadle capacity")
		l.MinTreadles = len(rowRep)
		ok = false
	}

	l.Tieup = newTieup(l.MinFrames, l.MinTreadles)
	for f, col := range colRep {
		for t, row := range rowRep {
			l.Tieup[f][t] = d.Cell(row, col).IsUp()
		}
	}

	if gaps := l.Gaps(); gaps > 0 {
		log := logging.Component("loom")
		log.Warn().Int("cells", gaps).Msg("unset cells on assigned ends and passes will recalculate as down")
		ok = false
	}
	return ok
}

// Gaps counts Unset cells of the bound drawdown whose end and pass are both
// assigned. The tieup is boolean, so RecalculateDraft turns each of them
// into Down.
func (l *Loom) Gaps() int {
	d := l.draft
	if d == nil || len(l.Threading) != d.Warps || len(l.Treadling) != d.Wefts {
		return 0
	}
	n := 0
	for i, t := range l.Treadling {
		if t < 0 {
			continue
		}
		for j, f := range l.Threading {
			if f >= 0 && !d.Cell(i, j).IsSet() {
				n++
			}
		}
	}
	return n
}

// partition groups n sequences by content. It returns the group index of
// each sequence (-1 for all-Unset ones) and appends each group's first
// member to reps.
func partition(n int, seq func(int) []models.Cell, reps *[]int) []int {
	assign := unassigned(n)
	groups := make(map[string]int)
	var key strings.Builder
	for k := 0; k < n; k++ {
		cells := seq(k)
		key.Reset()
		set := false
		for _, c := range cells {
			key.WriteByte(byte('0' + c))
			set = set || c.IsSet()
		}
		if !set {
			continue
		}
		g, found := groups[key.String()]
		if !found {
			g = len(*reps)
			groups[key.String()] = g
			*reps = append(*reps, k)
		}
		assign[k] = g
	}
	return assign
}

// RecalculateDraft rewrites the bound drawdown from the program. Cells whose
// end or pass is unassigned become Unset. Jacquard looms, unbound looms and
// looms whose lengths disagree with the draft report false and leave the
// drawdown untouched.
func (l *Loom) RecalculateDraft() bool {
	d := l.draft
	if l.Type != TypeFrame || d == nil {
		return false
	}
	if len(l.Threading) != d.Warps || len(l.Treadling) != d.Wefts {
		return false
	}

	grid := models.Grid(d.Wefts, d.Warps, models.Unset)
	for i, t := range l.Treadling {
		for j, f := range l.Threading {
			if f < 0 || t < 0 || f >= len(l.Tieup) || t >= len(l.Tieup[f]) {
				continue
			}
			grid[i][j] = models.CellOf(l.Tieup[f][t])
		}
	}
	d.Fill(grid, draft.FillOriginal)
	return true
}

// IsFrame reports whether the program is meaningful for this loom.
func (l *Loom) IsFrame() bool {
	return l.Type == TypeFrame
}

// FramesInUse returns the highest assigned frame plus one.
func (l *Loom) FramesInUse() int {
	return maxIndex(l.Threading) + 1
}

// TreadlesInUse returns the highest assigned treadle plus one.
func (l *Loom) TreadlesInUse() int {
	return maxIndex(l.Treadling) + 1
}

func unassigned(n int) []int {
	if n < 0 {
		n = 0
	}
	out := make([]int, n)
	for i := range out {
		out[i] = -1
	}
	return out
}

func newTieup(frames, treadles int) [][]bool {
	t := make([][]bool, frames)
	for i := range t {
		t[i] = make([]bool, treadles)
	}
	return t
}

func maxIndex(s []int) int {
	m := -1
	for _, v := range s {
		if v > m {
			m = v
		}
	}
	return m
}
