package draft

import (
	"fmt"

	"github.com/tOgg1/weaver/internal/models"
)

// FillMode selects how a source tile combines with the target cells.
type FillMode string

const (
	// FillOriginal overwrites the target with the source, Unset included.
	FillOriginal FillMode = "original"
	// FillMask writes the source only where the target is Up.
	FillMask FillMode = "mask"
	// FillInvert flips every target cell.
	FillInvert FillMode = "invert"
	// FillMirrorX reverses row order.
	FillMirrorX FillMode = "mirrorX"
	// FillMirrorY reverses column order.
	FillMirrorY FillMode = "mirrorY"
	// FillShiftLeft moves content one column left, wrapping around.
	FillShiftLeft FillMode = "shiftLeft"
	// FillShiftUp moves content one row up, wrapping around.
	FillShiftUp FillMode = "shiftUp"
	// FillClear writes source[0][0] everywhere.
	FillClear FillMode = "clear"
)

// ParseFillMode validates a mode name.
func ParseFillMode(name string) (FillMode, error) {
	switch mode := FillMode(name); mode {
	case FillOriginal, FillMask, FillInvert, FillMirrorX, FillMirrorY, FillShiftLeft, FillShiftUp, FillClear:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown fill mode %q", name)
	}
}

// Recomputer re-derives a loom program after the drawdown changed. It is
// satisfied by *loom.Loom.
type Recomputer interface {
	RecomputeLoom(d *Draft) bool
}

// Fill composes source over the whole grid. Modes that read the draft itself
// (invert, mirror, shift) are normally called with d.Pattern as source.
func (d *Draft) Fill(source [][]models.Cell, mode FillMode) {
	rows := make([]int, d.Wefts)
	for i := range rows {
		rows[i] = i
	}
	d.fillRows(rows, 0, d.Warps, source, mode)
}

// Clear sets every cell to c.
func (d *Draft) Clear(c models.Cell) {
	d.Fill([][]models.Cell{{c}}, FillClear)
}

// FillArea composes source over the region described by bounds. bounds.Y
// and bounds.Height are screen rows: when visibleRows is non-nil each screen
// row is mapped through it and rows outside the projection are skipped. The
// region is clipped to the grid. When rc is non-nil it is asked to recompute
// its program once the fill is done.
func (d *Draft) FillArea(bounds models.Bounds, source [][]models.Cell, mode FillMode, visibleRows []int, rc Recomputer) {
	rows := make([]int, 0, bounds.Height)
	for r := 0; r < bounds.Height; r++ {
		screen := bounds.Y + r
		abs := screen
		if visibleRows != nil {
			if screen < 0 || screen >= len(visibleRows) {
				rows = append(rows, -1)
				continue
			}
			abs = visibleRows[screen]
		}
		rows = append(rows, abs)
	}

	d.fillRows(rows, bounds.X, bounds.Width, source, mode)

	if rc != nil {
		rc.RecomputeLoom(d)
	}
}

// fillRows is the shared engine. rows[r] is the absolute row written for
// region row r (-1 skips it); columns run from x to x+width. Source lookups
// are relative to the region origin and tile in both directions.
func (d *Draft) fillRows(rows []int, x, width int, source [][]models.Cell, mode FillMode) {
	src := models.NewPattern("", source)
	if src.Height == 0 || src.Width == 0 {
		return
	}
	h, w := src.Height, src.Width

	for r, i := range rows {
		if i < 0 || i >= d.Wefts {
			continue
		}
		for c := 0; c < width; c++ {
			j := x + c
			if j < 0 || j >= d.Warps {
				continue
			}
			target := d.Pattern[i][j]
			switch mode {
			case FillOriginal:
				d.Pattern[i][j] = src.At(r, c)
			case FillMask:
				if target == models.Up {
					if v := src.At(r, c); v.IsSet() {
						d.Pattern[i][j] = v
					}
				}
			case FillInvert:
				d.Pattern[i][j] = target.Invert()
			case FillMirrorX:
				d.Pattern[i][j] = src.At(h-1-mod(r, h), c)
			case FillMirrorY:
				d.Pattern[i][j] = src.At(r, w-1-mod(c, w))
			case FillShiftLeft:
				d.Pattern[i][j] = src.At(r, c+1)
			case FillShiftUp:
				d.Pattern[i][j] = src.At(r+1, c)
			case FillClear:
				d.Pattern[i][j] = src.Cells[0][0]
			}
		}
	}
	d.invalidate()
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
