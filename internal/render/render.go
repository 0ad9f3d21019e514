// Package render draws drafts and loom programs as terminal text.
package render

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tOgg1/weaver/internal/draft"
	"github.com/tOgg1/weaver/internal/loom"
	"github.com/tOgg1/weaver/internal/models"
)

// Glyphs used for each cell state.
const (
	GlyphUp    = "█"
	GlyphDown  = "·"
	GlyphUnset = " "
)

// Options controls drawdown output.
type Options struct {
	// Color styles each cell with the shuttle of the thread on top: the
	// weft's for Up cells, the warp's for Down cells.
	Color bool

	// MaxRows and MaxCols truncate large drafts. Zero means no limit.
	MaxRows int
	MaxCols int
}

var mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

// Render writes the visible rows of d's drawdown, one line per weft.
func Render(w io.Writer, d *draft.Draft, opts Options) error {
	rows := d.VisibleRows()
	shownRows := limit(len(rows), opts.MaxRows)
	shownCols := limit(d.Warps, opts.MaxCols)
	styles := newShuttleStyles(d.Shuttles)

	out := bufio.NewWriter(w)
	var line strings.Builder
	for _, i := range rows[:shownRows] {
		line.Reset()
		for j := 0; j < shownCols; j++ {
			line.WriteString(cellGlyph(d, i, j, opts.Color, styles))
		}
		line.WriteByte('\n')
		if _, err := out.WriteString(line.String()); err != nil {
			return err
		}
	}

	if shownRows < len(rows) || shownCols < d.Warps {
		note := fmt.Sprintf("(showing %d of %d wefts, %d of %d warps)", shownRows, len(rows), shownCols, d.Warps)
		if opts.Color {
			note = mutedStyle.Render(note)
		}
		if _, err := fmt.Fprintln(out, note); err != nil {
			return err
		}
	}
	return out.Flush()
}

func cellGlyph(d *draft.Draft, i, j int, color bool, styles shuttleStyles) string {
	switch d.Pattern[i][j] {
	case models.Up:
		if color {
			return styles.render(mappingAt(d.RowShuttleMapping, i), GlyphUp)
		}
		return GlyphUp
	case models.Down:
		if color {
			return styles.render(mappingAt(d.ColShuttleMapping, j), GlyphDown)
		}
		return GlyphDown
	default:
		return GlyphUnset
	}
}

// shuttleStyles caches one style per shuttle; shuttles with invalid colors
// render unstyled.
type shuttleStyles []*lipgloss.Style

func newShuttleStyles(shuttles []models.Shuttle) shuttleStyles {
	styles := make(shuttleStyles, len(shuttles))
	for k, s := range shuttles {
		if _, _, _, err := s.RGB(); err != nil {
			continue
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color))
		styles[k] = &style
	}
	return styles
}

func (s shuttleStyles) render(shuttle int, glyph string) string {
	if shuttle < 0 || shuttle >= len(s) || s[shuttle] == nil {
		return glyph
	}
	return s[shuttle].Render(glyph)
}

// RenderLoom writes a summary of l: its type and capacity, then for frame
// looms the threading, treadling and tieup. Frame and treadle numbers are
// one-based; "-" marks an unassigned end or pass.
func RenderLoom(w io.Writer, l *loom.Loom, opts Options) error {
	out := bufio.NewWriter(w)

	fmt.Fprintf(out, "type: %s  epi: %d %s\n", l.Type, l.EPI, l.Units)
	if !l.IsFrame() {
		fmt.Fprintln(out, "no frame program (jacquard)")
		return out.Flush()
	}

	fmt.Fprintf(out, "frames: %d of %d  treadles: %d of %d\n", l.FramesInUse(), l.MinFrames, l.TreadlesInUse(), l.MinTreadles)
	fmt.Fprintf(out, "threading: %s\n", assignments(l.Threading, opts.MaxCols))
	fmt.Fprintf(out, "treadling: %s\n", assignments(l.Treadling, opts.MaxRows))
	fmt.Fprintln(out, "tieup:")
	for f, row := range l.Tieup {
		fmt.Fprintf(out, "%3d ", f+1)
		for _, lifted := range row {
			if lifted {
				out.WriteString(GlyphUp)
			} else {
				out.WriteString(GlyphDown)
			}
		}
		out.WriteByte('\n')
	}
	return out.Flush()
}

func assignments(values []int, max int) string {
	shown := limit(len(values), max)
	parts := make([]string, 0, shown+1)
	for _, v := range values[:shown] {
		if v < 0 {
			parts = append(parts, "-")
		} else {
			parts = append(parts, strconv.Itoa(v+1))
		}
	}
	if shown < len(values) {
		parts = append(parts, fmt.Sprintf("…(+%d)", len(values)-shown))
	}
	return strings.Join(parts, " ")
}

func limit(n, max int) int {
	if max > 0 && max < n {
		return max
	}
	return n
}

func mappingAt(mapping []int, i int) int {
	if i < 0 || i >= len(mapping) {
		return -1
	}
	return mapping[i]
}
