package cli

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const columnGap = "  "

var (
	ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[@-~]`)
	headerStyle = lipgloss.NewStyle().Bold(true)
)

// table is a left-aligned text grid. Widths are measured in terminal cells
// so escape sequences and wide runes line up.
type table struct {
	headers []string
	rows    [][]string
	widths  []int
}

func newTable(headers []string, rows [][]string) *table {
	t := &table{headers: headers, rows: rows}
	t.measure(headers)
	for _, row := range rows {
		t.measure(row)
	}
	return t
}

func (t *table) measure(row []string) {
	for len(t.widths) < len(row) {
		t.widths = append(t.widths, 0)
	}
	for i, cell := range row {
		t.widths[i] = max(t.widths[i], cellWidth(cell))
	}
}

func (t *table) render(out io.Writer, styled bool) error {
	if len(t.widths) == 0 {
		return nil
	}
	w := bufio.NewWriter(out)
	if len(t.headers) > 0 {
		header := t.line(t.headers)
		if styled {
			header = headerStyle.Render(header)
		}
		if _, err := w.WriteString(header + "\n"); err != nil {
			return err
		}
	}
	for _, row := range t.rows {
		if _, err := w.WriteString(t.line(row) + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

// line pads every cell but the last to its column width.
func (t *table) line(row []string) string {
	var b strings.Builder
	last := len(t.widths) - 1
	for i := range t.widths {
		var cell string
		if i < len(row) {
			cell = row[i]
		}
		b.WriteString(cell)
		if i < last {
			b.WriteString(strings.Repeat(" ", t.widths[i]-cellWidth(cell)))
			b.WriteString(columnGap)
		}
	}
	return b.String()
}

func writeTable(out io.Writer, headers []string, rows [][]string) error {
	return newTable(headers, rows).render(out, useColor(out))
}

func cellWidth(s string) int {
	return runewidth.StringWidth(stripANSI(s))
}

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func formatYesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
