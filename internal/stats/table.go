package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	columnGap = "  "
	ellipsis  = "…"
)

// Table is a plain-text table of settings or readings.
type Table struct {
	Headers    []string
	Rows       [][]string
	RightAlign map[int]bool
	// MaxWidth truncates the last column so lines fit; 0 disables it.
	MaxWidth int
}

// Lines renders the table into aligned lines.
func (t Table) Lines() []string {
	widths := t.columnWidths()
	if len(widths) == 0 {
		return nil
	}
	t.fitLastColumn(widths)

	lines := make([]string, 0, len(t.Rows)+1)
	if len(t.Headers) > 0 {
		lines = append(lines, t.row(t.Headers, widths))
	}
	for _, cells := range t.Rows {
		lines = append(lines, t.row(cells, widths))
	}
	return lines
}

// Write prints the table to w.
func (t Table) Write(w io.Writer) error {
	for _, line := range t.Lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write table: %w", err)
		}
	}
	return nil
}

func (t Table) columnWidths() []int {
	n := len(t.Headers)
	for _, cells := range t.Rows {
		n = max(n, len(cells))
	}
	if n == 0 {
		return nil
	}
	widths := make([]int, n)
	measure := func(cells []string) {
		for i, cell := range cells {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	measure(t.Headers)
	for _, cells := range t.Rows {
		measure(cells)
	}
	return widths
}

func (t Table) fitLastColumn(widths []int) {
	if t.MaxWidth <= 0 {
		return
	}
	used := len(columnGap) * (len(widths) - 1)
	for _, w := range widths[:len(widths)-1] {
		used += w
	}
	last := len(widths) - 1
	widths[last] = max(min(widths[last], t.MaxWidth-used), runewidth.StringWidth(ellipsis))
}

func (t Table) row(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, width := range widths {
		var cell string
		if i < len(cells) {
			cell = runewidth.Truncate(cells[i], width, ellipsis)
		}
		if t.RightAlign[i] {
			parts[i] = runewidth.FillLeft(cell, width)
		} else {
			parts[i] = runewidth.FillRight(cell, width)
		}
	}
	return strings.TrimRight(strings.Join(parts, columnGap), " ")
}
