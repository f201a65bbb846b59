package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders a bar with a count, e.g. "███░░ 3/5".
func ProgressBar(done, total, width int) string {
	if width < 5 {
		width = 5
	}
	filled := 0
	if total > 0 {
		filled = int(float64(done) / float64(total) * float64(width))
	}
	if filled > width {
		filled = width
	}
	bar := strings.Repeat(current.Bar, filled) + strings.Repeat(current.BarEmpty, width-filled)
	return fmt.Sprintf("%s %d/%d", bar, done, total)
}

// Table lays rows out in columns padded to the widest visible cell.
// Colour codes don't count towards width.
func Table(header []string, rows [][]string) []string {
	widths := make([]int, len(header))
	measure := func(cells []string) {
		for i, c := range cells {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(c))
			}
		}
	}
	measure(header)
	for _, r := range rows {
		measure(r)
	}

	line := func(cells []string) string {
		parts := make([]string, len(widths))
		for i := range widths {
			c := ""
			if i < len(cells) {
				c = cells[i]
			}
			parts[i] = c + strings.Repeat(" ", widths[i]-lipgloss.Width(c))
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	hdr := make([]string, len(header))
	for i, h := range header {
		hdr[i] = C(current.Accent, h)
	}
	out := []string{line(hdr)}
	for _, r := range rows {
		out = append(out, line(r))
	}
	return out
}

// Panel draws a framed box using the current theme.
func Panel(w io.Writer, lines []string) {
	t := current
	maxw := 0
	for _, ln := range lines {
		maxw = max(maxw, lipgloss.Width(ln))
	}
	pad := func(s string) string {
		if vis := lipgloss.Width(s); vis < maxw {
			s += strings.Repeat(" ", maxw-vis)
		}
		return s
	}
	fmt.Fprintln(w, t.CornerTL+strings.Repeat(t.H, maxw+2)+t.CornerTR)
	for _, ln := range lines {
		fmt.Fprintln(w, t.V+" "+pad(ln)+" "+t.V)
	}
	fmt.Fprintln(w, t.CornerBL+strings.Repeat(t.H, maxw+2)+t.CornerBR)
}
