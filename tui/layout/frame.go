// Package layout fits rendered views to the terminal.
package layout

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/user/video-trim-cli/tui/styles"
)

// Frame is the terminal area a view is drawn into.
type Frame struct {
	Width  int
	Height int
}

// Render clips or pads content to exactly Width columns and Height lines. The
// first lines hold the timeline, so overflow is cut from the bottom and the last
// line is replaced by a marker.
func (f Frame) Render(content string) string {
	if f.Width <= 0 || f.Height <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	clipped := len(lines) > f.Height
	lines = FitLines(lines, f.Height)
	if clipped {
		lines[f.Height-1] = lipgloss.NewStyle().Foreground(styles.Purple).Render("… resize to see more")
	}
	for i, line := range lines {
		lines[i] = PadToWidth(line, f.Width)
	}
	return strings.Join(lines, "\n")
}

// PadToWidth pads or truncates s to exactly width cells, ANSI aware.
func PadToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := lipgloss.Width(s)
	if w > width {
		s = ansi.Truncate(s, width, "")
		w = lipgloss.Width(s)
	}
	if w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

// FitLines pads or truncates lines to exactly height entries.
func FitLines(lines []string, height int) []string {
	if len(lines) > height {
		return lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines
}
