package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/video-trim-cli/tui/styles"
)

// Timeline layout relative to the top-left corner of the rendered box.
const (
	// TimelineLeft is the column of the first bar cell.
	TimelineLeft = 2
	// TimelineTop is the row of the first strip row.
	TimelineTop = 1
	// StripRows is the height of the thumbnail strip in terminal rows.
	StripRows = 3
	// TimelineRows is the number of content rows: strip, handle bar and play-head.
	TimelineRows = StripRows + 2
)

// TimelineState describes one frame of the timeline in cell coordinates.
type TimelineState struct {
	// Cells is the number of bar cells
	Cells int
	// Strip is the sampled thumbnail strip; nil draws a placeholder
	Strip [][]Cell
	// StartCell and EndCell are the cells holding the handles
	StartCell int
	EndCell   int
	// HeadCell is the play-head cell, -1 to hide it
	HeadCell int
	// StartSelected is true when the start handle is the keyboard target
	StartSelected bool
	Loaded        bool
}

// Timeline renders the thumbnail strip with the two trim handles below it. Cells
// outside the range are dimmed and the play-head is marked under the bar.
func Timeline(state TimelineState, width int) string {
	if state.Cells <= 0 {
		return RenderInfoBox("Timeline", []string{" no video loaded"}, width)
	}

	rangeStyle := lipgloss.NewStyle().Foreground(styles.BrightPurple)
	outsideStyle := lipgloss.NewStyle().Foreground(styles.Purple)
	handleStyle := lipgloss.NewStyle().Foreground(styles.Lavender).Bold(true)
	selectedStyle := lipgloss.NewStyle().Foreground(styles.Pink).Bold(true)
	headStyle := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	placeholderStyle := lipgloss.NewStyle().Foreground(styles.Purple)

	lines := make([]string, 0, TimelineRows)
	for r := 0; r < StripRows; r++ {
		if r < len(state.Strip) && len(state.Strip[r]) == state.Cells {
			lines = append(lines, " "+renderStripRow(state.Strip[r], state.StartCell, state.EndCell))
			continue
		}
		fill := "░"
		if !state.Loaded {
			fill = " "
		}
		lines = append(lines, " "+placeholderStyle.Render(strings.Repeat(fill, state.Cells)))
	}

	var bar strings.Builder
	for c := 0; c < state.Cells; c++ {
		switch {
		case c == state.StartCell:
			style := handleStyle
			if state.StartSelected {
				style = selectedStyle
			}
			bar.WriteString(style.Render("┃"))
		case c == state.EndCell:
			style := handleStyle
			if !state.StartSelected {
				style = selectedStyle
			}
			bar.WriteString(style.Render("┃"))
		case c > state.StartCell && c < state.EndCell:
			bar.WriteString(rangeStyle.Render("━"))
		default:
			bar.WriteString(outsideStyle.Render("─"))
		}
	}
	lines = append(lines, " "+bar.String())

	var head strings.Builder
	for c := 0; c < state.Cells; c++ {
		if c == state.HeadCell {
			head.WriteString(headStyle.Render("▲"))
		} else {
			head.WriteString(" ")
		}
	}
	lines = append(lines, " "+head.String())

	return RenderInfoBox("Timeline", lines, width)
}
