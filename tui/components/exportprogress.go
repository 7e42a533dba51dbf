package components

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/user/video-trim-cli/tui/styles"
)

// ExportProgressState holds the state of the running or last export.
type ExportProgressState struct {
	Active   bool
	Fraction float64
	// Output is the path of the last finished export
	Output string
	// Err is the last export error message
	Err string
	// Previewing is set while the player shows Output instead of the source
	Previewing bool
}

// ExportProgress renders a bordered box with a progress bar, or the result of the
// last export. It renders nothing when no export has been requested.
func ExportProgress(state ExportProgressState, width int) string {
	if width < 10 || (!state.Active && state.Output == "" && state.Err == "") {
		return ""
	}

	greenStyle := lipgloss.NewStyle().Foreground(styles.Green)
	amberStyle := lipgloss.NewStyle().Foreground(styles.Amber)
	redStyle := lipgloss.NewStyle().Foreground(styles.Red)
	textStyle := lipgloss.NewStyle().Foreground(styles.LightLavender)

	innerW := width - 4
	if innerW < 6 {
		innerW = 6
	}

	var lines []string
	switch {
	case state.Active:
		barWidth := innerW - 6
		if barWidth < 4 {
			barWidth = 4
		}
		frac := state.Fraction
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
		filled := int(float64(barWidth) * frac)
		bar := greenStyle.Render(strings.Repeat("█", filled)) + amberStyle.Render(strings.Repeat("░", barWidth-filled))
		lines = append(lines, " "+bar+textStyle.Render(fmt.Sprintf(" %3d%%", int(frac*100))))
		lines = append(lines, textStyle.Render(" encoding…"))
	case state.Err != "":
		msg := state.Err
		if lipgloss.Width(msg) > innerW {
			msg = ansi.Truncate(msg, innerW-1, "…")
		}
		lines = append(lines, " "+redStyle.Render(msg))
	default:
		lines = append(lines, " "+greenStyle.Render("Export complete"))
		name := filepath.Base(state.Output)
		if lipgloss.Width(name) > innerW {
			name = ansi.Truncate(name, innerW-1, "…")
		}
		lines = append(lines, " "+textStyle.Render(name))
		if state.Previewing {
			lines = append(lines, " "+amberStyle.Render("Previewing trimmed result · esc back"))
		}
	}

	return RenderInfoBox("Export", lines, width)
}
