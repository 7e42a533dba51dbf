// Package components provides the TUI building blocks of the trimmer.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/user/video-trim-cli/pkg/timeutil"
	"github.com/user/video-trim-cli/tui/styles"
)

// StatusBarState holds what the top bar shows.
type StatusBarState struct {
	FileName string
	Playing  bool
	// TimePos is the last clock position in seconds
	TimePos  float64
	Duration float64
	// Selected names the handle the arrow keys move
	Selected string
	// Connected is false when the player socket is gone
	Connected bool
}

// StatusBar renders a single full-width line: play icon, position and file on the
// left, handle selection on the right.
func StatusBar(state StatusBarState, width int) string {
	playIcon := "⏸"
	if state.Playing {
		playIcon = "▶"
	}

	left := fmt.Sprintf(" %s %s / %s", playIcon, timeutil.FormatSeconds(state.TimePos), timeutil.FormatSeconds(state.Duration))
	right := fmt.Sprintf("handle: %s ", state.Selected)
	if !state.Connected {
		right = "player disconnected  " + right
	}

	name := state.FileName
	room := width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if room < 0 {
		room = 0
	}
	if lipgloss.Width(name) > room {
		name = ansi.Truncate(name, room, "…")
	}
	if name != "" {
		left += "  " + name
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	style := lipgloss.NewStyle().
		Background(styles.DarkPurple).
		Foreground(styles.LightLavender).
		Bold(true).
		Width(width)

	return style.Render(left + strings.Repeat(" ", padding) + right)
}
