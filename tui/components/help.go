package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/video-trim-cli/tui/styles"
)

type binding struct {
	key  string
	desc string
}

var helpGroups = []struct {
	title    string
	bindings []binding
}{
	{
		title: "Playback",
		bindings: []binding{
			{"Space", "Play/pause the selected range"},
		},
	},
	{
		title: "Trim",
		bindings: []binding{
			{"[ / ]", "Select start / end handle"},
			{"← → / h l", "Move the selected handle"},
			{"⇧← ⇧→ / H L", "Move the whole range"},
			{"Mouse", "Drag a handle or the range"},
		},
	},
	{
		title: "Export",
		bindings: []binding{
			{"Enter / e", "Export the selected range"},
			{"Esc", "Leave the exported result, back to the source"},
		},
	},
	{
		title: "General",
		bindings: []binding{
			{"?", "Show/hide this help"},
			{"q", "Quit"},
		},
	},
}

// HelpOverlay renders the keybinding overlay centred in the terminal.
func HelpOverlay(width, height int) string {
	titleStyle := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true).Padding(0, 1)
	groupHeaderStyle := lipgloss.NewStyle().Foreground(styles.Pink).Bold(true).MarginTop(1)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Lavender).Bold(true).Width(14)
	descStyle := lipgloss.NewStyle().Foreground(styles.LightLavender)
	footerStyle := lipgloss.NewStyle().Foreground(styles.Lavender).Italic(true)

	lines := []string{titleStyle.Render("Keybindings"), ""}
	for _, group := range helpGroups {
		lines = append(lines, groupHeaderStyle.Render(group.title))
		for _, b := range group.bindings {
			lines = append(lines, "  "+keyStyle.Render(b.key)+descStyle.Render(b.desc))
		}
	}
	lines = append(lines, "", footerStyle.Render("Press any key to close"))
	content := strings.Join(lines, "\n")

	panel := lipgloss.NewStyle().
		Background(styles.DarkPurple).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BrightPurple).
		Padding(1, 2).
		Render(content)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, panel)
}

// HelpHint is the one-line key reminder shown at the bottom of the main view.
func HelpHint(width int) string {
	hint := " space play · [ ] handle · ←/→ move · ⇧←/⇧→ range · enter export · ? help · q quit"
	return lipgloss.NewStyle().Foreground(styles.Purple).Width(width).Render(hint)
}
