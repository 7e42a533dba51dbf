package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/video-trim-cli/pkg/timeutil"
	"github.com/user/video-trim-cli/tui/styles"
)

// RangeInfoState is the selected range shown under the timeline.
type RangeInfoState struct {
	Start      float64
	End        float64
	MaxSeconds float64
	Percent    float64
}

// RangeInfo renders the range bounds, its length against the cap, and the play-head position.
func RangeInfo(state RangeInfoState, width int) string {
	label := lipgloss.NewStyle().Foreground(styles.Lavender)
	value := lipgloss.NewStyle().Foreground(styles.LightLavender).Bold(true)
	accent := lipgloss.NewStyle().Foreground(styles.Cyan)

	length := state.End - state.Start
	lengthStyle := value
	if state.MaxSeconds > 0 && length >= state.MaxSeconds-0.005 {
		lengthStyle = lipgloss.NewStyle().Foreground(styles.Amber).Bold(true)
	}

	line1 := " " + label.Render("Start ") + value.Render(timeutil.FormatSeconds(state.Start)) +
		"   " + label.Render("End ") + value.Render(timeutil.FormatSeconds(state.End))
	line2 := " " + label.Render("Length ") + lengthStyle.Render(fmt.Sprintf("%.2fs", length)) +
		label.Render(fmt.Sprintf(" / %.0fs max", state.MaxSeconds)) +
		"   " + label.Render("Preview ") + accent.Render(fmt.Sprintf("%3.0f%%", state.Percent))

	return RenderInfoBox("Range", []string{line1, line2}, width)
}
