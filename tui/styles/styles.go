// Package styles holds the Ciapre palette and the shared Lipgloss styles of the trimmer.
package styles

import "github.com/charmbracelet/lipgloss"

// Ciapre palette (Gogh).
const (
	// DeepPurple is the background
	DeepPurple = lipgloss.Color("#191C27")
	// DarkPurple is the dimmed-cell background
	DarkPurple = lipgloss.Color("#181818")
	// Purple draws borders and inactive text
	Purple = lipgloss.Color("#5C4F4B")
	// BrightPurple marks the selected range on the handle bar
	BrightPurple = lipgloss.Color("#724D7C")
	// Lavender is secondary text
	Lavender = lipgloss.Color("#AEA47A")
	// LightLavender is primary text
	LightLavender = lipgloss.Color("#F3DBB2")
	// Pink is used for titles and the selected handle
	Pink = lipgloss.Color("#D33061")
	// Cyan marks the play-head and key names
	Cyan = lipgloss.Color("#3097C6")
	Amber = lipgloss.Color("#CC8B3F")
	// Red is errors
	Red = lipgloss.Color("#AC3835")
	// Green is success and progress
	Green = lipgloss.Color("#A6A75D")
)

// StatusOK renders transient success messages.
var StatusOK = lipgloss.NewStyle().
	Foreground(Green)

// StatusError renders transient error messages.
var StatusError = lipgloss.NewStyle().
	Foreground(Red).
	Bold(true)

// Warning is for conditions that block the view, such as a too narrow terminal.
var Warning = lipgloss.NewStyle().
	Foreground(Pink).
	Bold(true)

// Hint is for short usage hints under warnings.
var Hint = lipgloss.NewStyle().
	Foreground(Lavender).
	Italic(true)
