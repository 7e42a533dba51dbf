// Package forms provides huh-based prompts shown before the TUI starts.
package forms

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("forms: cancelled")

// VideoExtensions are the file types offered by the video picker.
var VideoExtensions = []string{".mp4", ".mov", ".mkv", ".webm", ".avi", ".m4v"}

// NewVideoPicker creates a file picker form rooted at dir. The chosen path is
// written to path.
func NewVideoPicker(dir string, path *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewFilePicker().
				Title("Open video").
				Description("Pick the clip to trim").
				CurrentDirectory(dir).
				AllowedTypes(VideoExtensions).
				ShowHidden(false).
				Picking(true).
				Height(12).
				Value(path),
		),
	).WithTheme(Theme())
}

// PickVideo runs the video picker and returns the chosen file.
func PickVideo(dir string) (string, error) {
	var path string
	if err := NewVideoPicker(dir, &path).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrCancelled
		}
		return "", err
	}
	if strings.TrimSpace(path) == "" {
		return "", ErrCancelled
	}
	return path, nil
}

// IsVideoFile reports whether path has one of VideoExtensions.
func IsVideoFile(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range VideoExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
