// Package deps checks for the external programs the trimmer drives.
package deps

import (
	"fmt"
	"os/exec"
)

const (
	MpvInstallURL    = "https://mpv.io/installation/"
	FfmpegInstallURL = "https://ffmpeg.org/download.html"
)

// lookPath is swapped out in tests.
var lookPath = exec.LookPath

// DependencyError contains information about a missing dependency
type DependencyError struct {
	Name       string
	InstallURL string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s not found. Install from: %s", e.Name, e.InstallURL)
}

// Tool is an external program and where to get it.
type Tool struct {
	Name       string
	InstallURL string
	// Purpose is shown by the doctor command.
	Purpose string
}

// Tools lists every program the trimmer uses.
var Tools = []Tool{
	{Name: "mpv", InstallURL: MpvInstallURL, Purpose: "preview playback"},
	{Name: "ffmpeg", InstallURL: FfmpegInstallURL, Purpose: "thumbnails and export"},
	{Name: "ffprobe", InstallURL: FfmpegInstallURL, Purpose: "duration probing"},
}

// Check returns a *DependencyError when tool is not on PATH, and the resolved path otherwise.
func Check(tool Tool) (string, error) {
	path, err := lookPath(tool.Name)
	if err != nil {
		return "", &DependencyError{Name: tool.Name, InstallURL: tool.InstallURL}
	}
	return path, nil
}

// CheckMpv checks if mpv is installed and available in PATH
func CheckMpv() error {
	_, err := Check(Tools[0])
	return err
}

// CheckFfmpeg checks that both ffmpeg and ffprobe are available in PATH
func CheckFfmpeg() error {
	if _, err := Check(Tools[1]); err != nil {
		return err
	}
	_, err := Check(Tools[2])
	return err
}

// CheckAll checks all dependencies and returns a slice of errors for missing ones
func CheckAll() []error {
	var errs []error
	for _, tool := range Tools {
		if _, err := Check(tool); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
