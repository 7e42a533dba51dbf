package deps

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withInstalled(t *testing.T, names ...string) {
	t.Helper()
	installed := make(map[string]bool)
	for _, n := range names {
		installed[n] = true
	}
	old := lookPath
	lookPath = func(file string) (string, error) {
		if installed[file] {
			return "/usr/bin/" + file, nil
		}
		return "", exec.ErrNotFound
	}
	t.Cleanup(func() { lookPath = old })
}

func TestCheckAllReportsMissing(t *testing.T) {
	withInstalled(t, "ffmpeg")

	errs := CheckAll()
	require.Len(t, errs, 2)

	var depErr *DependencyError
	require.True(t, errors.As(errs[0], &depErr))
	assert.Equal(t, "mpv", depErr.Name)
	assert.Equal(t, MpvInstallURL, depErr.InstallURL)
	assert.Contains(t, errs[1].Error(), "ffprobe not found")
}

func TestCheckFfmpegNeedsBothTools(t *testing.T) {
	withInstalled(t, "ffmpeg")
	assert.Error(t, CheckFfmpeg())

	withInstalled(t, "ffmpeg", "ffprobe")
	assert.NoError(t, CheckFfmpeg())
}

func TestCheckReturnsPath(t *testing.T) {
	withInstalled(t, "mpv", "ffmpeg", "ffprobe")
	path, err := Check(Tools[0])
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/mpv", path)
	assert.NoError(t, CheckMpv())
	assert.Empty(t, CheckAll())
}
