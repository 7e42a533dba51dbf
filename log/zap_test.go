package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func resetLogger(t *testing.T) {
	t.Helper()
	old := Logger
	t.Cleanup(func() { Logger = old })
}

func TestInitWritesJSONFile(t *testing.T) {
	resetLogger(t)
	dir := filepath.Join(t.TempDir(), "logs")

	logger, err := Init(Options{Dir: dir, Level: "debug"})
	require.NoError(t, err)
	require.Same(t, logger, GetLogger())

	logger.Debug("logger test line", zap.String("video", "clip.mp4"))
	_ = logger.Sync()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"logger test line"`)
	assert.Contains(t, string(data), `"video":"clip.mp4"`)
}

func TestInitRespectsLevel(t *testing.T) {
	resetLogger(t)
	dir := t.TempDir()

	logger, err := Init(Options{Dir: dir, Level: "warn"})
	require.NoError(t, err)
	logger.Info("dropped")
	logger.Warn("kept")
	_ = logger.Sync()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	resetLogger(t)
	_, err := Init(Options{Dir: t.TempDir(), Level: "loud"})
	assert.Error(t, err)
}

func TestInitWithoutOutputsIsNop(t *testing.T) {
	resetLogger(t)
	logger, err := Init(Options{})
	require.NoError(t, err)
	assert.NotNil(t, logger)
	logger.Info("nothing happens")
}
