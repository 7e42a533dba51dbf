package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/video-trim-cli/trim"
)

func TestLoadOrCreateMissingCreatesDefault(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config", FileName)
	old := resolveConfigPath
	resolveConfigPath = func() (string, error) { return configPath, nil }
	t.Cleanup(func() { resolveConfigPath = old })

	cfg, created, err := LoadOrCreate("")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, Default(), cfg)

	var got Config
	_, err = toml.DecodeFile(configPath, &got)
	require.NoError(t, err)
	assert.Equal(t, Default(), got)
}

func TestLoadOrCreateReadsOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	data := `
[trim]
max_seconds = 5.0

[export]
output_dir = "/srv/clips"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 5.0, cfg.Trim.MaxSeconds)
	assert.Equal(t, "/srv/clips", cfg.OutputDir())
	// untouched keys keep their defaults
	assert.Equal(t, trim.DefaultSensitivity, cfg.Trim.Sensitivity)
	assert.Equal(t, DefaultSocketPath, cfg.Playback.MpvSocket)
}

func TestLoadOrCreateRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("[trim]\nsensitivity = -1.0\n"), 0o644))

	_, _, err := LoadOrCreate(path)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "trim.sensitivity", ve.Field)
}

func TestLoadOrCreateRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("[trim\n"), 0o644))

	_, _, err := LoadOrCreate(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero max", func(c *Config) { c.Trim.MaxSeconds = 0 }, "trim.max_seconds"},
		{"zero window", func(c *Config) { c.Trim.CoalesceWindowMs = 0 }, "trim.coalesce_window_ms"},
		{"negative gap", func(c *Config) { c.Trim.HandleGapPixels = -1 }, "trim.handle_gap_pixels"},
		{"gap wider than timeline", func(c *Config) { c.Trim.HandleGapPixels = 400 }, "trim.handle_gap_pixels"},
		{"empty socket", func(c *Config) { c.Playback.MpvSocket = "  " }, "playback.mpv_socket"},
		{"zero thumbnails", func(c *Config) { c.Thumbnails.Count = 0 }, "thumbnails.count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestTrimConfigMatchesControllerDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, trim.DefaultConfig(), cfg.TrimConfig())
	assert.Equal(t, 200*time.Millisecond, cfg.ClockInterval())
	assert.Equal(t, os.TempDir(), cfg.OutputDir())
}
