// Package config loads the video-trim-cli TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/user/video-trim-cli/mpv"
	"github.com/user/video-trim-cli/trim"
)

// FileName is the config file name inside the config directory.
const FileName = "config.toml"

// DefaultSocketPath is the mpv IPC socket used when none is configured.
const DefaultSocketPath = mpv.DefaultSocketPath

type Trim struct {
	MaxSeconds       float64 `toml:"max_seconds"`
	Sensitivity      float64 `toml:"sensitivity"`
	HandleGapPixels  float64 `toml:"handle_gap_pixels"`
	TimelineWidth    float64 `toml:"timeline_width"`
	CoalesceWindowMs int     `toml:"coalesce_window_ms"`
}

type Playback struct {
	ClockIntervalMs int    `toml:"clock_interval_ms"`
	MpvSocket       string `toml:"mpv_socket"`
}

type Thumbnails struct {
	Count     int `toml:"count"`
	MaxWidth  int `toml:"max_width"`
	MaxHeight int `toml:"max_height"`
}

type Export struct {
	OutputDir  string `toml:"output_dir"`
	VideoCodec string `toml:"video_codec"`
	AudioCodec string `toml:"audio_codec"`
	Preset     string `toml:"preset"`
}

type Log struct {
	Level string `toml:"level"`
	Dir   string `toml:"dir"`
}

// Config mirrors config.toml.
type Config struct {
	Trim       Trim       `toml:"trim"`
	Playback   Playback   `toml:"playback"`
	Thumbnails Thumbnails `toml:"thumbnails"`
	Export     Export     `toml:"export"`
	Log        Log        `toml:"log"`
}

// Default returns the configuration written for new installs.
func Default() Config {
	tc := trim.DefaultConfig()
	return Config{
		Trim: Trim{
			MaxSeconds:       tc.MaxTrimSeconds,
			Sensitivity:      tc.Sensitivity,
			HandleGapPixels:  tc.HandleGapPixels,
			TimelineWidth:    tc.TimelineWidth,
			CoalesceWindowMs: int(tc.CoalesceWindow / time.Millisecond),
		},
		Playback: Playback{
			ClockIntervalMs: 200,
			MpvSocket:       DefaultSocketPath,
		},
		Thumbnails: Thumbnails{
			Count:     tc.ThumbnailCount,
			MaxWidth:  100,
			MaxHeight: 100,
		},
		Export: Export{
			VideoCodec: "libx264",
			AudioCodec: "aac",
			Preset:     "fast",
		},
		Log: Log{
			Level: "info",
		},
	}
}

// resolveConfigPath is swapped out in tests.
var resolveConfigPath = DefaultPath

// DefaultPath returns ~/.config/video-trim-cli/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "video-trim-cli", FileName), nil
}

// LoadOrCreate reads the config at path, writing the defaults first when the file
// does not exist. An empty path means the default location. created reports
// whether a new file was written.
func LoadOrCreate(path string) (cfg Config, created bool, err error) {
	if path == "" {
		path, err = resolveConfigPath()
		if err != nil {
			return Config{}, false, fmt.Errorf("resolving config path: %w", err)
		}
	}

	cfg = Default()
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		if err := Save(path, cfg); err != nil {
			return Config{}, false, err
		}
		return cfg, true, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, false, fmt.Errorf("decoding %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, false, err
	}
	return cfg, false, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// TrimConfig converts the trim and thumbnail sections for the controller.
func (c Config) TrimConfig() trim.Config {
	return trim.Config{
		MaxTrimSeconds:  c.Trim.MaxSeconds,
		Sensitivity:     c.Trim.Sensitivity,
		HandleGapPixels: c.Trim.HandleGapPixels,
		TimelineWidth:   c.Trim.TimelineWidth,
		CoalesceWindow:  time.Duration(c.Trim.CoalesceWindowMs) * time.Millisecond,
		ThumbnailCount:  c.Thumbnails.Count,
	}
}

// ClockInterval is the playback position polling interval.
func (c Config) ClockInterval() time.Duration {
	return time.Duration(c.Playback.ClockIntervalMs) * time.Millisecond
}

// OutputDir returns the configured export directory, or the OS temp dir.
func (c Config) OutputDir() string {
	if c.Export.OutputDir != "" {
		return c.Export.OutputDir
	}
	return os.TempDir()
}
