package config

import (
	"fmt"
	"strings"
)

// ValidationError describes the first invalid config field found.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("config: invalid %s: %s (value: %v)", ve.Field, ve.Message, ve.Value)
}

// Validate checks the values the controller and host depend on.
func (c Config) Validate() error {
	positive := []struct {
		field string
		value float64
	}{
		{"trim.max_seconds", c.Trim.MaxSeconds},
		{"trim.sensitivity", c.Trim.Sensitivity},
		{"trim.timeline_width", c.Trim.TimelineWidth},
		{"trim.coalesce_window_ms", float64(c.Trim.CoalesceWindowMs)},
		{"playback.clock_interval_ms", float64(c.Playback.ClockIntervalMs)},
		{"thumbnails.count", float64(c.Thumbnails.Count)},
		{"thumbnails.max_width", float64(c.Thumbnails.MaxWidth)},
		{"thumbnails.max_height", float64(c.Thumbnails.MaxHeight)},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return &ValidationError{Field: p.field, Value: p.value, Message: "must be greater than zero"}
		}
	}
	if c.Trim.HandleGapPixels < 0 || c.Trim.HandleGapPixels >= c.Trim.TimelineWidth {
		return &ValidationError{
			Field:   "trim.handle_gap_pixels",
			Value:   c.Trim.HandleGapPixels,
			Message: "must be between zero and the timeline width",
		}
	}
	if strings.TrimSpace(c.Playback.MpvSocket) == "" {
		return &ValidationError{Field: "playback.mpv_socket", Value: c.Playback.MpvSocket, Message: "must not be empty"}
	}
	return nil
}
