// Package trim implements the trim-range controller: it turns timeline drags into a
// valid trim range and keeps preview playback looping inside that range.
package trim

import "time"

// Default tuning values. They were chosen for a 300 pixel wide timeline.
const (
	DefaultMaxTrimSeconds  = 7.0
	DefaultSensitivity     = 0.09
	DefaultHandleGapPixels = 20.0
	DefaultTimelineWidth   = 300.0
	DefaultCoalesceWindow  = 100 * time.Millisecond
	DefaultThumbnailCount  = 5
)

// Config holds the controller tuning constants.
type Config struct {
	// MaxTrimSeconds caps the length of the selected range
	MaxTrimSeconds float64
	// Sensitivity scales whole-range drag deltas before they are applied
	Sensitivity float64
	// HandleGapPixels is the minimum distance between the two handles
	HandleGapPixels float64
	// TimelineWidth is the logical width of the timeline in pixels
	TimelineWidth float64
	// CoalesceWindow is the minimum interval between two applied whole-range drags
	CoalesceWindow time.Duration
	// ThumbnailCount is the number of timeline thumbnails requested from the media source
	ThumbnailCount int
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		MaxTrimSeconds:  DefaultMaxTrimSeconds,
		Sensitivity:     DefaultSensitivity,
		HandleGapPixels: DefaultHandleGapPixels,
		TimelineWidth:   DefaultTimelineWidth,
		CoalesceWindow:  DefaultCoalesceWindow,
		ThumbnailCount:  DefaultThumbnailCount,
	}
}

// withDefaults fills zero or negative fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxTrimSeconds <= 0 {
		c.MaxTrimSeconds = d.MaxTrimSeconds
	}
	if c.Sensitivity <= 0 {
		c.Sensitivity = d.Sensitivity
	}
	if c.HandleGapPixels <= 0 {
		c.HandleGapPixels = d.HandleGapPixels
	}
	if c.TimelineWidth <= 0 {
		c.TimelineWidth = d.TimelineWidth
	}
	if c.CoalesceWindow <= 0 {
		c.CoalesceWindow = d.CoalesceWindow
	}
	if c.ThumbnailCount <= 0 {
		c.ThumbnailCount = d.ThumbnailCount
	}
	return c
}

// Range is the selected sub-range of the media, in seconds.
type Range struct {
	Start float64
	End   float64
}

// Length returns the range length in seconds.
func (r Range) Length() float64 {
	return r.End - r.Start
}

// Contains reports whether t lies inside the closed range.
func (r Range) Contains(t float64) bool {
	return t >= r.Start && t <= r.End
}

// Geometry is the pixel form of Range on the timeline.
type Geometry struct {
	Width      float64
	StartPixel float64
	EndPixel   float64
}

// Span returns the distance between the two handles.
func (g Geometry) Span() float64 {
	return g.EndPixel - g.StartPixel
}

// Progress is the playback position feedback shown by the host.
type Progress struct {
	// CurrentSeconds is the last position reported by the clock
	CurrentSeconds float64
	// Percent is the play-head position inside the range, 0 to 100
	Percent float64
}

// State is a snapshot of everything the host renders.
type State struct {
	Loaded             bool
	Duration           float64
	Range              Range
	Geometry           Geometry
	Progress           Progress
	Playing            bool
	MaxSelectableWidth float64
}
