// Package media holds the collaborators the trim controller relies on: a source that
// knows its duration and can render thumbnails, and an exporter that writes a range
// of it to a new file.
package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"

	"github.com/user/video-trim-cli/trim"
)

var (
	// ErrDurationUnavailable is returned when a source has no usable duration.
	ErrDurationUnavailable = errors.New("media: duration unavailable")
	// ErrExportFailed is returned when the encoder could not produce an output file.
	ErrExportFailed = errors.New("media: export failed")
	// ErrExportCancelled is returned when an export was stopped through its context.
	ErrExportCancelled = errors.New("media: export cancelled")
)

// Size is a pixel size.
type Size struct {
	Width  int
	Height int
}

// DefaultThumbnailSize bounds generated thumbnails.
var DefaultThumbnailSize = Size{Width: 100, Height: 100}

// Thumbnail is one PNG-encoded frame.
type Thumbnail struct {
	At     float64
	Data   []byte
	Width  int
	Height int
}

// Image decodes the PNG data.
func (t *Thumbnail) Image() (image.Image, error) {
	return png.Decode(bytes.NewReader(t.Data))
}

// Output describes an exported file.
type Output struct {
	Path  string
	Size  int64
	Range trim.Range
}

// Source is a video the trimmer works on.
type Source interface {
	Path() string
	// Duration returns the length in seconds or an error wrapping ErrDurationUnavailable.
	Duration(ctx context.Context) (float64, error)
	// Thumbnail renders the frame at the given time, scaled to fit max.
	Thumbnail(ctx context.Context, atSeconds float64, max Size) (*Thumbnail, error)
}

// Exporter writes a range of a source to a new file. progress, when not nil, is
// called with the completed fraction in [0, 1].
type Exporter interface {
	Export(ctx context.Context, src Source, r trim.Range, progress func(float64)) (*Output, error)
}
