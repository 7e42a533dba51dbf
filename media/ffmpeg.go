package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xfrr/goffmpeg/transcoder"
	"go.uber.org/zap"

	"github.com/user/video-trim-cli/pkg/timeutil"
)

// FFmpegSource is a Source backed by a file on disk, read and decoded with ffmpeg.
type FFmpegSource struct {
	path   string
	logger *zap.Logger
}

// NewFFmpegSource creates a source for path. A nil logger discards output.
func NewFFmpegSource(path string, logger *zap.Logger) *FFmpegSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FFmpegSource{path: path, logger: logger}
}

// Path returns the file path.
func (s *FFmpegSource) Path() string {
	return s.path
}

// Duration reads the container duration.
func (s *FFmpegSource) Duration(ctx context.Context) (float64, error) {
	type durationResult struct {
		raw string
		err error
	}
	done := make(chan durationResult, 1)
	go func() {
		trans := new(transcoder.Transcoder)
		if err := trans.Initialize(s.path, ""); err != nil {
			done <- durationResult{err: err}
			return
		}
		done <- durationResult{raw: trans.MediaFile().Metadata().Format.Duration}
	}()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case p := <-done:
		if p.err != nil {
			return 0, fmt.Errorf("%w: probing %s: %v", ErrDurationUnavailable, s.path, p.err)
		}
		d, err := parseDuration(p.raw)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrDurationUnavailable, s.path, err)
		}
		s.logger.Debug("read duration", zap.String("path", s.path), zap.Float64("duration", d))
		return d, nil
	}
}

// Thumbnail extracts a single frame as PNG, scaled down to fit max while keeping
// the aspect ratio.
func (s *FFmpegSource) Thumbnail(ctx context.Context, atSeconds float64, max Size) (*Thumbnail, error) {
	if max.Width <= 0 || max.Height <= 0 {
		max = DefaultThumbnailSize
	}

	tempDir, err := os.MkdirTemp("", "video-trim-thumb-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)
	outFile := filepath.Join(tempDir, "frame.png")

	trans := new(transcoder.Transcoder)
	if err := trans.Initialize(s.path, outFile); err != nil {
		return nil, fmt.Errorf("initializing transcoder: %w", err)
	}
	trans.MediaFile().SetSeekTime(timeutil.FormatFFmpeg(atSeconds))
	trans.MediaFile().SetVideoFilter(scaleFilter(max))
	trans.MediaFile().SetVideoCodec("png")
	trans.MediaFile().SetSkipAudio(true)
	trans.MediaFile().SetOutputFormat("image2")
	trans.MediaFile().SetVframes(1)

	done := trans.Run(false)
	select {
	case <-ctx.Done():
		stopTranscoder(trans, done, stopGrace)
		return nil, ctx.Err()
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("extracting frame at %.2fs: %w", atSeconds, err)
		}
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		return nil, fmt.Errorf("reading frame: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding frame: %w", err)
	}

	s.logger.Debug("generated thumbnail",
		zap.Float64("at", atSeconds),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height))

	return &Thumbnail{At: atSeconds, Data: data, Width: cfg.Width, Height: cfg.Height}, nil
}

// stopGrace is how long a stopped ffmpeg may take to quit before it is killed.
const stopGrace = 2 * time.Second

// transcoderProcess is the part of *transcoder.Transcoder needed to stop a run.
type transcoderProcess interface {
	Stop() error
	Process() *exec.Cmd
}

// stopTranscoder asks ffmpeg to quit, kills it after grace, and waits for the
// result of Run so its goroutine can exit.
func stopTranscoder(t transcoderProcess, done <-chan error, grace time.Duration) {
	_ = t.Stop()
	select {
	case <-done:
		return
	case <-time.After(grace):
	}
	if cmd := t.Process(); cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
	<-done
}

// scaleFilter fits the frame inside max without upscaling past it.
func scaleFilter(max Size) string {
	return fmt.Sprintf("scale=w=%d:h=%d:force_original_aspect_ratio=decrease", max.Width, max.Height)
}

// parseDuration reads ffprobe's format duration, which is a decimal string.
func parseDuration(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "N/A" {
		return 0, fmt.Errorf("no duration reported")
	}
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return 0, fmt.Errorf("duration %q is not positive", raw)
	}
	return d, nil
}
