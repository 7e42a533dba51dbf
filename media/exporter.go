package media

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/video-trim-cli/pkg/timeutil"
	"github.com/user/video-trim-cli/trim"
)

// ExportSettings selects the encoder and where output files go.
type ExportSettings struct {
	// Binary is the ffmpeg executable. Empty means "ffmpeg" from PATH.
	Binary     string
	OutputDir  string
	VideoCodec string
	AudioCodec string
	Preset     string
}

// FFmpegExporter re-encodes a range with ffmpeg into <OutputDir>/<uuid>.mp4.
type FFmpegExporter struct {
	settings ExportSettings
	logger   *zap.Logger
	newName  func() string
}

// NewFFmpegExporter fills unset settings with libx264/aac/fast into the OS temp dir.
func NewFFmpegExporter(settings ExportSettings, logger *zap.Logger) *FFmpegExporter {
	if settings.Binary == "" {
		settings.Binary = "ffmpeg"
	}
	if settings.OutputDir == "" {
		settings.OutputDir = os.TempDir()
	}
	if settings.VideoCodec == "" {
		settings.VideoCodec = "libx264"
	}
	if settings.AudioCodec == "" {
		settings.AudioCodec = "aac"
	}
	if settings.Preset == "" {
		settings.Preset = "fast"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FFmpegExporter{
		settings: settings,
		logger:   logger,
		newName:  func() string { return uuid.NewString() + ".mp4" },
	}
}

// Settings returns the effective settings.
func (e *FFmpegExporter) Settings() ExportSettings {
	return e.settings
}

// Export encodes r of src. A partially written file is removed on failure.
func (e *FFmpegExporter) Export(ctx context.Context, src Source, r trim.Range, progress func(float64)) (*Output, error) {
	length := r.Length()
	if r.Start < 0 || length <= 0 {
		return nil, fmt.Errorf("%w: invalid range %.3f-%.3f", ErrExportFailed, r.Start, r.End)
	}
	if err := os.MkdirAll(e.settings.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating output dir: %v", ErrExportFailed, err)
	}
	outPath := filepath.Join(e.settings.OutputDir, e.newName())

	args := []string{
		"-y",
		"-nostdin",
		"-loglevel", "error",
		"-ss", timeutil.FormatFFmpeg(r.Start),
		"-i", src.Path(),
		"-t", strconv.FormatFloat(length, 'f', 3, 64),
		"-c:v", e.settings.VideoCodec,
		"-c:a", e.settings.AudioCodec,
		"-preset", e.settings.Preset,
		"-progress", "pipe:1",
		outPath,
	}

	cmd := exec.CommandContext(ctx, e.settings.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	e.logger.Info("export started",
		zap.String("source", src.Path()),
		zap.Float64("start", r.Start),
		zap.Float64("end", r.End),
		zap.String("output", outPath))

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: starting %s: %v", ErrExportFailed, e.settings.Binary, err)
	}
	readProgress(stdout, length, progress)
	runErr := cmd.Wait()

	if ctx.Err() != nil {
		os.Remove(outPath)
		return nil, fmt.Errorf("%w: %v", ErrExportCancelled, ctx.Err())
	}
	if runErr != nil {
		os.Remove(outPath)
		return nil, fmt.Errorf("%w: %v: %s", ErrExportFailed, runErr, strings.TrimSpace(stderr.String()))
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return nil, fmt.Errorf("%w: output missing: %v", ErrExportFailed, err)
	}
	if progress != nil {
		progress(1)
	}

	e.logger.Info("export finished", zap.String("output", outPath), zap.Int64("size", info.Size()))
	return &Output{Path: outPath, Size: info.Size(), Range: r}, nil
}

// readProgress consumes ffmpeg's -progress key=value stream until EOF.
func readProgress(r io.Reader, length float64, progress func(float64)) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if frac, ok := parseProgressLine(scanner.Text(), length); ok && progress != nil {
			progress(frac)
		}
	}
	// drain so ffmpeg never blocks on a full pipe
	_, _ = io.Copy(io.Discard, r)
}

// parseProgressLine turns one -progress line into a completed fraction.
func parseProgressLine(line string, length float64) (float64, bool) {
	key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return 0, false
	}
	switch key {
	case "out_time_us", "out_time_ms":
		// both keys carry microseconds
		us, err := strconv.ParseInt(value, 10, 64)
		if err != nil || length <= 0 {
			return 0, false
		}
		return clampFraction(float64(us) / 1e6 / length), true
	case "progress":
		if value == "end" {
			return 1, true
		}
	}
	return 0, false
}

func clampFraction(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// IsCancelled reports whether err came from a cancelled export.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrExportCancelled) || errors.Is(err, context.Canceled)
}
