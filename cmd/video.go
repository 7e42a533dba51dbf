package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/user/video-trim-cli/media"
	"github.com/user/video-trim-cli/trim"
)

// resolveVideo returns the absolute path of an existing regular file.
func resolveVideo(videoPath string) (string, error) {
	absPath, err := filepath.Abs(videoPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	info, err := os.Stat(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("video file not found: %s", absPath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to access video file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a video file: %s", absPath)
	}
	return absPath, nil
}

// readDuration asks the source for the duration and falls back to fallback, when
// given, if the source cannot tell.
func readDuration(ctx context.Context, src media.Source, fallback func() (float64, error)) (float64, error) {
	duration, err := src.Duration(ctx)
	if err == nil {
		return duration, nil
	}
	if fallback == nil {
		return 0, err
	}
	logger.Warn("source duration unavailable, asking the player", zap.String("path", src.Path()), zap.Error(err))
	duration, fbErr := fallback()
	if fbErr != nil {
		return 0, fmt.Errorf("%w: %v", media.ErrDurationUnavailable, fbErr)
	}
	return duration, nil
}

// newController builds a controller with the configured tuning and loads duration.
func newController(clock trim.Clock, duration float64) (*trim.Controller, error) {
	ctrl := trim.NewController(clock,
		trim.WithConfig(appConfig.TrimConfig()),
		trim.WithLogger(logger.Named("trim")),
	)
	ctrl.Initialize(duration)
	if !ctrl.State().Loaded {
		return nil, fmt.Errorf("%w: got %v", media.ErrDurationUnavailable, duration)
	}
	return ctrl, nil
}
