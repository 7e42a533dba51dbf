package tui

import (
	"context"
	"image"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/user/video-trim-cli/media"
	"github.com/user/video-trim-cli/tui/components"
)

// thumbnailsLoadedMsg carries the decoded timeline thumbnails.
type thumbnailsLoadedMsg struct {
	// path is the file the thumbnails were taken from
	path   string
	thumbs []*media.Thumbnail
	err    error
}

// loadThumbnailsCmd extracts the thumbnails off the UI goroutine.
func loadThumbnailsCmd(ctx context.Context, src media.Source, times []float64, max media.Size, logger *zap.Logger) tea.Cmd {
	if src == nil || len(times) == 0 {
		return nil
	}
	return func() tea.Msg {
		thumbs, err := media.Thumbnails(ctx, src, times, max, logger)
		return thumbnailsLoadedMsg{path: src.Path(), thumbs: thumbs, err: err}
	}
}

// sampleThumbnails decodes the thumbnails and averages them into strip cells.
// Thumbnails that fail to decode are left out.
func sampleThumbnails(thumbs []*media.Thumbnail, cols, rows int, logger *zap.Logger) [][]components.Cell {
	images := make([]image.Image, 0, len(thumbs))
	for _, t := range thumbs {
		img, err := t.Image()
		if err != nil {
			logger.Debug("skipping undecodable thumbnail", zap.Float64("at", t.At), zap.Error(err))
			continue
		}
		images = append(images, img)
	}
	return components.SampleStrip(images, cols, rows)
}
