package media

import (
	"context"

	"go.uber.org/zap"
)

// Thumbnails renders one frame per timestamp. Frames that fail are skipped, so the
// result may be shorter than times. Only context cancellation is returned as an error.
func Thumbnails(ctx context.Context, src Source, times []float64, max Size, logger *zap.Logger) ([]*Thumbnail, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	thumbs := make([]*Thumbnail, 0, len(times))
	for _, at := range times {
		if err := ctx.Err(); err != nil {
			return thumbs, err
		}
		thumb, err := src.Thumbnail(ctx, at, max)
		if err != nil {
			if ctx.Err() != nil {
				return thumbs, ctx.Err()
			}
			logger.Warn("skipping thumbnail", zap.Float64("at", at), zap.Error(err))
			continue
		}
		thumbs = append(thumbs, thumb)
	}
	return thumbs, nil
}
