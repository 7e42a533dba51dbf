// Package export runs trim exports in the background and records them in the history store.
package export

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/user/video-trim-cli/db"
	"github.com/user/video-trim-cli/media"
	"github.com/user/video-trim-cli/trim"
)

// ErrExportInProgress is returned by Start while another export is running.
var ErrExportInProgress = errors.New("export: an export is already running")

// Event is sent on the channel returned by Start.
type Event interface {
	isEvent()
}

// ProgressEvent reports the completed fraction in [0, 1].
type ProgressEvent struct {
	Fraction float64
}

// CompleteEvent is the last event of a successful export.
type CompleteEvent struct {
	ExportID int64
	Output   *media.Output
}

// FailedEvent is the last event of a failed or cancelled export.
type FailedEvent struct {
	ExportID int64
	Err      error
}

func (ProgressEvent) isEvent() {}
func (CompleteEvent) isEvent() {}
func (FailedEvent) isEvent()   {}

// Runner allows one export at a time.
type Runner struct {
	exporter media.Exporter
	db       *sql.DB
	logger   *zap.Logger
	sem      *semaphore.Weighted
	now      func() time.Time
}

// NewRunner creates a runner. database may be nil to skip history recording.
func NewRunner(exporter media.Exporter, database *sql.DB, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		exporter: exporter,
		db:       database,
		logger:   logger,
		sem:      semaphore.NewWeighted(1),
		now:      time.Now,
	}
}

// Busy reports whether an export is running.
func (r *Runner) Busy() bool {
	if r.sem.TryAcquire(1) {
		r.sem.Release(1)
		return false
	}
	return true
}

// eventBuffer is the capacity of the channel returned by Start.
const eventBuffer = 16

// Start launches an export of rng from src. The returned channel carries progress
// events and ends with exactly one CompleteEvent or FailedEvent before it is closed.
// A second call while an export is running fails with ErrExportInProgress.
func (r *Runner) Start(ctx context.Context, src media.Source, rng trim.Range) (<-chan Event, error) {
	if !r.sem.TryAcquire(1) {
		return nil, ErrExportInProgress
	}

	ch := make(chan Event, eventBuffer)
	go func() {
		defer close(ch)
		id, out, err := r.run(ctx, src, rng, func(f float64) {
			// progress is advisory and never fills the last slot, which is
			// kept for the final event so this goroutine exits even when
			// nobody reads
			if len(ch) >= cap(ch)-1 {
				return
			}
			ch <- ProgressEvent{Fraction: f}
		})
		r.sem.Release(1)

		if err != nil {
			ch <- FailedEvent{ExportID: id, Err: err}
			return
		}
		ch <- CompleteEvent{ExportID: id, Output: out}
	}()
	return ch, nil
}

// Run exports synchronously, calling progress with completed fractions.
func (r *Runner) Run(ctx context.Context, src media.Source, rng trim.Range, progress func(float64)) (*media.Output, error) {
	events, err := r.Start(ctx, src, rng)
	if err != nil {
		return nil, err
	}
	for ev := range events {
		switch e := ev.(type) {
		case ProgressEvent:
			if progress != nil {
				progress(e.Fraction)
			}
		case CompleteEvent:
			return e.Output, nil
		case FailedEvent:
			return nil, e.Err
		}
	}
	return nil, media.ErrExportFailed
}

func (r *Runner) run(ctx context.Context, src media.Source, rng trim.Range, progress func(float64)) (int64, *media.Output, error) {
	exportID := r.recordPending(src, rng)
	if exportID != 0 {
		if err := db.MarkExportProcessing(r.db, exportID, r.now()); err != nil {
			r.logger.Warn("recording export start failed", zap.Int64("export_id", exportID), zap.Error(err))
		}
	}

	out, err := r.exporter.Export(ctx, src, rng, progress)
	if err != nil {
		r.logger.Error("export failed",
			zap.String("source", src.Path()),
			zap.Float64("start", rng.Start),
			zap.Float64("end", rng.End),
			zap.Error(err))
		if exportID != 0 {
			if dbErr := db.MarkExportError(r.db, exportID, r.now(), err.Error()); dbErr != nil {
				r.logger.Warn("recording export error failed", zap.Int64("export_id", exportID), zap.Error(dbErr))
			}
		}
		return exportID, nil, err
	}

	if exportID != 0 {
		if err := db.MarkExportComplete(r.db, exportID, r.now(), out.Path, out.Size); err != nil {
			r.logger.Warn("recording export completion failed", zap.Int64("export_id", exportID), zap.Error(err))
		}
	}
	r.logger.Info("export complete", zap.String("output", out.Path), zap.Int64("size", out.Size))
	return exportID, out, nil
}

// recordPending inserts the pending history row. History is best effort: a store
// failure is logged and the export still runs. It returns 0 when nothing was recorded.
func (r *Runner) recordPending(src media.Source, rng trim.Range) int64 {
	if r.db == nil {
		return 0
	}
	var size int64
	if info, err := os.Stat(src.Path()); err == nil {
		size = info.Size()
	}
	video, err := db.EnsureVideo(r.db, src.Path(), 0, size)
	if err != nil {
		r.logger.Warn("recording video failed", zap.String("source", src.Path()), zap.Error(err))
		return 0
	}
	id, err := db.InsertExport(r.db, video.ID, rng.Start, rng.End)
	if err != nil {
		r.logger.Warn("recording export failed", zap.String("source", src.Path()), zap.Error(err))
		return 0
	}
	return id
}
