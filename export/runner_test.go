package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/video-trim-cli/db"
	"github.com/user/video-trim-cli/media"
	"github.com/user/video-trim-cli/trim"
)

type fakeSource string

func (f fakeSource) Path() string { return string(f) }

func (f fakeSource) Duration(context.Context) (float64, error) { return 10, nil }

func (f fakeSource) Thumbnail(context.Context, float64, media.Size) (*media.Thumbnail, error) {
	return nil, errors.New("no thumbnails")
}

// fakeExporter blocks until release is closed, then succeeds or fails.
type fakeExporter struct {
	release chan struct{}
	err     error
	calls   int
}

func (f *fakeExporter) Export(ctx context.Context, src media.Source, r trim.Range, progress func(float64)) (*media.Output, error) {
	f.calls++
	progress(0.5)
	select {
	case <-f.release:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", media.ErrExportCancelled, ctx.Err())
	}
	if f.err != nil {
		return nil, f.err
	}
	progress(1)
	return &media.Output{Path: "/tmp/out.mp4", Size: 99, Range: r}, nil
}

func collect(t *testing.T, ch <-chan Event) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("timed out waiting for export events")
		}
	}
}

func TestStartRejectsConcurrentExport(t *testing.T) {
	exp := &fakeExporter{release: make(chan struct{})}
	r := NewRunner(exp, nil, nil)

	ch, err := r.Start(context.Background(), fakeSource("/videos/a.mp4"), trim.Range{Start: 0, End: 5})
	require.NoError(t, err)
	assert.True(t, r.Busy())

	_, err = r.Start(context.Background(), fakeSource("/videos/a.mp4"), trim.Range{Start: 1, End: 5})
	assert.ErrorIs(t, err, ErrExportInProgress)

	close(exp.release)
	events := collect(t, ch)
	require.NotEmpty(t, events)
	done, ok := events[len(events)-1].(CompleteEvent)
	require.True(t, ok, "last event should be CompleteEvent, got %T", events[len(events)-1])
	assert.Equal(t, "/tmp/out.mp4", done.Output.Path)
	assert.Equal(t, 1, exp.calls)

	assert.False(t, r.Busy(), "runner is free again after completion")
}

func TestStartReportsFailure(t *testing.T) {
	exp := &fakeExporter{release: make(chan struct{}), err: fmt.Errorf("%w: exit status 1", media.ErrExportFailed)}
	close(exp.release)
	r := NewRunner(exp, nil, nil)

	ch, err := r.Start(context.Background(), fakeSource("/videos/a.mp4"), trim.Range{Start: 0, End: 5})
	require.NoError(t, err)
	events := collect(t, ch)

	failed, ok := events[len(events)-1].(FailedEvent)
	require.True(t, ok)
	assert.ErrorIs(t, failed.Err, media.ErrExportFailed)

	// a failed export can be retried straight away
	_, err = r.Start(context.Background(), fakeSource("/videos/a.mp4"), trim.Range{Start: 0, End: 5})
	assert.NoError(t, err)
}

func TestRunRecordsHistory(t *testing.T) {
	database, err := db.OpenAt(filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	defer database.Close()

	exp := &fakeExporter{release: make(chan struct{})}
	close(exp.release)
	r := NewRunner(exp, database, nil)

	var fractions []float64
	out, err := r.Run(context.Background(), fakeSource("/videos/history.mp4"), trim.Range{Start: 2, End: 6},
		func(f float64) { fractions = append(fractions, f) })
	require.NoError(t, err)
	assert.Equal(t, int64(99), out.Size)
	assert.Equal(t, []float64{0.5, 1}, fractions)

	exports, err := db.SelectExports(database, "/videos/history.mp4")
	require.NoError(t, err)
	require.Len(t, exports, 1)
	assert.Equal(t, db.StatusComplete, exports[0].Status)
	assert.Equal(t, "/tmp/out.mp4", exports[0].OutputPath)
	assert.Equal(t, 2.0, exports[0].Start)
	assert.Equal(t, 6.0, exports[0].End)
}

func TestRunRecordsCancellation(t *testing.T) {
	database, err := db.OpenAt(filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	defer database.Close()

	exp := &fakeExporter{release: make(chan struct{})}
	r := NewRunner(exp, database, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx, fakeSource("/videos/c.mp4"), trim.Range{Start: 0, End: 3}, nil)
	assert.ErrorIs(t, err, media.ErrExportCancelled)

	exports, err := db.SelectExports(database, "/videos/c.mp4")
	require.NoError(t, err)
	require.Len(t, exports, 1)
	assert.Equal(t, db.StatusError, exports[0].Status)
	assert.NotEmpty(t, exports[0].Log)
}

// chattyExporter reports far more progress than the event buffer holds.
type chattyExporter struct{ steps int }

func (c chattyExporter) Export(ctx context.Context, src media.Source, r trim.Range, progress func(float64)) (*media.Output, error) {
	for i := 1; i <= c.steps; i++ {
		progress(float64(i) / float64(c.steps))
	}
	return &media.Output{Path: "/tmp/out.mp4", Size: 7, Range: r}, nil
}

func TestStartFinishesWithoutReader(t *testing.T) {
	r := NewRunner(chattyExporter{steps: 3 * eventBuffer}, nil, nil)

	ch, err := r.Start(context.Background(), fakeSource("/videos/a.mp4"), trim.Range{Start: 0, End: 5})
	require.NoError(t, err)

	// nobody reads until the goroutine has already closed the channel
	require.Eventually(t, func() bool { return !r.Busy() && len(ch) == cap(ch) }, 5*time.Second, 10*time.Millisecond)

	events := collect(t, ch)
	assert.Len(t, events, eventBuffer)
	_, ok := events[len(events)-1].(CompleteEvent)
	assert.True(t, ok, "final event kept its slot, got %T", events[len(events)-1])
}
