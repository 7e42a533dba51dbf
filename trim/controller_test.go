package trim

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

// fakeClock records the commands issued by the controller.
type fakeClock struct {
	seeks  []float64
	plays  int
	pauses int
	err    error
}

func (f *fakeClock) Seek(seconds float64) error {
	f.seeks = append(f.seeks, seconds)
	return f.err
}

func (f *fakeClock) Play() error {
	f.plays++
	return f.err
}

func (f *fakeClock) Pause() error {
	f.pauses++
	return f.err
}

func (f *fakeClock) lastSeek(t *testing.T) float64 {
	t.Helper()
	require.NotEmpty(t, f.seeks, "expected at least one seek")
	return f.seeks[len(f.seeks)-1]
}

// manualNow is a controllable time source.
type manualNow struct {
	t time.Time
}

func (m *manualNow) now() time.Time { return m.t }

func (m *manualNow) advance(d time.Duration) { m.t = m.t.Add(d) }

func newTestController(duration float64) (*Controller, *fakeClock, *manualNow) {
	clock := &fakeClock{}
	mn := &manualNow{t: time.Unix(1700000000, 0)}
	c := NewController(clock, WithNow(mn.now))
	c.Initialize(duration)
	return c, clock, mn
}

func assertGeometryValid(t *testing.T, c *Controller) {
	t.Helper()
	s := c.State()
	g := s.Geometry
	assert.GreaterOrEqual(t, g.StartPixel, -eps, "start pixel below zero")
	assert.LessOrEqual(t, g.EndPixel, g.Width+eps, "end pixel past width")
	assert.Less(t, g.StartPixel, g.EndPixel, "handles crossed")
	assert.LessOrEqual(t, g.Span(), s.MaxSelectableWidth+eps, "span wider than max selectable width")
	assert.LessOrEqual(t, s.Range.Length(), c.Config().MaxTrimSeconds+eps, "range longer than cap")
	assert.GreaterOrEqual(t, s.Range.Start, -eps)
	assert.LessOrEqual(t, s.Range.End, s.Duration+eps)
}

func TestInitializeRange(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		wantEnd  float64
	}{
		{"longer than cap", 10, 7},
		{"exactly cap", 7, 7},
		{"shorter than cap", 3, 3},
		{"very long", 3600, 7},
		{"sub second", 0.5, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newTestController(tt.duration)
			s := c.State()
			require.True(t, s.Loaded)
			assert.Equal(t, 0.0, s.Range.Start)
			assert.InDelta(t, tt.wantEnd, s.Range.End, eps)
			assert.Equal(t, 0.0, s.Geometry.StartPixel)
			assert.InDelta(t, tt.wantEnd/tt.duration*DefaultTimelineWidth, s.Geometry.EndPixel, eps)
			assert.False(t, s.Playing)
			assertGeometryValid(t, c)
		})
	}
}

func TestInitializeRejectsUnusableDuration(t *testing.T) {
	for _, d := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		c, clock, _ := newTestController(d)
		assert.False(t, c.State().Loaded, "duration %v", d)
		_, ok := c.RequestExport()
		assert.False(t, ok)

		c.DragStartHandle(50)
		c.TogglePlayback()
		c.OnClockTick(1)
		assert.Empty(t, clock.seeks)
		assert.Zero(t, clock.plays)
	}
}

func TestInitializeReplacesPreviousSource(t *testing.T) {
	c, _, _ := newTestController(10)
	c.DragStartHandle(100)
	c.TogglePlayback()
	require.True(t, c.State().Playing)

	c.Initialize(20)
	s := c.State()
	assert.Equal(t, Range{Start: 0, End: 7}, s.Range)
	assert.False(t, s.Playing)
	assert.Equal(t, Progress{}, s.Progress)
}

func TestScenarioTenSecondsOnThreeHundredPixels(t *testing.T) {
	c, _, _ := newTestController(10)
	s := c.State()
	assert.InDelta(t, 0, s.Range.Start, eps)
	assert.InDelta(t, 7, s.Range.End, eps)
	assert.InDelta(t, 0, s.Geometry.StartPixel, eps)
	assert.InDelta(t, 210, s.Geometry.EndPixel, eps)
	assert.InDelta(t, 210, c.MaxSelectableWidth(), eps)

	c.DragEndHandle(250)
	s = c.State()
	assert.InDelta(t, 210, s.Geometry.EndPixel, eps, "end handle should be capped by the 7s width")
	assert.InDelta(t, 7, s.Range.End, eps)
}

func TestScenarioShortMediaUsesFullWidth(t *testing.T) {
	c, _, _ := newTestController(3)
	s := c.State()
	assert.InDelta(t, 3, s.Range.End, eps)
	assert.InDelta(t, DefaultTimelineWidth, s.Geometry.EndPixel, eps)
	assert.InDelta(t, DefaultTimelineWidth, c.MaxSelectableWidth(), eps)
}

func TestDragStartHandleGapBoundary(t *testing.T) {
	c, _, _ := newTestController(3)
	end := c.State().Geometry.EndPixel

	c.DragStartHandle(end - DefaultHandleGapPixels)
	assert.InDelta(t, end-DefaultHandleGapPixels, c.State().Geometry.StartPixel, eps)

	c.DragStartHandle(end - DefaultHandleGapPixels + 1)
	assert.InDelta(t, end-DefaultHandleGapPixels, c.State().Geometry.StartPixel, eps,
		"one pixel past the gap should clamp")
}

func TestDragStartHandleClampsAndSeeks(t *testing.T) {
	c, clock, _ := newTestController(10)

	c.DragStartHandle(-40)
	assert.Equal(t, 0.0, c.State().Geometry.StartPixel)

	c.DragStartHandle(90)
	s := c.State()
	assert.InDelta(t, 90, s.Geometry.StartPixel, eps)
	assert.InDelta(t, 3, s.Range.Start, eps)
	assert.InDelta(t, 3, clock.lastSeek(t), eps)
}

func TestDragStartHandleRespectsWidthCap(t *testing.T) {
	c, _, _ := newTestController(20)
	// max width is 7/20*300 = 105 pixels
	c.DragStartHandle(85)
	c.DragEndHandle(300)
	require.InDelta(t, 190, c.State().Geometry.EndPixel, eps)

	c.DragStartHandle(0)
	s := c.State()
	assert.InDelta(t, 85, s.Geometry.StartPixel, eps)
	assert.InDelta(t, 105, s.Geometry.Span(), eps)
}

func TestDragStartHandleRoundTrip(t *testing.T) {
	c, _, _ := newTestController(12.5)
	for _, x := range []float64{0, 13.7, 42, 100.25, 155} {
		c.DragStartHandle(x)
		s := c.State()
		want := s.Geometry.StartPixel / s.Geometry.Width * s.Duration
		assert.InDelta(t, want, s.Range.Start, 1e-9)
	}
}

func TestDragEndHandleClampsToGapAndDoesNotSeek(t *testing.T) {
	c, clock, _ := newTestController(10)
	c.DragStartHandle(100)
	seeks := len(clock.seeks)

	c.DragEndHandle(105)
	s := c.State()
	assert.InDelta(t, 100+DefaultHandleGapPixels, s.Geometry.EndPixel, eps)
	assert.InDelta(t, 4, s.Range.End, eps)
	assert.Len(t, clock.seeks, seeks, "end handle must not seek")

	c.DragEndHandle(1000)
	assert.InDelta(t, 300, c.State().Geometry.EndPixel, eps)
}

func TestDragWholeRangeAppliesSensitivity(t *testing.T) {
	c, _, _ := newTestController(10)
	c.DragWholeRange(100)
	s := c.State()
	assert.InDelta(t, 9, s.Geometry.StartPixel, eps)
	assert.InDelta(t, 219, s.Geometry.EndPixel, eps)
	assert.InDelta(t, 0.3, s.Range.Start, eps)
	assert.InDelta(t, 7.3, s.Range.End, eps)
}

func TestDragWholeRangeClampsAtBothEnds(t *testing.T) {
	c, _, mn := newTestController(10)

	c.DragWholeRange(-500)
	s := c.State()
	assert.Equal(t, 0.0, s.Geometry.StartPixel)
	assert.InDelta(t, 210, s.Geometry.EndPixel, eps, "width preserved when clamped at zero")

	mn.advance(time.Second)
	c.DragWholeRange(5000)
	s = c.State()
	assert.InDelta(t, 300, s.Geometry.EndPixel, eps)
	assert.InDelta(t, 90, s.Geometry.StartPixel, eps, "width preserved when clamped at the end")
	assert.InDelta(t, 3, s.Range.Start, eps)
	assert.InDelta(t, 10, s.Range.End, eps)
}

func TestDragWholeRangeCoalescesRapidInput(t *testing.T) {
	c, _, mn := newTestController(10)

	c.DragWholeRange(10) // applied immediately
	first := c.State().Geometry.StartPixel
	assert.InDelta(t, 0.9, first, eps)

	mn.advance(20 * time.Millisecond)
	c.DragWholeRange(20)
	mn.advance(20 * time.Millisecond)
	c.DragWholeRange(30)
	mn.advance(20 * time.Millisecond)
	c.DragWholeRange(40)
	assert.InDelta(t, first, c.State().Geometry.StartPixel, eps, "deltas inside the window are held back")

	assert.False(t, c.FlushDrag(), "window has not elapsed yet")

	mn.advance(50 * time.Millisecond)
	assert.True(t, c.FlushDrag())
	assert.InDelta(t, first+40*DefaultSensitivity, c.State().Geometry.StartPixel, eps,
		"only the most recent delta is applied")

	mn.advance(time.Second)
	assert.False(t, c.FlushDrag(), "stale deltas must not be replayed")
}

func TestOnDragEndFlushesPendingDelta(t *testing.T) {
	c, clock, mn := newTestController(10)
	c.DragWholeRange(10)
	mn.advance(10 * time.Millisecond)
	c.DragWholeRange(100)

	c.OnDragEnd()
	s := c.State()
	assert.InDelta(t, 0.9+100*DefaultSensitivity, s.Geometry.StartPixel, eps)
	assert.InDelta(t, s.Range.Start, clock.lastSeek(t), eps)
}

func TestOnDragEndIsIdempotent(t *testing.T) {
	c, _, _ := newTestController(10)
	c.DragStartHandle(60)
	c.TogglePlayback()
	c.OnClockTick(3)

	c.OnDragEnd()
	once := c.State()
	c.OnDragEnd()
	assert.Equal(t, once, c.State())
	assert.False(t, once.Playing)
	assert.Equal(t, 0.0, once.Progress.Percent)
}

func TestOnClockTickUpdatesPercent(t *testing.T) {
	c, _, _ := newTestController(10)
	c.DragStartHandle(60) // start = 2s, end = 7s

	c.OnClockTick(4.5)
	s := c.State()
	assert.InDelta(t, 50, s.Progress.Percent, eps)
	assert.InDelta(t, 4.5, s.Progress.CurrentSeconds, eps)

	c.OnClockTick(1)
	assert.InDelta(t, 50, c.State().Progress.Percent, eps, "ticks before the range keep the last percent")
}

func TestOnClockTickPastEndLoopsToStart(t *testing.T) {
	c, clock, _ := newTestController(10)
	c.DragStartHandle(30) // start = 1s
	c.TogglePlayback()
	require.True(t, c.State().Playing)
	pauses := clock.pauses

	end := c.State().Range.End
	c.OnClockTick(end + 0.01)

	s := c.State()
	assert.False(t, s.Playing)
	assert.Equal(t, pauses+1, clock.pauses)
	assert.InDelta(t, 1, clock.lastSeek(t), eps)
}

func TestOnPlaybackEnded(t *testing.T) {
	c, clock, _ := newTestController(4)
	c.TogglePlayback()
	c.OnPlaybackEnded()
	assert.False(t, c.State().Playing)
	assert.InDelta(t, 0, clock.lastSeek(t), eps)
}

func TestTogglePlayback(t *testing.T) {
	c, clock, _ := newTestController(10)
	c.DragStartHandle(60) // 2s
	seeks := len(clock.seeks)

	// clock position after the handle drag is the new start, so no extra seek
	c.TogglePlayback()
	assert.True(t, c.State().Playing)
	assert.Equal(t, 1, clock.plays)
	assert.Len(t, clock.seeks, seeks)

	c.TogglePlayback()
	assert.False(t, c.State().Playing)
	assert.Equal(t, 1, clock.pauses)

	// outside the range the preview restarts at the range start
	c.OnClockTick(1)
	seeks = len(clock.seeks)
	c.TogglePlayback()
	assert.True(t, c.State().Playing)
	assert.Len(t, clock.seeks, seeks+1)
	assert.InDelta(t, 2, clock.lastSeek(t), eps)
}

func TestClockErrorsAreNotFatal(t *testing.T) {
	c, clock, _ := newTestController(10)
	clock.err = errors.New("mpv: not connected")

	c.TogglePlayback()
	assert.True(t, c.State().Playing)
	c.OnDragEnd()
	assert.False(t, c.State().Playing)
}

func TestRequestExportReturnsCurrentRange(t *testing.T) {
	c, _, _ := newTestController(10)
	c.DragStartHandle(30)
	c.DragEndHandle(120)
	r, ok := c.RequestExport()
	require.True(t, ok)
	assert.InDelta(t, 1, r.Start, eps)
	assert.InDelta(t, 4, r.End, eps)
}

func TestThumbnailTimesSpanWholeDuration(t *testing.T) {
	c, _, _ := newTestController(10)
	assert.Equal(t, []float64{0, 2, 4, 6, 8}, c.ThumbnailTimes())
}

func TestSubscribeNotifiesOnChange(t *testing.T) {
	c, _, _ := newTestController(10)
	var got []State
	cancel := c.Subscribe(func(s State) { got = append(got, s) })

	c.DragStartHandle(30)
	require.Len(t, got, 1)
	assert.InDelta(t, 1, got[0].Range.Start, eps)

	c.DragStartHandle(30)
	assert.Len(t, got, 1, "no notification without a change")

	cancel()
	c.DragStartHandle(60)
	assert.Len(t, got, 1)
}

func TestWithConfigOverrides(t *testing.T) {
	c := NewController(nil, WithConfig(Config{MaxTrimSeconds: 3, TimelineWidth: 600}))
	c.Initialize(12)
	s := c.State()
	assert.InDelta(t, 3, s.Range.End, eps)
	assert.InDelta(t, 150, s.Geometry.EndPixel, eps)
	assert.Equal(t, DefaultSensitivity, c.Config().Sensitivity)
	assert.Equal(t, DefaultHandleGapPixels, c.Config().HandleGapPixels)
}

func TestWidthInvariantUnderRandomDrags(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, d := range []float64{0.8, 3, 7, 7.5, 10, 60, 5400} {
		c, _, mn := newTestController(d)
		width := c.State().Geometry.Width
		for i := 0; i < 500; i++ {
			mn.advance(time.Duration(rng.Intn(150)) * time.Millisecond)
			x := rng.Float64()*width*1.6 - width*0.3
			switch rng.Intn(6) {
			case 0:
				c.DragStartHandle(x)
			case 1:
				c.DragEndHandle(x)
			case 2:
				c.DragWholeRange(rng.Float64()*4000 - 2000)
			case 3:
				c.FlushDrag()
			case 4:
				c.OnDragEnd()
			case 5:
				c.OnClockTick(rng.Float64() * d * 1.2)
			}
			assertGeometryValid(t, c)
		}
	}
}
