package trim

import (
	"math"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Clock is the playback device the controller steers.
type Clock interface {
	Seek(seconds float64) error
	Play() error
	Pause() error
}

// Option configures a Controller.
type Option func(*Controller)

// WithConfig overrides the tuning constants. Unset fields keep their defaults.
func WithConfig(cfg Config) Option {
	return func(c *Controller) {
		c.cfg = cfg.withDefaults()
	}
}

// WithLogger sets the logger used to report clock failures.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNow replaces the time source used for drag coalescing.
func WithNow(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// Controller owns the trim range, its timeline geometry and the playback feedback.
// All methods must be called from the same goroutine.
type Controller struct {
	cfg    Config
	clock  Clock
	logger *zap.Logger
	now    func() time.Time

	throttle *Throttle

	loaded   bool
	duration float64
	rng      Range
	geo      Geometry
	progress Progress
	playing  bool

	subscribers map[int]func(State)
	nextSubID   int
	lastNotify  State
}

// NewController creates a controller driving clock. A nil clock is allowed for
// headless use; playback commands are then dropped.
func NewController(clock Clock, opts ...Option) *Controller {
	c := &Controller{
		cfg:         DefaultConfig(),
		clock:       clock,
		logger:      zap.NewNop(),
		now:         time.Now,
		subscribers: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.throttle = NewThrottle(c.cfg.CoalesceWindow)
	c.geo.Width = c.cfg.TimelineWidth
	return c
}

// Config returns the tuning in effect.
func (c *Controller) Config() Config {
	return c.cfg
}

// Initialize loads a new media duration and resets range, geometry and playback.
func (c *Controller) Initialize(duration float64) {
	c.throttle.Reset()
	c.playing = false
	c.progress = Progress{}

	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		c.logger.Warn("ignoring unusable media duration", zap.Float64("duration", duration))
		c.loaded = false
		c.duration = 0
		c.rng = Range{}
		c.geo = Geometry{Width: c.cfg.TimelineWidth}
		c.notify()
		return
	}

	c.loaded = true
	c.duration = duration
	c.rng = Range{Start: 0, End: math.Min(duration, c.cfg.MaxTrimSeconds)}
	c.geo = Geometry{
		Width:      c.cfg.TimelineWidth,
		StartPixel: 0,
		EndPixel:   c.PixelFor(c.rng.End),
	}
	c.logger.Debug("trim range initialized",
		zap.Float64("duration", duration),
		zap.Float64("end", c.rng.End))
	c.notify()
}

// MaxSelectableWidth is the widest handle span allowed, in pixels.
func (c *Controller) MaxSelectableWidth() float64 {
	if !c.loaded {
		return 0
	}
	return math.Min(c.duration, c.cfg.MaxTrimSeconds) / c.duration * c.geo.Width
}

// PixelFor maps seconds onto the timeline.
func (c *Controller) PixelFor(seconds float64) float64 {
	if c.duration <= 0 {
		return 0
	}
	return seconds / c.duration * c.geo.Width
}

// SecondsFor maps a timeline pixel back to seconds.
func (c *Controller) SecondsFor(pixel float64) float64 {
	if c.geo.Width <= 0 {
		return 0
	}
	return pixel / c.geo.Width * c.duration
}

// DragWholeRange feeds a whole-range drag delta through the coalescer. At most one
// delta is applied per coalesce window; deltas arriving in between overwrite each
// other and the survivor is applied by FlushDrag.
func (c *Controller) DragWholeRange(deltaPixels float64) {
	if !c.loaded {
		return
	}
	if delta, ok := c.throttle.Push(deltaPixels, c.now()); ok {
		c.shiftRange(delta)
	}
}

// FlushDrag applies a coalesced drag delta whose window has elapsed. The host
// calls it on a timer. It reports whether a delta was applied.
func (c *Controller) FlushDrag() bool {
	if !c.loaded {
		return false
	}
	delta, ok := c.throttle.Poll(c.now())
	if ok {
		c.shiftRange(delta)
	}
	return ok
}

// shiftRange moves both handles, shrinking and clamping so the span stays valid.
func (c *Controller) shiftRange(deltaPixels float64) {
	step := deltaPixels * c.cfg.Sensitivity
	newStart := c.geo.StartPixel + step
	newEnd := c.geo.EndPixel + step

	maxWidth := c.MaxSelectableWidth()
	if newEnd-newStart > maxWidth {
		overflow := (newEnd - newStart) - maxWidth
		newStart += overflow / 2
		newEnd -= overflow / 2
	}
	if newStart < 0 {
		newEnd += -newStart
		newStart = 0
	}
	if newEnd > c.geo.Width {
		newStart -= newEnd - c.geo.Width
		newEnd = c.geo.Width
	}
	newStart = lo.Clamp(newStart, 0, c.geo.Width)

	c.geo.StartPixel = newStart
	c.geo.EndPixel = newEnd
	c.syncSeconds()
	c.notify()
}

// DragStartHandle moves the start handle to x, keeping the gap and width limits,
// and seeks the clock to the new start.
func (c *Controller) DragStartHandle(x float64) {
	if !c.loaded {
		return
	}
	pos := math.Max(0, math.Min(x, c.geo.EndPixel-c.cfg.HandleGapPixels))
	if c.geo.EndPixel-pos > c.MaxSelectableWidth() {
		pos = c.geo.EndPixel - c.MaxSelectableWidth()
	}
	c.geo.StartPixel = pos
	c.rng.Start = c.SecondsFor(pos)
	c.seek(c.rng.Start)
	c.notify()
}

// DragEndHandle moves the end handle to x, keeping the gap and width limits.
func (c *Controller) DragEndHandle(x float64) {
	if !c.loaded {
		return
	}
	pos := math.Min(c.geo.Width, math.Max(x, c.geo.StartPixel+c.cfg.HandleGapPixels))
	if pos-c.geo.StartPixel > c.MaxSelectableWidth() {
		pos = c.geo.StartPixel + c.MaxSelectableWidth()
	}
	c.geo.EndPixel = pos
	c.rng.End = c.SecondsFor(pos)
	c.notify()
}

// OnDragEnd applies any coalesced drag still pending, then pauses and rewinds the
// preview to the range start.
func (c *Controller) OnDragEnd() {
	if !c.loaded {
		return
	}
	if delta, ok := c.throttle.Drain(c.now()); ok {
		c.shiftRange(delta)
	}
	c.pause()
	c.seek(c.rng.Start)
	c.progress.Percent = 0
	c.notify()
}

// OnClockTick records the clock position, updates the play-head and loops back to
// the range start once the end is reached.
func (c *Controller) OnClockTick(currentSeconds float64) {
	if !c.loaded {
		return
	}
	c.progress.CurrentSeconds = currentSeconds

	if c.rng.Contains(currentSeconds) && c.rng.Length() > 0 {
		pct := (currentSeconds - c.rng.Start) / c.rng.Length() * 100
		c.progress.Percent = lo.Clamp(pct, 0, 100)
	}
	if currentSeconds >= c.rng.End {
		c.pause()
		c.seek(c.rng.Start)
	}
	c.notify()
}

// OnPlaybackEnded handles the clock running off the end of the media.
func (c *Controller) OnPlaybackEnded() {
	if !c.loaded {
		return
	}
	c.playing = false
	c.seek(c.rng.Start)
	c.notify()
}

// TogglePlayback plays or pauses the preview. Playing from a position outside the
// range starts from the range start.
func (c *Controller) TogglePlayback() {
	if !c.loaded {
		return
	}
	if c.playing {
		c.pause()
		c.notify()
		return
	}
	if pos := c.progress.CurrentSeconds; pos < c.rng.Start || pos >= c.rng.End {
		c.seek(c.rng.Start)
	}
	c.play()
	c.notify()
}

// RequestExport returns the range to hand to an exporter. ok is false until a
// duration has been loaded.
func (c *Controller) RequestExport() (Range, bool) {
	if !c.loaded {
		return Range{}, false
	}
	return c.rng, true
}

// ThumbnailTimes returns evenly spaced timestamps across the whole media.
func (c *Controller) ThumbnailTimes() []float64 {
	if !c.loaded {
		return nil
	}
	count := c.cfg.ThumbnailCount
	return lo.Times(count, func(i int) float64 {
		return float64(i) * (c.duration / float64(count))
	})
}

// State returns a snapshot of the controller.
func (c *Controller) State() State {
	return State{
		Loaded:             c.loaded,
		Duration:           c.duration,
		Range:              c.rng,
		Geometry:           c.geo,
		Progress:           c.progress,
		Playing:            c.playing,
		MaxSelectableWidth: c.MaxSelectableWidth(),
	}
}

// Subscribe registers fn to be called with the new state after each change.
// The returned function removes the subscription.
func (c *Controller) Subscribe(fn func(State)) func() {
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	return func() {
		delete(c.subscribers, id)
	}
}

func (c *Controller) notify() {
	s := c.State()
	if s == c.lastNotify {
		return
	}
	c.lastNotify = s
	for _, fn := range c.subscribers {
		fn(s)
	}
}

func (c *Controller) syncSeconds() {
	c.rng.Start = c.SecondsFor(c.geo.StartPixel)
	c.rng.End = c.SecondsFor(c.geo.EndPixel)
}

func (c *Controller) seek(seconds float64) {
	c.progress.CurrentSeconds = seconds
	if c.clock == nil {
		return
	}
	if err := c.clock.Seek(seconds); err != nil {
		c.logger.Warn("clock seek failed", zap.Float64("seconds", seconds), zap.Error(err))
	}
}

func (c *Controller) play() {
	c.playing = true
	if c.clock == nil {
		return
	}
	if err := c.clock.Play(); err != nil {
		c.logger.Warn("clock play failed", zap.Error(err))
	}
}

func (c *Controller) pause() {
	c.playing = false
	if c.clock == nil {
		return
	}
	if err := c.clock.Pause(); err != nil {
		c.logger.Warn("clock pause failed", zap.Error(err))
	}
}
