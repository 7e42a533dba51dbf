package trim

import "time"

// Throttle lets at most one value through per window and keeps only the latest
// value offered in between. It is not safe for concurrent use; the owner drives it.
type Throttle struct {
	window   time.Duration
	last     time.Time
	emitted  bool
	pending  float64
	hasValue bool
}

// NewThrottle creates a throttle with the given window.
func NewThrottle(window time.Duration) *Throttle {
	return &Throttle{window: window}
}

// Push offers v. It is returned straight away when nothing was emitted during the
// last window; otherwise it replaces any pending value and false is returned.
func (t *Throttle) Push(v float64, now time.Time) (float64, bool) {
	if t.open(now) {
		t.hasValue = false
		t.mark(now)
		return v, true
	}
	t.pending = v
	t.hasValue = true
	return 0, false
}

// Poll returns the pending value once its window has elapsed.
func (t *Throttle) Poll(now time.Time) (float64, bool) {
	if !t.hasValue || !t.open(now) {
		return 0, false
	}
	v := t.pending
	t.hasValue = false
	t.mark(now)
	return v, true
}

// Drain returns the pending value without waiting for the window.
func (t *Throttle) Drain(now time.Time) (float64, bool) {
	if !t.hasValue {
		return 0, false
	}
	v := t.pending
	t.hasValue = false
	t.mark(now)
	return v, true
}

// Pending reports whether a value is waiting for its window.
func (t *Throttle) Pending() bool {
	return t.hasValue
}

// Reset drops the pending value and reopens the window.
func (t *Throttle) Reset() {
	t.hasValue = false
	t.pending = 0
	t.emitted = false
}

func (t *Throttle) open(now time.Time) bool {
	return !t.emitted || now.Sub(t.last) >= t.window
}

func (t *Throttle) mark(now time.Time) {
	t.last = now
	t.emitted = true
}
