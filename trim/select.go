package trim

// SelectRange moves the range toward [start, end] seconds with the same operations
// a user has: a whole-range drag to the start, then the end and start handles. Gap
// and width limits apply as they do for drags. It returns the resulting range with
// the preview paused at its start.
func (c *Controller) SelectRange(start, end float64) Range {
	if !c.loaded {
		return Range{}
	}
	startPx := c.PixelFor(start)
	endPx := c.PixelFor(end)

	c.throttle.Reset()
	c.shiftRange((startPx - c.geo.StartPixel) / c.cfg.Sensitivity)
	c.DragEndHandle(endPx)
	c.DragStartHandle(startPx)
	c.OnDragEnd()
	return c.rng
}
