package tui

import (
	"math"

	"github.com/user/video-trim-cli/trim"
)

// minTimelineCells keeps the bar usable on narrow terminals.
const minTimelineCells = 10

// dragTarget is what a mouse press grabbed.
type dragTarget int

const (
	dragNone dragTarget = iota
	dragStart
	dragEnd
	dragRange
)

// timelineScale maps terminal cells onto the controller's logical pixel width.
type timelineScale struct {
	cells int
	width float64
}

// newTimelineScale sizes the bar for a terminal termWidth columns wide. The box
// border and one space of padding take two columns on each side.
func newTimelineScale(termWidth int, logicalWidth float64) timelineScale {
	cells := termWidth - 4
	if cells < minTimelineCells {
		cells = minTimelineCells
	}
	return timelineScale{cells: cells, width: logicalWidth}
}

// step is the logical width of one cell.
func (s timelineScale) step() float64 {
	return s.width / float64(s.cells)
}

// cellFor returns the cell containing logical pixel px.
func (s timelineScale) cellFor(px float64) int {
	c := int(math.Floor(px / s.step()))
	if c < 0 {
		return 0
	}
	if c >= s.cells {
		return s.cells - 1
	}
	return c
}

// leftEdge is the logical pixel where cell starts.
func (s timelineScale) leftEdge(cell int) float64 {
	return float64(cell) * s.step()
}

// rightEdge is the logical pixel where cell ends.
func (s timelineScale) rightEdge(cell int) float64 {
	return float64(cell+1) * s.step()
}

// handleCells places both handles on distinct cells.
func (s timelineScale) handleCells(g trim.Geometry) (start, end int) {
	start = s.cellFor(g.StartPixel)
	// an end handle sitting exactly on a cell boundary belongs to the cell before it
	end = s.cellFor(math.Max(g.EndPixel-s.step()/2, 0))
	if end <= start {
		end = start + 1
	}
	if end >= s.cells {
		end = s.cells - 1
		start = end - 1
	}
	return start, end
}

// hit reports what a press on cell grabs. Handles win over the range body and
// have a one-cell tolerance.
func (s timelineScale) hit(cell int, g trim.Geometry) dragTarget {
	start, end := s.handleCells(g)
	ds := absInt(cell - start)
	de := absInt(cell - end)
	if ds <= 1 || de <= 1 {
		if ds < de || (ds == de && cell <= start) {
			return dragStart
		}
		return dragEnd
	}
	if cell > start && cell < end {
		return dragRange
	}
	return dragNone
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
