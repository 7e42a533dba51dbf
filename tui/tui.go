// Package tui is the terminal host of the trim controller.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/user/video-trim-cli/export"
	"github.com/user/video-trim-cli/media"
	"github.com/user/video-trim-cli/trim"
	"github.com/user/video-trim-cli/tui/components"
	"github.com/user/video-trim-cli/tui/layout"
	"github.com/user/video-trim-cli/tui/styles"
)

const (
	// defaultClockInterval matches the preview position polling of the player.
	defaultClockInterval = 200 * time.Millisecond
	// statusDisplayDuration is how long temporary messages stay visible.
	statusDisplayDuration = 3 * time.Second
	// minTerminalWidth fits the status bar and a usable timeline.
	minTerminalWidth = 40
	// timelineRow is the terminal row of the timeline box's top border.
	timelineRow = 1
)

// Player is the playback device: the controller's clock plus the position feed
// the host polls.
type Player interface {
	trim.Clock
	GetTimePos() (float64, error)
	GetEOF() (bool, error)
	IsConnected() bool
	LoadFile(path string) error
}

// Options wires the model to its collaborators. Controller must already be
// initialized with the source duration.
type Options struct {
	Controller    *trim.Controller
	Player        Player
	Source        media.Source
	Runner        *export.Runner
	ClockInterval time.Duration
	ThumbSize     media.Size
	Logger        *zap.Logger

	// OpenSource opens a finished export for preview. Without it the result
	// plays but the timeline has no thumbnails.
	OpenSource func(path string) media.Source
	// OnComplete is called with every finished export.
	OnComplete func(*media.Output)
}

// clockTickMsg polls the player position.
type clockTickMsg time.Time

// flushTickMsg applies a coalesced whole-range drag.
type flushTickMsg time.Time

// clearStatusMsg clears the status line if it still shows message id.
type clearStatusMsg struct {
	id int
}

// Model is the Bubbletea model of the trimmer.
type Model struct {
	opts   Options
	ctrl   *trim.Controller
	logger *zap.Logger

	// state is the last snapshot published by the controller
	state       trim.State
	unsubscribe func()

	width  int
	height int
	scale  timelineScale

	thumbs []*media.Thumbnail
	strip  [][]components.Cell

	startSelected bool
	drag          dragTarget
	dragOriginX   int

	exporting   bool
	exportCh    <-chan export.Event
	exportState components.ExportProgressState

	// result is the export being previewed; original and originalDuration
	// restore the source when the preview is left
	result           *media.Output
	original         media.Source
	originalDuration float64

	status    string
	statusErr bool
	statusID  int

	showHelp bool
	quitting bool
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewModel creates the model and subscribes it to the controller.
func NewModel(opts Options) *Model {
	if opts.ClockInterval <= 0 {
		opts.ClockInterval = defaultClockInterval
	}
	if opts.ThumbSize.Width <= 0 || opts.ThumbSize.Height <= 0 {
		opts.ThumbSize = media.DefaultThumbnailSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		opts:          opts,
		ctrl:          opts.Controller,
		logger:        opts.Logger,
		startSelected: true,
		ctx:           ctx,
		cancel:        cancel,
	}
	m.state = m.ctrl.State()
	m.unsubscribe = m.ctrl.Subscribe(func(s trim.State) { m.state = s })
	m.resize(80, 24)
	return m
}

// Init starts the clock and drag-flush tickers and loads the thumbnails.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.clockTickCmd(),
		m.flushTickCmd(),
		loadThumbnailsCmd(m.ctx, m.opts.Source, m.ctrl.ThumbnailTimes(), m.opts.ThumbSize, m.logger),
	)
}

func (m *Model) clockTickCmd() tea.Cmd {
	return tea.Tick(m.opts.ClockInterval, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

func (m *Model) flushTickCmd() tea.Cmd {
	return tea.Tick(m.ctrl.Config().CoalesceWindow, func(t time.Time) tea.Msg {
		return flushTickMsg(t)
	})
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case clockTickMsg:
		m.pollPlayer()
		return m, m.clockTickCmd()

	case flushTickMsg:
		m.ctrl.FlushDrag()
		return m, m.flushTickCmd()

	case thumbnailsLoadedMsg:
		if m.opts.Source == nil || msg.path != m.opts.Source.Path() {
			// the player switched files while these were extracted
			return m, nil
		}
		if msg.err != nil {
			return m, m.setStatus("Thumbnails unavailable: "+msg.err.Error(), true)
		}
		m.thumbs = msg.thumbs
		m.resampleStrip()
		return m, nil

	case exportEventMsg:
		return m.handleExportEvent(msg.event)

	case exportClosedMsg:
		m.finishExport()
		return m, nil

	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.cancel()
		m.unsubscribe()
		return m, tea.Quit
	case "?":
		m.showHelp = true
	case " ":
		m.ctrl.TogglePlayback()
	case "[":
		m.startSelected = true
	case "]":
		m.startSelected = false
	case "left", "h":
		m.nudgeHandle(-1)
	case "right", "l":
		m.nudgeHandle(1)
	case "shift+left", "H":
		m.nudgeRange(-1)
	case "shift+right", "L":
		m.nudgeRange(1)
	case "enter", "e":
		return m.startExport()
	case "esc":
		if m.result != nil {
			return m, m.leaveResult()
		}
	}
	return m, nil
}

// nudgeHandle moves the selected handle by one cell, as a complete drag gesture.
func (m *Model) nudgeHandle(dir int) {
	step := float64(dir) * m.scale.step()
	g := m.state.Geometry
	if m.startSelected {
		m.ctrl.DragStartHandle(g.StartPixel + step)
	} else {
		m.ctrl.DragEndHandle(g.EndPixel + step)
	}
	m.ctrl.OnDragEnd()
}

// nudgeRange shifts the whole range by one cell. Whole-range deltas are scaled
// by the drag sensitivity, so the delta is divided by it first.
func (m *Model) nudgeRange(dir int) {
	delta := float64(dir) * m.scale.step() / m.ctrl.Config().Sensitivity
	m.ctrl.DragWholeRange(delta)
	m.ctrl.OnDragEnd()
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.state.Loaded || m.showHelp {
		return m, nil
	}
	cell := msg.X - components.TimelineLeft

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !m.onTimeline(msg.X, msg.Y) {
			return m, nil
		}
		m.drag = m.scale.hit(cell, m.state.Geometry)
		m.dragOriginX = msg.X
		switch m.drag {
		case dragStart:
			m.startSelected = true
		case dragEnd:
			m.startSelected = false
		}

	case tea.MouseActionMotion:
		switch m.drag {
		case dragStart:
			m.ctrl.DragStartHandle(m.scale.leftEdge(cell))
		case dragEnd:
			m.ctrl.DragEndHandle(m.scale.rightEdge(cell))
		case dragRange:
			// the gesture reports its translation since the press, not since the last event
			m.ctrl.DragWholeRange(float64(msg.X-m.dragOriginX) * m.scale.step())
		}

	case tea.MouseActionRelease:
		if m.drag != dragNone {
			m.drag = dragNone
			m.ctrl.OnDragEnd()
		}
	}
	return m, nil
}

// onTimeline reports whether a terminal position lies on the strip, bar or play-head rows.
func (m *Model) onTimeline(x, y int) bool {
	top := timelineRow + components.TimelineTop
	if y < top || y >= top+components.TimelineRows {
		return false
	}
	cell := x - components.TimelineLeft
	return cell >= 0 && cell < m.scale.cells
}

// pollPlayer feeds the player position into the controller.
func (m *Model) pollPlayer() {
	p := m.opts.Player
	if p == nil || !p.IsConnected() || !m.state.Loaded {
		return
	}
	if eof, err := p.GetEOF(); err == nil && eof {
		m.ctrl.OnPlaybackEnded()
		return
	}
	pos, err := p.GetTimePos()
	if err != nil {
		return
	}
	m.ctrl.OnClockTick(pos)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.scale = newTimelineScale(width, m.ctrl.Config().TimelineWidth)
	m.resampleStrip()
}

func (m *Model) resampleStrip() {
	m.strip = sampleThumbnails(m.thumbs, m.scale.cells, components.StripRows, m.logger)
}

// setStatus shows a message and schedules it to clear.
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusID++
	m.status = text
	m.statusErr = isErr
	id := m.statusID
	return tea.Tick(statusDisplayDuration, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

// View renders the current state of the model as a string.
func (m *Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if m.showHelp {
		return components.HelpOverlay(m.width, m.height)
	}
	if m.width > 0 && m.width < minTerminalWidth {
		return styles.Warning.Render(fmt.Sprintf("Terminal too narrow (%d cols)", m.width)) + "\n" +
			styles.Hint.Render(fmt.Sprintf("Minimum width: %d columns", minTerminalWidth))
	}

	s := m.state
	selected := "end"
	if m.startSelected {
		selected = "start"
	}
	connected := m.opts.Player != nil && m.opts.Player.IsConnected()
	var fileName string
	switch {
	case m.result != nil:
		fileName = filepath.Base(m.result.Path)
	case m.opts.Source != nil:
		fileName = filepath.Base(m.opts.Source.Path())
	}
	statusBar := components.StatusBar(components.StatusBarState{
		FileName:  fileName,
		Playing:   s.Playing,
		TimePos:   s.Progress.CurrentSeconds,
		Duration:  s.Duration,
		Selected:  selected,
		Connected: connected,
	}, m.width)

	tl := components.TimelineState{Cells: m.scale.cells, Strip: m.strip, HeadCell: -1, StartSelected: m.startSelected, Loaded: s.Loaded}
	if s.Loaded {
		tl.StartCell, tl.EndCell = m.scale.handleCells(s.Geometry)
		if s.Range.Contains(s.Progress.CurrentSeconds) {
			tl.HeadCell = m.scale.cellFor(m.ctrl.PixelFor(s.Progress.CurrentSeconds))
		}
	}
	timeline := components.Timeline(tl, m.width)

	rangeInfo := components.RangeInfo(components.RangeInfoState{
		Start:      s.Range.Start,
		End:        s.Range.End,
		MaxSeconds: m.ctrl.Config().MaxTrimSeconds,
		Percent:    s.Progress.Percent,
	}, m.width)

	parts := []string{statusBar, timeline, rangeInfo}
	if box := components.ExportProgress(m.exportState, m.width); box != "" {
		parts = append(parts, box)
	}
	if m.status != "" {
		style := styles.StatusOK
		if m.statusErr {
			style = styles.StatusError
		}
		parts = append(parts, " "+style.Render(m.status))
	}
	parts = append(parts, components.HelpHint(m.width))

	view := lipgloss.JoinVertical(lipgloss.Left, parts...)
	if m.height > 0 {
		view = layout.Frame{Width: m.width, Height: m.height}.Render(view)
	}
	return view
}

// Run starts the Bubbletea program with mouse support and blocks until it exits.
func Run(opts Options) error {
	model := NewModel(opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	model.cancel()
	return err
}
