package tui

import (
	"errors"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/user/video-trim-cli/export"
	"github.com/user/video-trim-cli/media"
	"github.com/user/video-trim-cli/tui/components"
)

// exportEventMsg carries one event from the export goroutine.
type exportEventMsg struct {
	event export.Event
}

// exportClosedMsg is sent when the export channel has been drained.
type exportClosedMsg struct{}

// waitForExportMsg returns a tea.Cmd that waits for the next event on the channel.
func waitForExportMsg(ch <-chan export.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return exportClosedMsg{}
		}
		return exportEventMsg{event: ev}
	}
}

// startExport hands the selected range to the runner.
func (m *Model) startExport() (tea.Model, tea.Cmd) {
	if m.result != nil {
		return m, m.setStatus("Press esc to return to the source before exporting", true)
	}
	rng, ok := m.ctrl.RequestExport()
	if !ok {
		return m, m.setStatus("No video loaded", true)
	}
	if m.opts.Runner == nil {
		return m, m.setStatus("Export unavailable", true)
	}
	ch, err := m.opts.Runner.Start(m.ctx, m.opts.Source, rng)
	if errors.Is(err, export.ErrExportInProgress) {
		return m, m.setStatus("Export already running", true)
	}
	if err != nil {
		return m, m.setStatus("Export failed: "+err.Error(), true)
	}

	m.logger.Info("export requested", zap.Float64("start", rng.Start), zap.Float64("end", rng.End))
	m.exporting = true
	m.exportCh = ch
	m.exportState = components.ExportProgressState{Active: true}
	return m, waitForExportMsg(ch)
}

func (m *Model) handleExportEvent(ev export.Event) (tea.Model, tea.Cmd) {
	switch ev := ev.(type) {
	case export.ProgressEvent:
		m.exportState.Fraction = ev.Fraction
		return m, waitForExportMsg(m.exportCh)

	case export.CompleteEvent:
		m.finishExport()
		m.exportState = components.ExportProgressState{Output: ev.Output.Path}
		if m.opts.OnComplete != nil {
			m.opts.OnComplete(ev.Output)
		}
		status := m.setStatus(fmt.Sprintf("Exported %s", filepath.Base(ev.Output.Path)), false)
		return m, tea.Batch(status, m.showResult(ev.Output))

	case export.FailedEvent:
		msg := ev.Err.Error()
		if media.IsCancelled(ev.Err) {
			msg = "export cancelled"
		}
		m.finishExport()
		m.exportState = components.ExportProgressState{Err: msg}
		return m, m.setStatus("Export failed: "+msg, true)
	}
	return m, waitForExportMsg(m.exportCh)
}

// finishExport forgets the channel after its final event; the runner closes it.
func (m *Model) finishExport() {
	m.exporting = false
	m.exportCh = nil
}

// showResult plays a finished export in place of the source and resets the
// controller to its length. The output holds exactly the exported range.
func (m *Model) showResult(out *media.Output) tea.Cmd {
	p := m.opts.Player
	if p == nil || !p.IsConnected() {
		return nil
	}
	if err := p.LoadFile(out.Path); err != nil {
		m.logger.Warn("loading export into player failed", zap.String("path", out.Path), zap.Error(err))
		return nil
	}
	if m.result == nil {
		m.original = m.opts.Source
		m.originalDuration = m.state.Duration
	}
	m.result = out
	m.exportState.Previewing = true

	var src media.Source
	if m.opts.OpenSource != nil {
		src = m.opts.OpenSource(out.Path)
	}
	m.logger.Info("previewing export", zap.String("path", out.Path), zap.Float64("duration", out.Range.Length()))
	return m.switchSource(src, out.Range.Length())
}

// leaveResult puts the source back into the player.
func (m *Model) leaveResult() tea.Cmd {
	if p := m.opts.Player; p != nil && m.original != nil {
		if err := p.LoadFile(m.original.Path()); err != nil {
			m.logger.Warn("reloading source failed", zap.String("path", m.original.Path()), zap.Error(err))
			return m.setStatus("Reloading source failed: "+err.Error(), true)
		}
	}
	src, duration := m.original, m.originalDuration
	m.result = nil
	m.original = nil
	m.originalDuration = 0
	m.exportState.Previewing = false
	return m.switchSource(src, duration)
}

// switchSource points the timeline at src, which the player has just loaded.
func (m *Model) switchSource(src media.Source, duration float64) tea.Cmd {
	// a freshly loaded file keeps mpv's pause flag; match the controller's reset state
	_ = m.opts.Player.Pause()
	m.opts.Source = src
	m.drag = dragNone
	m.startSelected = true
	m.ctrl.Initialize(duration)
	m.thumbs = nil
	m.resampleStrip()
	return loadThumbnailsCmd(m.ctx, src, m.ctrl.ThumbnailTimes(), m.opts.ThumbSize, m.logger)
}
