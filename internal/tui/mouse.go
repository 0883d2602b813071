package tui

import (
	"image"
	"time"

	tea "charm.land/bubbletea/v2"
)

// ---------------------------------------------------------------------------
// Mouse filter: throttle high-frequency events at program level.
// ---------------------------------------------------------------------------

var lastMouseEvent time.Time

// MouseEventFilter rate-limits wheel and motion events (15 ms).
// Pass to tea.WithFilter. Never drops clicks or releases.
func MouseEventFilter(_ tea.Model, msg tea.Msg) tea.Msg {
	switch msg.(type) {
	case tea.MouseWheelMsg, tea.MouseMotionMsg:
		now := time.Now()
		if now.Sub(lastMouseEvent) < 15*time.Millisecond {
			return nil
		}
		lastMouseEvent = now
	}
	return msg
}

// ---------------------------------------------------------------------------
// Mouse handling: focus follows clicks, coordinates are translated into
// the pane under the pointer.
// ---------------------------------------------------------------------------

// mouseXY extracts X, Y from any mouse message via the MouseMsg interface.
func mouseXY(msg tea.MouseMsg) (int, int) {
	m := msg.Mouse()
	return m.X, m.Y
}

func inRect(x, y int, r image.Rectangle) bool {
	return image.Pt(x, y).In(r)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	x, y := mouseXY(msg)
	ed := m.layout.editor

	switch msg := msg.(type) {
	case tea.MouseClickMsg:
		if msg.Button != tea.MouseLeft {
			return m, nil
		}
		switch {
		case inRect(x, y, m.layout.toolbar):
			return m.clickToolbar(x)
		case inRect(x, y, ed):
			m.setFocus(focusEditor)
			m.flushPaint()
			m.editor.ClickAt(x-ed.Min.X, y-ed.Min.Y)
		case inRect(x, y, m.layout.sidebar):
			m.setFocus(focusSidebar)
		}

	case tea.MouseMotionMsg:
		if m.focus == focusEditor {
			m.editor.DragTo(x-ed.Min.X, y-ed.Min.Y)
		}

	case tea.MouseReleaseMsg:
		m.editor.Release()

	case tea.MouseWheelMsg:
		step := 3
		if msg.Button == tea.MouseWheelUp {
			step = -3
		}
		switch {
		case inRect(x, y, ed):
			m.editor.ScrollBy(step)
		case inRect(x, y, m.layout.preview):
			m.previewScroll += step
			m.clampPreviewScroll()
		}
	}
	return m, nil
}

// clickToolbar runs the toolbar button under column x.
func (m Model) clickToolbar(x int) (tea.Model, tea.Cmd) {
	for _, it := range m.toolbarItems() {
		if x < it.x0 || x >= it.x1 {
			continue
		}
		switch it.kind {
		case itemAction:
			return m.applyAction(it.index)
		case itemSplit:
			m.toggleSplit()
		case itemPreview:
			m.togglePreview()
		case itemAssistant:
			m.toggleSidebar()
		}
		return m, nil
	}
	return m, nil
}
