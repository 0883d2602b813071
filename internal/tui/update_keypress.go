package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/xonecas/inkpad/internal/surface"
)

// toolbarKeys binds alt+N to the Nth toolbar action.
var toolbarKeys = map[string]int{
	"alt+1": 0, "alt+2": 1, "alt+3": 2, "alt+4": 3,
	"alt+5": 4, "alt+6": 5, "alt+7": 6, "alt+8": 7,
}

// handleKeyPress routes a key: global bindings first, then the focused
// pane.
func (m Model) handleKeyPress(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.Keystroke()
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+s":
		return m.save()
	case "ctrl+p":
		m.toggleSplit()
		return m, nil
	case "ctrl+o":
		m.togglePreview()
		return m, nil
	case "ctrl+t":
		m.toggleSidebar()
		return m, nil
	}
	if i, ok := toolbarKeys[key]; ok {
		return m.applyAction(i)
	}

	if m.focus == focusSidebar {
		action, cmd := m.sidebar.HandleMsg(msg)
		return m.handleSidebarAction(action, cmd)
	}

	if m.surface.ViewMode() == surface.ModePreview {
		m.scrollPreviewKey(key)
		return m, nil
	}

	m.flushPaint()
	if m.surface.HandleKey(key) {
		return m, paintCmd
	}
	m.status = ""
	if m.editor.Update(msg) {
		m.syncFromEditor()
	}
	return m, nil
}

// toggleSplit flips between split and edit. From preview it goes to split.
func (m *Model) toggleSplit() {
	if m.surface.ViewMode() == surface.ModePreview {
		m.setMode(surface.ModeSplit)
		return
	}
	m.surface.ToggleSplit()
	m.setMode(m.surface.ViewMode())
}

// togglePreview flips between the full preview and the editor.
func (m *Model) togglePreview() {
	if m.surface.ViewMode() == surface.ModePreview {
		m.setMode(surface.ModeEdit)
		return
	}
	m.setMode(surface.ModePreview)
}

func (m *Model) scrollPreviewKey(key string) {
	page := max(1, m.layout.preview.Dy()-1)
	switch key {
	case "up", "k":
		m.previewScroll--
	case "down", "j":
		m.previewScroll++
	case "pgup":
		m.previewScroll -= page
	case "pgdown", "space":
		m.previewScroll += page
	case "home", "g":
		m.previewScroll = 0
	}
	m.clampPreviewScroll()
}
