package editor

import tea "charm.land/bubbletea/v2"

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

// Update handles keys and mouse events. Mouse coordinates must already be
// relative to the editor's top-left corner. It reports whether the buffer
// changed.
func (m *Model) Update(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if !m.focus {
			return false
		}
		return m.handleKey(msg)

	case tea.PasteMsg:
		if !m.focus {
			return false
		}
		m.InsertText(msg.Content)
		return true

	case tea.MouseClickMsg:
		if m.focus && msg.Button == tea.MouseLeft {
			m.ClickAt(msg.X, msg.Y)
		}

	case tea.MouseMotionMsg:
		if m.focus {
			m.DragTo(msg.X, msg.Y)
		}

	case tea.MouseReleaseMsg:
		m.Release()

	case tea.MouseWheelMsg:
		switch msg.Button {
		case tea.MouseWheelUp:
			m.ScrollBy(-3)
		case tea.MouseWheelDown:
			m.ScrollBy(3)
		}
	}
	return false
}

func (m *Model) handleKey(msg tea.KeyPressMsg) bool {
	changed := false

	switch key := msg.Keystroke(); key {
	// --- Shift+navigation: extend selection ---
	case "shift+up", "shift+down", "shift+left", "shift+right",
		"shift+home", "shift+end", "shift+pgup", "shift+pgdown":
		m.startOrExtendSelection()
		m.move(key[len("shift+"):])
		m.updateSelectionActive()

	// --- Plain navigation: clear selection ---
	case "up", "down", "left", "right", "home", "end", "pgup", "pgdown",
		"ctrl+a", "ctrl+e", "ctrl+home", "ctrl+end":
		m.ClearSelection()
		m.move(key)

	// --- Editing: delete selection first ---
	case "backspace":
		if m.HasSelection() {
			m.DeleteSelection()
		} else {
			m.deleteBack()
		}
		changed = true
	case "delete", "ctrl+d":
		if m.HasSelection() {
			m.DeleteSelection()
		} else {
			m.deleteForward()
		}
		changed = true
	case "ctrl+w":
		m.DeleteSelection()
		m.deleteWordBack()
		changed = true
	case "ctrl+k":
		m.DeleteSelection()
		m.killLine()
		changed = true
	case "enter":
		m.DeleteSelection()
		m.insertNewline()
		changed = true
	case "tab":
		m.DeleteSelection()
		m.indent()
		changed = true

	default:
		if msg.Text == "" {
			return false
		}
		m.DeleteSelection()
		for _, r := range msg.Text {
			m.insertRune(r)
		}
		changed = true
	}

	m.clampCursor()
	m.clampScroll()
	return changed
}

// move applies a navigation key without touching the selection.
func (m *Model) move(key string) {
	switch key {
	case "up":
		m.row--
	case "down":
		m.row++
	case "left":
		if m.col > 0 {
			m.col--
		} else if m.row > 0 {
			m.row--
			m.col = len(m.currentLine())
		}
	case "right":
		if m.col < len(m.currentLine()) {
			m.col++
		} else if m.row < len(m.lines)-1 {
			m.row++
			m.col = 0
		}
	case "home", "ctrl+a":
		m.col = 0
	case "end", "ctrl+e":
		m.col = len(m.currentLine())
	case "pgup":
		m.row -= max(1, m.height)
	case "pgdown":
		m.row += max(1, m.height)
	case "ctrl+home":
		m.row, m.col = 0, 0
	case "ctrl+end":
		m.row = len(m.lines) - 1
		m.col = len(m.currentLine())
	}
	m.clampCursor()
}

// ---------------------------------------------------------------------------
// Mouse
// ---------------------------------------------------------------------------

// ClickAt places the cursor at the cell x,y and starts a drag selection.
func (m *Model) ClickAt(x, y int) {
	p := m.screenToPos(x, y)
	m.dragging = true
	m.sel = &selection{anchor: p, active: p}
	m.row, m.col = p.row, p.col
}

// DragTo extends a drag selection to x,y.
func (m *Model) DragTo(x, y int) {
	if !m.dragging || m.sel == nil {
		return
	}
	p := m.screenToPos(x, y)
	m.sel.active = p
	m.row, m.col = p.row, p.col
	m.clampScroll()
}

// Release ends a drag. A click without movement leaves no selection.
func (m *Model) Release() {
	m.dragging = false
	if m.sel != nil && m.sel.empty() {
		m.ClearSelection()
	}
}

// ScrollBy moves the viewport by n visual rows without moving the cursor.
func (m *Model) ScrollBy(n int) {
	m.scroll += n
	m.clampScrollBounds()
}

// screenToPos converts editor-relative x,y to a buffer position.
func (m *Model) screenToPos(x, y int) pos {
	row, start := m.bufferAt(m.scroll + max(0, y))
	col := start + max(0, x-m.gutterWidth)
	return pos{row, min(col, len(m.lines[row]))}
}
