package tui

import (
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/xonecas/inkpad/internal/assistant"
	"github.com/xonecas/inkpad/internal/tui/sidebar"
)

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// -- Window resize -------------------------------------------------------
	case tea.WindowSizeMsg:
		m.handleResize(msg)
		return m, nil

	// -- Paste (bracketed paste) ---------------------------------------------
	case tea.PasteMsg:
		if m.focus == focusSidebar {
			m.sidebar.Paste(msg.Content)
			return m, nil
		}
		m.flushPaint()
		if m.editor.Update(msg) {
			m.syncFromEditor()
		}
		return m, nil

	// -- Mouse ---------------------------------------------------------------
	case tea.MouseMsg:
		return m.handleMouse(msg)

	// -- Keyboard ------------------------------------------------------------
	case tea.KeyPressMsg:
		return m.handleKeyPress(msg)

	// -- Cursor restoration after a surface edit -----------------------------
	case paintMsg:
		m.flushPaint()
		m.refresh()
		return m, nil

	// -- Assistant -----------------------------------------------------------
	case askDoneMsg:
		m.sidebar.SetBusy(false)
		m.sidebar.SetMessages(m.assistant.Messages())
		if msg.err != nil && !errors.Is(msg.err, assistant.ErrBusy) {
			m.log.Error().Err(msg.err).Msg("assistant request failed")
			m.sidebar.SetError(sidebar.FailedMessage)
		}
		return m, nil

	case suggestionsMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("could not load assistant suggestions")
			return m, nil
		}
		m.sidebar.SetSuggestions(msg.list)
		return m, nil

	// -- Drafts --------------------------------------------------------------
	case savedMsg:
		m.handleSaved(msg)
		return m, nil
	}

	// Spinner ticks and anything else the sidebar understands.
	_, cmd := m.sidebar.HandleMsg(msg)
	return m, cmd
}

// applyAction runs toolbar action i against the editor selection.
func (m Model) applyAction(i int) (tea.Model, tea.Cmd) {
	if i < 0 || i >= len(m.toolbar) {
		return m, nil
	}
	m.flushPaint()
	if !m.surface.ApplyInsertion(m.toolbar[i].Command) {
		return m, nil
	}
	m.setFocus(focusEditor)
	return m, paintCmd
}

// ask sends prompt to the assistant and shows it in the transcript while
// the reply is pending.
func (m *Model) ask(prompt string) tea.Cmd {
	if m.assistant == nil {
		m.sidebar.SetError("The assistant is not configured.")
		return nil
	}
	pending := append(m.assistant.Messages(), assistant.Message{
		Role:    assistant.RoleUser,
		Content: prompt,
		At:      time.Now(),
	})
	m.sidebar.SetMessages(pending)
	return tea.Batch(m.sidebar.SetBusy(true), askCmd(m.ctx, m.assistant, prompt))
}

// handleSidebarAction applies what the sidebar asked for.
func (m Model) handleSidebarAction(action sidebar.Action, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	switch a := action.(type) {
	case sidebar.ActionClose:
		m.toggleSidebar()
	case sidebar.ActionAsk:
		return m, tea.Batch(cmd, m.ask(a.Prompt))
	case sidebar.ActionInsert:
		m.flushPaint()
		m.surface.AppendSuggestion(a.Text)
		m.editor.SetValue(m.surface.Value())
		m.refresh()
	case sidebar.ActionClear:
		if m.assistant != nil {
			m.assistant.Clear()
		}
		m.sidebar.SetMessages(nil)
		m.sidebar.SetError("")
	}
	return m, cmd
}

func (m Model) save() (tea.Model, tea.Cmd) {
	m.flushPaint()
	return m, saveCmd(m.store, m.draftName, m.filePath, m.surface.Value())
}

func (m *Model) handleSaved(msg savedMsg) {
	if msg.err != nil {
		m.log.Error().Err(msg.err).Str("draft", m.draftName).Msg("save failed")
		m.setStatus(msg.err.Error(), true)
		return
	}
	m.saved = msg.body
	m.doc.dirty = true
	m.refresh()
	if !msg.changed {
		m.setStatus("no changes", false)
		return
	}
	m.setStatus(fmt.Sprintf("saved %s", m.draftName), false)
}
