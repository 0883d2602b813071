package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/xonecas/inkpad/internal/assistant"
	"github.com/xonecas/inkpad/internal/store"
)

// ---------------------------------------------------------------------------
// ELM messages
// ---------------------------------------------------------------------------

// paintMsg arrives after the surface changed the buffer, once the view has
// had a chance to take the new value. The pending cursor is restored then.
type paintMsg struct{}

type askDoneMsg struct{ err error }

type suggestionsMsg struct {
	list []string
	err  error
}

type savedMsg struct {
	body    string
	changed bool
	err     error
}

// errNowhereToSave is returned when there is neither a store nor a file.
var errNowhereToSave = errors.New("no draft store or file to save to")

// ---------------------------------------------------------------------------
// ELM commands
// ---------------------------------------------------------------------------

func paintCmd() tea.Msg { return paintMsg{} }

func askCmd(ctx context.Context, svc *assistant.Service, prompt string) tea.Cmd {
	return func() tea.Msg {
		_, err := svc.Ask(ctx, prompt)
		return askDoneMsg{err: err}
	}
}

func suggestionsCmd(ctx context.Context, svc *assistant.Service) tea.Cmd {
	return func() tea.Msg {
		list, err := svc.Suggestions(ctx)
		return suggestionsMsg{list: list, err: err}
	}
}

// saveCmd stores body as a draft revision and writes it to path when set.
func saveCmd(st *store.Store, name, path, body string) tea.Cmd {
	return func() tea.Msg {
		if st == nil && path == "" {
			return savedMsg{err: errNowhereToSave}
		}
		changed := false
		if st != nil {
			c, err := st.SaveDraft(name, body)
			if err != nil {
				return savedMsg{err: fmt.Errorf("save draft %q: %w", name, err)}
			}
			changed = c
		}
		if path != "" {
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				return savedMsg{err: fmt.Errorf("write %s: %w", path, err)}
			}
			changed = true
		}
		return savedMsg{body: body, changed: changed}
	}
}
