// Package tui hosts the markdown editor surface in a bubbletea program:
// toolbar, source editor, live preview, assistant sidebar and status bar.
package tui

import (
	"context"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	"github.com/xonecas/inkpad/internal/assistant"
	"github.com/xonecas/inkpad/internal/delta"
	"github.com/xonecas/inkpad/internal/highlight"
	"github.com/xonecas/inkpad/internal/markdown"
	"github.com/xonecas/inkpad/internal/store"
	"github.com/xonecas/inkpad/internal/surface"
	"github.com/xonecas/inkpad/internal/tui/editor"
	"github.com/xonecas/inkpad/internal/tui/sidebar"
)

const (
	defaultDraftName = "untitled"
	highlightCache   = 64
	placeholder      = "Start writing your post..."
)

// Options configure a new Model.
type Options struct {
	Initial   string // Starting buffer
	FilePath  string // Written on save when set
	DraftName string // Defaults to the file's base name, then "untitled"
	Mode      surface.ViewMode
	Engine    markdown.Engine // Nil selects the sanitizing pipeline
	Assistant *assistant.Service
	Store     *store.Store
	Theme     string
	Context   context.Context
	Logger    zerolog.Logger
}

type focusTarget int

const (
	focusEditor focusTarget = iota
	focusSidebar
)

// doc is shared by every copy of Model; the surface's change callback
// marks it so the diff against the saved body is recomputed once per update.
type doc struct{ dirty bool }

// Model is the root bubbletea model.
type Model struct {
	surface   *surface.Surface
	editor    *editor.Model
	sidebar   sidebar.Model
	assistant *assistant.Service
	store     *store.Store
	log       zerolog.Logger
	ctx       context.Context

	toolbar []surface.Action
	hl      *highlight.Highlighter
	styles  Styles

	filePath  string
	draftName string
	saved     string // Body at the last load or save
	stat      delta.Stat
	doc       *doc

	showSidebar   bool
	focus         focusTarget
	previewScroll int

	width, height int
	layout        layout
	status        string
	statusErr     bool
}

// New creates the root model.
func New(opts Options) Model {
	theme := opts.Theme
	if theme == "" {
		theme = "vulcan"
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	hl := highlight.New(theme, highlightCache)
	styles := newStyles(highlight.ThemePalette(theme))

	ed := editor.New()
	ed.ShowLineNumbers = true
	ed.Placeholder = placeholder
	ed.Highlighter = hl
	ed.Styles = styles.Editor
	ed.SetValue(opts.Initial)

	d := &doc{}
	sopts := []surface.Option{
		surface.WithViewMode(opts.Mode),
		surface.WithLogger(opts.Logger),
	}
	if opts.Engine != nil {
		sopts = append(sopts, surface.WithEngine(opts.Engine))
	}
	surf := surface.New(opts.Initial, func(string) { d.dirty = true }, sopts...)

	m := Model{
		surface:   surf,
		editor:    ed,
		sidebar:   sidebar.New("> ", styles.Sidebar),
		assistant: opts.Assistant,
		store:     opts.Store,
		log:       opts.Logger,
		ctx:       ctx,
		toolbar:   surface.DefaultToolbar(),
		hl:        hl,
		styles:    styles,
		filePath:  opts.FilePath,
		draftName: draftName(opts.DraftName, opts.FilePath),
		saved:     opts.Initial,
		doc:       d,
	}
	m.setMode(surf.ViewMode())
	m.setFocus(focusEditor)
	return m
}

// draftName picks the name a buffer is saved under.
func draftName(name, path string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	if path != "" {
		base := filepath.Base(path)
		if n := strings.TrimSuffix(base, filepath.Ext(base)); n != "" {
			return n
		}
	}
	return defaultDraftName
}

// Init fetches the assistant's starter prompts.
func (m Model) Init() tea.Cmd {
	if m.assistant == nil {
		return nil
	}
	return suggestionsCmd(m.ctx, m.assistant)
}

// Value returns the current buffer.
func (m Model) Value() string { return m.surface.Value() }

// setMode switches the view mode. The editor widget is only mounted while
// it is on screen, so toolbar commands in preview mode are no-ops. A pending
// paint is flushed first: unmounting drops it, and the widget must not keep
// a buffer older than the surface's.
func (m *Model) setMode(mode surface.ViewMode) {
	m.flushPaint()
	m.surface.SetViewMode(mode)
	if m.surface.ViewMode() == surface.ModePreview {
		m.surface.Unmount()
	} else if !m.surface.Mounted() {
		m.surface.Mount(m.editor)
	}
	m.setFocus(m.focus)
	m.relayout()
}

func (m *Model) setFocus(f focusTarget) {
	m.focus = f
	if f == focusEditor && m.surface.Mounted() {
		m.editor.Focus()
	} else {
		m.editor.Blur()
	}
}

func (m *Model) toggleSidebar() {
	m.showSidebar = !m.showSidebar
	if m.showSidebar {
		m.setFocus(focusSidebar)
	} else {
		m.setFocus(focusEditor)
	}
	m.relayout()
}

// flushPaint hands the editor a buffer the surface changed and restores the
// pending cursor. A paintMsg normally does this; keys that arrive first must
// not edit a stale buffer.
func (m *Model) flushPaint() {
	if _, ok := m.surface.PendingCursor(); !ok {
		return
	}
	m.editor.SetValue(m.surface.Value())
	m.surface.Paint()
}

// syncFromEditor pushes the widget's buffer into the surface.
func (m *Model) syncFromEditor() {
	m.surface.SetValue(m.editor.Value())
	m.refresh()
}

// refresh recomputes the diff against the saved body after a change.
func (m *Model) refresh() {
	if !m.doc.dirty {
		return
	}
	m.doc.dirty = false
	value := m.surface.Value()
	m.stat = delta.StatOf(m.saved, value)
	m.editor.Marks = gutterMarks(delta.Lines(m.saved, value))
}

// gutterMarks converts line changes into editor gutter markers.
func gutterMarks(lines map[int]delta.Change) map[int]editor.GutterMark {
	if len(lines) == 0 {
		return nil
	}
	marks := make(map[int]editor.GutterMark, len(lines))
	for row, c := range lines {
		switch c {
		case delta.Added:
			marks[row] = editor.GutterAdd
		case delta.Modified:
			marks[row] = editor.GutterChange
		case delta.Removed:
			marks[row] = editor.GutterDelete
		}
	}
	return marks
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}
