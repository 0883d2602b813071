package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/xonecas/inkpad/internal/assistant"
	"github.com/xonecas/inkpad/internal/markdown"
	"github.com/xonecas/inkpad/internal/provider"
	"github.com/xonecas/inkpad/internal/store"
	"github.com/xonecas/inkpad/internal/surface"
	"github.com/xonecas/inkpad/internal/tui/editor"
	"github.com/xonecas/inkpad/internal/tui/sidebar"
)

func key(ch rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: ch, Text: string(ch)}
}

func ctrl(ch rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: ch, Mod: tea.ModCtrl}
}

func alt(ch rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: ch, Mod: tea.ModAlt}
}

func special(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	m := New(opts)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return mm, cmd
}

// drain runs cmd and every command batched inside it, feeding each message
// back into the model. Commands returned by those updates are not followed,
// which keeps spinner ticks from looping.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			m = drain(t, m, c)
		}
		return m
	}
	if msg != nil {
		m, _ = update(t, m, msg)
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = update(t, m, key(r))
	}
	return m
}

func TestToolbarActionRestoresCursorAfterPaint(t *testing.T) {
	m := newTestModel(t, Options{Initial: "a word b"})
	m.editor.SetSelection(surface.Range{Start: 2, End: 6})

	m, cmd := update(t, m, alt('1'))
	if cmd == nil {
		t.Fatal("expected paint cmd")
	}
	if got := m.Value(); got != "a **word** b" {
		t.Fatalf("surface value = %q", got)
	}
	if got := m.editor.Value(); got != "a word b" {
		t.Fatalf("editor updated before paint: %q", got)
	}

	m = drain(t, m, cmd)
	if got := m.editor.Value(); got != "a **word** b" {
		t.Errorf("editor value after paint = %q", got)
	}
	if sel := m.editor.Selection(); sel != (surface.Range{Start: 10, End: 10}) {
		t.Errorf("cursor = %+v, want 10", sel)
	}
}

func TestCtrlBUsesSurfaceShortcut(t *testing.T) {
	m := newTestModel(t, Options{Initial: "hi"})
	m.editor.SetSelection(surface.Range{Start: 0, End: 2})

	m, cmd := update(t, m, ctrl('b'))
	m = drain(t, m, cmd)
	if got := m.editor.Value(); got != "**hi**" {
		t.Errorf("value = %q", got)
	}
}

func TestKeyBeforePaintEditsNewBuffer(t *testing.T) {
	m := newTestModel(t, Options{Initial: ""})
	m, _ = update(t, m, alt('1')) // "****", cursor pending at 4
	m, _ = update(t, m, key('x'))
	if got := m.Value(); got != "****x" {
		t.Errorf("value = %q, want ****x", got)
	}
}

func TestModeSwitchBeforePaintKeepsInsertion(t *testing.T) {
	cases := []struct {
		name   string
		toggle tea.KeyPressMsg
	}{
		{"preview", ctrl('o')},
		{"split", ctrl('p')},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestModel(t, Options{Initial: "word"})
			m.editor.SetSelection(surface.Range{Start: 0, End: 4})

			m, paint := update(t, m, ctrl('b'))
			m, _ = update(t, m, tc.toggle)
			m, _ = update(t, m, tc.toggle)
			if got := m.editor.Value(); got != "**word**" {
				t.Fatalf("editor after mode round trip = %q", got)
			}

			m = drain(t, m, paint)
			m, _ = update(t, m, key('x'))
			if got := m.Value(); got != "**wordx**" {
				t.Errorf("value = %q, want **wordx**", got)
			}
			if got := m.editor.Value(); got != m.Value() {
				t.Errorf("editor %q out of sync with surface %q", got, m.Value())
			}
		})
	}
}

func TestTypingUpdatesDiffStatAndMarks(t *testing.T) {
	m := newTestModel(t, Options{Initial: "a\nb"})
	m = typeText(t, m, "x")

	if got := m.Value(); got != "xa\nb" {
		t.Fatalf("value = %q", got)
	}
	if m.stat.Added != 1 || m.stat.Removed != 1 {
		t.Errorf("stat = %+v", m.stat)
	}
	if m.editor.Marks[0] != editor.GutterChange {
		t.Errorf("marks = %v", m.editor.Marks)
	}
}

func TestViewModeKeys(t *testing.T) {
	m := newTestModel(t, Options{Initial: "# Hello"})

	m, _ = update(t, m, ctrl('p'))
	if m.surface.ViewMode() != surface.ModeSplit {
		t.Fatalf("mode = %v, want split", m.surface.ViewMode())
	}
	if m.layout.editor.Empty() || m.layout.preview.Empty() {
		t.Fatalf("split layout = %+v", m.layout)
	}

	m, _ = update(t, m, ctrl('o'))
	if m.surface.ViewMode() != surface.ModePreview || m.surface.Mounted() {
		t.Fatalf("preview: mode %v mounted %v", m.surface.ViewMode(), m.surface.Mounted())
	}
	if m.editor.Focused() {
		t.Error("hidden editor kept focus")
	}
	if _, cmd := update(t, m, alt('1')); cmd != nil {
		t.Error("toolbar action applied with the editor hidden")
	}

	m, _ = update(t, m, ctrl('o'))
	if m.surface.ViewMode() != surface.ModeEdit || !m.surface.Mounted() || !m.editor.Focused() {
		t.Errorf("back to edit: mode %v mounted %v focused %v",
			m.surface.ViewMode(), m.surface.Mounted(), m.editor.Focused())
	}
}

func TestPreviewShowsRenderedHTML(t *testing.T) {
	m := newTestModel(t, Options{Initial: "# Hello\n\nSome **bold** text", Mode: surface.ModeSplit})
	out := ansi.Strip(m.renderContent())
	for _, want := range []string{"<h1>Hello</h1>", "<strong>bold</strong>"} {
		if !strings.Contains(out, want) {
			t.Errorf("preview missing %q", want)
		}
	}
}

func TestRenderFillsScreen(t *testing.T) {
	for _, mode := range []surface.ViewMode{surface.ModeEdit, surface.ModeSplit, surface.ModePreview} {
		t.Run(mode.String(), func(t *testing.T) {
			m := newTestModel(t, Options{
				Initial: "# Title\n\n" + strings.Repeat("words ", 40) + "\n\n- item",
				Mode:    mode,
			})
			m, _ = update(t, m, ctrl('t'))

			lines := strings.Split(m.renderContent(), "\n")
			if len(lines) != 24 {
				t.Fatalf("got %d rows, want 24", len(lines))
			}
			for i, line := range lines {
				if w := ansi.StringWidth(line); w != 80 {
					t.Errorf("row %d: width %d, want 80: %q", i, w, ansi.Strip(line))
				}
			}
			status := ansi.Strip(lines[23])
			if !strings.Contains(status, strings.ToUpper(mode.String())) || !strings.Contains(status, "untitled") {
				t.Errorf("status bar = %q", status)
			}
		})
	}
}

func TestStatusShowsRenderErrorFlag(t *testing.T) {
	m := newTestModel(t, Options{Initial: "x", Engine: failingEngine{}})
	lines := strings.Split(ansi.Strip(m.renderContent()), "\n")
	if !strings.Contains(lines[len(lines)-1], "preview error") {
		t.Errorf("status bar = %q", lines[len(lines)-1])
	}
}

func TestAssistantAskFlow(t *testing.T) {
	mock := provider.NewMock("mock", "Once upon a time")
	m := newTestModel(t, Options{Assistant: assistant.New(mock)})

	m, _ = update(t, m, ctrl('t'))
	if m.focus != focusSidebar || m.layout.sidebar.Empty() {
		t.Fatal("ctrl+t did not open the sidebar")
	}
	m = typeText(t, m, "write an intro")
	if m.Value() != "" {
		t.Fatalf("sidebar typing reached the buffer: %q", m.Value())
	}

	m, cmd := update(t, m, special(tea.KeyEnter))
	if !m.sidebar.Busy() {
		t.Error("sidebar not busy while request in flight")
	}
	m = drain(t, m, cmd)

	if m.sidebar.Busy() {
		t.Error("sidebar still busy after reply")
	}
	msgs := m.assistant.Messages()
	if len(msgs) != 2 || msgs[1].Content != "Once upon a time" {
		t.Fatalf("transcript = %+v", msgs)
	}
	if !strings.Contains(ansi.Strip(m.renderContent()), "Once upon a time") {
		t.Error("reply not rendered in sidebar")
	}

	// ctrl+y appends the last reply to the document.
	m, _ = update(t, m, ctrl('y'))
	if m.Value() != "Once upon a time" {
		t.Errorf("value after ctrl+y = %q", m.Value())
	}
}

func TestAssistantFailureShowsNotice(t *testing.T) {
	mock := provider.NewMock("mock", "").WithGenerateError(errors.New("boom"))
	m := newTestModel(t, Options{Assistant: assistant.New(mock)})
	m, _ = update(t, m, ctrl('t'))
	m = typeText(t, m, "hi")
	m, cmd := update(t, m, special(tea.KeyEnter))
	m = drain(t, m, cmd)

	if m.sidebar.Err() != sidebar.FailedMessage {
		t.Errorf("notice = %q", m.sidebar.Err())
	}
}

func TestSuggestionAppendsToBuffer(t *testing.T) {
	mock := provider.NewMock("mock", "").WithSuggestions("Write an intro", "Suggest a title")
	m := newTestModel(t, Options{Initial: "Post", Assistant: assistant.New(mock)})
	m = drain(t, m, m.Init())

	m, _ = update(t, m, ctrl('t'))
	m, _ = update(t, m, special(tea.KeyDown))
	m, _ = update(t, m, special(tea.KeyEnter))

	if got := m.Value(); got != "Post\n\nWrite an intro" {
		t.Errorf("value = %q", got)
	}
	if m.editor.Value() != m.Value() {
		t.Errorf("editor out of sync: %q", m.editor.Value())
	}
	if m.sidebar.Input() != "Write an intro" {
		t.Errorf("sidebar input = %q", m.sidebar.Input())
	}
}

func TestEscapeClosesSidebar(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = update(t, m, ctrl('t'))
	m, _ = update(t, m, special(tea.KeyEscape))
	if m.showSidebar || m.focus != focusEditor || !m.editor.Focused() {
		t.Errorf("sidebar %v focus %v", m.showSidebar, m.focus)
	}
}

func TestSaveDraftAndFile(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "inkpad.db"), time.Hour)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer st.Close()
	path := filepath.Join(dir, "my-post.md")

	m := newTestModel(t, Options{Initial: "a", Store: st, FilePath: path})
	m = typeText(t, m, "b")
	if m.stat.Empty() {
		t.Fatal("expected unsaved changes")
	}

	m, cmd := update(t, m, ctrl('s'))
	m = drain(t, m, cmd)

	if m.statusErr || m.status != "saved my-post" {
		t.Errorf("status = %q (err %v)", m.status, m.statusErr)
	}
	if !m.stat.Empty() || len(m.editor.Marks) != 0 {
		t.Errorf("stat %+v marks %v after save", m.stat, m.editor.Marks)
	}
	d, err := st.LoadDraft("my-post")
	if err != nil || d.Body != "ba" {
		t.Errorf("draft = %+v, %v", d, err)
	}
	if b, err := os.ReadFile(path); err != nil || string(b) != "ba" {
		t.Errorf("file = %q, %v", b, err)
	}
}

func TestSaveWithoutTarget(t *testing.T) {
	m := newTestModel(t, Options{Initial: "x"})
	m, cmd := update(t, m, ctrl('s'))
	m = drain(t, m, cmd)
	if !m.statusErr || !strings.Contains(m.status, "no draft store") {
		t.Errorf("status = %q (err %v)", m.status, m.statusErr)
	}
}

func TestMouseClickPlacesCursorAndRunsToolbar(t *testing.T) {
	m := newTestModel(t, Options{Initial: "hello world"})

	// Gutter is 3 cells; the editor starts on row 1.
	m, _ = update(t, m, tea.MouseClickMsg{X: 3 + 6, Y: 1, Button: tea.MouseLeft})
	m, _ = update(t, m, tea.MouseReleaseMsg{X: 3 + 6, Y: 1, Button: tea.MouseLeft})
	if row, col := m.editor.Cursor(); row != 0 || col != 6 {
		t.Fatalf("cursor = %d,%d, want 0,6", row, col)
	}

	items := m.toolbarItems()
	code := items[6] // inline code
	m, cmd := update(t, m, tea.MouseClickMsg{X: code.x0 + 1, Y: 0, Button: tea.MouseLeft})
	m = drain(t, m, cmd)
	if got := m.Value(); got != "hello ``world" {
		t.Errorf("value = %q", got)
	}
	if sel := m.editor.Selection(); sel.Start != 8 {
		t.Errorf("cursor = %+v, want 8", sel)
	}
}

func TestDraftName(t *testing.T) {
	cases := []struct{ name, path, want string }{
		{"post", "/tmp/other.md", "post"},
		{"", "/tmp/my-post.md", "my-post"},
		{"  ", "", "untitled"},
	}
	for _, tc := range cases {
		if got := draftName(tc.name, tc.path); got != tc.want {
			t.Errorf("draftName(%q, %q) = %q, want %q", tc.name, tc.path, got, tc.want)
		}
	}
}

func TestGenerateLayout(t *testing.T) {
	ly := generateLayout(80, 24, surface.ModeSplit, true)
	if ly.sidebar.Dx() != 26 || ly.sidebar.Min.X != 54 {
		t.Errorf("sidebar = %v", ly.sidebar)
	}
	if ly.editor.Dx()+ly.divider.Dx()+ly.preview.Dx() != 54 {
		t.Errorf("main panes = %v %v %v", ly.editor, ly.divider, ly.preview)
	}
	if ly.editor.Min.Y != 1 || ly.editor.Max.Y != 23 {
		t.Errorf("editor rows = %v", ly.editor)
	}
}

type failingEngine struct{}

func (failingEngine) Name() string { return "failing" }

func (failingEngine) Render(src string) markdown.Result {
	return markdown.Result{HTML: src, Err: fmt.Errorf("%w: boom", markdown.ErrParse)}
}
