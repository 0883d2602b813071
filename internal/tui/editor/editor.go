// Package editor provides the markdown source widget for bubbletea: a
// soft-wrapping text area with shift/mouse selection, optional line numbers
// and Chroma highlighting. It exposes selections as rune offsets so the
// editor surface can drive it.
package editor

import (
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/xonecas/inkpad/internal/highlight"
	"github.com/xonecas/inkpad/internal/surface"
)

// Styles are set by the parent.
type Styles struct {
	Text        lipgloss.Style // Plain text and background fill
	LineNum     lipgloss.Style // Line number gutter
	Cursor      lipgloss.Style // Cursor cell
	Selection   lipgloss.Style // Selected text
	Placeholder lipgloss.Style
	Added       lipgloss.Style // Gutter marker for added lines
	Changed     lipgloss.Style // Gutter marker for modified lines
	Deleted     lipgloss.Style // Gutter marker where lines were removed
}

// GutterMark flags how a line differs from a baseline version.
type GutterMark int

const (
	GutterNone GutterMark = iota
	GutterAdd
	GutterChange
	GutterDelete
)

// Model is the editor widget. Use it through a pointer: the surface keeps a
// reference to it as its host widget.
type Model struct {
	ShowLineNumbers bool
	Placeholder     string
	// Highlighter colors the buffer as markdown. Nil renders plain text.
	Highlighter *highlight.Highlighter
	Styles      Styles
	// Marks are change markers keyed by 0-indexed line. Shown only with
	// line numbers.
	Marks map[int]GutterMark

	lines  [][]rune // Backing store, one entry per line
	row    int      // Cursor row (0-indexed into lines)
	col    int      // Cursor column (0-indexed into line runes)
	scroll int      // First visible visual row

	width  int
	height int
	focus  bool

	sel      *selection
	dragging bool

	gutterWidth int
}

type pos struct{ row, col int }

type selection struct {
	anchor pos // where the selection started
	active pos // where the cursor is
}

func (p pos) before(o pos) bool {
	return p.row < o.row || (p.row == o.row && p.col < o.col)
}

func (s *selection) ordered() (pos, pos) {
	if s.active.before(s.anchor) {
		return s.active, s.anchor
	}
	return s.anchor, s.active
}

func (s *selection) empty() bool { return s.anchor == s.active }

// New creates an empty editor.
func New() *Model {
	return &Model{
		lines:  [][]rune{{}},
		Styles: Styles{Cursor: lipgloss.NewStyle().Reverse(true)},
	}
}

var _ surface.Widget = (*Model)(nil)

// ---------------------------------------------------------------------------
// Public methods called by parent
// ---------------------------------------------------------------------------

func (m *Model) SetWidth(w int)  { m.width = w; m.updateGutter(); m.clampScroll() }
func (m *Model) SetHeight(h int) { m.height = h; m.clampScroll() }

func (m *Model) Width() int  { return m.width }
func (m *Model) Height() int { return m.height }

func (m *Model) Focus()        { m.focus = true }
func (m *Model) Blur()         { m.focus = false }
func (m *Model) Focused() bool { return m.focus }

// SetValue replaces the buffer. The cursor keeps its row and column where
// they still exist; any selection is dropped.
func (m *Model) SetValue(s string) {
	raw := strings.Split(s, "\n")
	m.lines = make([][]rune, len(raw))
	for i, l := range raw {
		m.lines[i] = []rune(l)
	}
	m.sel = nil
	m.dragging = false
	m.updateGutter()
	m.clampCursor()
	m.clampScroll()
}

// Value returns the buffer.
func (m *Model) Value() string {
	var sb strings.Builder
	for i, line := range m.lines {
		sb.WriteString(string(line))
		if i < len(m.lines)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Reset empties the buffer and moves the cursor home.
func (m *Model) Reset() {
	m.lines = [][]rune{{}}
	m.row, m.col, m.scroll = 0, 0, 0
	m.sel = nil
}

// Cursor returns the cursor row and column.
func (m *Model) Cursor() (row, col int) { return m.row, m.col }

// LineCount returns the number of buffer lines.
func (m *Model) LineCount() int { return len(m.lines) }

// ---------------------------------------------------------------------------
// Offsets (surface.Widget)
// ---------------------------------------------------------------------------

// Selection returns the selection as rune offsets into Value. Without a
// selection it is the collapsed cursor.
func (m *Model) Selection() surface.Range {
	if !m.HasSelection() {
		off := m.offsetOf(pos{m.row, m.col})
		return surface.Range{Start: off, End: off}
	}
	start, end := m.sel.ordered()
	return surface.Range{Start: m.offsetOf(start), End: m.offsetOf(end)}
}

// SetSelection selects r, or places the cursor when r is collapsed. Offsets
// are clamped to the buffer.
func (m *Model) SetSelection(r surface.Range) {
	r = r.Normalize(m.runeCount())
	start, end := m.posAt(r.Start), m.posAt(r.End)
	if r.Empty() {
		m.sel = nil
	} else {
		m.sel = &selection{anchor: start, active: end}
	}
	m.row, m.col = end.row, end.col
	m.clampScroll()
}

func (m *Model) offsetOf(p pos) int {
	off := 0
	for i := 0; i < p.row && i < len(m.lines); i++ {
		off += len(m.lines[i]) + 1
	}
	return off + p.col
}

func (m *Model) posAt(off int) pos {
	for i, line := range m.lines {
		if off <= len(line) {
			return pos{i, off}
		}
		off -= len(line) + 1
	}
	last := len(m.lines) - 1
	return pos{last, len(m.lines[last])}
}

func (m *Model) runeCount() int {
	n := len(m.lines) - 1
	for _, line := range m.lines {
		n += len(line)
	}
	return n
}

// ---------------------------------------------------------------------------
// Selection
// ---------------------------------------------------------------------------

// HasSelection reports whether a non-empty selection exists.
func (m *Model) HasSelection() bool { return m.sel != nil && !m.sel.empty() }

// ClearSelection drops the selection.
func (m *Model) ClearSelection() { m.sel = nil }

// SelectedText returns the selected text, or "".
func (m *Model) SelectedText() string {
	if !m.HasSelection() {
		return ""
	}
	r := m.Selection()
	return string([]rune(m.Value())[r.Start:r.End])
}

func (m *Model) startOrExtendSelection() {
	if m.sel == nil {
		p := pos{m.row, m.col}
		m.sel = &selection{anchor: p, active: p}
	}
}

func (m *Model) updateSelectionActive() {
	if m.sel != nil {
		m.sel.active = pos{m.row, m.col}
	}
}

// DeleteSelection removes the selected text and collapses the cursor at
// its start.
func (m *Model) DeleteSelection() {
	if !m.HasSelection() {
		m.sel = nil
		return
	}
	start, end := m.sel.ordered()
	head := m.lines[start.row][:start.col]
	tail := m.lines[end.row][end.col:]
	merged := make([]rune, 0, len(head)+len(tail))
	merged = append(merged, head...)
	merged = append(merged, tail...)

	lines := make([][]rune, 0, len(m.lines)-(end.row-start.row))
	lines = append(lines, m.lines[:start.row]...)
	lines = append(lines, merged)
	lines = append(lines, m.lines[end.row+1:]...)
	m.lines = lines
	m.row, m.col = start.row, start.col
	m.sel = nil
	m.updateGutter()
}

// SelectAll selects the whole buffer.
func (m *Model) SelectAll() {
	last := len(m.lines) - 1
	m.sel = &selection{anchor: pos{0, 0}, active: pos{last, len(m.lines[last])}}
	m.row, m.col = last, len(m.lines[last])
	m.clampScroll()
}

// ---------------------------------------------------------------------------
// Internal helpers
// ---------------------------------------------------------------------------

func (m *Model) currentLine() []rune { return m.lines[m.row] }

func (m *Model) clampCursor() {
	m.row = max(0, min(m.row, len(m.lines)-1))
	m.col = max(0, min(m.col, len(m.currentLine())))
}

func (m *Model) updateGutter() {
	m.gutterWidth = 0
	if !m.ShowLineNumbers {
		return
	}
	digits := len(strconv.Itoa(len(m.lines)))
	m.gutterWidth = max(digits, 2) + 1
}

// textWidth is the number of cells available for text on each row.
func (m *Model) textWidth() int {
	return max(1, m.width-m.gutterWidth)
}

// segments returns how many visual rows a buffer line occupies. A line that
// exactly fills its rows gets one more so the cursor can sit after it.
func (m *Model) segments(row int) int {
	return len(m.lines[row])/m.textWidth() + 1
}

// visualRow returns the visual row of a buffer position.
func (m *Model) visualRow(p pos) int {
	v := 0
	for i := 0; i < p.row; i++ {
		v += m.segments(i)
	}
	return v + p.col/m.textWidth()
}

// bufferAt maps a visual row to a buffer row and the rune offset where that
// visual row starts.
func (m *Model) bufferAt(visual int) (row, start int) {
	for i := range m.lines {
		n := m.segments(i)
		if visual < n {
			return i, visual * m.textWidth()
		}
		visual -= n
	}
	last := len(m.lines) - 1
	return last, (m.segments(last) - 1) * m.textWidth()
}

func (m *Model) totalVisualRows() int {
	n := 0
	for i := range m.lines {
		n += m.segments(i)
	}
	return n
}

// clampScroll keeps the cursor row on screen.
func (m *Model) clampScroll() {
	if m.height <= 0 {
		return
	}
	cur := m.visualRow(pos{m.row, m.col})
	if cur < m.scroll {
		m.scroll = cur
	}
	if cur >= m.scroll+m.height {
		m.scroll = cur - m.height + 1
	}
	m.clampScrollBounds()
}

func (m *Model) clampScrollBounds() {
	m.scroll = max(0, min(m.scroll, m.totalVisualRows()-1))
}
