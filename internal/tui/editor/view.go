package editor

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/xonecas/inkpad/internal/highlight"
)

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

// View renders exactly height rows of width cells.
func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	if m.Placeholder != "" && len(m.lines) == 1 && len(m.lines[0]) == 0 {
		return m.placeholderView()
	}

	var hl []string
	if m.Highlighter != nil {
		// Tabs render as one cell so rune columns and cells line up.
		hl = m.Highlighter.Lines(strings.ReplaceAll(m.Value(), "\t", " "), highlight.Markdown)
	}

	tw := m.textWidth()
	total := m.totalVisualRows()
	var b strings.Builder
	for vi := 0; vi < m.height; vi++ {
		if vi > 0 {
			b.WriteByte('\n')
		}
		visual := m.scroll + vi
		if visual >= total {
			b.WriteString(m.Styles.Text.Render(strings.Repeat(" ", m.width)))
			continue
		}

		row, start := m.bufferAt(visual)
		end := min(start+tw, len(m.lines[row]))

		if m.gutterWidth > 0 {
			if start == 0 {
				b.WriteString(m.Styles.LineNum.Render(fmt.Sprintf("%*d", m.gutterWidth-1, row+1)))
				b.WriteString(m.renderMark(row))
			} else {
				b.WriteString(m.Styles.LineNum.Render(strings.Repeat(" ", m.gutterWidth)))
			}
		}

		var seg string
		if m.decorated(row, start, tw) {
			seg = m.renderDecorated(row, start, end)
		} else if row < len(hl) {
			seg = ansi.Cut(hl[row], start, end)
		} else {
			seg = m.Styles.Text.Render(plain(m.lines[row][start:end]))
		}

		w := lipgloss.Width(seg)
		if w > tw {
			seg = ansi.Truncate(seg, tw, "")
			w = lipgloss.Width(seg)
		}
		b.WriteString(seg)
		if w < tw {
			b.WriteString(m.Styles.Text.Render(strings.Repeat(" ", tw-w)))
		}
	}
	return b.String()
}

// renderMark draws the one-cell change marker that ends the gutter.
func (m *Model) renderMark(row int) string {
	switch m.Marks[row] {
	case GutterAdd:
		return m.Styles.Added.Render("▎")
	case GutterChange:
		return m.Styles.Changed.Render("▎")
	case GutterDelete:
		return m.Styles.Deleted.Render("▁")
	}
	return m.Styles.LineNum.Render(" ")
}

// decorated reports whether the visual row starting at start holds the
// cursor or part of the selection.
func (m *Model) decorated(row, start, tw int) bool {
	if m.focus && row == m.row && m.col >= start && m.col < start+tw {
		return true
	}
	if !m.HasSelection() {
		return false
	}
	ss, se := m.sel.ordered()
	segStart, segEnd := pos{row, start}, pos{row, start + tw}
	return ss.before(segEnd) && segStart.before(se)
}

type cellKind int

const (
	cellText cellKind = iota
	cellSelected
	cellCursor
)

// renderDecorated draws a row cell by cell in plain text with the cursor and
// selection styles applied.
func (m *Model) renderDecorated(row, start, end int) string {
	line := m.lines[row]
	var ss, se pos
	hasSel := m.HasSelection()
	if hasSel {
		ss, se = m.sel.ordered()
	}
	kindAt := func(c int) cellKind {
		if m.focus && row == m.row && c == m.col {
			return cellCursor
		}
		p := pos{row, c}
		if hasSel && !p.before(ss) && p.before(se) {
			return cellSelected
		}
		return cellText
	}

	var b strings.Builder
	runStart := start
	for c := start; c <= end; c++ {
		if c < end && c > runStart && kindAt(c) == kindAt(runStart) {
			continue
		}
		if c > runStart {
			b.WriteString(m.styleFor(kindAt(runStart)).Render(plain(line[runStart:c])))
		}
		runStart = c
	}
	if m.focus && row == m.row && m.col == end {
		b.WriteString(m.Styles.Cursor.Render(" "))
	}
	return b.String()
}

func (m *Model) styleFor(k cellKind) lipgloss.Style {
	switch k {
	case cellCursor:
		return m.Styles.Cursor
	case cellSelected:
		return m.Styles.Selection
	}
	return m.Styles.Text
}

// placeholderView renders the placeholder on the first row, dimmed.
func (m *Model) placeholderView() string {
	tw := m.textWidth()
	var b strings.Builder
	if m.gutterWidth > 0 {
		b.WriteString(m.Styles.LineNum.Render(fmt.Sprintf("%*d ", m.gutterWidth-1, 1)))
	}

	ph := []rune(m.Placeholder)
	var first string
	if m.focus {
		first = m.Styles.Cursor.Render(string(ph[0])) + m.Styles.Placeholder.Render(string(ph[1:]))
	} else {
		first = m.Styles.Placeholder.Render(m.Placeholder)
	}
	first = ansi.Truncate(first, tw, "")
	b.WriteString(first)
	if w := lipgloss.Width(first); w < tw {
		b.WriteString(m.Styles.Text.Render(strings.Repeat(" ", tw-w)))
	}

	for vi := 1; vi < m.height; vi++ {
		b.WriteByte('\n')
		b.WriteString(m.Styles.Text.Render(strings.Repeat(" ", m.width)))
	}
	return b.String()
}

func plain(r []rune) string {
	return strings.ReplaceAll(string(r), "\t", " ")
}
