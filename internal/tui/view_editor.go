package tui

import (
	"strings"

	"github.com/xonecas/inkpad/internal/highlight"
)

// renderBody composes the editor, preview and sidebar panes row by row.
func (m Model) renderBody(html string, failed bool) []string {
	ly := m.layout
	bodyH := ly.status.Min.Y - toolbarRows
	if bodyH <= 0 {
		return nil
	}

	var editorLines, previewLines, sidebarLines []string
	if !ly.editor.Empty() {
		editorLines = strings.Split(m.editor.View(), "\n")
	}
	if !ly.preview.Empty() {
		all := m.previewLines(html, failed, ly.preview.Dx())
		start := min(m.previewScroll, max(0, len(all)-bodyH))
		previewLines = all[start:]
	}
	if !ly.sidebar.Empty() {
		sidebarLines = strings.Split(m.sidebar.View(ly.sidebar.Dx(), ly.sidebar.Dy()), "\n")
	}

	rows := make([]string, bodyH)
	for i := range rows {
		var b strings.Builder
		if !ly.editor.Empty() {
			b.WriteString(fitLine(lineAt(editorLines, i), ly.editor.Dx(), m.styles.Base))
		}
		if !ly.divider.Empty() {
			b.WriteString(m.styles.Border.Render("│"))
		}
		if !ly.preview.Empty() {
			b.WriteString(fitLine(lineAt(previewLines, i), ly.preview.Dx(), m.styles.Base))
		}
		if !ly.sidebar.Empty() {
			b.WriteString(fitLine(lineAt(sidebarLines, i), ly.sidebar.Dx(), m.styles.Base))
		}
		rows[i] = b.String()
	}
	return rows
}

// previewLines renders the HTML as highlighted, wrapped lines. A failed
// render holds the raw source and is shown unhighlighted.
func (m Model) previewLines(html string, failed bool, width int) []string {
	html = strings.ReplaceAll(html, "\t", "    ")
	var src []string
	if failed {
		for _, l := range strings.Split(html, "\n") {
			src = append(src, m.styles.PreviewText.Render(l))
		}
	} else {
		src = m.hl.Lines(html, highlight.HTML)
	}

	var out []string
	for _, l := range src {
		out = append(out, wrapANSI(l, width)...)
	}
	return out
}

// clampPreviewScroll keeps the preview scroll within its content.
func (m *Model) clampPreviewScroll() {
	if m.layout.preview.Empty() {
		m.previewScroll = 0
		return
	}
	res := m.surface.Preview()
	n := len(m.previewLines(res.HTML, res.Failed(), m.layout.preview.Dx()))
	m.previewScroll = max(0, min(m.previewScroll, n-m.layout.preview.Dy()))
}

func lineAt(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}
