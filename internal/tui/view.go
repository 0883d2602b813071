package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/xonecas/inkpad/internal/surface"
)

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (m Model) View() tea.View {
	v := tea.NewView(m.renderContent())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeAllMotion
	return v
}

// renderContent produces the string content for the view.
func (m Model) renderContent() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	res := m.surface.Preview()

	rows := make([]string, 0, m.height)
	rows = append(rows, m.renderToolbar())
	rows = append(rows, m.renderBody(res.HTML, res.Failed())...)
	if m.height > toolbarRows {
		rows = append(rows, m.renderStatusBar(res.Failed()))
	}
	return strings.Join(rows, "\n")
}

// ---------------------------------------------------------------------------
// Toolbar
// ---------------------------------------------------------------------------

type itemKind int

const (
	itemAction itemKind = iota
	itemSeparator
	itemSplit
	itemPreview
	itemAssistant
)

// toolbarItem is one clickable cell range of the toolbar row.
type toolbarItem struct {
	label  string
	kind   itemKind
	index  int // toolbar action index for itemAction
	on     bool
	x0, x1 int
}

// toolbarItems lays out the toolbar buttons left to right. Rendering and
// click hit-testing both use it.
func (m Model) toolbarItems() []toolbarItem {
	var items []toolbarItem
	x := 0
	add := func(label string, kind itemKind, index int, on bool) {
		w := ansi.StringWidth(label)
		items = append(items, toolbarItem{label: label, kind: kind, index: index, on: on, x0: x, x1: x + w})
		x += w
	}
	for i, a := range m.toolbar {
		add(fmt.Sprintf(" %d %s ", i+1, a.Icon), itemAction, i, false)
	}
	mode := m.surface.ViewMode()
	add("│", itemSeparator, 0, false)
	add(" split ", itemSplit, 0, mode == surface.ModeSplit)
	add(" preview ", itemPreview, 0, mode == surface.ModePreview)
	add(" assistant ", itemAssistant, 0, m.showSidebar)
	return items
}

func (m Model) renderToolbar() string {
	var b strings.Builder
	for _, it := range m.toolbarItems() {
		switch {
		case it.kind == itemSeparator:
			b.WriteString(m.styles.Border.Render(it.label))
		case it.kind == itemAction:
			num := fmt.Sprintf("%d", it.index+1)
			rest := strings.TrimPrefix(it.label, " "+num)
			b.WriteString(m.styles.Toolbar.Render(" "))
			b.WriteString(m.styles.ToolbarKey.Render(num))
			b.WriteString(m.styles.Toolbar.Render(rest))
		case it.on:
			b.WriteString(m.styles.ToolbarOn.Render(it.label))
		default:
			b.WriteString(m.styles.Toolbar.Render(it.label))
		}
	}
	return fitLine(b.String(), m.width, m.styles.Base)
}

// fitLine truncates or pads s to exactly w cells.
func fitLine(s string, w int, fill lipgloss.Style) string {
	n := ansi.StringWidth(s)
	switch {
	case n > w:
		return ansi.Truncate(s, w, "")
	case n < w:
		return s + fill.Render(strings.Repeat(" ", w-n))
	}
	return s
}
