package tui

import (
	"image"

	tea "charm.land/bubbletea/v2"

	"github.com/xonecas/inkpad/internal/surface"
)

const (
	toolbarRows   = 1
	statusRows    = 1
	minSidebarW   = 24
	maxSidebarW   = 48
	minMainWidth  = 20
	splitDividerW = 1
)

// layout holds the screen rectangle of every pane. Hidden panes are empty.
type layout struct {
	toolbar image.Rectangle
	editor  image.Rectangle
	divider image.Rectangle
	preview image.Rectangle
	sidebar image.Rectangle
	status  image.Rectangle
}

// generateLayout splits a width x height screen for the view mode.
func generateLayout(width, height int, mode surface.ViewMode, withSidebar bool) layout {
	var ly layout
	if width <= 0 || height <= 0 {
		return ly
	}
	top, bottom := toolbarRows, max(toolbarRows, height-statusRows)
	ly.toolbar = image.Rect(0, 0, width, toolbarRows)
	ly.status = image.Rect(0, bottom, width, height)

	mainW := width
	if withSidebar {
		sw := min(max(width/3, minSidebarW), maxSidebarW)
		if width-sw < minMainWidth {
			sw = width / 2
		}
		mainW = width - sw
		ly.sidebar = image.Rect(mainW, top, width, bottom)
	}

	switch mode {
	case surface.ModePreview:
		ly.preview = image.Rect(0, top, mainW, bottom)
	case surface.ModeSplit:
		ew := (mainW - splitDividerW) / 2
		ly.editor = image.Rect(0, top, ew, bottom)
		ly.divider = image.Rect(ew, top, ew+splitDividerW, bottom)
		ly.preview = image.Rect(ew+splitDividerW, top, mainW, bottom)
	default:
		ly.editor = image.Rect(0, top, mainW, bottom)
	}
	return ly
}

// handleResize applies a window size change and re-derives layout.
func (m *Model) handleResize(msg tea.WindowSizeMsg) {
	m.width, m.height = msg.Width, msg.Height
	m.relayout()
}

// relayout recomputes pane rectangles and pushes sizes to sub-models.
func (m *Model) relayout() {
	m.layout = generateLayout(m.width, m.height, m.surface.ViewMode(), m.showSidebar)
	m.updateComponentSizes()
}

// updateComponentSizes pushes layout dimensions to sub-models.
func (m *Model) updateComponentSizes() {
	if m.layout.editor.Empty() {
		return
	}
	m.editor.SetWidth(m.layout.editor.Dx())
	m.editor.SetHeight(m.layout.editor.Dy())
}
