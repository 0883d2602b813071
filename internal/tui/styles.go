package tui

import (
	"charm.land/lipgloss/v2"

	"github.com/xonecas/inkpad/internal/highlight"
	"github.com/xonecas/inkpad/internal/tui/editor"
	"github.com/xonecas/inkpad/internal/tui/sidebar"
)

// Styles are derived from the syntax theme so the chrome matches the
// highlighted buffer.
type Styles struct {
	Base        lipgloss.Style // Background fill
	Border      lipgloss.Style
	Toolbar     lipgloss.Style
	ToolbarKey  lipgloss.Style
	ToolbarOn   lipgloss.Style // Active mode toggle
	StatusText  lipgloss.Style
	StatusMode  lipgloss.Style
	StatusAdd   lipgloss.Style
	StatusMod   lipgloss.Style
	StatusDel   lipgloss.Style
	Error       lipgloss.Style
	PreviewText lipgloss.Style

	Editor  editor.Styles
	Sidebar sidebar.Colors
}

// newStyles builds the UI styles for a palette.
func newStyles(p highlight.Palette) Styles {
	bg := lipgloss.Color(p.Bg)
	fg := lipgloss.Color(p.Fg)
	base := lipgloss.NewStyle().Background(bg).Foreground(fg)

	return Styles{
		Base:        base,
		Border:      base.Foreground(lipgloss.Color(p.Border)),
		Toolbar:     base.Foreground(lipgloss.Color(p.Muted)),
		ToolbarKey:  base.Foreground(lipgloss.Color(p.Accent)),
		ToolbarOn:   lipgloss.NewStyle().Background(lipgloss.Color(p.Selection)).Foreground(fg),
		StatusText:  base.Foreground(lipgloss.Color(p.Muted)),
		StatusMode:  lipgloss.NewStyle().Background(lipgloss.Color(p.Accent)).Foreground(bg).Bold(true),
		StatusAdd:   base.Foreground(lipgloss.Color("#50fa7b")),
		StatusMod:   base.Foreground(lipgloss.Color(p.Accent)),
		StatusDel:   base.Foreground(lipgloss.Color(p.Error)),
		Error:       base.Foreground(lipgloss.Color(p.Error)),
		PreviewText: base,

		Editor: editor.Styles{
			Text:        base,
			LineNum:     base.Foreground(lipgloss.Color(p.Dim)),
			Cursor:      lipgloss.NewStyle().Reverse(true),
			Selection:   lipgloss.NewStyle().Background(lipgloss.Color(p.Selection)).Foreground(fg),
			Placeholder: base.Foreground(lipgloss.Color(p.Dim)).Italic(true),
			Added:       base.Foreground(lipgloss.Color("#50fa7b")),
			Changed:     base.Foreground(lipgloss.Color(p.Accent)),
			Deleted:     base.Foreground(lipgloss.Color(p.Error)),
		},
		Sidebar: sidebar.Colors{
			Fg:     p.Fg,
			Bg:     p.Bg,
			Dim:    p.Dim,
			SelFg:  p.Fg,
			SelBg:  p.Selection,
			Border: p.Border,
			Accent: p.Accent,
			Error:  p.Error,
		},
	}
}
