package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/xonecas/inkpad/internal/highlight"
)

// wrapANSI word-wraps an ANSI-styled string to the given width, returning
// the resulting visual lines. Styles are carried across line breaks and
// closed at each break, so every line renders on its own and padding after
// it does not inherit the style.
func wrapANSI(s string, width int) []string {
	if width <= 0 || s == "" {
		return []string{s}
	}
	wrapped := ansi.Hardwrap(ansi.Wordwrap(s, width, ""), width, true)
	lines := highlight.SplitLines(wrapped)
	for i := 0; i < len(lines)-1; i++ {
		if strings.Contains(lines[i], "\x1b[") {
			lines[i] += ansi.ResetStyle
		}
	}
	return lines
}
