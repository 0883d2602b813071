package tui

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
)

// renderStatusBar draws: mode │ draft name, diff stat ... notice, render
// error flag, cursor position.
func (m Model) renderStatusBar(renderFailed bool) string {
	sep := m.styles.StatusText.Render("  ")

	// -- Left segments --
	leftParts := []string{
		m.styles.StatusMode.Render(" " + strings.ToUpper(m.surface.ViewMode().String()) + " "),
	}

	name := m.draftName
	if !m.stat.Empty() {
		name += "*"
	}
	draftPart := m.styles.StatusText.Render(name)
	if m.stat.Empty() {
		draftPart += m.styles.StatusText.Render(" " + m.stat.String())
	} else {
		counts := strings.Join([]string{
			m.styles.StatusAdd.Render("+" + strconv.Itoa(m.stat.Added)),
			m.styles.StatusDel.Render("-" + strconv.Itoa(m.stat.Removed)),
		}, m.styles.StatusText.Render(" "))
		draftPart += m.styles.StatusText.Render(" ") + counts
	}
	leftParts = append(leftParts, draftPart)
	left := strings.Join(leftParts, sep)

	// -- Right segments --
	var rightParts []string
	if m.status != "" {
		if m.statusErr {
			rightParts = append(rightParts, m.styles.Error.Render("✗ "+m.status))
		} else {
			rightParts = append(rightParts, m.styles.StatusText.Render(m.status))
		}
	}
	if renderFailed {
		rightParts = append(rightParts, m.styles.Error.Render("✗ preview error"))
	}
	row, col := m.editor.Cursor()
	rightParts = append(rightParts, m.styles.StatusText.Render(fmt.Sprintf("Ln %d, Col %d ", row+1, col+1)))
	right := strings.Join(rightParts, sep)

	// -- Compose: left + gap + right --
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return fitLine(left+sep+right, m.width, m.styles.Base)
	}
	return left + m.styles.StatusText.Render(strings.Repeat(" ", gap)) + right
}
