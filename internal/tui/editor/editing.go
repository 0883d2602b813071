package editor

// ---------------------------------------------------------------------------
// Editing operations
// ---------------------------------------------------------------------------

// InsertText replaces the selection, if any, with text at the cursor.
// Carriage returns are dropped.
func (m *Model) InsertText(text string) {
	m.DeleteSelection()
	for _, r := range text {
		switch r {
		case '\n':
			m.insertNewline()
		case '\r':
		default:
			m.insertRune(r)
		}
	}
	m.clampScroll()
}

func (m *Model) insertRune(r rune) {
	line := m.currentLine()
	next := make([]rune, 0, len(line)+1)
	next = append(next, line[:m.col]...)
	next = append(next, r)
	next = append(next, line[m.col:]...)
	m.lines[m.row] = next
	m.col++
}

// insertNewline splits the line at the cursor.
func (m *Model) insertNewline() {
	line := m.currentLine()
	after := make([]rune, len(line[m.col:]))
	copy(after, line[m.col:])
	m.lines[m.row] = line[:m.col]

	lines := make([][]rune, 0, len(m.lines)+1)
	lines = append(lines, m.lines[:m.row+1]...)
	lines = append(lines, after)
	lines = append(lines, m.lines[m.row+1:]...)
	m.lines = lines
	m.row++
	m.col = 0
	m.updateGutter()
}

func (m *Model) deleteBack() {
	if m.col > 0 {
		line := m.currentLine()
		m.lines[m.row] = append(line[:m.col-1], line[m.col:]...)
		m.col--
		return
	}
	if m.row > 0 {
		// Merge with previous line
		prev := m.lines[m.row-1]
		m.col = len(prev)
		m.lines[m.row-1] = append(prev, m.currentLine()...)
		m.lines = append(m.lines[:m.row], m.lines[m.row+1:]...)
		m.row--
		m.updateGutter()
	}
}

func (m *Model) deleteForward() {
	line := m.currentLine()
	if m.col < len(line) {
		m.lines[m.row] = append(line[:m.col], line[m.col+1:]...)
		return
	}
	if m.row < len(m.lines)-1 {
		// Merge with next line
		m.lines[m.row] = append(line, m.lines[m.row+1]...)
		m.lines = append(m.lines[:m.row+1], m.lines[m.row+2:]...)
		m.updateGutter()
	}
}

// deleteWordBack removes the word before the cursor, like ctrl+w in a shell.
func (m *Model) deleteWordBack() {
	if m.col == 0 {
		m.deleteBack()
		return
	}
	line := m.currentLine()
	i := m.col
	for i > 0 && line[i-1] == ' ' {
		i--
	}
	for i > 0 && line[i-1] != ' ' {
		i--
	}
	m.lines[m.row] = append(line[:i], line[m.col:]...)
	m.col = i
}

// killLine removes from the cursor to the end of the line.
func (m *Model) killLine() {
	line := m.currentLine()
	if m.col == len(line) {
		m.deleteForward()
		return
	}
	m.lines[m.row] = line[:m.col]
}

// indent inserts two spaces, the nesting step for markdown lists.
func (m *Model) indent() {
	m.insertRune(' ')
	m.insertRune(' ')
}
