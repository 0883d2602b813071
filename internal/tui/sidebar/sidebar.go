// Package sidebar is the assistant panel: a prompt input, starter
// suggestions and the chat transcript.
package sidebar

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/xonecas/inkpad/internal/assistant"
)

// Action is the result of handling a message. nil means no action.
type Action any

// ActionClose signals the panel should be hidden.
type ActionClose struct{}

// ActionAsk asks the assistant the given prompt.
type ActionAsk struct{ Prompt string }

// ActionInsert appends text to the document.
type ActionInsert struct{ Text string }

// ActionClear empties the transcript.
type ActionClear struct{}

// FailedMessage is shown when a request to the assistant fails.
const FailedMessage = "Failed to generate response. Please try again."

// Colors holds the theme colors for the panel.
type Colors struct {
	Fg     string
	Bg     string
	Dim    string
	SelFg  string
	SelBg  string
	Border string
	Accent string
	Error  string
}

const (
	keyDown      = "down"
	keyBackspace = "backspace"
)

// brailleFrames drive the busy indicator.
var brailleFrames = spinner.Spinner{
	Frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	FPS:    100 * time.Millisecond,
}

// Model is the assistant panel.
type Model struct {
	input       []rune
	cursor      int
	suggestions []string
	selected    int
	inList      bool // true = suggestion list focused, false = input focused

	messages []assistant.Message
	scroll   int // transcript lines scrolled up from the bottom
	busy     bool
	err      string

	spinner spinner.Model
	colors  Colors

	// Prompt shown before the input text.
	Prompt string
}

// New creates an empty panel.
func New(prompt string, colors Colors) Model {
	return Model{
		Prompt:  prompt,
		colors:  colors,
		spinner: spinner.New(spinner.WithSpinner(brailleFrames)),
	}
}

// SetSuggestions replaces the starter prompts.
func (m *Model) SetSuggestions(s []string) {
	m.suggestions = append([]string(nil), s...)
	m.selected = 0
	if len(m.suggestions) == 0 {
		m.inList = false
	}
}

// Suggestions returns the starter prompts.
func (m *Model) Suggestions() []string { return m.suggestions }

// SetMessages replaces the transcript and scrolls to the newest entry.
func (m *Model) SetMessages(msgs []assistant.Message) {
	m.messages = msgs
	m.scroll = 0
	if len(msgs) > 0 {
		m.inList = false
	}
}

// SetBusy toggles the in-flight indicator. The returned command starts the
// spinner when the panel becomes busy.
func (m *Model) SetBusy(busy bool) tea.Cmd {
	was := m.busy
	m.busy = busy
	if busy {
		m.err = ""
		if !was {
			return m.spinner.Tick
		}
	}
	return nil
}

// Busy reports whether a request is in flight.
func (m *Model) Busy() bool { return m.busy }

// SetError shows the failure notice. An empty string clears it.
func (m *Model) SetError(msg string) { m.err = msg }

// Err returns the notice currently shown.
func (m *Model) Err() string { return m.err }

// Input returns the current prompt text.
func (m *Model) Input() string { return string(m.input) }

// SetInput replaces the prompt text and moves the cursor to its end.
func (m *Model) SetInput(s string) {
	m.input = []rune(s)
	m.cursor = len(m.input)
}

// showSuggestions reports whether the starter list is visible. It is shown
// only until the first exchange.
func (m *Model) showSuggestions() bool {
	return len(m.messages) == 0 && len(m.suggestions) > 0
}

// HandleMsg processes a tea.Msg and returns an optional Action and a
// tea.Cmd the parent must dispatch.
func (m *Model) HandleMsg(msg tea.Msg) (Action, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	case spinner.TickMsg:
		if !m.busy {
			return nil, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return nil, cmd
	}
	return nil, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (Action, tea.Cmd) {
	switch msg.Keystroke() {
	case "esc":
		return ActionClose{}, nil
	case "enter":
		return m.handleEnter(), nil
	case "tab":
		if m.inList {
			return m.pickSuggestion(), nil
		}
		m.handleNav(keyDown)
		return nil, nil
	case "ctrl+l":
		return ActionClear{}, nil
	case "ctrl+y":
		if reply, ok := m.lastReply(); ok {
			return ActionInsert{Text: reply}, nil
		}
		return nil, nil
	case "up", keyDown:
		m.handleNav(msg.Keystroke())
		return nil, nil
	case "pgup":
		m.scroll += 5
		return nil, nil
	case "pgdown":
		m.scroll = max(0, m.scroll-5)
		return nil, nil
	case keyBackspace, "delete", "ctrl+u", "ctrl+k":
		m.handleDelete(msg.Keystroke())
		return nil, nil
	case "left", "right", "home", "end", "ctrl+a", "ctrl+e":
		m.handleCursor(msg.Keystroke())
		return nil, nil
	}

	// Rune input.
	if msg.Text != "" {
		m.inList = false
		m.insert(msg.Text)
	}
	return nil, nil
}

// Paste inserts text at the input cursor.
func (m *Model) Paste(s string) {
	m.inList = false
	m.insert(strings.ReplaceAll(s, "\n", " "))
}

func (m *Model) insert(s string) {
	for _, r := range s {
		m.input = append(m.input[:m.cursor], append([]rune{r}, m.input[m.cursor:]...)...)
		m.cursor++
	}
}

func (m *Model) handleEnter() Action {
	if m.inList {
		return m.pickSuggestion()
	}
	prompt := strings.TrimSpace(string(m.input))
	if m.busy || prompt == "" {
		return nil
	}
	m.input = nil
	m.cursor = 0
	m.err = ""
	return ActionAsk{Prompt: prompt}
}

// pickSuggestion copies the highlighted starter prompt into the input and
// asks the parent to append it to the document.
func (m *Model) pickSuggestion() Action {
	if !m.showSuggestions() {
		m.inList = false
		return nil
	}
	idx := m.selected
	if idx >= len(m.suggestions) {
		idx = 0
	}
	s := m.suggestions[idx]
	m.SetInput(s)
	m.inList = false
	return ActionInsert{Text: s}
}

func (m *Model) lastReply() (string, bool) {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Role == assistant.RoleAssistant {
			return m.messages[i].Content, true
		}
	}
	return "", false
}

func (m *Model) handleNav(key string) {
	if !m.showSuggestions() {
		switch key {
		case "up":
			m.scroll++
		case keyDown:
			m.scroll = max(0, m.scroll-1)
		}
		return
	}
	switch key {
	case "up":
		if m.inList {
			if m.selected > 0 {
				m.selected--
			} else {
				m.inList = false
			}
		}
	case keyDown:
		if !m.inList {
			m.inList = true
			m.selected = 0
		} else if m.selected < len(m.suggestions)-1 {
			m.selected++
		}
	}
}

func (m *Model) handleDelete(key string) {
	if m.inList {
		return
	}
	switch key {
	case keyBackspace:
		if m.cursor > 0 {
			m.input = append(m.input[:m.cursor-1], m.input[m.cursor:]...)
			m.cursor--
		}
	case "delete":
		if m.cursor < len(m.input) {
			m.input = append(m.input[:m.cursor], m.input[m.cursor+1:]...)
		}
	case "ctrl+u":
		m.input = m.input[m.cursor:]
		m.cursor = 0
	case "ctrl+k":
		m.input = m.input[:m.cursor]
	}
}

func (m *Model) handleCursor(key string) {
	if m.inList {
		return
	}
	switch key {
	case "left":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right":
		if m.cursor < len(m.input) {
			m.cursor++
		}
	case "home", "ctrl+a":
		m.cursor = 0
	case "end", "ctrl+e":
		m.cursor = len(m.input)
	}
}

// View renders the panel into exactly width x height cells.
func (m *Model) View(width, height int) string {
	if width < 12 {
		width = 12
	}
	if height < 6 {
		height = 6
	}
	innerW := width - 4 // border + padding
	innerH := height - 2

	bg := lipgloss.Color(m.colors.Bg)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors.Dim)).Background(bg)
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors.Accent)).Background(bg).Bold(true)
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors.Error)).Background(bg)

	title := accentStyle.Render("Assistant")
	if m.busy {
		title += " " + m.spinner.View()
	}
	divider := dimStyle.Render(strings.Repeat("─", innerW))

	// title, divider, body..., [error], divider, input
	bodyH := innerH - 4
	var errLine string
	if m.err != "" {
		errLine = errStyle.Render(ansi.Truncate(m.err, innerW, "…"))
		bodyH--
	}
	if bodyH < 1 {
		bodyH = 1
	}

	var body []string
	if m.showSuggestions() {
		body = m.renderSuggestions(innerW, bodyH)
	} else {
		body = m.renderTranscript(innerW, bodyH)
	}

	lines := make([]string, 0, innerH)
	lines = append(lines, padRight(title, innerW), divider)
	lines = append(lines, body...)
	if errLine != "" {
		lines = append(lines, padRight(errLine, innerW))
	}
	lines = append(lines, divider, padRight(m.renderInput(innerW), innerW))
	if len(lines) > innerH {
		lines = lines[len(lines)-innerH:]
	}

	for len(lines) < innerH {
		lines = append(lines, strings.Repeat(" ", innerW))
	}
	return box(lines, width, m.colors)
}

// box frames lines, each innerW cells wide, in a rounded border of the
// given outer width.
func box(lines []string, width int, c Colors) string {
	bg := lipgloss.Color(c.Bg)
	b := lipgloss.RoundedBorder()
	edge := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Border)).Background(bg)
	fill := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Fg)).Background(bg)
	innerW := width - 4

	var sb strings.Builder
	sb.WriteString(edge.Render(b.TopLeft + strings.Repeat(b.Top, width-2) + b.TopRight))
	for _, l := range lines {
		sb.WriteString("\n")
		sb.WriteString(edge.Render(b.Left))
		sb.WriteString(fill.Render(" " + padRight(ansi.Truncate(l, innerW, ""), innerW) + " "))
		sb.WriteString(edge.Render(b.Right))
	}
	sb.WriteString("\n")
	sb.WriteString(edge.Render(b.BottomLeft + strings.Repeat(b.Bottom, width-2) + b.BottomRight))
	return sb.String()
}

func (m *Model) renderInput(innerW int) string {
	prompt := m.Prompt
	if prompt == "" {
		prompt = "> "
	}
	room := innerW - ansi.StringWidth(prompt) - 1
	start := 0
	if room > 0 && m.cursor > room {
		start = m.cursor - room
	}
	visible := m.input[start:]
	cur := m.cursor - start

	if m.inList {
		return ansi.Truncate(prompt+string(visible), innerW, "")
	}
	before := string(visible[:cur])
	cursorStyle := lipgloss.NewStyle().Reverse(true)
	cursorChar := " "
	after := ""
	if cur < len(visible) {
		cursorChar = string(visible[cur])
		after = string(visible[cur+1:])
	}
	return ansi.Truncate(prompt+before+cursorStyle.Render(cursorChar)+after, innerW, "")
}

func (m *Model) renderSuggestions(innerW, listHeight int) []string {
	scrollOff := 0
	if m.selected >= listHeight {
		scrollOff = m.selected - listHeight + 1
	}

	selStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.colors.SelFg)).
		Background(lipgloss.Color(m.colors.SelBg))
	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.colors.Dim)).
		Background(lipgloss.Color(m.colors.Bg))

	var lines []string
	for i := scrollOff; i < len(m.suggestions) && len(lines) < listHeight; i++ {
		item := ansi.Truncate(m.suggestions[i], innerW, "…")
		if i == m.selected && m.inList {
			lines = append(lines, selStyle.Render(padRight(item, innerW)))
		} else {
			lines = append(lines, padRight(dimStyle.Render(item), innerW))
		}
	}
	for len(lines) < listHeight {
		lines = append(lines, strings.Repeat(" ", innerW))
	}
	return lines
}

// renderTranscript wraps every message and shows the last listHeight lines,
// offset by the scroll position.
func (m *Model) renderTranscript(innerW, listHeight int) []string {
	bg := lipgloss.Color(m.colors.Bg)
	userStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors.Accent)).Background(bg)
	botStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors.Dim)).Background(bg)

	var all []string
	for i, msg := range m.messages {
		if i > 0 {
			all = append(all, "")
		}
		label := userStyle.Render("you")
		if msg.Role == assistant.RoleAssistant {
			label = botStyle.Render("assistant")
		}
		all = append(all, label)
		all = append(all, wrap(msg.Content, innerW)...)
	}

	maxScroll := max(0, len(all)-listHeight)
	if m.scroll > maxScroll {
		m.scroll = maxScroll
	}
	end := len(all) - m.scroll
	start := max(0, end-listHeight)

	lines := make([]string, 0, listHeight)
	for _, l := range all[start:end] {
		lines = append(lines, padRight(l, innerW))
	}
	for len(lines) < listHeight {
		lines = append(lines, strings.Repeat(" ", innerW))
	}
	return lines
}

// wrap word-wraps s to w cells, hard-breaking words that do not fit.
func wrap(s string, w int) []string {
	s = strings.ReplaceAll(s, "\t", "  ")
	return strings.Split(ansi.Hardwrap(ansi.Wordwrap(s, w, ""), w, true), "\n")
}

func padRight(s string, w int) string {
	n := ansi.StringWidth(s)
	if n >= w {
		return s
	}
	return s + strings.Repeat(" ", w-n)
}
