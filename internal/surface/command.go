package surface

import (
	"fmt"
	"strings"
)

// Command wraps the current selection: Prefix + selection + Suffix.
type Command struct {
	Prefix string
	Suffix string
}

// Action describes one toolbar button.
type Action struct {
	Icon    string
	Tooltip string
	Command Command
}

var (
	Bold         = Command{Prefix: "**", Suffix: "**"}
	Italic       = Command{Prefix: "*", Suffix: "*"}
	BulletList   = Command{Prefix: "\n- "}
	NumberedList = Command{Prefix: "\n1. "}
	Image        = Command{Prefix: "![Alt text](", Suffix: ")"}
	Link         = Command{Prefix: "[", Suffix: "](url)"}
	InlineCode   = Command{Prefix: "`", Suffix: "`"}
	Quote        = Command{Prefix: "\n> "}
)

// DefaultToolbar returns the editor's toolbar in display order.
func DefaultToolbar() []Action {
	return []Action{
		{Icon: "bold", Tooltip: "Bold (Ctrl+B)", Command: Bold},
		{Icon: "italic", Tooltip: "Italic (Ctrl+I)", Command: Italic},
		{Icon: "list", Tooltip: "Bullet List", Command: BulletList},
		{Icon: "list-ordered", Tooltip: "Numbered List", Command: NumberedList},
		{Icon: "image", Tooltip: "Image", Command: Image},
		{Icon: "link", Tooltip: "Link", Command: Link},
		{Icon: "code", Tooltip: "Inline Code", Command: InlineCode},
		{Icon: "quote", Tooltip: "Quote", Command: Quote},
	}
}

// shortcuts maps modifier+key keystrokes to commands. cmd/super cover the
// macOS meta key.
var shortcuts = map[string]Command{
	"ctrl+b": Bold, "cmd+b": Bold, "super+b": Bold,
	"ctrl+i": Italic, "cmd+i": Italic, "super+i": Italic,
}

// HandleKey applies the command bound to keystroke, if any. It shares the
// ApplyInsertion path with the toolbar. It reports whether the key was
// bound and applied.
func (s *Surface) HandleKey(keystroke string) bool {
	cmd, ok := shortcuts[strings.ToLower(keystroke)]
	if !ok {
		return false
	}
	return s.ApplyInsertion(cmd)
}

// ViewMode is the presentational layout of the editor.
type ViewMode int

const (
	ModeEdit ViewMode = iota
	ModeSplit
	ModePreview
)

func (m ViewMode) String() string {
	switch m {
	case ModeEdit:
		return "edit"
	case ModeSplit:
		return "split"
	case ModePreview:
		return "preview"
	}
	return fmt.Sprintf("ViewMode(%d)", int(m))
}

// Valid reports whether m is one of the known modes.
func (m ViewMode) Valid() bool { return m >= ModeEdit && m <= ModePreview }

// ParseViewMode parses "edit", "split" or "preview". Empty means edit.
func ParseViewMode(s string) (ViewMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "edit":
		return ModeEdit, nil
	case "split":
		return ModeSplit, nil
	case "preview":
		return ModePreview, nil
	}
	return ModeEdit, fmt.Errorf("unknown view mode %q", s)
}
