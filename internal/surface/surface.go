// Package surface owns the markdown source buffer of a post being edited.
//
// A Surface holds the buffer, translates toolbar and keyboard commands into
// buffer mutations, appends assistant suggestions, tracks the presentational
// view mode and drives a markdown engine for the live preview. The host text
// widget is injected; the surface never reaches for ambient state.
package surface

import (
	"github.com/rs/zerolog"

	"github.com/xonecas/inkpad/internal/markdown"
)

// Range is a selection in rune offsets into the buffer. Start == End is a
// collapsed cursor.
type Range struct {
	Start, End int
}

// Normalize orders the bounds and clamps them to [0, n].
func (r Range) Normalize(n int) Range {
	if r.Start > r.End {
		r.Start, r.End = r.End, r.Start
	}
	r.Start = clamp(r.Start, 0, n)
	r.End = clamp(r.End, 0, n)
	return r
}

// Empty reports whether the range is a collapsed cursor.
func (r Range) Empty() bool { return r.Start == r.End }

// Widget is the host text input the surface reads selections from and
// restores cursors into.
type Widget interface {
	Selection() Range
	SetSelection(Range)
	Focus()
}

// ChangeFunc receives the whole buffer after every mutation.
type ChangeFunc func(value string)

// Surface is the editor core. It is not safe for concurrent use; all calls
// are expected from the single UI goroutine.
type Surface struct {
	value    string
	onChange ChangeFunc
	widget   Widget
	engine   markdown.Engine
	mode     ViewMode
	log      zerolog.Logger

	pendingCursor int
	hasPending    bool
}

// Option configures a Surface.
type Option func(*Surface)

// WithWidget mounts w at construction time.
func WithWidget(w Widget) Option {
	return func(s *Surface) { s.widget = w }
}

// WithEngine sets the engine used by Preview. Defaults to the sanitizing
// pipeline.
func WithEngine(e markdown.Engine) Option {
	return func(s *Surface) { s.engine = e }
}

// WithViewMode sets the initial view mode.
func WithViewMode(m ViewMode) Option {
	return func(s *Surface) { s.mode = m }
}

// WithLogger sets the surface logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Surface) { s.log = l }
}

// New creates a surface holding initial. onChange may be nil.
func New(initial string, onChange ChangeFunc, opts ...Option) *Surface {
	s := &Surface{
		value:    initial,
		onChange: onChange,
		mode:     ModeEdit,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = markdown.New(markdown.WithLogger(s.log))
	}
	return s
}

// Mount attaches the host widget.
func (s *Surface) Mount(w Widget) { s.widget = w }

// Unmount detaches the host widget and drops any pending cursor.
func (s *Surface) Unmount() {
	s.widget = nil
	s.hasPending = false
}

// Mounted reports whether a host widget is attached.
func (s *Surface) Mounted() bool { return s.widget != nil }

// Value returns the current buffer.
func (s *Surface) Value() string { return s.value }

// SetValue replaces the buffer wholesale, as a keystroke in the host widget
// does.
func (s *Surface) SetValue(v string) {
	if v == s.value {
		return
	}
	s.replace(v)
}

func (s *Surface) replace(v string) {
	s.value = v
	if s.onChange != nil {
		s.onChange(v)
	}
}

// ApplyInsertion wraps the widget's current selection with cmd's prefix and
// suffix. The new cursor, just after the suffix, is held until Paint runs;
// the widget can only take a selection once it shows the new buffer.
// Without a mounted widget this is a no-op and returns false.
func (s *Surface) ApplyInsertion(cmd Command) bool {
	if s.widget == nil {
		s.log.Debug().Str("prefix", cmd.Prefix).Msg("insertion with no widget mounted")
		return false
	}

	runes := []rune(s.value)
	sel := s.widget.Selection().Normalize(len(runes))
	selected := runes[sel.Start:sel.End]

	prefix, suffix := []rune(cmd.Prefix), []rune(cmd.Suffix)
	next := make([]rune, 0, len(runes)+len(prefix)+len(suffix))
	next = append(next, runes[:sel.Start]...)
	next = append(next, prefix...)
	next = append(next, selected...)
	next = append(next, suffix...)
	next = append(next, runes[sel.End:]...)

	s.pendingCursor = sel.Start + len(prefix) + len(selected) + len(suffix)
	s.hasPending = true
	s.replace(string(next))
	return true
}

// PendingCursor returns the cursor offset waiting for the next paint.
func (s *Surface) PendingCursor() (int, bool) {
	return s.pendingCursor, s.hasPending
}

// Paint is called by the host once the widget reflects the current buffer.
// It focuses the widget and restores any pending cursor.
func (s *Surface) Paint() {
	if !s.hasPending {
		return
	}
	s.hasPending = false
	if s.widget == nil {
		return
	}
	s.widget.Focus()
	s.widget.SetSelection(Range{Start: s.pendingCursor, End: s.pendingCursor})
}

// AppendSuggestion appends assistant text, separated from existing content
// by a blank line.
func (s *Surface) AppendSuggestion(text string) {
	sep := ""
	if s.value != "" {
		sep = "\n\n"
	}
	s.replace(s.value + sep + text)
}

// Preview renders the current buffer. It is recomputed on every call and
// never fails; check Result.Failed for the error flag.
func (s *Surface) Preview() markdown.Result {
	return s.engine.Render(s.value)
}

// ViewMode returns the current view mode.
func (s *Surface) ViewMode() ViewMode { return s.mode }

// SetViewMode switches the presentation. The buffer is untouched.
func (s *Surface) SetViewMode(m ViewMode) {
	if !m.Valid() {
		return
	}
	s.mode = m
}

// ToggleSplit flips between split and edit, like the toolbar split button.
func (s *Surface) ToggleSplit() {
	if s.mode == ModeSplit {
		s.mode = ModeEdit
		return
	}
	s.mode = ModeSplit
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
