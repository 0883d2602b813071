// Package highlight renders markdown source and preview HTML with Chroma and
// derives the TUI palette from the same theme.
package highlight

import (
	"fmt"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/golang/groupcache/lru"
)

// Languages highlighted by the editor.
const (
	Markdown = "markdown"
	HTML     = "html"
)

// Highlighter produces ANSI-colored text for one theme. Results are cached by
// language and text since views re-render on every keystroke.
type Highlighter struct {
	theme string
	bgSeq string

	mu    sync.Mutex
	cache *lru.Cache
}

type cacheKey struct {
	lang, text string
}

// New returns a highlighter for the given Chroma theme. cacheSize bounds
// the number of memoized blocks.
func New(theme string, cacheSize int) *Highlighter {
	if cacheSize <= 0 {
		cacheSize = 64
	}
	return &Highlighter{
		theme: theme,
		bgSeq: bgSeq(ThemeBg(theme)),
		cache: lru.New(cacheSize),
	}
}

// Theme returns the Chroma theme name.
func (h *Highlighter) Theme() string { return h.theme }

// Lines highlights text and splits it into independently renderable lines.
// Unknown languages or tokenizer failures return the plain lines.
func (h *Highlighter) Lines(text, lang string) []string {
	key := cacheKey{lang, text}
	h.mu.Lock()
	if v, ok := h.cache.Get(key); ok {
		h.mu.Unlock()
		return v.([]string)
	}
	h.mu.Unlock()

	out, ok := h.render(text, lang)
	var lines []string
	if ok {
		lines = SplitLines(out)
		// The lexer may add a trailing newline of its own.
		if n := strings.Count(text, "\n") + 1; len(lines) > n {
			lines = lines[:n]
		}
	} else {
		lines = strings.Split(text, "\n")
	}

	h.mu.Lock()
	h.cache.Add(key, lines)
	h.mu.Unlock()
	return lines
}

func (h *Highlighter) render(text, lang string) (string, bool) {
	lex := lexers.Get(lang)
	if lex == nil {
		return "", false
	}
	lex = chroma.Coalesce(lex)
	fmtr := formatters.Get("terminal16m")
	if fmtr == nil {
		fmtr = formatters.Fallback
	}
	it, err := lex.Tokenise(nil, text)
	if err != nil {
		return "", false
	}
	var buf strings.Builder
	if err := fmtr.Format(&buf, styles.Get(h.theme), it); err != nil {
		return "", false
	}
	raw := strings.TrimSuffix(buf.String(), "\n")

	// Every \x1b[0m reset clears the background; re-apply it after each one.
	return h.bgSeq + strings.ReplaceAll(raw, "\x1b[0m", "\x1b[0m"+h.bgSeq), true
}

// SplitLines splits a highlighted block into per-line strings, carrying the
// active SGR state into each following line.
func SplitLines(block string) []string {
	lines := strings.Split(block, "\n")
	var active []string
	for i, line := range lines {
		if i > 0 && len(active) > 0 {
			lines[i] = strings.Join(active, "") + line
		}
		active = trackSGR(line, active)
	}
	return lines
}

// trackSGR returns the SGR sequences still in effect at the end of line.
func trackSGR(line string, active []string) []string {
	for i := 0; i < len(line); i++ {
		if line[i] != '\x1b' || i+1 >= len(line) || line[i+1] != '[' {
			continue
		}
		end := strings.IndexAny(line[i+2:], "m\x1b")
		if end < 0 || line[i+2+end] != 'm' {
			continue
		}
		end += i + 2
		switch params := line[i+2 : end]; params {
		case "", "0":
			active = active[:0]
		default:
			active = append(active, line[i:end+1])
		}
		i = end
	}
	return active
}

// ThemeBg returns the "#rrggbb" background of a Chroma theme, or "".
func ThemeBg(theme string) string {
	sty := styles.Get(theme)
	if sty == nil {
		return ""
	}
	bg := sty.Get(chroma.Background).Background
	if !bg.IsSet() {
		return ""
	}
	return bg.String()
}

// bgSeq converts "#rrggbb" to a 24-bit background escape sequence.
func bgSeq(hex string) string {
	c, ok := parseHex(hex)
	if !ok {
		return ""
	}
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", c.r, c.g, c.b)
}
