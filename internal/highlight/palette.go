package highlight

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// Palette holds the editor chrome colors derived from a Chroma theme. Grays
// are blends from background toward foreground.
type Palette struct {
	Bg        string
	Fg        string
	Border    string // 12% toward fg
	Selection string // 20% toward fg
	Dim       string // 30% toward fg
	Muted     string // 50% toward fg
	Accent    string // most saturated token color
	Error     string
}

// ThemePalette derives the palette for a theme name. Unknown themes use
// Chroma's fallback style.
func ThemePalette(theme string) Palette {
	sty := styles.Get(theme)
	if sty == nil {
		sty = styles.Fallback
	}
	bg, fg := rgb{0, 0, 0}, rgb{200, 200, 200}
	if e := sty.Get(chroma.Background); e.Background.IsSet() {
		bg, _ = parseHex(e.Background.String())
		if e.Colour.IsSet() {
			fg, _ = parseHex(e.Colour.String())
		}
	}

	p := Palette{
		Bg:        bg.hex(),
		Fg:        fg.hex(),
		Border:    bg.blend(fg, 0.12).hex(),
		Selection: bg.blend(fg, 0.20).hex(),
		Dim:       bg.blend(fg, 0.30).hex(),
		Muted:     bg.blend(fg, 0.50).hex(),
		Accent:    fg.hex(),
		Error:     bg.blend(fg, 0.50).hex(),
	}
	if c, ok := mostSaturated(sty); ok {
		p.Accent = c.hex()
	}
	if e := sty.Get(chroma.Error); e.Colour.IsSet() {
		c, _ := parseHex(e.Colour.String())
		p.Error = bg.blend(c, 0.6).hex()
	}
	return p
}

func mostSaturated(sty *chroma.Style) (rgb, bool) {
	var best rgb
	bestSat := 0.0
	for _, tt := range sty.Types() {
		e := sty.Get(tt)
		if !e.Colour.IsSet() {
			continue
		}
		c, ok := parseHex(e.Colour.String())
		if !ok {
			continue
		}
		if s := c.saturation(); s > bestSat {
			best, bestSat = c, s
		}
	}
	return best, bestSat > 0
}

type rgb struct{ r, g, b int }

func parseHex(s string) (rgb, bool) {
	if len(s) != 7 || s[0] != '#' {
		return rgb{}, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}, true
}

func (c rgb) hex() string { return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b) }

// blend moves c toward o by fraction t.
func (c rgb) blend(o rgb, t float64) rgb {
	mix := func(a, b int) int {
		v := float64(a) + (float64(b)-float64(a))*t + 0.5
		return max(0, min(255, int(v)))
	}
	return rgb{mix(c.r, o.r), mix(c.g, o.g), mix(c.b, o.b)}
}

func (c rgb) saturation() float64 {
	hi := max(c.r, c.g, c.b)
	lo := min(c.r, c.g, c.b)
	if hi == 0 {
		return 0
	}
	return float64(hi-lo) / float64(hi)
}
