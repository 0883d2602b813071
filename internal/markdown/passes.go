package markdown

import (
	"regexp"
	"strings"
)

// hideOnError is the inline handler every rendered image carries so a
// broken link collapses instead of showing a broken-image icon.
const hideOnError = `this.style.display='none'`

// orderedMark tags numbered <li> items between the list pass and the wrap
// step when ordered lists are enabled. It never survives a render.
const orderedMark = "\uE000"

var (
	h3Re = regexp.MustCompile(`(?m)^### (.*)$`)
	h2Re = regexp.MustCompile(`(?m)^## (.*)$`)
	h1Re = regexp.MustCompile(`(?m)^# (.*)$`)

	boldStarRe       = regexp.MustCompile(`\*\*(.*?)\*\*`)
	boldUnderscoreRe = regexp.MustCompile(`__(.*?)__`)
	emStarRe         = regexp.MustCompile(`\*(.*?)\*`)
	emUnderscoreRe   = regexp.MustCompile(`_(.*?)_`)

	fenceRe      = regexp.MustCompile("(?s)```(.*?)\n(.*?)```")
	inlineCodeRe = regexp.MustCompile("`([^`]+)`")

	orderedItemRe = regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]+(.*)$`)
	bulletItemRe  = regexp.MustCompile(`(?m)^[ \t]*[-*][ \t]+(.*)$`)
	itemRunRe     = regexp.MustCompile(`(?:<li(?:\x{E000})?>.*</li>\n?)+`)

	imageRe = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)
	linkRe  = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)

	blockquoteRe = regexp.MustCompile(`(?m)^> (.*)$`)
)

// blockTags are the elements a line may start with to be left alone by the
// paragraph pass.
var blockTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "pre": true, "blockquote": true,
	"p": true, "div": true, "hr": true, "table": true,
}

// headers replaces the most specific marker first so "###" is never read
// as "#" followed by "##".
func headers(s string) string {
	s = h3Re.ReplaceAllString(s, "<h3>$1</h3>")
	s = h2Re.ReplaceAllString(s, "<h2>$1</h2>")
	return h1Re.ReplaceAllString(s, "<h1>$1</h1>")
}

// emphasis must handle the double markers before the single ones, or
// "**x**" would become two empty <em> spans around x.
func emphasis(s string) string {
	s = boldStarRe.ReplaceAllString(s, "<strong>$1</strong>")
	s = boldUnderscoreRe.ReplaceAllString(s, "<strong>$1</strong>")
	s = emStarRe.ReplaceAllString(s, "<em>$1</em>")
	return emUnderscoreRe.ReplaceAllString(s, "<em>$1</em>")
}

// code handles fenced blocks before inline spans. The fence's language tag
// is dropped.
func code(s string) string {
	s = fenceRe.ReplaceAllString(s, "<pre><code>$2</code></pre>")
	return inlineCodeRe.ReplaceAllString(s, "<code>$1</code>")
}

func (t *Transformer) lists(s string) string {
	ordered := "<li>$1</li>"
	if t.orderedLists {
		ordered = "<li" + orderedMark + ">$1</li>"
	}
	s = orderedItemRe.ReplaceAllString(s, ordered)
	s = bulletItemRe.ReplaceAllString(s, "<li>$1</li>")
	s = itemRunRe.ReplaceAllStringFunc(s, wrapItems)
	return strings.ReplaceAll(s, orderedMark, "")
}

// wrapItems wraps one maximal run of consecutive item lines. A trailing
// newline stays outside the list so the next line keeps its own row.
func wrapItems(run string) string {
	body := strings.TrimSuffix(run, "\n")
	trail := run[len(body):]

	tag := "ul"
	if strings.Contains(body, "<li"+orderedMark+">") && !strings.Contains(body, "<li>") {
		tag = "ol"
	}
	body = strings.ReplaceAll(body, "<li"+orderedMark+">", "<li>")
	return "<" + tag + ">" + body + "</" + tag + ">" + trail
}

// linksAndImages runs the image pattern first; it is the link pattern with
// a leading "!".
func linksAndImages(s string) string {
	s = imageRe.ReplaceAllString(s, `<img src="$2" alt="$1" onerror="`+hideOnError+`" />`)
	return linkRe.ReplaceAllString(s, `<a href="$2" target="_blank" rel="noopener noreferrer">$1</a>`)
}

func blockquotes(s string) string {
	return blockquoteRe.ReplaceAllString(s, "<blockquote>$1</blockquote>")
}

// paragraphs wraps each run of consecutive lines that are not blank, not
// block-level markup and not inside a <pre> block in a single <p>.
func paragraphs(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	var para []string
	flush := func() {
		if len(para) > 0 {
			out = append(out, "<p>"+strings.Join(para, "\n")+"</p>")
			para = para[:0]
		}
	}

	inPre := false
	for _, line := range lines {
		switch {
		case inPre:
			out = append(out, line)
			if strings.Contains(line, "</pre>") {
				inPre = false
			}
		case strings.TrimSpace(line) == "":
			flush()
			out = append(out, line)
		case isBlockLine(line):
			flush()
			out = append(out, line)
			trimmed := strings.TrimLeft(line, " \t")
			if strings.HasPrefix(trimmed, "<pre>") && !strings.Contains(trimmed, "</pre>") {
				inPre = true
			}
		default:
			para = append(para, line)
		}
	}
	flush()
	return strings.Join(out, "\n")
}

// isBlockLine reports whether line starts with an opening or closing
// block-level tag.
func isBlockLine(line string) bool {
	l := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(l, "<") {
		return false
	}
	l = strings.TrimPrefix(l[1:], "/")
	end := strings.IndexAny(l, " \t/>")
	if end <= 0 {
		return false
	}
	return blockTags[strings.ToLower(l[:end])]
}
