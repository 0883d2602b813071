package markdown

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// allowedAttrs lists, per allowed element, the attributes that survive
// sanitizing. An element missing from the map is stripped (its text kept).
var allowedAttrs = map[string]map[string]bool{
	"h1": nil, "h2": nil, "h3": nil,
	"p": nil, "br": nil,
	"strong": nil, "em": nil,
	"code": nil, "pre": nil,
	"ul": nil, "ol": nil, "li": nil,
	"blockquote": nil,
	"a":          {"href": true, "target": true, "rel": true},
	"img":        {"src": true, "alt": true, "onerror": true},
}

// dropWithContent are elements removed together with everything inside them.
var dropWithContent = map[string]bool{
	"script": true, "style": true, "iframe": true, "object": true,
	"embed": true, "noscript": true, "template": true, "textarea": true,
	"title": true, "xmp": true, "noembed": true, "noframes": true,
	"plaintext": true, "svg": true, "math": true,
}

var safeSchemes = map[string]bool{"http": true, "https": true, "mailto": true}

// Sanitize filters an HTML fragment through an allow-list. Disallowed tags
// are removed, scripts and similar containers are removed with their
// content, URLs must be relative or http(s)/mailto, and text keeps its
// source form apart from a stray "<".
// Comments and doctypes are dropped.
func Sanitize(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skip := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or a malformed tail; either way we are done.
			return b.String()

		case html.TextToken:
			if skip == 0 {
				b.WriteString(escapeText(string(z.Raw())))
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if dropWithContent[tok.Data] {
				if tt == html.StartTagToken {
					skip++
				}
				continue
			}
			attrs, ok := allowedAttrs[tok.Data]
			if skip > 0 || !ok {
				continue
			}
			writeStartTag(&b, tok, attrs, tt == html.SelfClosingTagToken)

		case html.EndTagToken:
			tok := z.Token()
			if dropWithContent[tok.Data] {
				if skip > 0 {
					skip--
				}
				continue
			}
			if _, ok := allowedAttrs[tok.Data]; skip > 0 || !ok {
				continue
			}
			b.WriteString("</" + tok.Data + ">")
		}
	}
}

func writeStartTag(b *strings.Builder, tok html.Token, allowed map[string]bool, selfClosing bool) {
	b.WriteString("<" + tok.Data)
	for _, a := range tok.Attr {
		if a.Namespace != "" || !allowed[a.Key] {
			continue
		}
		switch a.Key {
		case "href", "src":
			if !safeURL(a.Val) {
				continue
			}
		case "onerror":
			if a.Val != hideOnError {
				continue
			}
		}
		b.WriteString(" " + a.Key + `="` + html.EscapeString(a.Val) + `"`)
	}
	if selfClosing {
		b.WriteString(" />")
		return
	}
	b.WriteByte('>')
}

// safeURL accepts relative references and absolute URLs with an allowed
// scheme. Anything url.Parse rejects (control characters included) fails.
func safeURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme == "" {
		return true
	}
	return safeSchemes[strings.ToLower(u.Scheme)]
}

// escapeText writes a text token back as it appeared in the source. Quotes,
// apostrophes and entities are left alone; a lone "<" is escaped so no later
// pass can complete it into a tag.
func escapeText(raw string) string {
	return strings.ReplaceAll(raw, "<", "&lt;")
}
