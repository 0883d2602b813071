package markdown

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"allowed passthrough", "<p>a <strong>b</strong></p>", "<p>a <strong>b</strong></p>"},
		{"script dropped with content", "<p>x<script>steal()</script>y</p>", "<p>xy</p>"},
		{"style dropped with content", "<style>p{}</style><p>ok</p>", "<p>ok</p>"},
		{"unknown tag keeps text", "<div><span>hi</span></div>", "hi"},
		{"event handler stripped", `<p onclick="x()">t</p>`, "<p>t</p>"},
		{"javascript href stripped", `<a href="javascript:alert(1)">x</a>`, "<a>x</a>"},
		{"entity-encoded scheme stripped", `<a href="&#106;avascript:alert(1)">x</a>`, "<a>x</a>"},
		{"relative href kept", `<a href="/posts/1">x</a>`, `<a href="/posts/1">x</a>`},
		{"mailto kept", `<a href="mailto:a@b.c">x</a>`, `<a href="mailto:a@b.c">x</a>`},
		{"foreign onerror stripped", `<img src="a.png" onerror="alert(1)" />`, `<img src="a.png" />`},
		{"stray lt escaped", "<p>1 < 2 & 3</p>", "<p>1 &lt; 2 & 3</p>"},
		{"quotes kept", `<p>don't say "hi"</p>`, `<p>don't say "hi"</p>`},
		{"entities kept", "<p>Tom &amp; Jerry &lt;3</p>", "<p>Tom &amp; Jerry &lt;3</p>"},
		{"comment dropped", "<p>a<!-- hidden --></p>", "<p>a</p>"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sanitize(tc.in); got != tc.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizeKeepsImageHideHandler(t *testing.T) {
	in := `<img src="http://x" alt="a" onerror="` + hideOnError + `" />`
	got := Sanitize(in)
	if !strings.Contains(got, "onerror=") {
		t.Errorf("hide-on-error handler removed: %q", got)
	}
}

func TestEngineByName(t *testing.T) {
	for _, name := range []string{"", EnginePipeline, EngineCommonMark} {
		e, err := EngineByName(name)
		if err != nil {
			t.Fatalf("EngineByName(%q): %v", name, err)
		}
		if name != "" && e.Name() != name {
			t.Errorf("EngineByName(%q).Name() = %q", name, e.Name())
		}
	}

	if _, err := EngineByName("textile"); !errors.Is(err, ErrUnknownEngine) {
		t.Errorf("err = %v, want ErrUnknownEngine", err)
	}
}

func TestCommonMarkEngine(t *testing.T) {
	e := NewCommonMark()

	res := e.Render("1. a\n2. b\n\n<script>alert(1)</script>")
	if res.Failed() {
		t.Fatalf("render failed: %v", res.Err)
	}
	if !strings.Contains(res.HTML, "<ol>") {
		t.Errorf("expected ordered list: %q", res.HTML)
	}
	if strings.Contains(res.HTML, "alert") {
		t.Errorf("raw HTML survived: %q", res.HTML)
	}
}
