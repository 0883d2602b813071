package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xonecas/inkpad/internal/markdown"
	"github.com/xonecas/inkpad/internal/store"
)

// execute runs the command tree with args and returns what it printed.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := Root()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// testConfig writes a config whose store lives in a temp dir.
func testConfig(t *testing.T) (cfgPath, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "inkpad.db")
	cfgPath = filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("log_level = \"error\"\n\n[store]\npath = %q\n", dbPath)
	if err := os.WriteFile(cfgPath, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return cfgPath, dbPath
}

func seedDrafts(t *testing.T, dbPath string, bodies map[string][]string) {
	t.Helper()
	st, err := store.Open(dbPath, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	for name, revs := range bodies {
		for _, b := range revs {
			if _, err := st.SaveDraft(name, b); err != nil {
				t.Fatal(err)
			}
		}
	}
}

func TestRenderStdin(t *testing.T) {
	cfg, _ := testConfig(t)
	out, err := execute(t, "# Title", "--config", cfg, "render")
	if err != nil {
		t.Fatal(err)
	}
	if out != "<h1>Title</h1>\n" {
		t.Errorf("got %q", out)
	}
}

func TestRenderFile(t *testing.T) {
	cfg, _ := testConfig(t)
	src := filepath.Join(t.TempDir(), "post.md")
	if err := os.WriteFile(src, []byte("1. a\n2. b"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "", "--config", cfg, "render", src)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "<ul>") {
		t.Errorf("default lists = %q", out)
	}

	out, err = execute(t, "", "--config", cfg, "render", "--ordered-lists", src)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "<ol>") {
		t.Errorf("--ordered-lists = %q", out)
	}
}

func TestRenderRawSkipsSanitizer(t *testing.T) {
	cfg, _ := testConfig(t)
	in := "<script>x</script>"

	out, err := execute(t, in, "--config", cfg, "render", "-")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("sanitized output kept script: %q", out)
	}

	out, err = execute(t, in, "--config", cfg, "render", "--raw", "-")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "<script>") {
		t.Errorf("--raw output = %q", out)
	}
}

func TestRenderCommonMarkEngine(t *testing.T) {
	cfg, _ := testConfig(t)
	in := "| a |\n|---|\n| 1 |"

	out, err := execute(t, in, "--config", cfg, "render", "--engine", "commonmark", "--raw")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "<table>") {
		t.Errorf("raw = %q", out)
	}

	out, err = execute(t, in, "--config", cfg, "render", "--engine", "commonmark")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "<table>") || !strings.Contains(out, "a") {
		t.Errorf("sanitized = %q", out)
	}
}

func TestRenderUnknownEngine(t *testing.T) {
	cfg, _ := testConfig(t)
	_, err := execute(t, "x", "--config", cfg, "render", "--engine", "nope")
	if !errors.Is(err, markdown.ErrUnknownEngine) {
		t.Errorf("err = %v, want ErrUnknownEngine", err)
	}
}

func TestRenderMissingFile(t *testing.T) {
	cfg, _ := testConfig(t)
	_, err := execute(t, "", "--config", cfg, "render", filepath.Join(t.TempDir(), "missing.md"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v", err)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	cfg, _ := testConfig(t)
	if _, err := execute(t, "x", "--config", cfg, "--log-level", "loud", "render"); err == nil {
		t.Error("expected an error for an invalid log level")
	}
}

func TestDraftsList(t *testing.T) {
	cfg, db := testConfig(t)

	out, err := execute(t, "", "--config", cfg, "drafts", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "no drafts") {
		t.Errorf("empty list = %q", out)
	}

	seedDrafts(t, db, map[string][]string{"hello-world": {"one\ntwo\n"}})
	out, err = execute(t, "", "--config", cfg, "drafts", "list")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"NAME", "hello-world", "2"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestDraftsShow(t *testing.T) {
	cfg, db := testConfig(t)
	seedDrafts(t, db, map[string][]string{"post": {"first", "second"}})

	out, err := execute(t, "", "--config", cfg, "drafts", "show", "post")
	if err != nil {
		t.Fatal(err)
	}
	if out != "second" {
		t.Errorf("current = %q", out)
	}

	out, err = execute(t, "", "--config", cfg, "drafts", "show", "--rev", "1", "post")
	if err != nil {
		t.Fatal(err)
	}
	if out != "first" {
		t.Errorf("rev 1 = %q", out)
	}

	if _, err := execute(t, "", "--config", cfg, "drafts", "show", "--rev", "9", "post"); err == nil {
		t.Error("expected an error for a missing revision")
	}
	if _, err := execute(t, "", "--config", cfg, "drafts", "show", "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing draft err = %v", err)
	}
}

func TestDraftsDiffRevisions(t *testing.T) {
	cfg, db := testConfig(t)
	seedDrafts(t, db, map[string][]string{"post": {"a\nb\n", "a\nc\n"}})

	out, err := execute(t, "", "--config", cfg, "drafts", "diff", "post")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"-b", "+c", "+1 -1"} {
		if !strings.Contains(out, want) {
			t.Errorf("diff missing %q:\n%s", want, out)
		}
	}
}

func TestDraftsDiffAgainstFile(t *testing.T) {
	cfg, db := testConfig(t)
	seedDrafts(t, db, map[string][]string{"post": {"same\n"}})

	src := filepath.Join(t.TempDir(), "post.md")
	if err := os.WriteFile(src, []byte("same\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "", "--config", cfg, "drafts", "diff", "post", src)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "unchanged" {
		t.Errorf("got %q", out)
	}
}

func TestDraftsRm(t *testing.T) {
	cfg, db := testConfig(t)
	seedDrafts(t, db, map[string][]string{"a": {"x"}, "b": {"y"}})

	out, err := execute(t, "", "--config", cfg, "drafts", "rm", "a", "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for the missing draft", err)
	}
	if !strings.Contains(out, "removed a") {
		t.Errorf("got %q", out)
	}

	out, err = execute(t, "", "--config", cfg, "drafts", "list")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, " a ") || !strings.Contains(out, "b") {
		t.Errorf("list after rm:\n%s", out)
	}
}

func TestInitialBuffer(t *testing.T) {
	_, db := testConfig(t)
	seedDrafts(t, db, map[string][]string{"post": {"from draft"}})
	st, err := store.Open(db, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	file := filepath.Join(t.TempDir(), "post.md")
	if err := os.WriteFile(file, []byte("from file"), 0o600); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name, draft, path, want string
	}{
		{"draft wins", "post", file, "from draft"},
		{"missing draft falls back to file", "other", file, "from file"},
		{"new file", "", filepath.Join(t.TempDir(), "new.md"), ""},
		{"nothing", "", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := initialBuffer(st, tc.draft, tc.path)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}

	got, err := initialBuffer(nil, "post", file)
	if err != nil || got != "from file" {
		t.Errorf("nil store = %q, %v", got, err)
	}
}

func TestLineCount(t *testing.T) {
	for in, want := range map[string]int{"": 0, "a": 1, "a\n": 1, "a\nb": 2, "a\n\nb\n": 3} {
		if got := lineCount(in); got != want {
			t.Errorf("lineCount(%q) = %d, want %d", in, got, want)
		}
	}
}
