package markdown

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Engine names accepted by EngineByName.
const (
	EnginePipeline   = "pipeline"
	EngineCommonMark = "commonmark"
)

// ErrUnknownEngine is returned by EngineByName for an unsupported name.
var ErrUnknownEngine = errors.New("unknown markdown engine")

// EngineByName returns the engine registered under name. An empty name
// selects the pipeline.
func EngineByName(name string, opts ...Option) (Engine, error) {
	switch name {
	case "", EnginePipeline:
		return New(opts...), nil
	case EngineCommonMark:
		return NewCommonMark(opts...), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
}

// CommonMark renders through goldmark's AST parser (with GFM) instead of
// the regex pipeline. Raw HTML is omitted by goldmark and the output still
// goes through Sanitize unless disabled.
type CommonMark struct {
	md       goldmark.Markdown
	sanitize bool
	log      zerolog.Logger
}

// NewCommonMark creates the goldmark-backed engine. WithOrderedLists has no
// effect here; CommonMark always distinguishes list kinds.
func NewCommonMark(opts ...Option) *CommonMark {
	o := buildOptions(opts)
	return &CommonMark{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithXHTML()),
		),
		sanitize: o.sanitize,
		log:      o.log,
	}
}

// Name implements Engine.
func (c *CommonMark) Name() string { return EngineCommonMark }

// Render implements Engine.
func (c *CommonMark) Render(source string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: goldmark: %v", ErrParse, r)
			c.log.Warn().Err(err).Int("len", len(source)).Msg("markdown render failed")
			res = Result{HTML: source, Err: err}
		}
	}()

	var buf bytes.Buffer
	if err := c.md.Convert([]byte(source), &buf); err != nil {
		err = fmt.Errorf("%w: %w", ErrParse, err)
		c.log.Warn().Err(err).Int("len", len(source)).Msg("markdown render failed")
		return Result{HTML: source, Err: err}
	}
	out := buf.String()
	if c.sanitize {
		out = Sanitize(out)
	}
	return Result{HTML: out}
}
