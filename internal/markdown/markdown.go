// Package markdown converts post markdown into HTML for the live preview.
//
// The default engine is a fixed, ordered pipeline of text substitutions
// (headers, emphasis, code, lists, links and images, blockquotes, paragraphs)
// followed by an allow-list sanitizer. Each pass runs on the output of the
// previous one, so the order of passes is part of the contract.
package markdown

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrParse is wrapped by every Result.Err produced by a failed render.
var ErrParse = errors.New("error parsing markdown content")

// Result is the outcome of a render. When Err is set, HTML holds the
// original source unmodified so the preview can still show something.
type Result struct {
	HTML string
	Err  error
}

// Failed reports whether the render fell back to the raw source.
func (r Result) Failed() bool { return r.Err != nil }

// Engine turns a markdown source buffer into HTML. Implementations never
// panic; failures are reported through Result.Err.
type Engine interface {
	Name() string
	Render(source string) Result
}

// pass is one substitution stage of the pipeline.
type pass struct {
	name  string
	apply func(string) string
}

// Transformer is the regex pipeline engine. It is immutable after New and
// safe for concurrent use.
type Transformer struct {
	passes       []pass
	sanitize     bool
	orderedLists bool
	log          zerolog.Logger
}

// Option configures a Transformer or another engine.
type Option func(*options)

type options struct {
	sanitize     bool
	orderedLists bool
	log          zerolog.Logger
}

// WithoutSanitizer returns the raw pipeline output. Only for callers that
// never hand the HTML to a browser.
func WithoutSanitizer() Option {
	return func(o *options) { o.sanitize = false }
}

// WithOrderedLists wraps runs made only of numbered items in <ol> instead
// of <ul>.
func WithOrderedLists() Option {
	return func(o *options) { o.orderedLists = true }
}

// WithLogger sets the logger used to report recovered render failures.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) options {
	o := options{sanitize: true, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New creates the pipeline engine.
func New(opts ...Option) *Transformer {
	o := buildOptions(opts)
	t := &Transformer{
		sanitize:     o.sanitize,
		orderedLists: o.orderedLists,
		log:          o.log,
	}
	t.passes = []pass{
		{"headers", headers},
		{"emphasis", emphasis},
		{"code", code},
		{"lists", t.lists},
		{"links", linksAndImages},
		{"blockquotes", blockquotes},
		{"paragraphs", paragraphs},
	}
	if t.sanitize {
		t.passes = append(t.passes, pass{"sanitize", Sanitize})
	}
	return t
}

// Name implements Engine.
func (t *Transformer) Name() string { return EnginePipeline }

// Render runs every pass in order. A panic in any pass is recovered here,
// once, and turned into a failed Result carrying the original source.
func (t *Transformer) Render(source string) (res Result) {
	stage := ""
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %s pass: %v", ErrParse, stage, r)
			t.log.Warn().Err(err).Int("len", len(source)).Msg("markdown render failed")
			res = Result{HTML: source, Err: err}
		}
	}()

	out := source
	for _, p := range t.passes {
		stage = p.name
		out = p.apply(out)
	}
	return Result{HTML: out}
}
