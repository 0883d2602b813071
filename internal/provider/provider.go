// Package provider defines the writing-assistant backend interface and its
// implementations.
package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrProviderNotFound is returned when a requested provider doesn't exist.
var ErrProviderNotFound = errors.New("provider not found")

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Body)
}

// Provider defines the interface for assistant backends.
type Provider interface {
	// Name returns the provider's identifier.
	Name() string

	// Generate sends a prompt and returns the generated text.
	Generate(ctx context.Context, prompt string) (string, error)

	// Suggestions returns the starter prompts offered before a conversation.
	Suggestions(ctx context.Context) ([]string, error)

	// Close closes idle HTTP connections and cleans up resources.
	Close() error
}

// Options carries the settings a factory needs to build a provider.
type Options struct {
	Endpoint string
	Timeout  time.Duration
}

type Factory interface {
	Name() string
	Create(opts Options) Provider
}

// Registry holds available provider factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// DefaultRegistry returns a registry with the http and mock factories.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.RegisterFactory(NewHTTPFactory("http"))
	r.RegisterFactory(NewMockFactory("mock", "This is a canned assistant reply."))
	return r
}

func (r *Registry) RegisterFactory(f Factory) {
	r.factories[f.Name()] = f
}

func (r *Registry) Create(name string, opts Options) (Provider, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotFound, name)
	}
	return f.Create(opts), nil
}

// List returns all registered provider names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
