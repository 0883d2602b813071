package provider

import (
	"context"
	"sync"
	"time"
)

// MockProvider is a test provider that returns predefined responses.
type MockProvider struct {
	mu sync.RWMutex

	name        string
	response    string
	suggestions []string
	genErr      error
	suggestErr  error
	delay       time.Duration
	calls       int
	prompts     []string
}

// NewMock creates a new mock provider.
func NewMock(name, response string) *MockProvider {
	return &MockProvider{
		name:     name,
		response: response,
	}
}

type MockFactory struct {
	name     string
	response string
}

func NewMockFactory(name, response string) *MockFactory {
	return &MockFactory{name: name, response: response}
}

func (f *MockFactory) Name() string { return f.name }

func (f *MockFactory) Create(opts Options) Provider {
	return NewMock(f.name, f.response).WithSuggestions(
		"Write an introduction",
		"Summarize this post",
		"Suggest a title",
	)
}

// WithGenerateError sets an error to return from Generate.
func (p *MockProvider) WithGenerateError(err error) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.genErr = err
	return p
}

// WithSuggestionsError sets an error to return from Suggestions.
func (p *MockProvider) WithSuggestionsError(err error) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.suggestErr = err
	return p
}

func (p *MockProvider) WithSuggestions(s ...string) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.suggestions = s
	return p
}

func (p *MockProvider) SetDelay(delay time.Duration) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delay = delay
	return p
}

// WithResponse sets the predefined response to return from Generate.
func (p *MockProvider) WithResponse(response string) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.response = response
	return p
}

// Calls returns how many times Generate reached the backend.
func (p *MockProvider) Calls() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.calls
}

// Prompts returns the prompts Generate received, in order.
func (p *MockProvider) Prompts() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.prompts...)
}

// Name returns the provider identifier.
func (p *MockProvider) Name() string {
	return p.name
}

// Generate returns the predefined response or error.
func (p *MockProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if err := p.waitDelay(ctx); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.prompts = append(p.prompts, prompt)
	if p.genErr != nil {
		return "", p.genErr
	}
	return p.response, nil
}

// Suggestions returns the predefined starter prompts or error.
func (p *MockProvider) Suggestions(ctx context.Context) ([]string, error) {
	if err := p.waitDelay(ctx); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.suggestErr != nil {
		return nil, p.suggestErr
	}
	return append([]string(nil), p.suggestions...), nil
}

func (p *MockProvider) waitDelay(ctx context.Context) error {
	p.mu.RLock()
	delay := p.delay
	p.mu.RUnlock()
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Close is a no-op for mock provider (no resources to clean up).
func (p *MockProvider) Close() error {
	return nil
}
