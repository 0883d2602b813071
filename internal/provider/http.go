package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	generatePath    = "/api/generate-response"
	suggestionsPath = "/api/suggestions"

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 1 << 20
)

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// HTTPProvider talks to the blog backend's assistant endpoints.
type HTTPProvider struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

type HTTPFactory struct {
	name string
}

func NewHTTPFactory(name string) *HTTPFactory {
	return &HTTPFactory{name: name}
}

func (f *HTTPFactory) Name() string { return f.name }

func (f *HTTPFactory) Create(opts Options) Provider {
	return NewHTTP(f.name, opts.Endpoint, opts.Timeout)
}

// NewHTTP creates a backend client. An empty endpoint means requests go to
// the same origin paths, which only works behind a proxy; callers normally
// pass the blog's base URL. A zero timeout means no client timeout.
func NewHTTP(name, endpoint string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		name:       name,
		baseURL:    strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name returns the provider identifier.
func (p *HTTPProvider) Name() string {
	return p.name
}

// Generate posts the prompt and returns the backend's reply text.
func (p *HTTPProvider) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return "", err
	}

	payload, err := p.do(ctx, http.MethodPost, generatePath, body)
	if err != nil {
		return "", err
	}
	return decodeReply(payload), nil
}

// Suggestions fetches the starter prompts.
func (p *HTTPProvider) Suggestions(ctx context.Context) ([]string, error) {
	payload, err := p.do(ctx, http.MethodGet, suggestionsPath, nil)
	if err != nil {
		return nil, err
	}

	var list []string
	if err := json.Unmarshal(payload, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal(payload, &wrapped); err != nil {
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}
	return wrapped.Suggestions, nil
}

func (p *HTTPProvider) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}

	log.Debug().
		Str("provider", p.name).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("assistant request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Op:     method + " " + path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(payload)),
		}
	}
	return payload, nil
}

// decodeReply accepts a JSON string, an object carrying the text under
// "response", "content" or "text", or falls back to the raw body.
func decodeReply(payload []byte) string {
	var s string
	if err := json.Unmarshal(payload, &s); err == nil {
		return s
	}
	var obj struct {
		Response string `json:"response"`
		Content  string `json:"content"`
		Text     string `json:"text"`
	}
	if err := json.Unmarshal(payload, &obj); err == nil {
		switch {
		case obj.Response != "":
			return obj.Response
		case obj.Content != "":
			return obj.Content
		case obj.Text != "":
			return obj.Text
		}
	}
	return strings.TrimSpace(string(payload))
}

// Close closes idle HTTP connections.
func (p *HTTPProvider) Close() error {
	if p.httpClient != nil {
		p.httpClient.CloseIdleConnections()
	}
	return nil
}
