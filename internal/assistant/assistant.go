// Package assistant mediates between the editor and the writing-assistant
// backend: it caches replies, keeps the conversation transcript and fetches
// starter prompts.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"github.com/rs/zerolog"

	"github.com/xonecas/inkpad/internal/provider"
)

// ErrEmptyPrompt is returned when a prompt is blank after trimming.
var ErrEmptyPrompt = errors.New("prompt is empty")

// ErrBusy is returned by Ask while another request is in flight.
var ErrBusy = errors.New("assistant request already in flight")

const defaultCacheSize = 128

// Role identifies who authored a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry.
type Message struct {
	ID      int64
	Role    Role
	Content string
	At      time.Time
}

// Tier is a persistent cache behind the in-memory one. *store.Store
// satisfies it.
type Tier interface {
	GetResponse(prompt string) (string, bool)
	SetResponse(prompt, response string)
}

// Service answers prompts through a provider, memoizing replies by exact
// trimmed prompt. It is safe for concurrent use.
type Service struct {
	provider provider.Provider
	tier     Tier
	log      zerolog.Logger

	mu       sync.Mutex
	cache    *lru.Cache
	messages []Message
	nextID   int64
	busy     bool
}

// Option configures a Service.
type Option func(*Service)

// WithCacheSize bounds the in-memory reply cache.
func WithCacheSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.cache = lru.New(n)
		}
	}
}

// WithTier adds a persistent cache consulted after the in-memory one.
func WithTier(t Tier) Option {
	return func(s *Service) { s.tier = t }
}

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New creates a Service backed by p.
func New(p provider.Provider, opts ...Option) *Service {
	s := &Service{
		provider: p,
		cache:    lru.New(defaultCacheSize),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate returns the reply for prompt. Cached replies are served without
// contacting the backend; failures are never cached.
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	key := strings.TrimSpace(prompt)
	if key == "" {
		return "", ErrEmptyPrompt
	}

	if reply, ok := s.cached(key); ok {
		s.log.Debug().Str("prompt", key).Msg("assistant cache hit")
		return reply, nil
	}

	start := time.Now()
	reply, err := s.provider.Generate(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("provider", s.provider.Name()).Msg("assistant request failed")
		return "", fmt.Errorf("generate response: %w", err)
	}
	s.log.Info().
		Str("provider", s.provider.Name()).
		Dur("elapsed", time.Since(start)).
		Int("chars", len(reply)).
		Msg("assistant reply")

	s.mu.Lock()
	s.cache.Add(key, reply)
	s.mu.Unlock()
	if s.tier != nil {
		s.tier.SetResponse(key, reply)
	}
	return reply, nil
}

func (s *Service) cached(key string) (string, bool) {
	s.mu.Lock()
	v, ok := s.cache.Get(key)
	s.mu.Unlock()
	if ok {
		return v.(string), true
	}
	if s.tier == nil {
		return "", false
	}
	reply, ok := s.tier.GetResponse(key)
	if !ok {
		return "", false
	}
	s.mu.Lock()
	s.cache.Add(key, reply)
	s.mu.Unlock()
	return reply, true
}

// Cached reports how many replies the in-memory cache holds.
func (s *Service) Cached() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}

// Suggestions fetches the starter prompts shown before a conversation.
func (s *Service) Suggestions(ctx context.Context) ([]string, error) {
	list, err := s.provider.Suggestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch suggestions: %w", err)
	}
	return list, nil
}

// Ask appends the user's prompt to the transcript, generates a reply and
// appends it. While a request is in flight further calls fail with ErrBusy.
// On failure the user message stays and no reply is added.
func (s *Service) Ask(ctx context.Context, prompt string) (Message, error) {
	text := strings.TrimSpace(prompt)
	if text == "" {
		return Message{}, ErrEmptyPrompt
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return Message{}, ErrBusy
	}
	s.busy = true
	s.appendLocked(RoleUser, text)
	s.mu.Unlock()

	reply, err := s.Generate(ctx, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		return Message{}, err
	}
	return s.appendLocked(RoleAssistant, reply), nil
}

func (s *Service) appendLocked(role Role, content string) Message {
	s.nextID++
	m := Message{ID: s.nextID, Role: role, Content: content, At: time.Now()}
	s.messages = append(s.messages, m)
	return m
}

// Busy reports whether an Ask is in flight.
func (s *Service) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Messages returns a copy of the transcript.
func (s *Service) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// Clear empties the transcript. Cached replies are kept.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

// Close releases the provider.
func (s *Service) Close() error {
	return s.provider.Close()
}
