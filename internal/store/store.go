// Package store provides SQLite-backed persistence for drafts, their
// revision history and cached assistant replies.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // register sqlite driver
)

var (
	// ErrNotFound is returned when a named draft does not exist.
	ErrNotFound = errors.New("draft not found")

	// ErrUnavailable is returned by draft operations on a nil store.
	ErrUnavailable = errors.New("draft store not available")

	// ErrEmptyName is returned when a draft name is blank.
	ErrEmptyName = errors.New("draft name is empty")
)

const schema = `
CREATE TABLE IF NOT EXISTS drafts (
	name     TEXT PRIMARY KEY,
	body     TEXT NOT NULL,
	created  INTEGER NOT NULL,
	updated  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS draft_revisions (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	draft    TEXT NOT NULL,
	body     TEXT NOT NULL,
	created  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS assistant_cache (
	prompt   TEXT PRIMARY KEY,
	response TEXT NOT NULL,
	created  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_revisions_draft ON draft_revisions(draft, id);
CREATE INDEX IF NOT EXISTS idx_assistant_created ON assistant_cache(created);
`

// Store is a SQLite-backed draft and assistant cache store. All methods are
// safe to call on a nil receiver.
type Store struct {
	mu  sync.Mutex
	db  *sql.DB
	ttl time.Duration
}

// Open creates or opens a store database at the given path.
// ttl controls how long cached assistant replies remain fresh.
func Open(dbPath string, ttl time.Duration) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}

	// SQLite pragmas for performance.
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &Store{db: db, ttl: ttl}
	s.purgeStale()
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// --- Assistant cache ---

// GetResponse returns a cached assistant reply for the prompt, or "" if
// miss/stale. Safe to call on a nil receiver (returns miss).
func (s *Store) GetResponse(prompt string) (string, bool) {
	if s == nil {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl).Unix()
	var response string
	err := s.db.QueryRow(
		"SELECT response FROM assistant_cache WHERE prompt = ? AND created > ?",
		normalizePrompt(prompt), cutoff,
	).Scan(&response)
	if err != nil {
		return "", false
	}
	return response, true
}

// SetResponse stores an assistant reply. No-op on nil receiver.
func (s *Store) SetResponse(prompt, response string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO assistant_cache (prompt, response, created) VALUES (?, ?, ?)",
		normalizePrompt(prompt), response, time.Now().Unix(),
	)
	if err != nil {
		log.Warn().Err(err).Str("prompt", prompt).Msg("failed to cache assistant reply")
	}
}

// --- Helpers ---

// purgeStale removes cached replies older than the TTL.
func (s *Store) purgeStale() {
	cutoff := time.Now().Add(-s.ttl).Unix()
	res, err := s.db.Exec("DELETE FROM assistant_cache WHERE created <= ?", cutoff)
	if err != nil {
		log.Warn().Err(err).Msg("failed to purge stale assistant cache")
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Info().Int64("deleted", n).Msg("purged stale assistant cache entries")
	}
}

// normalizePrompt trims surrounding whitespace. Case is kept: prompts that
// differ only in case may want different replies.
func normalizePrompt(p string) string {
	return strings.TrimSpace(p)
}
