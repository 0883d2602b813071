package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// maxRevisions bounds the history kept per draft.
const maxRevisions = 50

// Draft is a saved post body.
type Draft struct {
	Name    string
	Body    string
	Created time.Time
	Updated time.Time
}

// Revision is one saved version of a draft body.
type Revision struct {
	ID      int64
	Draft   string
	Body    string
	Created time.Time
}

// SaveDraft inserts or updates a draft. A revision row is written only when
// the body differs from what is stored. It reports whether anything changed.
func (s *Store) SaveDraft(name, body string) (bool, error) {
	if s == nil {
		return false, ErrUnavailable
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return false, ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var current string
	err = tx.QueryRow("SELECT body FROM drafts WHERE name = ?", name).Scan(&current)
	now := time.Now().Unix()
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.Exec(
			"INSERT INTO drafts (name, body, created, updated) VALUES (?, ?, ?, ?)",
			name, body, now, now,
		); err != nil {
			return false, err
		}
	case err != nil:
		return false, err
	case current == body:
		return false, nil
	default:
		if _, err := tx.Exec("UPDATE drafts SET body = ?, updated = ? WHERE name = ?", body, now, name); err != nil {
			return false, err
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO draft_revisions (draft, body, created) VALUES (?, ?, ?)",
		name, body, now,
	); err != nil {
		return false, err
	}

	// Trim history beyond maxRevisions, oldest first.
	if _, err := tx.Exec(
		`DELETE FROM draft_revisions WHERE draft = ? AND id NOT IN (
			SELECT id FROM draft_revisions WHERE draft = ? ORDER BY id DESC LIMIT ?
		)`, name, name, maxRevisions,
	); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	log.Debug().Str("draft", name).Int("bytes", len(body)).Msg("draft saved")
	return true, nil
}

// LoadDraft returns the named draft or ErrNotFound.
func (s *Store) LoadDraft(name string) (Draft, error) {
	if s == nil {
		return Draft{}, ErrUnavailable
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var d Draft
	var created, updated int64
	err := s.db.QueryRow(
		"SELECT name, body, created, updated FROM drafts WHERE name = ?",
		strings.TrimSpace(name),
	).Scan(&d.Name, &d.Body, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Draft{}, ErrNotFound
	}
	if err != nil {
		return Draft{}, err
	}
	d.Created = time.Unix(created, 0)
	d.Updated = time.Unix(updated, 0)
	return d, nil
}

// ListDrafts returns all drafts, most recently updated first.
func (s *Store) ListDrafts() ([]Draft, error) {
	if s == nil {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT name, body, created, updated FROM drafts ORDER BY updated DESC, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drafts []Draft
	for rows.Next() {
		var d Draft
		var created, updated int64
		if err := rows.Scan(&d.Name, &d.Body, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		d.Created = time.Unix(created, 0)
		d.Updated = time.Unix(updated, 0)
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

// DeleteDraft removes a draft and its history. Deleting a missing draft
// returns ErrNotFound.
func (s *Store) DeleteDraft(name string) error {
	if s == nil {
		return ErrUnavailable
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.Exec("DELETE FROM drafts WHERE name = ?", name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	if _, err := tx.Exec("DELETE FROM draft_revisions WHERE draft = ?", name); err != nil {
		return fmt.Errorf("delete revisions of %q: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Debug().Str("draft", name).Msg("draft deleted")
	return nil
}

// Revisions returns the saved history of a draft, oldest first.
func (s *Store) Revisions(name string) ([]Revision, error) {
	if s == nil {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		"SELECT id, draft, body, created FROM draft_revisions WHERE draft = ? ORDER BY id",
		strings.TrimSpace(name),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		var r Revision
		var created int64
		if err := rows.Scan(&r.ID, &r.Draft, &r.Body, &created); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		r.Created = time.Unix(created, 0)
		revs = append(revs, r)
	}
	return revs, rows.Err()
}
