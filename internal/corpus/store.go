package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/promptsuite/internal/db"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

// Store is the append-only corpus collection. Duplicates by Key are ignored.
type Store struct {
	db *db.DB
}

// NewStore creates a new corpus store.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

// AddResult summarises an Add call.
type AddResult struct {
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
	Invalid    int `json:"invalid"`
}

// Add appends entries, skipping invalid entries and duplicates.
func (s *Store) Add(ctx context.Context, entries []types.CorpusEntry) (AddResult, error) {
	var res AddResult
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, e := range entries {
		if Validate(e) != nil {
			res.Invalid++
			continue
		}
		tags, err := json.Marshal(nonNil(e.Tags))
		if err != nil {
			return res, fmt.Errorf("marshaling tags: %w", err)
		}
		vars, err := json.Marshal(nonNil(e.ExtractedVariables))
		if err != nil {
			return res, fmt.Errorf("marshaling variables: %w", err)
		}
		r, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO corpus_entries (id, dedup_key, title, content, category, source, tags, extracted_variables, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), Key(e), strings.TrimSpace(e.Title), e.Content, strings.ToLower(strings.TrimSpace(e.Category)),
			e.Source, string(tags), string(vars), now,
		)
		if err != nil {
			return res, fmt.Errorf("inserting corpus entry %q: %w", e.Title, err)
		}
		if n, _ := r.RowsAffected(); n == 0 {
			res.Duplicates++
		} else {
			res.Added++
		}
	}
	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("committing corpus entries: %w", err)
	}
	return res, nil
}

// All returns every entry in insertion order.
func (s *Store) All(ctx context.Context) ([]types.CorpusEntry, error) {
	return s.query(ctx, `SELECT title, content, category, source, tags, extracted_variables
		FROM corpus_entries ORDER BY created_at, rowid`)
}

// List returns up to limit entries, optionally filtered by category.
func (s *Store) List(ctx context.Context, category string, limit int) ([]types.CorpusEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if category == "" {
		return s.query(ctx, `SELECT title, content, category, source, tags, extracted_variables
			FROM corpus_entries ORDER BY created_at, rowid LIMIT ?`, limit)
	}
	return s.query(ctx, `SELECT title, content, category, source, tags, extracted_variables
		FROM corpus_entries WHERE category = ? ORDER BY created_at, rowid LIMIT ?`, strings.ToLower(category), limit)
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM corpus_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting corpus entries: %w", err)
	}
	return n, nil
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]types.CorpusEntry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing corpus entries: %w", err)
	}
	defer rows.Close()

	var out []types.CorpusEntry
	for rows.Next() {
		var e types.CorpusEntry
		var tags, vars string
		if err := rows.Scan(&e.Title, &e.Content, &e.Category, &e.Source, &tags, &vars); err != nil {
			return nil, fmt.Errorf("scanning corpus entry: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
			return nil, fmt.Errorf("unmarshaling tags: %w", err)
		}
		if err := json.Unmarshal([]byte(vars), &e.ExtractedVariables); err != nil {
			return nil, fmt.Errorf("unmarshaling variables: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Search returns entries whose title, content or tags contain query,
// longest content first. It is the lookup used when no semantic index is configured.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]types.CorpusEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	return s.query(ctx, `SELECT title, content, category, source, tags, extracted_variables
		FROM corpus_entries
		WHERE lower(title) LIKE ? OR lower(content) LIKE ? OR lower(tags) LIKE ?
		ORDER BY length(content) DESC, rowid LIMIT ?`, like, like, like, limit)
}
