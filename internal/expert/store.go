package expert

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ziadkadry99/promptsuite/internal/db"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

// Store persists expert pattern snapshots. Each save overwrites the whole record.
type Store struct {
	db *db.DB
}

// NewStore creates a new expert pattern store.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Save writes one pattern.
func (s *Store) Save(ctx context.Context, p types.ExpertPattern) error {
	return savePattern(ctx, s.db, p)
}

func savePattern(ctx context.Context, ex execer, p types.ExpertPattern) error {
	if p.RatingHistory == nil {
		p.RatingHistory = []int{}
	}
	if p.RelatedCorpusEntries == nil {
		p.RelatedCorpusEntries = []types.CorpusEntry{}
	}
	ratings, err := json.Marshal(p.RatingHistory)
	if err != nil {
		return fmt.Errorf("marshaling rating history: %w", err)
	}
	related, err := json.Marshal(p.RelatedCorpusEntries)
	if err != nil {
		return fmt.Errorf("marshaling related corpus entries: %w", err)
	}

	_, err = ex.ExecContext(ctx,
		`INSERT OR REPLACE INTO expert_patterns
		 (id, domain, name, reasoning_template, quality_score, usage_count, success_rate, rating_history, related_corpus_entries, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, string(p.Domain), p.Name, p.ReasoningTemplate, p.QualityScore, p.UsageCount,
		p.SuccessRate, string(ratings), string(related), p.LastUpdated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving expert pattern %s: %w", p.ID, err)
	}
	return nil
}

// SaveAll writes every pattern in one transaction.
func (s *Store) SaveAll(ctx context.Context, patterns []types.ExpertPattern) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range patterns {
		if err := savePattern(ctx, tx, p); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadAll returns every stored pattern ordered by domain declaration order, then id.
func (s *Store) LoadAll(ctx context.Context) ([]types.ExpertPattern, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, domain, name, reasoning_template, quality_score, usage_count, success_rate, rating_history, related_corpus_entries, last_updated
		 FROM expert_patterns
		 ORDER BY CASE domain WHEN 'business' THEN 0 WHEN 'tech' THEN 1 WHEN 'design' THEN 2 ELSE 3 END, id`)
	if err != nil {
		return nil, fmt.Errorf("listing expert patterns: %w", err)
	}
	defer rows.Close()

	var result []types.ExpertPattern
	for rows.Next() {
		var p types.ExpertPattern
		var domain, ratings, related string
		if err := rows.Scan(&p.ID, &domain, &p.Name, &p.ReasoningTemplate, &p.QualityScore, &p.UsageCount,
			&p.SuccessRate, &ratings, &related, &p.LastUpdated); err != nil {
			return nil, fmt.Errorf("scanning expert pattern: %w", err)
		}
		p.Domain = types.Domain(domain)
		if err := json.Unmarshal([]byte(ratings), &p.RatingHistory); err != nil {
			return nil, fmt.Errorf("unmarshaling rating history: %w", err)
		}
		if err := json.Unmarshal([]byte(related), &p.RelatedCorpusEntries); err != nil {
			return nil, fmt.Errorf("unmarshaling related corpus entries: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// LoadRepository builds a repository from the stored snapshot, seeding it
// with DefaultPatterns on first use.
func LoadRepository(ctx context.Context, s *Store) (*Repository, error) {
	patterns, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
		if err := s.SaveAll(ctx, patterns); err != nil {
			return nil, fmt.Errorf("seeding expert patterns: %w", err)
		}
	}
	return NewRepository(patterns...), nil
}
