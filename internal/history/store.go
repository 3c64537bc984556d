// Package history persists generation runs, their quality history and user
// feedback. Every collection is append-only.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ziadkadry99/promptsuite/internal/db"
	"github.com/ziadkadry99/promptsuite/internal/llm"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

// Run modes.
const (
	ModeFull   = "full"
	ModeSimple = "simple"
)

// ErrNotFound is returned for unknown run ids.
var ErrNotFound = errors.New("run not found")

// Run is one persisted generation run.
type Run struct {
	ID           string          `json:"id"`
	PatternID    string          `json:"pattern_id"`
	Domain       types.Domain    `json:"domain"`
	ProjectType  string          `json:"project_type"`
	Mode         string          `json:"mode"`
	OverallScore float64         `json:"overall_score"`
	Optimized    bool            `json:"optimized"`
	Fallbacks    []string        `json:"fallbacks"`
	Usage        llm.Usage       `json:"usage"`
	Result       json.RawMessage `json:"result,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// QualityRecord is one evaluation pass of a run.
type QualityRecord struct {
	RunID     string               `json:"run_id"`
	Pass      int                  `json:"pass"`
	Metrics   types.QualityMetrics `json:"metrics"`
	CreatedAt time.Time            `json:"created_at"`
}

const runCacheSize = 256

// Store handles run, quality and feedback persistence.
type Store struct {
	db    *db.DB
	cache *lru.Cache[string, Run]
}

// NewStore creates a new history store.
func NewStore(d *db.DB) (*Store, error) {
	cache, err := lru.New[string, Run](runCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating run cache: %w", err)
	}
	return &Store{db: d, cache: cache}, nil
}

// SaveRun inserts a run. Runs are written once.
func (s *Store) SaveRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("run id is required")
	}
	if run.Mode == "" {
		run.Mode = ModeFull
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.Fallbacks == nil {
		run.Fallbacks = []string{}
	}
	fallbacks, err := json.Marshal(run.Fallbacks)
	if err != nil {
		return fmt.Errorf("marshaling fallbacks: %w", err)
	}
	usage, err := json.Marshal(run.Usage)
	if err != nil {
		return fmt.Errorf("marshaling usage: %w", err)
	}
	result := string(run.Result)
	if result == "" {
		result = "{}"
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO generation_runs (id, pattern_id, domain, project_type, mode, overall_score, optimized, fallbacks, usage, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.PatternID, string(run.Domain), run.ProjectType, run.Mode, run.OverallScore,
		boolToInt(run.Optimized), string(fallbacks), string(usage), result, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	s.cache.Add(run.ID, run)
	return nil
}

// GetRun returns a run by id.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	if r, ok := s.cache.Get(id); ok {
		return r, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM generation_runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, err
	}
	s.cache.Add(id, r)
	return r, nil
}

// ListRuns returns the most recent runs without their result payloads.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM generation_runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		r.Result = nil
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

const runColumns = `id, pattern_id, domain, project_type, mode, overall_score, optimized, fallbacks, usage, result, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var domain, fallbacks, usage, result string
	var optimized int
	if err := sc.Scan(&r.ID, &r.PatternID, &domain, &r.ProjectType, &r.Mode, &r.OverallScore,
		&optimized, &fallbacks, &usage, &result, &r.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scanning run: %w", err)
	}
	r.Domain = types.Domain(domain)
	r.Optimized = optimized != 0
	if err := json.Unmarshal([]byte(fallbacks), &r.Fallbacks); err != nil {
		return r, fmt.Errorf("unmarshaling fallbacks: %w", err)
	}
	if err := json.Unmarshal([]byte(usage), &r.Usage); err != nil {
		return r, fmt.Errorf("unmarshaling usage: %w", err)
	}
	r.Result = json.RawMessage(result)
	return r, nil
}

// AppendQuality records one evaluation pass for a run.
func (s *Store) AppendQuality(ctx context.Context, runID string, pass int, m types.QualityMetrics) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quality_history (id, run_id, pass, clarity, completeness, professionalism, actionability, innovation, overall_score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), runID, pass, m.Clarity, m.Completeness, m.Professionalism,
		m.Actionability, m.Innovation, m.OverallScore, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting quality record: %w", err)
	}
	return nil
}

// QualityHistory returns every evaluation pass of a run in pass order.
func (s *Store) QualityHistory(ctx context.Context, runID string) ([]QualityRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, pass, clarity, completeness, professionalism, actionability, innovation, overall_score, created_at
		 FROM quality_history WHERE run_id = ? ORDER BY pass, rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing quality history: %w", err)
	}
	defer rows.Close()

	var out []QualityRecord
	for rows.Next() {
		var q QualityRecord
		m := &q.Metrics
		if err := rows.Scan(&q.RunID, &q.Pass, &m.Clarity, &m.Completeness, &m.Professionalism,
			&m.Actionability, &m.Innovation, &m.OverallScore, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning quality record: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
