package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/promptsuite/internal/types"
)

// ValidateFeedback checks the fields a feedback record must carry.
func ValidateFeedback(fb types.UserFeedback) error {
	if strings.TrimSpace(fb.TargetID) == "" {
		return errors.New("target_id is required")
	}
	if fb.Rating < 1 || fb.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", fb.Rating)
	}
	if !fb.UsageResult.Valid() {
		return fmt.Errorf("usage_result must be success, partial or failed, got %q", fb.UsageResult)
	}
	return nil
}

// AddFeedback appends a feedback record, assigning an id and timestamp when
// missing. The stored record is returned.
func (s *Store) AddFeedback(ctx context.Context, fb types.UserFeedback) (types.UserFeedback, error) {
	if err := ValidateFeedback(fb); err != nil {
		return fb, err
	}
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	if fb.Suggestions == nil {
		fb.Suggestions = []string{}
	}
	suggestions, err := json.Marshal(fb.Suggestions)
	if err != nil {
		return fb, fmt.Errorf("marshaling suggestions: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO user_feedback (id, target_id, session_id, rating, free_text, usage_result, suggestions, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		fb.ID, fb.TargetID, fb.SessionID, fb.Rating, fb.FreeText, string(fb.UsageResult),
		string(suggestions), fb.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fb, fmt.Errorf("inserting feedback: %w", err)
	}
	return fb, nil
}

// ListFeedback returns feedback for a target, oldest first.
func (s *Store) ListFeedback(ctx context.Context, targetID string) ([]types.UserFeedback, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, target_id, session_id, rating, free_text, usage_result, suggestions, created_at
		 FROM user_feedback WHERE target_id = ? ORDER BY created_at, rowid`, targetID)
	if err != nil {
		return nil, fmt.Errorf("listing feedback: %w", err)
	}
	defer rows.Close()

	var out []types.UserFeedback
	for rows.Next() {
		var fb types.UserFeedback
		var usage, suggestions, created string
		if err := rows.Scan(&fb.ID, &fb.TargetID, &fb.SessionID, &fb.Rating, &fb.FreeText,
			&usage, &suggestions, &created); err != nil {
			return nil, fmt.Errorf("scanning feedback: %w", err)
		}
		fb.UsageResult = types.UsageResult(usage)
		if err := json.Unmarshal([]byte(suggestions), &fb.Suggestions); err != nil {
			return nil, fmt.Errorf("unmarshaling suggestions: %w", err)
		}
		fb.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, fb)
	}
	return out, rows.Err()
}

func newID() string { return uuid.NewString() }
