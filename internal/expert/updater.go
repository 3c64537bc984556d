package expert

import (
	"context"

	"github.com/ziadkadry99/promptsuite/internal/types"
)

// ScoreUpdater recomputes a pattern's selection scores from feedback. The
// rule is pluggable; ok=false leaves the pattern unchanged.
type ScoreUpdater interface {
	Update(ctx context.Context, pattern types.ExpertPattern, feedback types.UserFeedback) (quality, success float64, ok bool)
}

// NoopUpdater records nothing and never changes scores.
type NoopUpdater struct{}

func (NoopUpdater) Update(context.Context, types.ExpertPattern, types.UserFeedback) (float64, float64, bool) {
	return 0, 0, false
}

// ApplyFeedback appends the rating to the pattern and runs updater. The
// returned pattern reflects every change made.
func ApplyFeedback(ctx context.Context, repo *Repository, updater ScoreUpdater, patternID string, fb types.UserFeedback) (types.ExpertPattern, error) {
	p, err := repo.AppendRating(patternID, fb.Rating)
	if err != nil {
		return types.ExpertPattern{}, err
	}
	if updater == nil {
		return p, nil
	}
	if quality, success, ok := updater.Update(ctx, p, fb); ok {
		return repo.SetScores(patternID, quality, success)
	}
	return p, nil
}
