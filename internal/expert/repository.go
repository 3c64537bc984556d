package expert

import (
	"fmt"
	"sync"
	"time"

	"github.com/ziadkadry99/promptsuite/internal/types"
)

// Repository is the process-wide expert pattern catalog. It is safe for
// concurrent use; writers go through narrow increment and replace methods.
type Repository struct {
	mu       sync.RWMutex
	patterns []types.ExpertPattern
	index    map[string]int
	now      func() time.Time
}

// NewRepository builds a repository holding patterns in the given order.
func NewRepository(patterns ...types.ExpertPattern) *Repository {
	r := &Repository{index: make(map[string]int), now: time.Now}
	for _, p := range patterns {
		r.put(p)
	}
	return r
}

func (r *Repository) put(p types.ExpertPattern) {
	if len(p.RelatedCorpusEntries) > MaxRelatedCorpus {
		p.RelatedCorpusEntries = p.RelatedCorpusEntries[:MaxRelatedCorpus]
	}
	if i, ok := r.index[p.ID]; ok {
		r.patterns[i] = p
		return
	}
	r.index[p.ID] = len(r.patterns)
	r.patterns = append(r.patterns, p)
}

// All returns copies of every pattern in catalog order.
func (r *Repository) All() []types.ExpertPattern {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.ExpertPattern, len(r.patterns))
	for i, p := range r.patterns {
		out[i] = clone(p)
	}
	return out
}

// Len returns the number of patterns.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.patterns)
}

// Get returns a copy of the pattern with the given ID.
func (r *Repository) Get(id string) (types.ExpertPattern, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return types.ExpertPattern{}, false
	}
	return clone(r.patterns[i]), true
}

// ByDomain returns copies of the patterns in domain, in catalog order.
func (r *Repository) ByDomain(d types.Domain) []types.ExpertPattern {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []types.ExpertPattern
	for _, p := range r.patterns {
		if p.Domain == d {
			out = append(out, clone(p))
		}
	}
	return out
}

// IncrementUsage bumps usage_count and last_updated and returns the new state.
func (r *Repository) IncrementUsage(id string) (types.ExpertPattern, error) {
	return r.mutate(id, func(p *types.ExpertPattern) {
		p.UsageCount++
	})
}

// SetRelatedCorpus replaces the cached related corpus entries, keeping at
// most MaxRelatedCorpus.
func (r *Repository) SetRelatedCorpus(id string, entries []types.CorpusEntry) (types.ExpertPattern, error) {
	if len(entries) > MaxRelatedCorpus {
		entries = entries[:MaxRelatedCorpus]
	}
	cp := make([]types.CorpusEntry, len(entries))
	copy(cp, entries)
	return r.mutate(id, func(p *types.ExpertPattern) {
		p.RelatedCorpusEntries = cp
	})
}

// AppendRating appends a user rating to the pattern's rating history.
func (r *Repository) AppendRating(id string, rating int) (types.ExpertPattern, error) {
	return r.mutate(id, func(p *types.ExpertPattern) {
		p.RatingHistory = append(p.RatingHistory, rating)
	})
}

// SetScores overwrites quality_score and success_rate, clamped to their ranges.
func (r *Repository) SetScores(id string, quality, success float64) (types.ExpertPattern, error) {
	return r.mutate(id, func(p *types.ExpertPattern) {
		p.QualityScore = clamp(quality, 0, 10)
		p.SuccessRate = clamp(success, 0, 1)
	})
}

// Replace inserts or overwrites whole patterns, as when loading a snapshot.
func (r *Repository) Replace(patterns ...types.ExpertPattern) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range patterns {
		r.put(clone(p))
	}
}

func (r *Repository) mutate(id string, fn func(*types.ExpertPattern)) (types.ExpertPattern, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[id]
	if !ok {
		return types.ExpertPattern{}, fmt.Errorf("expert pattern %q not found", id)
	}
	fn(&r.patterns[i])
	r.patterns[i].LastUpdated = r.now().UTC()
	return clone(r.patterns[i]), nil
}

func clone(p types.ExpertPattern) types.ExpertPattern {
	if p.RatingHistory != nil {
		p.RatingHistory = append([]int(nil), p.RatingHistory...)
	}
	if p.RelatedCorpusEntries != nil {
		p.RelatedCorpusEntries = append([]types.CorpusEntry(nil), p.RelatedCorpusEntries...)
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
