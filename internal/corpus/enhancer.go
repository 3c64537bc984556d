package corpus

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ziadkadry99/promptsuite/internal/expert"
	"github.com/ziadkadry99/promptsuite/internal/lexicon"
	"github.com/ziadkadry99/promptsuite/internal/logger"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

// Source supplies the full corpus collection.
type Source interface {
	All(ctx context.Context) ([]types.CorpusEntry, error)
}

// Match returns up to expert.MaxRelatedCorpus entries relevant to domain.
// An entry matches when its category is on the domain's allow-list or when
// any domain keyword occurs in its title, content or tags. Matches are
// ordered by content length, longest first, ties keeping corpus order. The
// result depends only on its inputs.
func Match(domain types.Domain, entries []types.CorpusEntry) []types.CorpusEntry {
	allowed := lexicon.CorpusCategories[domain]
	keywords := lexicon.DomainKeywords[domain]

	var matched []types.CorpusEntry
	for _, e := range Dedupe(entries) {
		if categoryAllowed(e.Category, allowed) || mentionsAny(e, keywords) {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return utf8.RuneCountInString(matched[i].Content) > utf8.RuneCountInString(matched[j].Content)
	})
	if len(matched) > expert.MaxRelatedCorpus {
		matched = matched[:expert.MaxRelatedCorpus]
	}
	return matched
}

func categoryAllowed(category string, allowed []string) bool {
	category = strings.ToLower(strings.TrimSpace(category))
	for _, a := range allowed {
		if category == a {
			return true
		}
	}
	return false
}

func mentionsAny(e types.CorpusEntry, keywords []string) bool {
	haystack := strings.ToLower(e.Title + "\n" + e.Content + "\n" + strings.Join(e.Tags, " "))
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

// Enhancer attaches matching corpus entries to expert patterns.
type Enhancer struct {
	repo   *expert.Repository
	source Source
	log    *logger.Logger
}

// NewEnhancer creates an Enhancer.
func NewEnhancer(repo *expert.Repository, source Source, log *logger.Logger) *Enhancer {
	return &Enhancer{repo: repo, source: source, log: logger.OrNop(log)}
}

// Enhance recomputes the related entries of one pattern and caches them on
// it. The corpus itself is never modified.
func (e *Enhancer) Enhance(ctx context.Context, patternID string) (types.ExpertPattern, error) {
	p, ok := e.repo.Get(patternID)
	if !ok {
		return types.ExpertPattern{}, fmt.Errorf("expert pattern %q not found", patternID)
	}
	entries, err := e.source.All(ctx)
	if err != nil {
		return p, fmt.Errorf("loading corpus: %w", err)
	}
	return e.repo.SetRelatedCorpus(patternID, Match(p.Domain, entries))
}

// Refresh recomputes related entries for every pattern, reading the corpus
// once. It returns the updated patterns.
func (e *Enhancer) Refresh(ctx context.Context) ([]types.ExpertPattern, error) {
	entries, err := e.source.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	var updated []types.ExpertPattern
	for _, p := range e.repo.All() {
		np, err := e.repo.SetRelatedCorpus(p.ID, Match(p.Domain, entries))
		if err != nil {
			return updated, err
		}
		updated = append(updated, np)
	}
	e.log.Info("corpus refreshed", "entries", len(entries), "patterns", len(updated))
	return updated, nil
}
