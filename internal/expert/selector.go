package expert

import (
	"github.com/ziadkadry99/promptsuite/internal/lexicon"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

// Selection is the outcome of Select.
type Selection struct {
	Pattern types.ExpertPattern
	// Domain is the domain the conversation was classified into.
	Domain types.Domain
	Counts map[types.Domain]int
	// Defaulted is true when no domain keyword matched, so business was
	// chosen by default, or when the winning domain had no pattern and the
	// business catalog was used instead.
	Defaulted bool
}

// Selector picks the best pattern for a conversation.
type Selector struct {
	repo *Repository
}

// NewSelector creates a Selector reading from repo.
func NewSelector(repo *Repository) *Selector {
	return &Selector{repo: repo}
}

// Select classifies text into a domain and returns the pattern in that
// domain with the highest quality_score * success_rate. ok is false only
// when the catalog is empty.
func (s *Selector) Select(text string) (sel Selection, ok bool) {
	domain, counts := lexicon.ClassifyDomain(text)
	return s.SelectForDomain(domain, counts)
}

// SelectForDomain picks the best pattern for an already classified domain.
func (s *Selector) SelectForDomain(domain types.Domain, counts map[types.Domain]int) (Selection, bool) {
	sel := Selection{Domain: domain, Counts: counts, Defaulted: noSignal(counts)}

	if p, found := best(s.repo.ByDomain(domain)); found {
		sel.Pattern = p
		return sel, true
	}
	sel.Defaulted = true
	if p, found := best(s.repo.ByDomain(types.DomainBusiness)); found {
		sel.Pattern = p
		return sel, true
	}
	if p, found := best(s.repo.All()); found {
		sel.Pattern = p
		return sel, true
	}
	return sel, false
}

func noSignal(counts map[types.Domain]int) bool {
	for _, n := range counts {
		if n > 0 {
			return false
		}
	}
	return true
}

// best returns the highest-weight pattern; the earliest wins ties.
func best(patterns []types.ExpertPattern) (types.ExpertPattern, bool) {
	if len(patterns) == 0 {
		return types.ExpertPattern{}, false
	}
	top := patterns[0]
	for _, p := range patterns[1:] {
		if p.Weight() > top.Weight() {
			top = p
		}
	}
	return top, true
}
