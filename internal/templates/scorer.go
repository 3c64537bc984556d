package templates

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ziadkadry99/promptsuite/internal/lexicon"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

// Scoring weights.
const (
	techKeywordPoints  = 8
	domainPoints       = 15
	projectTypePoints  = 20
	featurePoints      = 2
	maxScore           = 100
	maxMatches         = 5
	DefaultStrongMatch = 40
)

// Signals is the lightweight profile templates are scored against.
type Signals struct {
	TechnicalKeywords []string
	Domains           []types.Domain
	ProjectType       string
	Features          []string
}

// SignalsFromText derives Signals directly from conversation text.
func SignalsFromText(text string) Signals {
	return Signals{
		TechnicalKeywords: lexicon.FindTerms(text, lexicon.TechnicalKeywords),
		Domains:           lexicon.DetectDomains(text),
		ProjectType:       lexicon.InferProjectType(text),
		Features:          lexicon.FindTerms(text, lexicon.FeatureKeywords),
	}
}

// SignalsFromProfile derives Signals from an analyzed profile.
func SignalsFromProfile(p types.ProjectProfile) Signals {
	described := strings.Join(append(append([]string{p.CoreValue}, p.MainChallenges...), p.TechnicalKeywords...), " ")
	domains := []types.Domain{p.PrimaryDomain}
	for _, d := range lexicon.DetectDomains(described) {
		if d != p.PrimaryDomain {
			domains = append(domains, d)
		}
	}
	return Signals{
		TechnicalKeywords: dedupe(lowerAll(p.TechnicalKeywords)),
		Domains:           domains,
		ProjectType:       p.ProjectType,
		Features:          lexicon.FindTerms(described, lexicon.FeatureKeywords),
	}
}

// Scorer ranks a catalog against Signals.
type Scorer struct {
	catalog *Catalog
}

// NewScorer creates a Scorer over catalog.
func NewScorer(catalog *Catalog) *Scorer {
	return &Scorer{catalog: catalog}
}

// Rank returns the top matches, highest score first. Equal scores keep
// catalog order.
func (s *Scorer) Rank(sig Signals) []types.TemplateMatch {
	all := s.catalog.All()
	matches := make([]types.TemplateMatch, 0, len(all))
	for _, t := range all {
		matches = append(matches, Score(t, sig))
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}
	return matches
}

// Score computes one template's match against sig.
func Score(t types.PromptTemplate, sig Signals) types.TemplateMatch {
	tags := lowerAll(t.Tags)
	desc := strings.ToLower(t.Description)
	body := strings.ToLower(t.SystemTemplate + " " + t.UserTemplate)
	category := strings.ToLower(t.Category)

	score := 0
	var matched, reasons []string

	techHits := 0
	for _, kw := range dedupe(lowerAll(sig.TechnicalKeywords)) {
		if containsString(tags, kw) || lexicon.HasTerm(desc, kw) {
			score += techKeywordPoints
			techHits++
			matched = append(matched, kw)
		}
	}
	if techHits > 0 {
		reasons = append(reasons, fmt.Sprintf("%d technical keyword(s)", techHits))
	}

	seenDomain := make(map[types.Domain]bool)
	for _, d := range sig.Domains {
		if seenDomain[d] {
			continue
		}
		seenDomain[d] = true
		name := string(d)
		if strings.Contains(category, name) || containsString(tags, name) {
			score += domainPoints
			reasons = append(reasons, "domain "+name)
		}
	}

	if pt := strings.ToLower(strings.TrimSpace(sig.ProjectType)); pt != "" {
		for _, ex := range t.Examples {
			if strings.Contains(strings.ToLower(ex), pt) {
				score += projectTypePoints
				reasons = append(reasons, "example fits "+pt)
				break
			}
		}
	}

	featureHits := 0
	for _, f := range dedupe(lowerAll(sig.Features)) {
		if lexicon.HasTerm(body, f) || lexicon.HasTerm(desc, f) {
			score += featurePoints
			featureHits++
			if !containsString(matched, f) {
				matched = append(matched, f)
			}
		}
	}
	if featureHits > 0 {
		reasons = append(reasons, fmt.Sprintf("%d feature(s)", featureHits))
	}

	if score > maxScore {
		score = maxScore
	}
	reason := "no overlap"
	if len(reasons) > 0 {
		reason = strings.Join(reasons, "; ")
	}
	if matched == nil {
		matched = []string{}
	}
	return types.TemplateMatch{Template: t, Score: score, MatchedKeywords: matched, Reason: reason}
}

// IsStrong reports whether m reaches threshold.
func IsStrong(m types.TemplateMatch, threshold int) bool {
	return m.Score >= threshold
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
