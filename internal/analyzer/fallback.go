package analyzer

import (
	"strings"

	"github.com/ziadkadry99/promptsuite/internal/lexicon"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

// challengeRules map indicator terms to a challenge description.
var challengeRules = []struct {
	terms     []string
	challenge string
}{
	{[]string{"payment", "checkout", "billing"}, "secure and compliant payment processing"},
	{[]string{"real-time", "realtime", "websocket", "live"}, "real-time data synchronization"},
	{[]string{"scale", "scalab", "high traffic", "concurren"}, "scalability under growing load"},
	{[]string{"ai", "machine learning", "llm", "recommendation"}, "model quality and inference cost"},
	{[]string{"mobile", "ios", "android"}, "consistent cross-platform experience"},
	{[]string{"privacy", "security", "gdpr", "authentication"}, "data security and privacy"},
	{[]string{"integration", "third-party", "api"}, "reliable third-party integrations"},
	{[]string{"offline", "sync"}, "offline support and conflict resolution"},
}

// targetUserRules map indicator terms to a target user description.
var targetUserRules = []struct {
	terms []string
	users string
}{
	{[]string{"student", "teacher", "course"}, "students and educators"},
	{[]string{"developer", "engineer"}, "software developers"},
	{[]string{"small business", "merchant", "seller"}, "small business owners"},
	{[]string{"enterprise", "b2b", "company", "companies"}, "business teams"},
	{[]string{"team", "manager"}, "teams and project managers"},
	{[]string{"shopper", "buyer", "customer"}, "online customers"},
}

// FallbackProfile builds a profile from keyword presence checks alone. It
// needs no network access and is deterministic for a given input.
func FallbackProfile(messages []types.ConversationMessage, brief string) types.ProjectProfile {
	text := types.JoinConversation(messages, brief)
	lower := strings.ToLower(text)

	domain, _ := lexicon.ClassifyDomain(text)
	tech := lexicon.FindTerms(text, lexicon.TechnicalKeywords)
	biz := lexicon.FindTerms(text, lexicon.BusinessKeywords)
	challenges := inferChallenges(lower)
	projectType := lexicon.InferProjectType(text)

	return types.ProjectProfile{
		ProjectType:       projectType,
		ComplexityLevel:   EstimateComplexity(len(text), len(challenges)),
		PrimaryDomain:     domain,
		TargetUsers:       inferTargetUsers(lower),
		CoreValue:         inferCoreValue(brief, projectType),
		MainChallenges:    challenges,
		TechnicalKeywords: nonNil(tech),
		BusinessKeywords:  nonNil(biz),
		CompletenessScore: clampScore(20 + 8*float64(len(tech)+len(biz)) + float64(len(text))/40),
		ClarityScore:      clarityScore(brief, len(messages)),
		InnovationScore:   innovationScore(lower),
	}
}

func inferChallenges(lower string) []string {
	var out []string
	for _, rule := range challengeRules {
		for _, t := range rule.terms {
			if lexicon.HasTerm(lower, t) {
				out = append(out, rule.challenge)
				break
			}
		}
	}
	if len(out) == 0 {
		out = append(out, "defining a focused first release scope")
	}
	return out
}

func inferTargetUsers(lower string) string {
	for _, rule := range targetUserRules {
		for _, t := range rule.terms {
			if lexicon.HasTerm(lower, t) {
				return rule.users
			}
		}
	}
	return "general users"
}

func inferCoreValue(brief, projectType string) string {
	brief = strings.TrimSpace(brief)
	if brief == "" {
		return "Deliver a reliable " + projectType + " that solves a clear user problem"
	}
	if i := strings.IndexAny(brief, ".!?\n"); i > 0 {
		brief = brief[:i]
	}
	const max = 160
	if r := []rune(brief); len(r) > max {
		brief = strings.TrimSpace(string(r[:max]))
	}
	return brief
}

func clarityScore(brief string, turns int) float64 {
	score := 40.0
	if strings.TrimSpace(brief) != "" {
		score += 20
	}
	score += 5 * float64(turns)
	return clampScore(score)
}

func innovationScore(lower string) float64 {
	score := 50.0
	for _, t := range []string{"ai", "machine learning", "blockchain", "ar", "vr", "voice", "personaliz"} {
		if lexicon.HasTerm(lower, t) {
			score += 10
		}
	}
	return clampScore(score)
}

// EstimateComplexity derives the complexity ordinal from the input length in
// characters and the number of enumerated challenges.
func EstimateComplexity(textLen, challenges int) types.Complexity {
	points := 0
	switch {
	case textLen >= 3000:
		points += 3
	case textLen >= 1200:
		points += 2
	case textLen >= 400:
		points++
	}
	switch {
	case challenges >= 6:
		points += 3
	case challenges >= 4:
		points += 2
	case challenges >= 2:
		points++
	}
	switch {
	case points >= 5:
		return types.ComplexityExpert
	case points >= 3:
		return types.ComplexityComplex
	case points >= 1:
		return types.ComplexityMedium
	default:
		return types.ComplexitySimple
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
