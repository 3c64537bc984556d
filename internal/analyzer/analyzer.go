// Package analyzer extracts a structured project profile from a conversation.
package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/ziadkadry99/promptsuite/internal/lexicon"
	"github.com/ziadkadry99/promptsuite/internal/llm"
	"github.com/ziadkadry99/promptsuite/internal/logger"
	"github.com/ziadkadry99/promptsuite/internal/textparse"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

// Analyzer builds ProjectProfiles using the text-generation service, with a
// deterministic keyword fallback.
type Analyzer struct {
	provider llm.Provider
	model    string
	log      *logger.Logger
}

// New creates an Analyzer. A nil provider always takes the fallback path.
func New(provider llm.Provider, model string, log *logger.Logger) *Analyzer {
	return &Analyzer{provider: provider, model: model, log: logger.OrNop(log)}
}

// Result is the outcome of Analyze.
type Result struct {
	Profile types.ProjectProfile
	// Fallback is true when the keyword profile was used.
	Fallback bool
	Strategy textparse.Strategy
	Err      error
}

// extraction mirrors the JSON schema requested from the model. Scores may
// arrive as numbers or quoted numbers.
type extraction struct {
	ProjectType       string           `json:"project_type"`
	PrimaryDomain     string           `json:"primary_domain"`
	TargetUsers       string           `json:"target_users"`
	CoreValue         string           `json:"core_value"`
	MainChallenges    []string         `json:"main_challenges"`
	TechnicalKeywords []string         `json:"technical_keywords"`
	BusinessKeywords  []string         `json:"business_keywords"`
	CompletenessScore textparse.Number `json:"completeness_score"`
	ClarityScore      textparse.Number `json:"clarity_score"`
	InnovationScore   textparse.Number `json:"innovation_score"`
}

// Analyze never fails: errors are reported on the Result and the fallback
// profile is returned instead.
func (a *Analyzer) Analyze(ctx context.Context, messages []types.ConversationMessage, brief string) Result {
	fallback := FallbackProfile(messages, brief)
	if a.provider == nil {
		return Result{Profile: fallback, Fallback: true, Strategy: textparse.StrategyNone, Err: llm.ErrOffline}
	}

	conversation := types.JoinConversation(messages, "")
	raw, err := llm.Generate(ctx, a.provider, llm.CompletionRequest{
		Model:       a.model,
		Messages:    buildMessages(brief, conversation),
		MaxTokens:   1024,
		Temperature: 0.1,
		JSONMode:    true,
		Stage:       "analyze",
	})
	if err != nil {
		a.log.Warn("context analysis failed, using keyword profile", "error", err)
		return Result{Profile: fallback, Fallback: true, Strategy: textparse.StrategyNone, Err: fmt.Errorf("analysis request: %w", err)}
	}

	var ex extraction
	res := textparse.Decode(raw, &ex)
	if !res.OK() {
		a.log.Warn("context analysis unparsable, using keyword profile", "error", res.Err)
		return Result{Profile: fallback, Fallback: true, Strategy: res.Strategy, Err: res.Err}
	}

	return Result{Profile: merge(ex, fallback, len(types.JoinConversation(messages, brief))), Strategy: res.Strategy}
}

// merge normalises the model's extraction, filling anything missing or out of
// range from the keyword profile.
func merge(ex extraction, fb types.ProjectProfile, textLen int) types.ProjectProfile {
	p := fb

	if s := strings.TrimSpace(ex.ProjectType); s != "" {
		p.ProjectType = strings.ToLower(s)
	}
	if d := types.Domain(strings.ToLower(strings.TrimSpace(ex.PrimaryDomain))); d.Valid() {
		p.PrimaryDomain = d
	}
	if s := strings.TrimSpace(ex.TargetUsers); s != "" {
		p.TargetUsers = s
	}
	if s := strings.TrimSpace(ex.CoreValue); s != "" {
		p.CoreValue = s
	}
	if c := cleanList(ex.MainChallenges); len(c) > 0 {
		p.MainChallenges = c
	}
	if k := cleanList(ex.TechnicalKeywords); len(k) > 0 {
		p.TechnicalKeywords = lowerAll(k)
	}
	if k := cleanList(ex.BusinessKeywords); len(k) > 0 {
		p.BusinessKeywords = lowerAll(k)
	}
	if ex.CompletenessScore > 0 {
		p.CompletenessScore = clampScore(float64(ex.CompletenessScore))
	}
	if ex.ClarityScore > 0 {
		p.ClarityScore = clampScore(float64(ex.ClarityScore))
	}
	if ex.InnovationScore > 0 {
		p.InnovationScore = clampScore(float64(ex.InnovationScore))
	}

	// The ordinal is always derived locally so it is comparable across runs.
	p.ComplexityLevel = EstimateComplexity(textLen, len(p.MainChallenges))
	if p.ProjectType == "" {
		p.ProjectType = lexicon.DefaultProjectType
	}
	return p
}

func cleanList(in []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		out = append(out, s)
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
