package quality

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ziadkadry99/promptsuite/internal/llm"
	"github.com/ziadkadry99/promptsuite/internal/logger"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

// ErrNothingToOptimize is returned when no high-priority suggestion applies.
var ErrNothingToOptimize = errors.New("no high-priority suggestions")

// minRewriteRatio rejects rewrites that shrink the prompt below this share
// of the original length.
const minRewriteRatio = 0.5

// Optimizer rewrites the requirements prompt once per run.
type Optimizer struct {
	provider llm.Provider
	model    string
	log      *logger.Logger
}

// NewOptimizer creates an Optimizer.
func NewOptimizer(provider llm.Provider, model string, log *logger.Logger) *Optimizer {
	return &Optimizer{provider: provider, model: model, log: logger.OrNop(log)}
}

// Optimize makes exactly one rewrite call for section when suggestions
// contain high-priority items. On any failure the original section is
// returned together with the error.
func (o *Optimizer) Optimize(ctx context.Context, section types.PromptSection, suggestions []types.OptimizationSuggestion) (types.PromptSection, error) {
	high := HighPriority(suggestions)
	if len(high) == 0 {
		return section, ErrNothingToOptimize
	}
	if o.provider == nil {
		return section, llm.ErrOffline
	}

	raw, err := llm.Generate(ctx, o.provider, llm.CompletionRequest{
		Model:       o.model,
		Messages:    buildOptimizeMessages(section.Prompt, high),
		MaxTokens:   2048,
		Temperature: 0.3,
		Stage:       "optimize",
	})
	if err != nil {
		o.log.Warn("optimization failed, keeping original prompt", "error", err)
		return section, fmt.Errorf("optimization request: %w", err)
	}

	rewritten := strings.TrimSpace(stripFence(raw))
	if len([]rune(rewritten)) < int(float64(len([]rune(section.Prompt)))*minRewriteRatio) {
		o.log.Warn("optimization output too short, keeping original prompt", "chars", len(rewritten))
		return section, fmt.Errorf("optimized prompt too short (%d chars)", len(rewritten))
	}

	out := section
	out.Prompt = rewritten
	return out, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(s), "```")
}
