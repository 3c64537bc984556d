// Package quality scores generated prompt suites and runs the bounded
// optimization pass.
package quality

import (
	"context"
	"fmt"
	"math"

	"github.com/ziadkadry99/promptsuite/internal/llm"
	"github.com/ziadkadry99/promptsuite/internal/logger"
	"github.com/ziadkadry99/promptsuite/internal/textparse"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

// DefaultAcceptThreshold is the overall score at which a run is accepted as-is.
const DefaultAcceptThreshold = 8.5

// DefaultMetrics is the neutral score used when evaluation fails.
func DefaultMetrics() types.QualityMetrics {
	return types.QualityMetrics{
		Clarity:         7.5,
		Completeness:    8.0,
		Professionalism: 8.5,
		Actionability:   7.8,
		Innovation:      7.2,
		OverallScore:    7.8,
	}
}

// Evaluator scores prompt sections through the text-generation service.
type Evaluator struct {
	provider llm.Provider
	model    string
	log      *logger.Logger
}

// NewEvaluator creates an Evaluator. A nil provider always returns DefaultMetrics.
func NewEvaluator(provider llm.Provider, model string, log *logger.Logger) *Evaluator {
	return &Evaluator{provider: provider, model: model, log: logger.OrNop(log)}
}

// Evaluation is the outcome of Evaluate.
type Evaluation struct {
	Metrics  types.QualityMetrics
	Fallback bool
	Err      error
}

type scoreResponse struct {
	Clarity         *float64 `json:"clarity"`
	Completeness    *float64 `json:"completeness"`
	Professionalism *float64 `json:"professionalism"`
	Actionability   *float64 `json:"actionability"`
	Innovation      *float64 `json:"innovation"`
	OverallScore    *float64 `json:"overall_score"`
}

// Evaluate scores the sections. It never fails: on any error the neutral
// default is returned with Fallback set.
func (e *Evaluator) Evaluate(ctx context.Context, sections map[types.SectionKind]types.PromptSection, profile types.ProjectProfile) Evaluation {
	if e.provider == nil {
		return Evaluation{Metrics: DefaultMetrics(), Fallback: true, Err: llm.ErrOffline}
	}

	raw, err := llm.Generate(ctx, e.provider, llm.CompletionRequest{
		Model:       e.model,
		Messages:    buildEvaluationMessages(sections, profile),
		MaxTokens:   300,
		Temperature: 0,
		JSONMode:    true,
		Stage:       "evaluate",
	})
	if err != nil {
		e.log.Warn("quality evaluation failed, using default metrics", "error", err)
		return Evaluation{Metrics: DefaultMetrics(), Fallback: true, Err: fmt.Errorf("evaluation request: %w", err)}
	}

	var sr scoreResponse
	if res := textparse.Decode(raw, &sr); !res.OK() {
		e.log.Warn("quality evaluation unparsable, using default metrics", "error", res.Err)
		return Evaluation{Metrics: DefaultMetrics(), Fallback: true, Err: res.Err}
	}
	return Evaluation{Metrics: normalize(sr)}
}

// normalize clamps every axis into [0,10], taking missing axes from the
// default and deriving the overall score as the mean when absent.
func normalize(sr scoreResponse) types.QualityMetrics {
	d := DefaultMetrics()
	m := types.QualityMetrics{
		Clarity:         axis(sr.Clarity, d.Clarity),
		Completeness:    axis(sr.Completeness, d.Completeness),
		Professionalism: axis(sr.Professionalism, d.Professionalism),
		Actionability:   axis(sr.Actionability, d.Actionability),
		Innovation:      axis(sr.Innovation, d.Innovation),
	}
	if sr.OverallScore != nil {
		m.OverallScore = Clamp(*sr.OverallScore)
	} else {
		m.OverallScore = Mean(m)
	}
	return m
}

func axis(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return Clamp(*v)
}

// Clamp bounds a score to [0,10]. NaN becomes 0.
func Clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

// Mean returns the average of the five axes rounded to one decimal.
func Mean(m types.QualityMetrics) float64 {
	sum := m.Clarity + m.Completeness + m.Professionalism + m.Actionability + m.Innovation
	return math.Round(sum/5*10) / 10
}

// Accepted reports whether m meets threshold.
func Accepted(m types.QualityMetrics, threshold float64) bool {
	return m.OverallScore >= threshold
}
