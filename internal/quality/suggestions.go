package quality

import "github.com/ziadkadry99/promptsuite/internal/types"

// Suggestion types.
const (
	TypeLanguageClarity     = "language_clarity"
	TypeContentCompleteness = "content_completeness"
	TypeProfessionalTone    = "professional_tone"
	TypeActionability       = "actionability"
)

// Suggestions derives optimization suggestions from threshold rules.
func Suggestions(m types.QualityMetrics) []types.OptimizationSuggestion {
	var out []types.OptimizationSuggestion
	if m.Clarity < 7.5 {
		out = append(out, types.OptimizationSuggestion{
			Type:           TypeLanguageClarity,
			Description:    "Prompt language is ambiguous or hard to follow",
			Priority:       types.PriorityHigh,
			Implementation: "Use short declarative sentences, define terms once and remove hedging words",
		})
	}
	if m.Completeness < 8.0 {
		out = append(out, types.OptimizationSuggestion{
			Type:           TypeContentCompleteness,
			Description:    "Prompt omits requirements the project needs",
			Priority:       types.PriorityHigh,
			Implementation: "Cover users, scope, constraints, acceptance criteria and success metrics explicitly",
		})
	}
	if m.Professionalism < 8.0 {
		out = append(out, types.OptimizationSuggestion{
			Type:           TypeProfessionalTone,
			Description:    "Tone and structure fall short of a professional brief",
			Priority:       types.PriorityMedium,
			Implementation: "Use consistent headings and industry terminology",
		})
	}
	if m.Actionability < 7.5 {
		out = append(out, types.OptimizationSuggestion{
			Type:           TypeActionability,
			Description:    "Prompt does not lead to concrete next steps",
			Priority:       types.PriorityHigh,
			Implementation: "Ask for numbered deliverables with owners, order and verification steps",
		})
	}
	return out
}

// HighPriority filters s to high-priority suggestions.
func HighPriority(s []types.OptimizationSuggestion) []types.OptimizationSuggestion {
	var out []types.OptimizationSuggestion
	for _, sg := range s {
		if sg.Priority == types.PriorityHigh {
			out = append(out, sg)
		}
	}
	return out
}
