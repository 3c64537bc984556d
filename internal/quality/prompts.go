package quality

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ziadkadry99/promptsuite/internal/llm"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

const evaluationSystemPrompt = `You are a strict reviewer of professional prompts. Score each axis from 0 to 10 and return only JSON.`

const evaluationPromptTemplate = `Score the prompt suite below.

Project complexity: %s
Project type: %s

Section lengths (characters):
%s
Requirements prompt:
%s

Return a JSON object:
{"clarity": 0, "completeness": 0, "professionalism": 0, "actionability": 0, "innovation": 0, "overall_score": 0}`

func buildEvaluationMessages(sections map[types.SectionKind]types.PromptSection, profile types.ProjectProfile) []llm.Message {
	var lengths strings.Builder
	for _, k := range types.SectionKinds {
		fmt.Fprintf(&lengths, "- %s: %d\n", k, utf8.RuneCountInString(sections[k].Prompt))
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: evaluationSystemPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf(evaluationPromptTemplate,
			profile.ComplexityLevel, profile.ProjectType, lengths.String(), sections[types.SectionRequirements].Prompt)},
	}
}

const optimizeSystemPrompt = `You are an expert prompt editor. Rewrite the prompt you are given so that it addresses every listed issue. Keep its intent, scope and headings. Return only the rewritten prompt.`

func buildOptimizeMessages(prompt string, suggestions []types.OptimizationSuggestion) []llm.Message {
	var b strings.Builder
	b.WriteString("Issues to fix:\n")
	for _, s := range suggestions {
		fmt.Fprintf(&b, "- %s: %s\n", s.Description, s.Implementation)
	}
	b.WriteString("\nPrompt:\n")
	b.WriteString(prompt)
	return []llm.Message{
		{Role: llm.RoleSystem, Content: optimizeSystemPrompt},
		{Role: llm.RoleUser, Content: b.String()},
	}
}
