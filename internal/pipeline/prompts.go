package pipeline

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/promptsuite/internal/expert"
	"github.com/ziadkadry99/promptsuite/internal/llm"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

// ProjectContext renders a profile as the text substituted into a
// reasoning template.
func ProjectContext(p types.ProjectProfile, brief string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project type: %s\n", p.ProjectType)
	fmt.Fprintf(&b, "Complexity: %s\n", p.ComplexityLevel)
	fmt.Fprintf(&b, "Primary domain: %s\n", p.PrimaryDomain)
	fmt.Fprintf(&b, "Target users: %s\n", p.TargetUsers)
	fmt.Fprintf(&b, "Core value: %s\n", p.CoreValue)
	if len(p.MainChallenges) > 0 {
		fmt.Fprintf(&b, "Main challenges: %s\n", strings.Join(p.MainChallenges, "; "))
	}
	if len(p.TechnicalKeywords) > 0 {
		fmt.Fprintf(&b, "Technical keywords: %s\n", strings.Join(p.TechnicalKeywords, ", "))
	}
	if len(p.BusinessKeywords) > 0 {
		fmt.Fprintf(&b, "Business keywords: %s\n", strings.Join(p.BusinessKeywords, ", "))
	}
	if brief = strings.TrimSpace(brief); brief != "" {
		fmt.Fprintf(&b, "Project brief: %s\n", brief)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Excerpt truncates s to at most n runes, marking the cut.
func Excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}

const generateInstructions = `Using the reasoning above, write four professional prompts that the user can paste into an AI assistant to produce the project's deliverables.

Return only a JSON object with exactly these keys:
{
  "requirements_prompt": {"title": "", "description": "", "prompt": "", "usage_guide": ""},
  "technical_prompt": {"title": "", "description": "", "prompt": "", "usage_guide": ""},
  "design_prompt": {"title": "", "description": "", "prompt": "", "usage_guide": ""},
  "management_prompt": {"title": "", "description": "", "prompt": "", "usage_guide": ""}
}

requirements_prompt produces a product requirements document, technical_prompt a technical architecture document, design_prompt a UX and visual design document and management_prompt a project plan. Each prompt must be self-contained and specific to this project.`

// BuildGeneratePrompt builds the combined instruction: the pattern's
// reasoning with the project context substituted, then up to
// expert.MaxRelatedCorpus reference examples, then the output contract.
func BuildGeneratePrompt(pattern types.ExpertPattern, projectCtx string, related []types.CorpusEntry, excerptChars int) string {
	var b strings.Builder
	b.WriteString(strings.Replace(pattern.ReasoningTemplate, expert.ContextPlaceholder, projectCtx, 1))

	if len(related) > expert.MaxRelatedCorpus {
		related = related[:expert.MaxRelatedCorpus]
	}
	if len(related) > 0 {
		b.WriteString("\n\nReference examples. Imitate their structure and vocabulary but do not copy them verbatim:\n")
		for i, e := range related {
			fmt.Fprintf(&b, "\nExample %d: %s\n%s\n", i+1, e.Title, Excerpt(e.Content, excerptChars))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(generateInstructions)
	return b.String()
}

func generateMessages(pattern types.ExpertPattern, projectCtx string, related []types.CorpusEntry, excerptChars int) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: "You are " + pattern.Name + ". You write precise, professional prompts and answer in JSON."},
		{Role: llm.RoleUser, Content: BuildGeneratePrompt(pattern, projectCtx, related, excerptChars)},
	}
}

var deliverableTitles = map[types.DeliverableKind]string{
	types.KindRequirements: "Product Requirements Document",
	types.KindTechnical:    "Technical Architecture Document",
	types.KindDesign:       "Design Specification",
	types.KindProjectPlan:  "Project Plan",
}

// deliverableSection maps each deliverable to the prompt that drives it.
var deliverableSection = map[types.DeliverableKind]types.SectionKind{
	types.KindRequirements: types.SectionRequirements,
	types.KindTechnical:    types.SectionTechnical,
	types.KindDesign:       types.SectionDesign,
	types.KindProjectPlan:  types.SectionManagement,
}

func deliverableMessages(kind types.DeliverableKind, section types.PromptSection, projectCtx string, minChars int) []llm.Message {
	var headings []string
	for _, s := range ExpectedSections(kind) {
		headings = append(headings, "## "+s.Names[0])
	}
	user := fmt.Sprintf(`%s

Project context:
%s

Write the complete %s in Markdown. Use these headings in this order:
%s

Be concrete and specific to this project. Write at least %d characters.`,
		section.Prompt, projectCtx, deliverableTitles[kind], strings.Join(headings, "\n"), minChars)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: "You are a senior consultant writing a professional " + strings.ToLower(deliverableTitles[kind]) + "."},
		{Role: llm.RoleUser, Content: user},
	}
}
