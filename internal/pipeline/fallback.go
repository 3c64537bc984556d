package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ziadkadry99/promptsuite/internal/types"
)

var sectionTitles = map[types.SectionKind]string{
	types.SectionRequirements: "Product Requirements Prompt",
	types.SectionTechnical:    "Technical Architecture Prompt",
	types.SectionDesign:       "Design Specification Prompt",
	types.SectionManagement:   "Project Management Prompt",
}

var sectionFocus = map[types.SectionKind]string{
	types.SectionRequirements: "a product requirements document covering the product overview, target users, functional requirements, non-functional requirements and acceptance criteria",
	types.SectionTechnical:    "a technical architecture document covering the architecture design, technology stack, data model, API design and deployment",
	types.SectionDesign:       "a design specification covering design principles, user experience, visual design, interaction design and accessibility",
	types.SectionManagement:   "a project plan covering scope, milestones, timeline, resources and risk management",
}

// FallbackSection is the fixed, domain-templated prompt used when a section
// could not be generated.
func FallbackSection(kind types.SectionKind, p types.ProjectProfile) types.PromptSection {
	challenges := "the main delivery risks"
	if len(p.MainChallenges) > 0 {
		challenges = strings.Join(p.MainChallenges, ", ")
	}
	prompt := fmt.Sprintf(`Act as an experienced %s expert. Write %s for a %s.

Target users: %s
Core value: %s
Complexity: %s
Key challenges: %s

Structure the document with clear Markdown headings, state assumptions explicitly and end each section with concrete next steps.`,
		kind.Domain(), sectionFocus[kind], p.ProjectType, orDefault(p.TargetUsers, "general users"),
		orDefault(p.CoreValue, "solve the user's core problem"), p.ComplexityLevel, challenges)

	return types.PromptSection{
		Title:       sectionTitles[kind],
		Description: "Default " + string(kind.Domain()) + " prompt for " + p.ProjectType,
		Prompt:      prompt,
		UsageGuide:  "Paste the prompt into your AI assistant, then refine the answer with project-specific details.",
		Fallback:    true,
	}
}

// FallbackDocument builds a deterministic deliverable containing every
// expected heading and at least minChars characters.
func FallbackDocument(kind types.DeliverableKind, p types.ProjectProfile, minChars int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s\n\n", deliverableTitles[kind], titleCase(p.ProjectType))
	for _, s := range ExpectedSections(kind) {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s.Names[0], s.fallbackBody(p))
	}

	if utf8.RuneCountInString(b.String()) < minChars {
		b.WriteString("## Next Steps\n\n")
		for i := 0; utf8.RuneCountInString(b.String()) < minChars; i++ {
			fmt.Fprintf(&b, "%d. %s\n", i+1, nextSteps[i%len(nextSteps)])
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

var nextSteps = []string{
	"Review this document with the stakeholders and record open questions.",
	"Confirm the target users and validate the core value with at least five interviews.",
	"Prioritise the scope into must-have, should-have and could-have items.",
	"Assign an owner and a due date to every open decision.",
	"Schedule a follow-up review once the first iteration is complete.",
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
