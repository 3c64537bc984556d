package pipeline

import (
	"strings"
	"testing"

	"github.com/ziadkadry99/promptsuite/internal/expert"
	"github.com/ziadkadry99/promptsuite/internal/textparse"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

func TestParseSectionsStrategies(t *testing.T) {
	if _, failed, st := ParseSections(sectionsJSON); len(failed) != 0 || st != textparse.StrategyDirect {
		t.Errorf("direct: failed %v, strategy %s", failed, st)
	}
	if _, failed, st := ParseSections("Sure!\n" + sectionsJSON + "\nEnjoy."); len(failed) != 0 || st != textparse.StrategyBraceMatch {
		t.Errorf("embedded: failed %v, strategy %s", failed, st)
	}
	parsed, failed, _ := ParseSections("no json at all")
	if len(parsed) != 0 || len(failed) != len(types.SectionKinds) {
		t.Errorf("garbage: parsed %d, failed %v", len(parsed), failed)
	}
}

func TestParseSectionsEmptyPromptFails(t *testing.T) {
	_, failed, _ := ParseSections(`{"requirements_prompt": {"title": "only a title"}}`)
	if len(failed) != 4 {
		t.Errorf("failed = %v, want all four", failed)
	}
}

func TestSectionMapHeadings(t *testing.T) {
	doc := `# Technical Architecture Document: Shop

## 1. Architecture Design
Layered services.

### Components
API and worker.

## 技术栈
Go and React.

## Deployment Plan:
Kubernetes.
`
	m := SectionMap(types.KindTechnical, doc)
	if got := m["architecture_design"]; !strings.Contains(got, "Layered services.") || !strings.Contains(got, "API and worker.") {
		t.Errorf("architecture_design = %q", got)
	}
	if m["technology_stack"] != "Go and React." {
		t.Errorf("technology_stack = %q", m["technology_stack"])
	}
	if m["deployment"] != "Kubernetes." {
		t.Errorf("deployment = %q", m["deployment"])
	}
	if v, ok := m["data_model"]; !ok || v != "" {
		t.Errorf("missing section should map to empty string, got %q (present %v)", v, ok)
	}
}

func TestSectionMapNoHeadings(t *testing.T) {
	m := SectionMap(types.KindDesign, "plain text without headings")
	if len(m) != len(ExpectedSections(types.KindDesign)) {
		t.Fatalf("keys = %d", len(m))
	}
	for k, v := range m {
		if v != "" {
			t.Errorf("%s = %q, want empty", k, v)
		}
	}
}

func TestFallbackDocumentMeetsMinimum(t *testing.T) {
	p := types.ProjectProfile{ProjectType: "todo app", ComplexityLevel: types.ComplexitySimple}
	for _, kind := range types.DeliverableKinds {
		for _, min := range []int{100, 2000, 5000} {
			doc := FallbackDocument(kind, p, min)
			if n := len([]rune(doc)); n < min {
				t.Errorf("%s min %d: got %d characters", kind, min, n)
			}
			for k, v := range SectionMap(kind, doc) {
				if v == "" {
					t.Errorf("%s: section %s empty in fallback", kind, k)
				}
			}
		}
	}
	if FallbackDocument(types.KindDesign, p, 2000) != FallbackDocument(types.KindDesign, p, 2000) {
		t.Error("fallback document is not deterministic")
	}
}

func TestBuildGeneratePromptExcerpts(t *testing.T) {
	pattern := expert.DefaultPatterns()[1]
	var related []types.CorpusEntry
	for i := 0; i < 7; i++ {
		related = append(related, types.CorpusEntry{Title: "Example title", Content: strings.Repeat("x", 1000)})
	}
	prompt := BuildGeneratePrompt(pattern, "CONTEXT-MARKER", related, 50)

	if strings.Contains(prompt, expert.ContextPlaceholder) || !strings.Contains(prompt, "CONTEXT-MARKER") {
		t.Error("context not substituted")
	}
	if got := strings.Count(prompt, "Example title"); got != expert.MaxRelatedCorpus {
		t.Errorf("examples = %d, want %d", got, expert.MaxRelatedCorpus)
	}
	if strings.Contains(prompt, strings.Repeat("x", 51)) {
		t.Error("excerpt exceeds budget")
	}

	bare := BuildGeneratePrompt(pattern, "c", nil, 50)
	if strings.Contains(bare, "Reference examples") {
		t.Error("no examples should be rendered without corpus entries")
	}
}

func TestExcerpt(t *testing.T) {
	if got := Excerpt("héllo world", 5); got != "héllo..." {
		t.Errorf("Excerpt = %q", got)
	}
	if got := Excerpt("short", 50); got != "short" {
		t.Errorf("Excerpt = %q", got)
	}
}
