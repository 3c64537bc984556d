package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/ziadkadry99/promptsuite/internal/corpus"
	"github.com/ziadkadry99/promptsuite/internal/db"
	"github.com/ziadkadry99/promptsuite/internal/expert"
	"github.com/ziadkadry99/promptsuite/internal/history"
	"github.com/ziadkadry99/promptsuite/internal/llm"
	"github.com/ziadkadry99/promptsuite/internal/llm/llmtest"
	"github.com/ziadkadry99/promptsuite/internal/templates"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

const techProfile = `{"project_type":"e-commerce platform","primary_domain":"tech","target_users":"online shoppers",
"core_value":"fast checkout","main_challenges":["payments"],"technical_keywords":["react","api"],
"business_keywords":["payment"],"completeness_score":70,"clarity_score":80,"innovation_score":60}`

const sectionsJSON = `{
  "requirements_prompt": {"title": "PRD", "description": "d", "prompt": "Write the PRD for the shop.", "usage_guide": "u"},
  "technical_prompt": {"title": "Arch", "description": "d", "prompt": "Write the architecture.", "usage_guide": "u"},
  "design_prompt": {"title": "UX", "description": "d", "prompt": "Write the design spec.", "usage_guide": "u"},
  "management_prompt": {"title": "Plan", "description": "d", "prompt": "Write the project plan.", "usage_guide": "u"}
}`

const highScore = `{"clarity": 9, "completeness": 9, "professionalism": 9, "actionability": 9, "innovation": 8, "overall_score": 9}`

const lowScore = `{"clarity": 5, "completeness": 5, "professionalism": 5, "actionability": 5, "innovation": 5, "overall_score": 5}`

func twoTurns() []types.ConversationMessage {
	return []types.ConversationMessage{
		{Role: types.RoleUser, Content: "I want a React storefront talking to an API"},
		{Role: types.RoleAssistant, Content: "Should it take payment online?"},
	}
}

// document renders a deliverable containing every expected heading.
func document(kind types.DeliverableKind) string {
	var b strings.Builder
	b.WriteString("# Document\n\n")
	for _, s := range ExpectedSections(kind) {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s.Names[0], strings.Repeat("Specific detail for this project. ", 15))
	}
	return b.String()
}

func deliverableResponder(req llm.CompletionRequest) (string, error) {
	for _, k := range types.DeliverableKinds {
		if req.Stage == DeliverableStage(k) {
			return document(k), nil
		}
	}
	return "", fmt.Errorf("unexpected stage %q", req.Stage)
}

func goodProvider(evaluation string) *llmtest.Provider {
	return llmtest.New(func(req llm.CompletionRequest) (string, error) {
		switch req.Stage {
		case "analyze":
			return techProfile, nil
		case "generate":
			return sectionsJSON, nil
		case "evaluate":
			return evaluation, nil
		case "optimize":
			return "Write a complete PRD for the shop with users, scope, requirements and acceptance criteria.", nil
		}
		return deliverableResponder(req)
	})
}

func newPipeline(provider llm.Provider) *Pipeline {
	deps := Deps{Repo: expert.NewRepository(expert.DefaultPatterns()...), Model: "m"}
	if provider != nil {
		deps.Provider = provider
	}
	return New(deps, Options{})
}

func assertComplete(t *testing.T, s *Suite) {
	t.Helper()
	if s == nil {
		t.Fatal("nil suite")
	}
	for _, k := range types.SectionKinds {
		if s.Section(k).Prompt == "" {
			t.Errorf("section %s is empty", k)
		}
	}
	for _, d := range s.Documents.All() {
		if d.FullContent == "" {
			t.Errorf("deliverable %s is empty", d.Kind)
		}
		if len(d.SectionMap) != len(ExpectedSections(d.Kind)) {
			t.Errorf("deliverable %s section map has %d keys", d.Kind, len(d.SectionMap))
		}
	}
	if s.Quality.OverallScore < 0 || s.Quality.OverallScore > 10 {
		t.Errorf("overall score %v out of range", s.Quality.OverallScore)
	}
	if s.States[len(s.States)-1] != StateDone {
		t.Errorf("last state = %s", s.States[len(s.States)-1])
	}
}

func TestGenerateHappyPath(t *testing.T) {
	prov := goodProvider(highScore)
	s := newPipeline(prov).Generate(context.Background(), twoTurns(), "online shop with a backend database")
	assertComplete(t, s)

	if s.Profile.PrimaryDomain != types.DomainTech {
		t.Errorf("primary domain = %s", s.Profile.PrimaryDomain)
	}
	if s.PatternID != "tech-architect" {
		t.Errorf("pattern = %s", s.PatternID)
	}
	if len(s.Fallbacks) != 0 {
		t.Errorf("unexpected fallbacks %v", s.Fallbacks)
	}
	if s.Documents.Technical.SectionMap["architecture_design"] == "" {
		t.Error("technical architecture_design section is empty")
	}
	if s.Documents.Requirements.SectionMap["product_overview"] == "" {
		t.Error("requirements product_overview section is empty")
	}
	if s.Optimized || prov.StageCount("optimize") != 0 {
		t.Error("accepted run should not be optimized")
	}
	if s.Requirements.Title != "PRD" {
		t.Errorf("requirements title = %q", s.Requirements.Title)
	}
	// analyze, generate, evaluate and four deliverables.
	if s.Usage.Calls != 7 {
		t.Errorf("usage calls = %d, want 7", s.Usage.Calls)
	}
}

func TestGenerateFallbackForMalformedResponses(t *testing.T) {
	tests := []struct {
		name     string
		provider llm.Provider
	}{
		{"errors", llmtest.Failing(errors.New("503 service unavailable"))},
		{"garbage", llmtest.Static("I'm sorry, I can't help with that.")},
		{"empty", llmtest.Static("")},
		{"empty object", llmtest.Static("{}")},
		{"offline", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newPipeline(tt.provider).Generate(context.Background(), twoTurns(), "React API payment")
			assertComplete(t, s)
			for _, d := range s.Documents.All() {
				if !d.Fallback {
					t.Errorf("%s should be a fallback document", d.Kind)
				}
				if n := utf8.RuneCountInString(d.FullContent); n < 2000 {
					t.Errorf("%s fallback has %d characters", d.Kind, n)
				}
			}
			if s.Documents.Technical.SectionMap["architecture_design"] == "" {
				t.Error("fallback technical document lacks architecture_design")
			}
			if s.Documents.Requirements.SectionMap["product_overview"] == "" {
				t.Error("fallback requirements document lacks product_overview")
			}
			if s.Quality != defaultQuality() {
				t.Errorf("quality = %+v", s.Quality)
			}
		})
	}
}

func defaultQuality() types.QualityMetrics {
	return types.QualityMetrics{Clarity: 7.5, Completeness: 8.0, Professionalism: 8.5, Actionability: 7.8, Innovation: 7.2, OverallScore: 7.8}
}

func TestGenerateTodoAppWithoutConversation(t *testing.T) {
	s := newPipeline(nil).Generate(context.Background(), nil, "build a todo app")
	assertComplete(t, s)
	if s.Profile.ProjectType != "productivity tool" {
		t.Errorf("project type = %q", s.Profile.ProjectType)
	}
	if s.Quality.OverallScore != 7.8 {
		t.Errorf("overall = %v", s.Quality.OverallScore)
	}
	if s.Domain != types.DomainBusiness || !contains(s.Fallbacks, "select_pattern:default_domain") {
		t.Errorf("domain = %s, fallbacks = %v", s.Domain, s.Fallbacks)
	}
}

func TestGenerateKeepsParsedSiblings(t *testing.T) {
	partial := `Here you go: {"requirements_prompt": {"title": "PRD", "prompt": "Write the PRD."},
		"technical_prompt": "Write the architecture.", "design_prompt": 42}`
	prov := llmtest.New(func(req llm.CompletionRequest) (string, error) {
		if req.Stage == "generate" {
			return partial, nil
		}
		return "", llm.ErrOffline
	})
	s := newPipeline(prov).Generate(context.Background(), twoTurns(), "")

	if s.Requirements.Prompt != "Write the PRD." || s.Requirements.Fallback {
		t.Errorf("requirements = %+v", s.Requirements)
	}
	if s.Technical.Prompt != "Write the architecture." || s.Technical.Fallback {
		t.Errorf("technical = %+v", s.Technical)
	}
	if !s.Design.Fallback || !s.Management.Fallback {
		t.Error("design and management should fall back")
	}
	for _, want := range []string{"generate:design_prompt", "generate:management_prompt"} {
		if !contains(s.Fallbacks, want) {
			t.Errorf("fallbacks %v missing %s", s.Fallbacks, want)
		}
	}
	if contains(s.Fallbacks, "generate:requirements_prompt") {
		t.Error("requirements should not be reported as a fallback")
	}
}

func TestGenerateOptimizesAtMostOnce(t *testing.T) {
	prov := goodProvider(lowScore)
	s := newPipeline(prov).Generate(context.Background(), twoTurns(), "")
	assertComplete(t, s)

	if got := prov.StageCount("optimize"); got != 1 {
		t.Errorf("optimize calls = %d, want 1", got)
	}
	if got := prov.StageCount("evaluate"); got != 2 {
		t.Errorf("evaluate calls = %d, want 2", got)
	}
	if !s.Optimized || len(s.QualityHistory) != 2 {
		t.Errorf("optimized = %v, history = %d", s.Optimized, len(s.QualityHistory))
	}
	if !strings.Contains(s.Requirements.Prompt, "acceptance criteria") {
		t.Errorf("requirements prompt not rewritten: %q", s.Requirements.Prompt)
	}
	if len(s.Suggestions) == 0 {
		t.Error("suggestions should be reported")
	}
	assertStates(t, s, StateAnalyze, StateSelectPattern, StateEnhance, StateGenerate, StateEvaluate, StateOptimize, StateAssemble, StateDone)
}

func assertStates(t *testing.T, s *Suite, want ...State) {
	t.Helper()
	if len(s.States) != len(want) {
		t.Fatalf("states = %v, want %v", s.States, want)
	}
	for i := range want {
		if s.States[i] != want[i] {
			t.Errorf("state %d = %s, want %s", i, s.States[i], want[i])
		}
	}
}

func TestGenerateIsolatesDeliverableFailures(t *testing.T) {
	prov := llmtest.New(func(req llm.CompletionRequest) (string, error) {
		if req.Stage == DeliverableStage(types.KindDesign) {
			return "", errors.New("timeout")
		}
		return goodProvider(highScore).Respond(req)
	})
	s := newPipeline(prov).Generate(context.Background(), twoTurns(), "")
	assertComplete(t, s)

	if !s.Documents.Design.Fallback {
		t.Error("design should fall back")
	}
	for _, d := range []types.GeneratedDeliverable{s.Documents.Requirements, s.Documents.Technical, s.Documents.ProjectPlan} {
		if d.Fallback {
			t.Errorf("%s should not fall back", d.Kind)
		}
	}
	if got := prov.StageCount(DeliverableStage(types.KindDesign)); got != 2 {
		t.Errorf("design attempts = %d, want 2", got)
	}
	if !contains(s.Fallbacks, "deliverable:design") {
		t.Errorf("fallbacks = %v", s.Fallbacks)
	}
}

func TestGenerateRejectsShortDeliverables(t *testing.T) {
	prov := llmtest.New(func(req llm.CompletionRequest) (string, error) {
		if req.Stage == DeliverableStage(types.KindProjectPlan) {
			return "## Milestones\n\ntoo short", nil
		}
		return goodProvider(highScore).Respond(req)
	})
	s := newPipeline(prov).Generate(context.Background(), twoTurns(), "")
	if !s.Documents.ProjectPlan.Fallback {
		t.Error("short project plan should fall back")
	}
}

func TestGenerateRunsDeliverablesConcurrently(t *testing.T) {
	var inFlight, peak int32
	prov := llmtest.New(func(req llm.CompletionRequest) (string, error) {
		if strings.HasPrefix(req.Stage, "deliverable_") {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(50 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
		}
		return goodProvider(highScore).Respond(req)
	})
	newPipeline(prov).Generate(context.Background(), twoTurns(), "")
	if atomic.LoadInt32(&peak) < 2 {
		t.Errorf("peak concurrency = %d, want at least 2", peak)
	}
}

func TestGenerateCancelledContextStillCompletes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := newPipeline(goodProvider(highScore)).Generate(ctx, twoTurns(), "")
	assertComplete(t, s)
	if !contains(s.Fallbacks, "analyze") {
		t.Errorf("fallbacks = %v", s.Fallbacks)
	}
}

func TestGenerateEmptyCatalog(t *testing.T) {
	p := New(Deps{Repo: expert.NewRepository()}, Options{})
	s := p.Generate(context.Background(), twoTurns(), "")
	assertComplete(t, s)
	if s.PatternID != "generic" || !contains(s.Fallbacks, "select_pattern") {
		t.Errorf("pattern = %s, fallbacks = %v", s.PatternID, s.Fallbacks)
	}
}

func TestGenerateIncrementsPatternUsage(t *testing.T) {
	repo := expert.NewRepository(expert.DefaultPatterns()...)
	p := New(Deps{Repo: repo}, Options{})
	p.Generate(context.Background(), twoTurns(), "")
	p.Generate(context.Background(), twoTurns(), "")
	pat, _ := repo.Get("tech-architect")
	if pat.UsageCount != 2 {
		t.Errorf("usage count = %d, want 2", pat.UsageCount)
	}
}

func TestGenerateUsesCorpusExamples(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	store := corpus.NewStore(database)
	store.Add(context.Background(), []types.CorpusEntry{
		{Title: "Microservice blueprint", Content: strings.Repeat("Split the backend into services. ", 40), Category: "development"},
	})
	repo := expert.NewRepository(expert.DefaultPatterns()...)

	var prompt string
	prov := llmtest.New(func(req llm.CompletionRequest) (string, error) {
		if req.Stage == "generate" {
			prompt = req.Messages[len(req.Messages)-1].Content
		}
		return goodProvider(highScore).Respond(req)
	})
	p := New(Deps{Provider: prov, Repo: repo, Enhancer: corpus.NewEnhancer(repo, store, nil)}, Options{ExcerptChars: 100})
	p.Generate(context.Background(), twoTurns(), "")

	if !strings.Contains(prompt, "Reference examples") || !strings.Contains(prompt, "Microservice blueprint") {
		t.Fatalf("generate prompt lacks corpus examples:\n%s", prompt)
	}
	if strings.Count(prompt, "Split the backend") > 4 {
		t.Error("excerpt not truncated")
	}
	pat, _ := repo.Get("tech-architect")
	if len(pat.RelatedCorpusEntries) != 1 {
		t.Errorf("related entries = %d, want 1", len(pat.RelatedCorpusEntries))
	}
}

func TestFeedbackDoesNotAlterReturnedSuite(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	hs, err := history.NewStore(database)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	repo := expert.NewRepository(expert.DefaultPatterns()...)
	rec := history.NewRecorder(hs, history.RecorderOptions{Patterns: expert.NewStore(database), Repo: repo})

	p := New(Deps{Provider: goodProvider(highScore), Repo: repo, Recorder: rec}, Options{})
	s := p.Generate(context.Background(), twoTurns(), "")
	before, _ := json.Marshal(s.Documents)

	if _, err := rec.SubmitFeedback(types.UserFeedback{TargetID: s.RunID, Rating: 1, UsageResult: types.UsageFailed}); err != nil {
		t.Fatalf("SubmitFeedback: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rec.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	after, _ := json.Marshal(s.Documents)
	if string(before) != string(after) {
		t.Error("feedback altered the returned deliverables")
	}
	run, err := hs.GetRun(context.Background(), s.RunID)
	if err != nil {
		t.Fatalf("run not recorded: %v", err)
	}
	if run.PatternID != "tech-architect" {
		t.Errorf("run pattern = %s", run.PatternID)
	}
	pat, _ := repo.Get("tech-architect")
	if len(pat.RatingHistory) != 1 || pat.RatingHistory[0] != 1 {
		t.Errorf("rating history = %v", pat.RatingHistory)
	}
}

func TestGenerateSimpleStrongMatch(t *testing.T) {
	p := New(Deps{Repo: expert.NewRepository(expert.DefaultPatterns()...)}, Options{})
	res := p.GenerateSimple(context.Background(), nil,
		"An e-commerce platform with a React frontend, an API backend, database and payment checkout")
	if res.Mode != history.ModeSimple || res.Suite != nil {
		t.Fatalf("mode = %s, suite = %v", res.Mode, res.Suite != nil)
	}
	if res.Match.Template.ID != "system-architecture" || res.Prompt == nil {
		t.Errorf("match = %+v", res.Match)
	}
	if strings.Contains(res.Prompt.System, "{PROJECT_TYPE}") {
		t.Error("variables left unfilled")
	}
}

func TestGenerateSimpleDelegatesOnWeakMatch(t *testing.T) {
	p := New(Deps{
		Repo:    expert.NewRepository(expert.DefaultPatterns()...),
		Catalog: templates.NewCatalog(types.PromptTemplate{ID: "unrelated", Category: "none"}),
	}, Options{})
	res := p.GenerateSimple(context.Background(), twoTurns(), "")
	if res.Mode != history.ModeFull || res.Suite == nil {
		t.Fatalf("expected delegation to the full pipeline, got mode %s", res.Mode)
	}
	assertComplete(t, res.Suite)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
