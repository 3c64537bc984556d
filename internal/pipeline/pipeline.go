package pipeline

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/ziadkadry99/promptsuite/internal/analyzer"
	"github.com/ziadkadry99/promptsuite/internal/corpus"
	"github.com/ziadkadry99/promptsuite/internal/expert"
	"github.com/ziadkadry99/promptsuite/internal/history"
	"github.com/ziadkadry99/promptsuite/internal/llm"
	"github.com/ziadkadry99/promptsuite/internal/logger"
	"github.com/ziadkadry99/promptsuite/internal/progress"
	"github.com/ziadkadry99/promptsuite/internal/quality"
	"github.com/ziadkadry99/promptsuite/internal/templates"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

// Deps are the collaborators of a Pipeline. Only Repo is required.
type Deps struct {
	// Provider is the text-generation service. Nil runs fully offline.
	Provider llm.Provider
	Model    string
	Repo     *expert.Repository
	// Enhancer fills a pattern's related corpus entries when its cache is empty.
	Enhancer *corpus.Enhancer
	Catalog  *templates.Catalog
	Recorder *history.Recorder
	Reporter progress.Reporter
	Log      *logger.Logger
}

// Options tune a Pipeline. Zero values take defaults.
type Options struct {
	AcceptThreshold     float64
	StrongMatch         int
	MaxConcurrency      int
	ExcerptChars        int
	MinDocumentChars    int
	DeliverableAttempts int
}

func (o Options) withDefaults() Options {
	if o.AcceptThreshold <= 0 {
		o.AcceptThreshold = quality.DefaultAcceptThreshold
	}
	if o.StrongMatch <= 0 {
		o.StrongMatch = templates.DefaultStrongMatch
	}
	if o.MaxConcurrency <= 0 {
		o.MaxConcurrency = len(types.DeliverableKinds)
	}
	if o.ExcerptChars <= 0 {
		o.ExcerptChars = 600
	}
	if o.MinDocumentChars <= 0 {
		o.MinDocumentChars = 2000
	}
	if o.DeliverableAttempts <= 0 {
		o.DeliverableAttempts = 2
	}
	return o
}

// Pipeline is the generation orchestrator. It is safe for concurrent use;
// each call runs its own state machine.
type Pipeline struct {
	deps Deps
	opts Options
	log  *logger.Logger
}

// New creates a Pipeline.
func New(deps Deps, opts Options) *Pipeline {
	if deps.Catalog == nil {
		deps.Catalog = templates.DefaultCatalog()
	}
	return &Pipeline{deps: deps, opts: opts.withDefaults(), log: logger.OrNop(deps.Log)}
}

func (p *Pipeline) reporter() progress.Reporter {
	if p.deps.Reporter == nil {
		return progress.Nop{}
	}
	return p.deps.Reporter
}

// runProvider wraps the provider with a per-run usage tracker.
func (p *Pipeline) runProvider() (llm.Provider, *llm.UsageTracker) {
	tracker := &llm.UsageTracker{}
	if p.deps.Provider == nil {
		return nil, tracker
	}
	return llm.Chain(p.deps.Provider, llm.WithUsage(tracker)), tracker
}

// genericPattern stands in when the catalog is empty.
var genericPattern = types.ExpertPattern{
	ID:                "generic",
	Domain:            types.DomainBusiness,
	Name:              "Product Consultant",
	ReasoningTemplate: "You are a senior product consultant. Think through users, scope, risks and delivery before writing.\n\nProject context:\n" + expert.ContextPlaceholder,
}

// Generate runs the full state machine. It never fails: every failed step
// is replaced by its fallback and named in Suite.Fallbacks.
func (p *Pipeline) Generate(ctx context.Context, messages []types.ConversationMessage, brief string) *Suite {
	provider, tracker := p.runProvider()
	s := &Suite{RunID: uuid.NewString(), Fallbacks: []string{}}
	log := p.log.With("run_id", s.RunID)

	// ANALYZE
	s.enter(StateAnalyze)
	ar := analyzer.New(provider, p.deps.Model, log).Analyze(ctx, messages, brief)
	s.Profile = ar.Profile
	if ar.Fallback {
		s.fallback("analyze")
	}

	// SELECT_PATTERN
	s.enter(StateSelectPattern)
	pattern := genericPattern
	sel, ok := expert.NewSelector(p.deps.Repo).Select(types.JoinConversation(messages, brief))
	s.Domain = sel.Domain
	if ok {
		pattern = sel.Pattern
		if updated, err := p.deps.Repo.IncrementUsage(pattern.ID); err == nil {
			pattern = updated
		}
	} else {
		log.Warn("no expert pattern available, using generic pattern")
		s.fallback("select_pattern")
	}
	if sel.Defaulted {
		s.fallback("select_pattern:default_domain")
	}
	s.PatternID = pattern.ID

	// ENHANCE
	s.enter(StateEnhance)
	related := pattern.RelatedCorpusEntries
	if len(related) == 0 && ok && p.deps.Enhancer != nil {
		enhanced, err := p.deps.Enhancer.Enhance(ctx, pattern.ID)
		if err != nil {
			log.Warn("corpus enhancement failed, generating without examples", "error", err)
			s.fallback("enhance")
		} else {
			pattern = enhanced
			related = enhanced.RelatedCorpusEntries
		}
	}

	// GENERATE
	s.enter(StateGenerate)
	projectCtx := ProjectContext(s.Profile, brief)
	p.generateSections(ctx, provider, s, pattern, projectCtx, related, log)

	// EVALUATE
	s.enter(StateEvaluate)
	evaluator := quality.NewEvaluator(provider, p.deps.Model, log)
	ev := evaluator.Evaluate(ctx, s.Sections(), s.Profile)
	if ev.Fallback {
		s.fallback("evaluate")
	}
	s.Quality = ev.Metrics
	s.QualityHistory = []types.QualityMetrics{ev.Metrics}

	// OPTIMIZE: at most one pass per run.
	if !quality.Accepted(s.Quality, p.opts.AcceptThreshold) {
		s.Suggestions = quality.Suggestions(s.Quality)
		if len(quality.HighPriority(s.Suggestions)) > 0 {
			s.enter(StateOptimize)
			p.optimize(ctx, provider, s, evaluator, log)
		}
	}

	// ASSEMBLE
	s.enter(StateAssemble)
	outcomes := p.assemble(ctx, provider, s, projectCtx)
	for _, kind := range types.DeliverableKinds {
		out := outcomes[kind]
		if out.doc.FullContent == "" {
			out.doc = types.GeneratedDeliverable{Kind: kind, Title: deliverableTitles[kind], Fallback: true}
			out.doc.FullContent = FallbackDocument(kind, s.Profile, p.opts.MinDocumentChars)
			out.doc.SectionMap = SectionMap(kind, out.doc.FullContent)
		}
		if out.doc.Fallback {
			log.Warn("deliverable fell back to template", "kind", kind, "error", out.err)
			s.fallback("deliverable:" + string(kind))
		}
		s.Documents.set(out.doc)
	}

	s.enter(StateDone)
	s.Usage = tracker.Snapshot()
	p.record(s, history.ModeFull, &pattern, ok)
	log.Info("generation complete", "pattern", s.PatternID, "overall", s.Quality.OverallScore,
		"optimized", s.Optimized, "fallbacks", len(s.Fallbacks), "calls", s.Usage.Calls)
	return s
}

func (p *Pipeline) generateSections(ctx context.Context, provider llm.Provider, s *Suite, pattern types.ExpertPattern, projectCtx string, related []types.CorpusEntry, log *logger.Logger) {
	failed := types.SectionKinds
	var parsed map[types.SectionKind]types.PromptSection

	if provider == nil {
		log.Warn("text generation offline, using default prompts")
	} else {
		raw, err := llm.Generate(ctx, provider, llm.CompletionRequest{
			Model:       p.deps.Model,
			Messages:    generateMessages(pattern, projectCtx, related, p.opts.ExcerptChars),
			MaxTokens:   4096,
			Temperature: 0.4,
			JSONMode:    true,
			Stage:       "generate",
		})
		if err != nil {
			log.Warn("prompt generation failed, using default prompts", "error", err)
		} else {
			parsed, failed, _ = ParseSections(raw)
		}
	}

	for _, kind := range types.SectionKinds {
		if sec, ok := parsed[kind]; ok {
			if sec.Title == "" {
				sec.Title = sectionTitles[kind]
			}
			s.setSection(kind, sec)
		}
	}
	for _, kind := range failed {
		s.setSection(kind, FallbackSection(kind, s.Profile))
		s.fallback("generate:" + string(kind))
	}
}

func (p *Pipeline) optimize(ctx context.Context, provider llm.Provider, s *Suite, evaluator *quality.Evaluator, log *logger.Logger) {
	optimized, err := quality.NewOptimizer(provider, p.deps.Model, log).
		Optimize(ctx, s.Section(types.SectionRequirements), s.Suggestions)
	if err != nil {
		if !errors.Is(err, quality.ErrNothingToOptimize) {
			s.fallback("optimize")
		}
		return
	}
	s.setSection(types.SectionRequirements, optimized)
	s.Optimized = true

	ev := evaluator.Evaluate(ctx, s.Sections(), s.Profile)
	s.QualityHistory = append(s.QualityHistory, ev.Metrics)
	if ev.Fallback {
		s.fallback("evaluate:optimized")
		return
	}
	s.Quality = ev.Metrics
}

// record hands the run to the history recorder. Failures never reach the caller.
func (p *Pipeline) record(s *Suite, mode string, pattern *types.ExpertPattern, patternKnown bool) {
	if p.deps.Recorder == nil {
		return
	}
	result, err := json.Marshal(s)
	if err != nil {
		p.log.Error("encoding run result", "run_id", s.RunID, "error", err)
	}
	rec := history.RunRecord{
		Run: history.Run{
			ID:           s.RunID,
			PatternID:    s.PatternID,
			Domain:       s.Domain,
			ProjectType:  s.Profile.ProjectType,
			Mode:         mode,
			OverallScore: s.Quality.OverallScore,
			Optimized:    s.Optimized,
			Fallbacks:    s.Fallbacks,
			Usage:        s.Usage,
			Result:       result,
		},
		Quality: s.QualityHistory,
	}
	if patternKnown {
		snapshot := *pattern
		rec.Pattern = &snapshot
	}
	p.deps.Recorder.RecordRun(rec)
}
