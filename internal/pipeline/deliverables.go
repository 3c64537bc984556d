package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/promptsuite/internal/llm"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

// deliverableOutcome is the result of one deliverable task.
type deliverableOutcome struct {
	doc types.GeneratedDeliverable
	err error
}

// assemble generates the four deliverables concurrently. Each task retries
// and falls back on its own; a failure never affects its siblings, and the
// call returns only after every task finished.
func (p *Pipeline) assemble(ctx context.Context, provider llm.Provider, s *Suite, projectCtx string) map[types.DeliverableKind]deliverableOutcome {
	var (
		mu       sync.Mutex
		outcomes = make(map[types.DeliverableKind]deliverableOutcome, len(types.DeliverableKinds))
		done     int
	)

	reporter := p.reporter()
	reporter.Start(len(types.DeliverableKinds), "Generating deliverables")
	defer reporter.Finish()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.MaxConcurrency)
	for _, kind := range types.DeliverableKinds {
		section := s.Section(deliverableSection[kind])
		g.Go(func() error {
			out := p.generateDeliverable(gctx, provider, kind, section, s.Profile, projectCtx)
			mu.Lock()
			outcomes[kind] = out
			done++
			n := done
			mu.Unlock()
			reporter.Update(n, deliverableTitles[kind])
			// Errors stay in the outcome so siblings keep running.
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (p *Pipeline) generateDeliverable(ctx context.Context, provider llm.Provider, kind types.DeliverableKind, section types.PromptSection, profile types.ProjectProfile, projectCtx string) deliverableOutcome {
	title := deliverableTitles[kind]
	var lastErr error
	for attempt := 0; attempt < p.opts.DeliverableAttempts; attempt++ {
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}
		raw, err := llm.Generate(ctx, provider, llm.CompletionRequest{
			Model:       p.deps.Model,
			Messages:    deliverableMessages(kind, section, projectCtx, p.opts.MinDocumentChars),
			MaxTokens:   4096,
			Temperature: 0.5,
			Stage:       DeliverableStage(kind),
		})
		if err != nil {
			lastErr = err
			continue
		}
		content := strings.TrimSpace(raw)
		if n := utf8.RuneCountInString(content); n < p.opts.MinDocumentChars {
			lastErr = fmt.Errorf("%s too short: %d characters", kind, n)
			continue
		}
		return deliverableOutcome{doc: types.GeneratedDeliverable{
			Kind:        kind,
			Title:       title,
			FullContent: content,
			SectionMap:  SectionMap(kind, content),
		}}
	}

	content := FallbackDocument(kind, profile, p.opts.MinDocumentChars)
	return deliverableOutcome{
		doc: types.GeneratedDeliverable{
			Kind:        kind,
			Title:       title,
			FullContent: content,
			SectionMap:  SectionMap(kind, content),
			Fallback:    true,
		},
		err: lastErr,
	}
}

// DeliverableStage is the request stage label of a deliverable call.
func DeliverableStage(kind types.DeliverableKind) string {
	return "deliverable_" + string(kind)
}
