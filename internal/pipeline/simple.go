package pipeline

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/ziadkadry99/promptsuite/internal/analyzer"
	"github.com/ziadkadry99/promptsuite/internal/history"
	"github.com/ziadkadry99/promptsuite/internal/templates"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

// GenerateSimple is the template-first mode. When the best catalog template
// is a strong match it is filled from the profile and returned without the
// expert path; otherwise the full pipeline runs.
func (p *Pipeline) GenerateSimple(ctx context.Context, messages []types.ConversationMessage, brief string) *SimpleResult {
	text := types.JoinConversation(messages, brief)
	matches := templates.NewScorer(p.deps.Catalog).Rank(templates.SignalsFromText(text))

	if len(matches) == 0 || !templates.IsStrong(matches[0], p.opts.StrongMatch) {
		s := p.Generate(ctx, messages, brief)
		res := &SimpleResult{RunID: s.RunID, Mode: history.ModeFull, Profile: s.Profile, Suite: s}
		if len(matches) > 0 {
			res.Match = &matches[0]
		}
		return res
	}

	provider, tracker := p.runProvider()
	res := &SimpleResult{RunID: uuid.NewString(), Mode: history.ModeSimple}
	log := p.log.With("run_id", res.RunID)

	ar := analyzer.New(provider, p.deps.Model, log).Analyze(ctx, messages, brief)
	top := matches[0]
	filled := templates.Fill(top.Template, templates.ValuesFromProfile(ar.Profile))
	res.Match = &top
	res.Prompt = &filled
	res.Profile = ar.Profile

	fallbacks := []string{}
	if ar.Fallback {
		fallbacks = append(fallbacks, "analyze")
	}
	log.Info("simple generation complete", "template", top.Template.ID, "score", top.Score, "missing", len(filled.Missing))

	if p.deps.Recorder != nil {
		result, err := json.Marshal(res)
		if err != nil {
			log.Error("encoding run result", "error", err)
		}
		p.deps.Recorder.RecordRun(history.RunRecord{Run: history.Run{
			ID:          res.RunID,
			Domain:      ar.Profile.PrimaryDomain,
			ProjectType: ar.Profile.ProjectType,
			Mode:        history.ModeSimple,
			Fallbacks:   fallbacks,
			Usage:       tracker.Snapshot(),
			Result:      result,
		}})
	}
	return res
}
