// Package pipeline coordinates analysis, pattern selection, corpus
// grounding, generation, evaluation and document assembly into one total
// operation: every run returns a complete suite.
package pipeline

import (
	"github.com/ziadkadry99/promptsuite/internal/llm"
	"github.com/ziadkadry99/promptsuite/internal/templates"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

// State is one step of the generation state machine.
type State string

const (
	StateAnalyze       State = "ANALYZE"
	StateSelectPattern State = "SELECT_PATTERN"
	StateEnhance       State = "ENHANCE"
	StateGenerate      State = "GENERATE"
	StateEvaluate      State = "EVALUATE"
	StateOptimize      State = "OPTIMIZE"
	StateAssemble      State = "ASSEMBLE"
	StateDone          State = "DONE"
)

// Documents holds the four generated deliverables.
type Documents struct {
	Requirements types.GeneratedDeliverable `json:"requirements"`
	Technical    types.GeneratedDeliverable `json:"technical"`
	Design       types.GeneratedDeliverable `json:"design"`
	ProjectPlan  types.GeneratedDeliverable `json:"project_plan"`
}

// Get returns the deliverable of kind.
func (d *Documents) Get(kind types.DeliverableKind) types.GeneratedDeliverable {
	return *d.slot(kind)
}

func (d *Documents) set(doc types.GeneratedDeliverable) {
	*d.slot(doc.Kind) = doc
}

func (d *Documents) slot(kind types.DeliverableKind) *types.GeneratedDeliverable {
	switch kind {
	case types.KindTechnical:
		return &d.Technical
	case types.KindDesign:
		return &d.Design
	case types.KindProjectPlan:
		return &d.ProjectPlan
	default:
		return &d.Requirements
	}
}

// All returns the deliverables in assembly order.
func (d *Documents) All() []types.GeneratedDeliverable {
	out := make([]types.GeneratedDeliverable, 0, len(types.DeliverableKinds))
	for _, k := range types.DeliverableKinds {
		out = append(out, d.Get(k))
	}
	return out
}

// Suite is the result of one generation run.
type Suite struct {
	RunID          string                         `json:"run_id"`
	Profile        types.ProjectProfile           `json:"profile"`
	PatternID      string                         `json:"pattern_id"`
	Domain         types.Domain                   `json:"domain"`
	Requirements   types.PromptSection            `json:"requirements_prompt"`
	Technical      types.PromptSection            `json:"technical_prompt"`
	Design         types.PromptSection            `json:"design_prompt"`
	Management     types.PromptSection            `json:"management_prompt"`
	Documents      Documents                      `json:"generated_documents"`
	Quality        types.QualityMetrics           `json:"quality"`
	QualityHistory []types.QualityMetrics         `json:"quality_history"`
	Suggestions    []types.OptimizationSuggestion `json:"suggestions"`
	Optimized      bool                           `json:"optimized"`
	// Fallbacks names every fallback tier taken, such as "analyze" or
	// "deliverable:design". Empty means the run fully succeeded.
	Fallbacks []string  `json:"fallbacks"`
	States    []State   `json:"states"`
	Usage     llm.Usage `json:"usage"`
}

// Section returns the prompt section of kind.
func (s *Suite) Section(kind types.SectionKind) types.PromptSection {
	return *s.sectionSlot(kind)
}

// Sections returns the four prompt sections keyed by kind.
func (s *Suite) Sections() map[types.SectionKind]types.PromptSection {
	out := make(map[types.SectionKind]types.PromptSection, len(types.SectionKinds))
	for _, k := range types.SectionKinds {
		out[k] = s.Section(k)
	}
	return out
}

func (s *Suite) setSection(kind types.SectionKind, sec types.PromptSection) {
	*s.sectionSlot(kind) = sec
}

func (s *Suite) sectionSlot(kind types.SectionKind) *types.PromptSection {
	switch kind {
	case types.SectionTechnical:
		return &s.Technical
	case types.SectionDesign:
		return &s.Design
	case types.SectionManagement:
		return &s.Management
	default:
		return &s.Requirements
	}
}

func (s *Suite) fallback(tier string) {
	s.Fallbacks = append(s.Fallbacks, tier)
}

func (s *Suite) enter(st State) {
	s.States = append(s.States, st)
}

// SimpleResult is the result of the template-first generation mode. When
// no template is a strong match, Suite holds the full pipeline result.
type SimpleResult struct {
	RunID   string               `json:"run_id"`
	Mode    string               `json:"mode"`
	Match   *types.TemplateMatch `json:"match,omitempty"`
	Prompt  *templates.Filled    `json:"prompt,omitempty"`
	Profile types.ProjectProfile `json:"profile"`
	Suite   *Suite               `json:"suite,omitempty"`
}
