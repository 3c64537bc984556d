package types

import "time"

// Role identifies who authored a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationMessage is one turn of the upstream chat. Read-only.
type ConversationMessage struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Domain is one of the professional domains a project is classified into.
type Domain string

const (
	DomainBusiness   Domain = "business"
	DomainTech       Domain = "tech"
	DomainDesign     Domain = "design"
	DomainManagement Domain = "management"
)

// Domains lists every domain in declaration order. Ties are broken by this order.
var Domains = []Domain{DomainBusiness, DomainTech, DomainDesign, DomainManagement}

// Valid reports whether d is a known domain.
func (d Domain) Valid() bool {
	for _, known := range Domains {
		if d == known {
			return true
		}
	}
	return false
}

// Complexity is an ordinal estimate of project size.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
	ComplexityExpert  Complexity = "expert"
)

// Rank returns the ordinal position of c, 0 for simple through 3 for expert.
func (c Complexity) Rank() int {
	switch c {
	case ComplexityMedium:
		return 1
	case ComplexityComplex:
		return 2
	case ComplexityExpert:
		return 3
	default:
		return 0
	}
}

// ProjectProfile is the structured summary of a conversation. Never mutated
// after creation.
type ProjectProfile struct {
	ProjectType       string     `json:"project_type"`
	ComplexityLevel   Complexity `json:"complexity_level"`
	PrimaryDomain     Domain     `json:"primary_domain"`
	TargetUsers       string     `json:"target_users"`
	CoreValue         string     `json:"core_value"`
	MainChallenges    []string   `json:"main_challenges"`
	TechnicalKeywords []string   `json:"technical_keywords"`
	BusinessKeywords  []string   `json:"business_keywords"`
	CompletenessScore float64    `json:"completeness_score"`
	ClarityScore      float64    `json:"clarity_score"`
	InnovationScore   float64    `json:"innovation_score"`
}

// PromptTemplate is a static catalog entry with {VARIABLE} placeholders.
type PromptTemplate struct {
	ID             string   `json:"id"`
	Category       string   `json:"category"`
	Description    string   `json:"description"`
	SystemTemplate string   `json:"system_template"`
	UserTemplate   string   `json:"user_template"`
	VariableNames  []string `json:"variable_names"`
	Tags           []string `json:"tags"`
	Examples       []string `json:"examples"`
}

// TemplateMatch is a scored template for one request.
type TemplateMatch struct {
	Template        PromptTemplate `json:"template"`
	Score           int            `json:"score"`
	MatchedKeywords []string       `json:"matched_keywords"`
	Reason          string         `json:"reason"`
}

// CorpusEntry is one harvested example prompt.
type CorpusEntry struct {
	Title              string   `json:"title" yaml:"title"`
	Content            string   `json:"content" yaml:"content"`
	Category           string   `json:"category" yaml:"category"`
	Source             string   `json:"source" yaml:"source"`
	Tags               []string `json:"tags" yaml:"tags"`
	ExtractedVariables []string `json:"extracted_variables" yaml:"extracted_variables"`
}

// ExpertPattern is a domain-scoped reasoning template.
type ExpertPattern struct {
	ID                   string        `json:"id"`
	Domain               Domain        `json:"domain"`
	Name                 string        `json:"name"`
	ReasoningTemplate    string        `json:"reasoning_template"`
	QualityScore         float64       `json:"quality_score"`
	UsageCount           int           `json:"usage_count"`
	SuccessRate          float64       `json:"success_rate"`
	RatingHistory        []int         `json:"rating_history"`
	RelatedCorpusEntries []CorpusEntry `json:"related_corpus_entries"`
	LastUpdated          time.Time     `json:"last_updated"`
}

// Weight is the selection weight used to rank patterns within a domain.
func (p ExpertPattern) Weight() float64 {
	return p.QualityScore * p.SuccessRate
}

// DeliverableKind names one of the four generated documents.
type DeliverableKind string

const (
	KindRequirements DeliverableKind = "requirements"
	KindTechnical    DeliverableKind = "technical"
	KindDesign       DeliverableKind = "design"
	KindProjectPlan  DeliverableKind = "project_plan"
)

// DeliverableKinds lists the kinds in assembly order.
var DeliverableKinds = []DeliverableKind{KindRequirements, KindTechnical, KindDesign, KindProjectPlan}

// GeneratedDeliverable is one generated document. Immutable once returned.
type GeneratedDeliverable struct {
	Kind        DeliverableKind   `json:"kind"`
	Title       string            `json:"title"`
	FullContent string            `json:"full_content"`
	SectionMap  map[string]string `json:"section_map"`
	Fallback    bool              `json:"fallback"`
}

// QualityMetrics scores a generation run on five axes, each in [0,10].
type QualityMetrics struct {
	Clarity         float64 `json:"clarity"`
	Completeness    float64 `json:"completeness"`
	Professionalism float64 `json:"professionalism"`
	Actionability   float64 `json:"actionability"`
	Innovation      float64 `json:"innovation"`
	OverallScore    float64 `json:"overall_score"`
}

// Priority ranks an optimization suggestion.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// OptimizationSuggestion is derived from quality thresholds.
type OptimizationSuggestion struct {
	Type           string   `json:"type"`
	Description    string   `json:"description"`
	Priority       Priority `json:"priority"`
	Implementation string   `json:"implementation"`
}

// UsageResult reports how a generated suite worked out for the user.
type UsageResult string

const (
	UsageSuccess UsageResult = "success"
	UsagePartial UsageResult = "partial"
	UsageFailed  UsageResult = "failed"
)

// Valid reports whether r is a known usage result.
func (r UsageResult) Valid() bool {
	return r == UsageSuccess || r == UsagePartial || r == UsageFailed
}

// UserFeedback is an append-only feedback record.
type UserFeedback struct {
	ID          string      `json:"id"`
	TargetID    string      `json:"target_id"`
	SessionID   string      `json:"session_id"`
	Rating      int         `json:"rating"`
	FreeText    string      `json:"free_text,omitempty"`
	UsageResult UsageResult `json:"usage_result"`
	Suggestions []string    `json:"suggestions"`
	CreatedAt   time.Time   `json:"created_at"`
}

// SectionKind names one of the four generated prompt sections.
type SectionKind string

const (
	SectionRequirements SectionKind = "requirements_prompt"
	SectionTechnical    SectionKind = "technical_prompt"
	SectionDesign       SectionKind = "design_prompt"
	SectionManagement   SectionKind = "management_prompt"
)

// SectionKinds lists the prompt sections in assembly order.
var SectionKinds = []SectionKind{SectionRequirements, SectionTechnical, SectionDesign, SectionManagement}

// Domain returns the professional domain a section speaks for.
func (k SectionKind) Domain() Domain {
	switch k {
	case SectionTechnical:
		return DomainTech
	case SectionDesign:
		return DomainDesign
	case SectionManagement:
		return DomainManagement
	default:
		return DomainBusiness
	}
}

// PromptSection is one of the four generated prompts.
type PromptSection struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Prompt      string `json:"prompt"`
	UsageGuide  string `json:"usage_guide"`
	Fallback    bool   `json:"fallback"`
}
