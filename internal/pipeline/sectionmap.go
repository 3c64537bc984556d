package pipeline

import (
	"regexp"
	"strings"

	"github.com/ziadkadry99/promptsuite/internal/types"
)

// ExpectedSection is one heading searched for in a deliverable. Names holds
// the English heading first, then aliases and the Chinese heading.
type ExpectedSection struct {
	Key      string
	Names    []string
	Fallback string
}

var expectedSections = map[types.DeliverableKind][]ExpectedSection{
	types.KindRequirements: {
		{"product_overview", []string{"Product Overview", "Overview", "产品概述"},
			"The {PROJECT_TYPE} serves {TARGET_USERS}. Its core value is to {CORE_VALUE}. The first release focuses on the smallest feature set that proves this value, and later releases extend it based on measured usage."},
		{"target_users", []string{"Target Users", "User Personas", "目标用户"},
			"Primary users are {TARGET_USERS}. For each persona document their goals, the frequency of use, the devices they rely on and the pain points the product removes. Secondary users such as administrators and support staff are listed separately."},
		{"functional_requirements", []string{"Functional Requirements", "Features", "功能需求"},
			"Describe every user-facing capability as a user story with a priority. Cover account management, the core workflow that delivers the value, notifications, search and reporting. Each story names the actor, the action and the expected outcome."},
		{"non_functional_requirements", []string{"Non-Functional Requirements", "Quality Attributes", "非功能需求"},
			"Define targets for performance, availability, security, privacy and accessibility. Complexity is rated {COMPLEXITY}, so capacity planning should address: {MAIN_CHALLENGES}."},
		{"acceptance_criteria", []string{"Acceptance Criteria", "Success Metrics", "验收标准"},
			"Every requirement has a testable acceptance criterion written as given, when, then. Release readiness is measured by activation rate, task completion rate and user satisfaction."},
	},
	types.KindTechnical: {
		{"architecture_design", []string{"Architecture Design", "System Architecture", "Architecture", "架构设计", "系统架构"},
			"The {PROJECT_TYPE} uses a layered architecture: a client application, a stateless API tier and a persistence tier. Components communicate over versioned HTTP APIs, and background work runs in a queue-backed worker pool so user requests stay fast."},
		{"technology_stack", []string{"Technology Stack", "Tech Stack", "技术栈"},
			"Candidate technologies: {TECH_STACK}. Each choice is justified by team familiarity, ecosystem maturity and operating cost, and alternatives are recorded for later review."},
		{"data_model", []string{"Data Model", "Database Design", "数据模型"},
			"List the core entities, their relationships and ownership. Identify which data is personal, how long it is retained and how it is backed up and restored."},
		{"api_design", []string{"API Design", "Interfaces", "接口设计"},
			"Define resource-oriented endpoints with request and response schemas, error codes, pagination and authentication. Breaking changes require a new API version."},
		{"deployment", []string{"Deployment", "Infrastructure", "部署方案"},
			"Describe environments, the CI/CD pipeline, infrastructure as code, monitoring, alerting and the rollback procedure. Scaling must address: {MAIN_CHALLENGES}."},
	},
	types.KindDesign: {
		{"design_principles", []string{"Design Principles", "设计原则"},
			"The design for the {PROJECT_TYPE} is clear, consistent and forgiving. Every screen has one primary action, and the interface reinforces the core value: {CORE_VALUE}."},
		{"user_experience", []string{"User Experience", "User Journeys", "用户体验"},
			"Map the end-to-end journeys of {TARGET_USERS}, from first visit through onboarding to the core workflow. Identify friction points and the moments where the product must build trust."},
		{"visual_design", []string{"Visual Design", "Visual Style", "视觉设计"},
			"Define the colour palette, typography scale, spacing grid, iconography and imagery. Components are captured in a shared design system with documented states."},
		{"interaction_design", []string{"Interaction Design", "Interactions", "交互设计"},
			"Specify navigation, feedback for every user action, loading and empty states, error recovery and motion guidelines. Interactions behave the same on every supported device."},
		{"accessibility", []string{"Accessibility", "无障碍"},
			"Target WCAG 2.1 AA: sufficient contrast, keyboard navigation, screen reader labels, scalable text and captions for media."},
	},
	types.KindProjectPlan: {
		{"project_scope", []string{"Project Scope", "Scope", "项目范围"},
			"The project delivers a {PROJECT_TYPE} for {TARGET_USERS}. In scope: the features needed to {CORE_VALUE}. Out of scope items are listed explicitly to protect the schedule."},
		{"milestones", []string{"Milestones", "里程碑"},
			"1. Discovery and requirements sign-off. 2. Design approval. 3. First working increment. 4. Feature complete. 5. Launch and hand-over. Each milestone has exit criteria."},
		{"timeline", []string{"Timeline", "Schedule", "时间规划"},
			"Work is planned in two-week sprints. Complexity is rated {COMPLEXITY}; the schedule includes buffer for integration, testing and stakeholder review."},
		{"resources", []string{"Resources", "Team", "资源配置"},
			"The team includes a product owner, a designer, engineers and QA. Budget covers people, infrastructure and third-party services, reviewed at every milestone."},
		{"risk_management", []string{"Risk Management", "Risks", "风险管理"},
			"Known risks: {MAIN_CHALLENGES}. Each risk has a likelihood, an impact, an owner and a mitigation plan, tracked in a risk register reviewed weekly."},
	},
}

// ExpectedSections returns the headings searched for in a deliverable.
func ExpectedSections(kind types.DeliverableKind) []ExpectedSection {
	return expectedSections[kind]
}

func (s ExpectedSection) fallbackBody(p types.ProjectProfile) string {
	challenges := "scale, security and schedule"
	if len(p.MainChallenges) > 0 {
		challenges = strings.Join(p.MainChallenges, ", ")
	}
	stack := "a mainstream web stack"
	if len(p.TechnicalKeywords) > 0 {
		stack = strings.Join(p.TechnicalKeywords, ", ")
	}
	return strings.NewReplacer(
		"{PROJECT_TYPE}", p.ProjectType,
		"{TARGET_USERS}", orDefault(p.TargetUsers, "general users"),
		"{CORE_VALUE}", strings.TrimSuffix(orDefault(p.CoreValue, "solve the user's core problem"), "."),
		"{COMPLEXITY}", string(p.ComplexityLevel),
		"{MAIN_CHALLENGES}", challenges,
		"{TECH_STACK}", stack,
	).Replace(s.Fallback)
}

var headingPattern = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+(.+?)[ \t#]*$`)

// numbering strips "1.", "2)", "一、" style prefixes from headings.
var numbering = regexp.MustCompile(`^(?:\d+(?:\.\d+)*[.)]?|[一二三四五六七八九十]+、)\s*`)

type heading struct {
	level      int
	title      string
	start, end int
}

// SectionMap extracts the expected sections of a deliverable. A heading
// matches when, numbering removed, it starts with one of the section's
// names. Each section runs from its heading to the next heading of the same
// or a higher level.
// Every expected key is present; missing sections map to "".
func SectionMap(kind types.DeliverableKind, content string) map[string]string {
	var hs []heading
	for _, m := range headingPattern.FindAllStringSubmatchIndex(content, -1) {
		title := strings.ToLower(strings.TrimSpace(content[m[4]:m[5]]))
		title = strings.Trim(numbering.ReplaceAllString(title, ""), "*:： ")
		hs = append(hs, heading{level: m[3] - m[2], title: title, start: m[0], end: m[1]})
	}

	out := make(map[string]string)
	used := make([]bool, len(hs))
	for _, sec := range ExpectedSections(kind) {
		out[sec.Key] = ""
		for i, h := range hs {
			if used[i] || !matchesAny(h.title, sec.Names) {
				continue
			}
			used[i] = true
			end := len(content)
			for _, next := range hs[i+1:] {
				if next.level <= h.level {
					end = next.start
					break
				}
			}
			out[sec.Key] = strings.TrimSpace(content[h.end:end])
			break
		}
	}
	return out
}

func matchesAny(title string, names []string) bool {
	for _, n := range names {
		if strings.HasPrefix(title, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
