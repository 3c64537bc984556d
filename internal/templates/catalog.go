// Package templates holds the reusable prompt template catalog, ranks
// templates against a project, and fills their variables.
package templates

import "github.com/ziadkadry99/promptsuite/internal/types"

// Catalog is a read-only, ordered set of templates. Order is registration
// order and breaks score ties.
type Catalog struct {
	templates []types.PromptTemplate
	byID      map[string]int
}

// NewCatalog builds a catalog. Later templates with a duplicate ID are ignored.
func NewCatalog(ts ...types.PromptTemplate) *Catalog {
	c := &Catalog{byID: make(map[string]int, len(ts))}
	for _, t := range ts {
		if _, dup := c.byID[t.ID]; dup {
			continue
		}
		c.byID[t.ID] = len(c.templates)
		c.templates = append(c.templates, t)
	}
	return c
}

// All returns the templates in registration order.
func (c *Catalog) All() []types.PromptTemplate {
	out := make([]types.PromptTemplate, len(c.templates))
	copy(out, c.templates)
	return out
}

// Get returns the template with the given ID.
func (c *Catalog) Get(id string) (types.PromptTemplate, bool) {
	i, ok := c.byID[id]
	if !ok {
		return types.PromptTemplate{}, false
	}
	return c.templates[i], true
}

// Len returns the number of templates.
func (c *Catalog) Len() int { return len(c.templates) }

// DefaultCatalog returns the built-in templates.
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultTemplates...)
}

var defaultTemplates = []types.PromptTemplate{
	{
		ID:          "product-requirements",
		Category:    "business",
		Description: "Product requirements document covering users, market, pricing and a prioritized feature list",
		SystemTemplate: "You are a senior product manager. Write a product requirements document for a {PROJECT_TYPE}. " +
			"Focus on {TARGET_USERS} and the core value: {CORE_VALUE}.",
		UserTemplate: "Project: {PROJECT_TYPE}\nTarget users: {TARGET_USERS}\nBusiness goals: {BUSINESS_GOALS}\n" +
			"Key features: {FEATURES}\nChallenges: {MAIN_CHALLENGES}\n\nProduce user stories, acceptance criteria, a login and payment flow if relevant, and success metrics.",
		VariableNames: []string{"PROJECT_TYPE", "TARGET_USERS", "CORE_VALUE", "BUSINESS_GOALS", "FEATURES", "MAIN_CHALLENGES"},
		Tags:          []string{"business", "requirements", "product", "market", "payment", "saas"},
		Examples:      []string{"PRD for a SaaS platform", "requirements for an e-commerce platform"},
	},
	{
		ID:          "system-architecture",
		Category:    "tech",
		Description: "Technical architecture for web backends: api design, database schema, react or vue frontend, cloud deployment",
		SystemTemplate: "You are a principal software architect. Design the architecture of a {PROJECT_TYPE} " +
			"using {TECH_STACK}. Complexity: {COMPLEXITY}.",
		UserTemplate: "Describe services, api contracts, database schema, authentication, search and notification subsystems, " +
			"deployment and observability for: {CORE_VALUE}\nKnown challenges: {MAIN_CHALLENGES}",
		VariableNames: []string{"PROJECT_TYPE", "TECH_STACK", "COMPLEXITY", "CORE_VALUE", "MAIN_CHALLENGES"},
		Tags:          []string{"tech", "architecture", "api", "backend", "database", "react", "docker", "cloud", "microservice"},
		Examples:      []string{"architecture for a web application", "backend design for an e-commerce platform", "saas platform architecture"},
	},
	{
		ID:             "mobile-app-blueprint",
		Category:       "tech",
		Description:    "Mobile app blueprint for ios, android or flutter clients with offline sync and push notification",
		SystemTemplate: "You are a lead mobile engineer. Plan a {PROJECT_TYPE} for {TARGET_USERS} built with {TECH_STACK}.",
		UserTemplate: "Cover navigation, offline storage, push notification, login, profile and analytics for: {CORE_VALUE}\n" +
			"Challenges: {MAIN_CHALLENGES}",
		VariableNames: []string{"PROJECT_TYPE", "TARGET_USERS", "TECH_STACK", "CORE_VALUE", "MAIN_CHALLENGES"},
		Tags:          []string{"tech", "mobile", "ios", "android", "flutter", "design"},
		Examples:      []string{"blueprint for a mobile app", "fitness mobile app"},
	},
	{
		ID:             "ux-design-brief",
		Category:       "design",
		Description:    "UX and visual design brief with personas, user flows, wireframes and a component library",
		SystemTemplate: "You are a senior UX designer. Create a design brief for a {PROJECT_TYPE} used by {TARGET_USERS}.",
		UserTemplate: "Define personas, journeys for {FEATURES}, dashboard and search layouts, accessibility and a design system.\n" +
			"Core value to express visually: {CORE_VALUE}",
		VariableNames: []string{"PROJECT_TYPE", "TARGET_USERS", "FEATURES", "CORE_VALUE"},
		Tags:          []string{"design", "ux", "ui", "wireframe", "prototype", "frontend"},
		Examples:      []string{"design brief for a social platform", "ux for a productivity tool"},
	},
	{
		ID:             "project-delivery-plan",
		Category:       "management",
		Description:    "Project delivery plan with milestones, team roles, budget, risk register and agile sprint cadence",
		SystemTemplate: "You are an experienced delivery manager. Plan the delivery of a {PROJECT_TYPE} of {COMPLEXITY} complexity.",
		UserTemplate: "Produce phases, milestones, a RACI for the team, a risk register covering {MAIN_CHALLENGES}, " +
			"and a calendar of sprints delivering {FEATURES}.",
		VariableNames: []string{"PROJECT_TYPE", "COMPLEXITY", "MAIN_CHALLENGES", "FEATURES"},
		Tags:          []string{"management", "planning", "agile", "milestone", "risk"},
		Examples:      []string{"delivery plan for a web application", "rollout plan for a data platform"},
	},
	{
		ID:             "ai-product-spec",
		Category:       "tech",
		Description:    "Specification for an ai or machine learning product: data pipeline, model serving, evaluation and recommendation features",
		SystemTemplate: "You are an ML product lead. Specify a {PROJECT_TYPE} that uses {TECH_STACK} to deliver {CORE_VALUE}.",
		UserTemplate: "Cover data collection, model choice, evaluation, chat or recommendation UX, cost control and safety.\n" +
			"Business goals: {BUSINESS_GOALS}\nChallenges: {MAIN_CHALLENGES}",
		VariableNames: []string{"PROJECT_TYPE", "TECH_STACK", "CORE_VALUE", "BUSINESS_GOALS", "MAIN_CHALLENGES"},
		Tags:          []string{"tech", "ai", "machine learning", "python", "api", "business"},
		Examples:      []string{"spec for an ai application", "chatbot for customer support"},
	},
}
