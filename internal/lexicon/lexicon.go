// Package lexicon holds the fixed keyword vocabularies used to classify
// conversations and match templates and corpus entries.
package lexicon

import (
	"strings"

	"github.com/ziadkadry99/promptsuite/internal/types"
)

// DomainKeywords lists the keywords counted for each domain. Matching is
// case-insensitive substring counting.
var DomainKeywords = map[types.Domain][]string{
	types.DomainBusiness: {
		"business", "revenue", "market", "customer", "sales", "profit", "pricing",
		"payment", "monetiz", "startup", "commerce", "investor", "brand", "growth",
		"subscription",
	},
	types.DomainTech: {
		"api", "react", "vue", "angular", "backend", "frontend", "database", "server",
		"architecture", "framework", "algorithm", "microservice", "cloud", "deploy",
		"software", "technical", "python", "golang", "java", "docker", "kubernetes",
	},
	types.DomainDesign: {
		"design", "user interface", "ui/ux", "visual", "prototype", "wireframe",
		"layout", "typography", "figma", "user experience", "interaction", "color palette",
	},
	types.DomainManagement: {
		"management", "manager", "project plan", "timeline", "schedule", "milestone",
		"team", "budget", "risk", "stakeholder", "agile", "scrum", "sprint", "roadmap",
		"kpi",
	},
}

// CorpusCategories lists, per domain, the corpus categories accepted by
// exact membership.
var CorpusCategories = map[types.Domain][]string{
	types.DomainBusiness:   {"business", "marketing", "strategy", "sales"},
	types.DomainTech:       {"development", "coding", "technical"},
	types.DomainDesign:     {"design", "ui", "ux", "creative"},
	types.DomainManagement: {"management", "project", "planning", "productivity"},
}

// TechnicalKeywords are technology terms extracted into a profile.
var TechnicalKeywords = []string{
	"react", "vue", "angular", "next.js", "node.js", "python", "java", "golang",
	"typescript", "javascript", "api", "rest", "graphql", "database", "mysql",
	"postgresql", "mongodb", "redis", "docker", "kubernetes", "aws", "cloud",
	"microservice", "backend", "frontend", "mobile", "ios", "android", "flutter",
	"ai", "machine learning", "blockchain", "websocket", "payment",
}

// BusinessKeywords are business terms extracted into a profile.
var BusinessKeywords = []string{
	"revenue", "profit", "market", "customer", "user growth", "subscription",
	"pricing", "payment", "sales", "conversion", "retention", "b2b", "b2c",
	"saas", "e-commerce", "monetization", "roi", "brand",
}

// FeatureKeywords are functional features a project may mention.
var FeatureKeywords = []string{
	"login", "authentication", "search", "chat", "notification", "payment",
	"dashboard", "upload", "comment", "recommendation", "analytics", "report",
	"calendar", "map", "checkout", "cart", "profile", "messaging", "booking",
	"todo", "task", "sharing", "feed",
}

// ProjectType maps a project type name to the terms that indicate it.
type ProjectType struct {
	Name  string
	Terms []string
}

// ProjectTypes is checked in order; the first match wins.
var ProjectTypes = []ProjectType{
	{Name: "e-commerce platform", Terms: []string{"e-commerce", "ecommerce", "online store", "shop", "checkout"}},
	{Name: "productivity tool", Terms: []string{"todo", "task manager", "note taking", "to-do"}},
	{Name: "ai application", Terms: []string{"ai", "machine learning", "chatbot", "llm"}},
	{Name: "mobile app", Terms: []string{"mobile app", "ios", "android", "flutter"}},
	{Name: "saas platform", Terms: []string{"saas", "subscription", "multi-tenant"}},
	{Name: "social platform", Terms: []string{"social", "community", "feed", "followers"}},
	{Name: "education platform", Terms: []string{"course", "education", "learning", "student"}},
	{Name: "data platform", Terms: []string{"analytics", "data pipeline", "dashboard", "report"}},
	{Name: "web application", Terms: []string{"web app", "website", "web application", "platform"}},
}

// DefaultProjectType is used when no project type term matches.
const DefaultProjectType = "web application"

// CountDomains counts keyword occurrences per domain in text.
func CountDomains(text string) map[types.Domain]int {
	lower := strings.ToLower(text)
	counts := make(map[types.Domain]int, len(types.Domains))
	for _, d := range types.Domains {
		n := 0
		for _, kw := range DomainKeywords[d] {
			n += strings.Count(lower, kw)
		}
		counts[d] = n
	}
	return counts
}

// ClassifyDomain returns the domain with the highest keyword count. Ties go
// to the earlier domain in declaration order, so an all-zero count yields
// business.
func ClassifyDomain(text string) (types.Domain, map[types.Domain]int) {
	counts := CountDomains(text)
	best := types.DomainBusiness
	bestCount := -1
	for _, d := range types.Domains {
		if counts[d] > bestCount {
			best = d
			bestCount = counts[d]
		}
	}
	return best, counts
}

// DetectDomains returns every domain with at least one keyword hit, in
// declaration order.
func DetectDomains(text string) []types.Domain {
	counts := CountDomains(text)
	var out []types.Domain
	for _, d := range types.Domains {
		if counts[d] > 0 {
			out = append(out, d)
		}
	}
	return out
}

// FindTerms returns the terms present in text, in list order, deduplicated.
func FindTerms(text string, terms []string) []string {
	lower := strings.ToLower(text)
	var found []string
	seen := make(map[string]bool)
	for _, t := range terms {
		if seen[t] {
			continue
		}
		if HasTerm(lower, t) {
			found = append(found, t)
			seen[t] = true
		}
	}
	return found
}

// InferProjectType returns the first project type whose terms appear in text.
func InferProjectType(text string) string {
	lower := strings.ToLower(text)
	for _, pt := range ProjectTypes {
		for _, t := range pt.Terms {
			if HasTerm(lower, t) {
				return pt.Name
			}
		}
	}
	return DefaultProjectType
}

// HasTerm reports whether term occurs in lowerText. Terms of three letters
// or fewer must sit on word boundaries so "ai" does not match "email".
func HasTerm(lowerText, term string) bool {
	term = strings.ToLower(term)
	if len(term) > 3 {
		return strings.Contains(lowerText, term)
	}
	from := 0
	for {
		idx := strings.Index(lowerText[from:], term)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(term)
		if (start == 0 || !isWordByte(lowerText[start-1])) && (end == len(lowerText) || !isWordByte(lowerText[end])) {
			return true
		}
		from = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '_'
}
