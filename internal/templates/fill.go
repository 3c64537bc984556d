package templates

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ziadkadry99/promptsuite/internal/types"
)

var variablePattern = regexp.MustCompile(`\{([A-Z][A-Z0-9_]*)\}`)

// Placeholder is substituted for variables that have no value. Consumers
// detect incomplete prompts by searching for PlaceholderPrefix.
func Placeholder(name string) string {
	return fmt.Sprintf("[NEEDS INPUT: %s]", name)
}

// PlaceholderPrefix starts every Placeholder.
const PlaceholderPrefix = "[NEEDS INPUT:"

// Filled is a template with its variables substituted.
type Filled struct {
	TemplateID string   `json:"template_id"`
	System     string   `json:"system"`
	User       string   `json:"user"`
	Missing    []string `json:"missing"`
}

// Fill substitutes every {VARIABLE} in t from values.
func Fill(t types.PromptTemplate, values map[string]string) Filled {
	missing := make(map[string]bool)
	replace := func(s string) string {
		return variablePattern.ReplaceAllStringFunc(s, func(tok string) string {
			name := tok[1 : len(tok)-1]
			if v := strings.TrimSpace(values[name]); v != "" {
				return v
			}
			missing[name] = true
			return Placeholder(name)
		})
	}
	f := Filled{
		TemplateID: t.ID,
		System:     replace(t.SystemTemplate),
		User:       replace(t.UserTemplate),
		Missing:    []string{},
	}
	for _, name := range t.VariableNames {
		if missing[name] {
			f.Missing = append(f.Missing, name)
			delete(missing, name)
		}
	}
	for _, m := range variablePattern.FindAllStringSubmatch(t.SystemTemplate+t.UserTemplate, -1) {
		if missing[m[1]] {
			f.Missing = append(f.Missing, m[1])
			delete(missing, m[1])
		}
	}
	return f
}

// Complete reports whether no placeholder remains.
func (f Filled) Complete() bool { return len(f.Missing) == 0 }

// ValuesFromProfile extracts variable values from a profile. Empty values are
// omitted so they become placeholders.
func ValuesFromProfile(p types.ProjectProfile) map[string]string {
	values := map[string]string{
		"PROJECT_TYPE":    p.ProjectType,
		"TARGET_USERS":    p.TargetUsers,
		"CORE_VALUE":      p.CoreValue,
		"COMPLEXITY":      string(p.ComplexityLevel),
		"DOMAIN":          string(p.PrimaryDomain),
		"TECH_STACK":      strings.Join(p.TechnicalKeywords, ", "),
		"BUSINESS_GOALS":  strings.Join(p.BusinessKeywords, ", "),
		"MAIN_CHALLENGES": strings.Join(p.MainChallenges, "; "),
	}
	features := SignalsFromProfile(p).Features
	values["FEATURES"] = strings.Join(features, ", ")
	for k, v := range values {
		if strings.TrimSpace(v) == "" {
			delete(values, k)
		}
	}
	return values
}
