package templates

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/promptsuite/internal/types"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	if c.Len() < 5 {
		t.Fatalf("expected at least 5 templates, got %d", c.Len())
	}
	for _, tmpl := range c.All() {
		if len(tmpl.VariableNames) == 0 || len(tmpl.Examples) == 0 {
			t.Errorf("template %s missing variables or examples", tmpl.ID)
		}
		for _, m := range variablePattern.FindAllStringSubmatch(tmpl.SystemTemplate+tmpl.UserTemplate, -1) {
			if !containsString(tmpl.VariableNames, m[1]) {
				t.Errorf("template %s uses undeclared variable %s", tmpl.ID, m[1])
			}
		}
	}
}

func TestNewCatalogIgnoresDuplicates(t *testing.T) {
	c := NewCatalog(types.PromptTemplate{ID: "a", Category: "x"}, types.PromptTemplate{ID: "a", Category: "y"})
	if c.Len() != 1 {
		t.Fatalf("expected 1 template, got %d", c.Len())
	}
	if got, _ := c.Get("a"); got.Category != "x" {
		t.Errorf("first registration should win, got %q", got.Category)
	}
}

func TestScoreComponents(t *testing.T) {
	tmpl := types.PromptTemplate{
		ID:           "t",
		Category:     "tech",
		Description:  "backend with search",
		UserTemplate: "include login",
		Tags:         []string{"react", "api"},
		Examples:     []string{"An E-Commerce Platform build"},
	}
	sig := Signals{
		TechnicalKeywords: []string{"react", "api", "backend", "react", "kafka"},
		Domains:           []types.Domain{types.DomainTech, types.DomainDesign},
		ProjectType:       "e-commerce platform",
		Features:          []string{"login", "search", "chat"},
	}
	m := Score(tmpl, sig)
	// 3 tech * 8 + 1 domain * 15 + 20 + 2 features * 2
	want := 24 + 15 + 20 + 4
	if m.Score != want {
		t.Errorf("score = %d, want %d (%s)", m.Score, want, m.Reason)
	}
	if len(m.MatchedKeywords) != 5 {
		t.Errorf("matched = %v", m.MatchedKeywords)
	}
}

func TestScoreCappedAt100(t *testing.T) {
	var kws []string
	for _, k := range []string{"react", "vue", "angular", "python", "java", "golang", "api", "rest", "graphql", "redis", "docker", "aws", "cloud"} {
		kws = append(kws, k)
	}
	tmpl := types.PromptTemplate{ID: "t", Category: "tech", Tags: kws}
	m := Score(tmpl, Signals{TechnicalKeywords: kws, Domains: []types.Domain{types.DomainTech}})
	if m.Score != 100 {
		t.Errorf("score = %d, want 100", m.Score)
	}
}

func TestScoreMonotonicInKeywords(t *testing.T) {
	for _, tmpl := range DefaultCatalog().All() {
		sig := Signals{ProjectType: "web application"}
		prev := Score(tmpl, sig).Score
		for _, kw := range []string{"react", "api", "mobile", "ai", "database"} {
			sig.TechnicalKeywords = append(sig.TechnicalKeywords, kw)
			got := Score(tmpl, sig).Score
			if got < prev {
				t.Fatalf("%s: score dropped from %d to %d after adding %q", tmpl.ID, prev, got, kw)
			}
			prev = got
		}
		for _, f := range []string{"login", "search", "dashboard"} {
			sig.Features = append(sig.Features, f)
			got := Score(tmpl, sig).Score
			if got < prev {
				t.Fatalf("%s: score dropped after adding feature %q", tmpl.ID, f)
			}
			prev = got
		}
	}
}

func TestRankStableTiesAndCap(t *testing.T) {
	var ts []types.PromptTemplate
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		ts = append(ts, types.PromptTemplate{ID: id, Category: "none"})
	}
	ranked := NewScorer(NewCatalog(ts...)).Rank(Signals{})
	if len(ranked) != 5 {
		t.Fatalf("expected 5 matches, got %d", len(ranked))
	}
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		if ranked[i].Template.ID != id {
			t.Errorf("rank %d = %s, want %s", i, ranked[i].Template.ID, id)
		}
	}
}

func TestRankFromConversation(t *testing.T) {
	sig := SignalsFromText("An e-commerce platform with a React frontend, an API backend, database and payment checkout")
	ranked := NewScorer(DefaultCatalog()).Rank(sig)
	if ranked[0].Template.ID != "system-architecture" {
		t.Errorf("top match = %s (%d), want system-architecture", ranked[0].Template.ID, ranked[0].Score)
	}
	if !IsStrong(ranked[0], DefaultStrongMatch) {
		t.Errorf("expected strong match, score %d", ranked[0].Score)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Error("matches not sorted by score")
		}
	}
}

func TestSignalsFromProfile(t *testing.T) {
	p := types.ProjectProfile{
		ProjectType:       "mobile app",
		PrimaryDomain:     types.DomainDesign,
		CoreValue:         "share photos with a social feed",
		TechnicalKeywords: []string{"Flutter", "flutter", "API"},
	}
	sig := SignalsFromProfile(p)
	if sig.Domains[0] != types.DomainDesign {
		t.Errorf("primary domain should come first, got %v", sig.Domains)
	}
	if len(sig.TechnicalKeywords) != 2 {
		t.Errorf("keywords should be deduplicated, got %v", sig.TechnicalKeywords)
	}
	if !containsString(sig.Features, "feed") {
		t.Errorf("features = %v", sig.Features)
	}
}

func TestFillSubstitutesAndMarksMissing(t *testing.T) {
	tmpl := types.PromptTemplate{
		ID:             "t",
		SystemTemplate: "Build a {PROJECT_TYPE} for {TARGET_USERS}.",
		UserTemplate:   "Stack: {TECH_STACK}. Again {PROJECT_TYPE}. Keep {{project_context}}.",
		VariableNames:  []string{"PROJECT_TYPE", "TARGET_USERS", "TECH_STACK"},
	}
	f := Fill(tmpl, map[string]string{"PROJECT_TYPE": "todo app", "TARGET_USERS": "  "})
	if f.System != "Build a todo app for [NEEDS INPUT: TARGET_USERS]." {
		t.Errorf("system = %q", f.System)
	}
	if !strings.Contains(f.User, "[NEEDS INPUT: TECH_STACK]") || !strings.Contains(f.User, "Again todo app") {
		t.Errorf("user = %q", f.User)
	}
	if !strings.Contains(f.User, "{{project_context}}") {
		t.Error("lowercase placeholders must be left alone")
	}
	if f.Complete() || len(f.Missing) != 2 || f.Missing[0] != "TARGET_USERS" {
		t.Errorf("missing = %v", f.Missing)
	}
}

func TestValuesFromProfileOmitsEmpty(t *testing.T) {
	v := ValuesFromProfile(types.ProjectProfile{ProjectType: "todo", ComplexityLevel: types.ComplexitySimple})
	if v["PROJECT_TYPE"] != "todo" || v["COMPLEXITY"] != "simple" {
		t.Errorf("values = %v", v)
	}
	if _, ok := v["TECH_STACK"]; ok {
		t.Error("empty tech stack should be omitted")
	}
}

func TestRecommendRoute(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r, DefaultCatalog(), DefaultStrongMatch)

	body := `{"messages":[{"role":"user","content":"React frontend with an API backend"}],"project_brief":"web application"}`
	req := httptest.NewRequest(http.MethodPost, "/api/templates/recommend", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp recommendResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Matches) == 0 || len(resp.Matches) > 5 {
		t.Errorf("unexpected match count %d", len(resp.Matches))
	}

	req = httptest.NewRequest(http.MethodPost, "/api/templates/recommend", strings.NewReader(`{}`))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty request status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/templates/nope", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown template status = %d", w.Code)
	}
}
