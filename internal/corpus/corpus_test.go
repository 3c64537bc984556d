package corpus

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/promptsuite/internal/db"
	"github.com/ziadkadry99/promptsuite/internal/embeddings"
	"github.com/ziadkadry99/promptsuite/internal/expert"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func entry(title, content, category string) types.CorpusEntry {
	return types.CorpusEntry{Title: title, Content: content, Category: category, Source: "test"}
}

func TestKeyUsesTitleAndContentPrefix(t *testing.T) {
	long := strings.Repeat("x", 100)
	a := entry("t", long+"tail one", "")
	b := entry("t", long+"tail two", "")
	if Key(a) != Key(b) {
		t.Error("entries sharing title and first 100 characters should collide")
	}
	if Key(a) == Key(entry("other", long, "")) {
		t.Error("different titles should not collide")
	}
}

func TestStoreAddDeduplicates(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	res, err := s.Add(ctx, []types.CorpusEntry{
		entry("Go API", "Design a REST api", "Development"),
		entry("Go API", "Design a REST api", "development"),
		entry("", "no title", "development"),
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if res.Added != 1 || res.Duplicates != 1 || res.Invalid != 1 {
		t.Errorf("Add result = %+v", res)
	}

	res, err = s.Add(ctx, []types.CorpusEntry{entry("Go API", "Design a REST api", "development")})
	if err != nil {
		t.Fatalf("second Add: %v", err)
	}
	if res.Added != 0 || res.Duplicates != 1 {
		t.Errorf("second Add result = %+v", res)
	}

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 1 || all[0].Category != "development" {
		t.Fatalf("All = %+v", all)
	}
	if all[0].Tags == nil {
		t.Error("tags should decode to an empty slice")
	}
}

func TestStoreListAndSearch(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	s.Add(ctx, []types.CorpusEntry{
		entry("Pitch deck", "Outline an investor pitch", "business"),
		entry("Schema review", "Review this database schema for indexes", "development"),
	})

	dev, err := s.List(ctx, "Development", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(dev) != 1 || dev[0].Title != "Schema review" {
		t.Errorf("List(development) = %+v", dev)
	}

	found, err := s.Search(ctx, "SCHEMA", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(found) != 1 || found[0].Title != "Schema review" {
		t.Errorf("Search = %+v", found)
	}

	n, _ := s.Count(ctx)
	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
}

func TestMatchByCategoryAndKeyword(t *testing.T) {
	entries := []types.CorpusEntry{
		entry("Sonnet", "Write a sonnet about the ocean", "poetry"),
		entry("Refactor", "Refactor this module", "coding"),
		entry("Service", "Split the backend into a microservice", "misc"),
	}
	got := Match(types.DomainTech, entries)
	if len(got) != 2 {
		t.Fatalf("Match = %+v, want 2 entries", got)
	}
	// Longest content first.
	if got[0].Title != "Service" || got[1].Title != "Refactor" {
		t.Errorf("order = %s, %s", got[0].Title, got[1].Title)
	}
}

func TestMatchCapsAndIsDeterministic(t *testing.T) {
	var entries []types.CorpusEntry
	for i := 0; i < 8; i++ {
		entries = append(entries, entry(
			"Prompt "+string(rune('a'+i)),
			strings.Repeat("deploy ", i+1),
			"development",
		))
	}
	first := Match(types.DomainTech, entries)
	second := Match(types.DomainTech, entries)
	if len(first) != expert.MaxRelatedCorpus {
		t.Fatalf("len = %d, want %d", len(first), expert.MaxRelatedCorpus)
	}
	for i := range first {
		if first[i].Title != second[i].Title {
			t.Fatalf("Match not deterministic at %d", i)
		}
	}
	if first[0].Title != "Prompt h" {
		t.Errorf("longest entry should rank first, got %s", first[0].Title)
	}
}

func TestMatchNoEntries(t *testing.T) {
	if got := Match(types.DomainDesign, nil); len(got) != 0 {
		t.Errorf("Match(nil) = %v", got)
	}
}

func TestEnhancerIsIdempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	s.Add(ctx, []types.CorpusEntry{
		entry("Wireframe", "Sketch a wireframe for onboarding", "design"),
		entry("Budget", "Plan the sprint budget", "planning"),
	})
	repo := expert.NewRepository(expert.DefaultPatterns()...)
	enh := NewEnhancer(repo, s, nil)

	p1, err := enh.Enhance(ctx, "design-lead")
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	p2, err := enh.Enhance(ctx, "design-lead")
	if err != nil {
		t.Fatalf("second Enhance: %v", err)
	}
	if len(p1.RelatedCorpusEntries) != 1 || len(p2.RelatedCorpusEntries) != 1 {
		t.Fatalf("related = %d then %d, want 1", len(p1.RelatedCorpusEntries), len(p2.RelatedCorpusEntries))
	}
	if p1.RelatedCorpusEntries[0].Title != "Wireframe" {
		t.Errorf("related = %+v", p1.RelatedCorpusEntries)
	}

	if _, err := enh.Enhance(ctx, "missing"); err == nil {
		t.Error("expected error for unknown pattern")
	}

	updated, err := enh.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(updated) != repo.Len() {
		t.Errorf("Refresh updated %d patterns, want %d", len(updated), repo.Len())
	}
	pm, _ := repo.Get("delivery-manager")
	if len(pm.RelatedCorpusEntries) != 1 || pm.RelatedCorpusEntries[0].Title != "Budget" {
		t.Errorf("delivery-manager related = %+v", pm.RelatedCorpusEntries)
	}
}

func TestLoadFilesArrayAndEnvelope(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "nested"), 0o755)
	os.WriteFile(filepath.Join(dir, "a.json"), []byte(`[{"title":"A","content":"alpha","category":"coding"}]`), 0o644)
	os.WriteFile(filepath.Join(dir, "nested", "b.yaml"), []byte("entries:\n  - title: B\n    content: beta\n    category: design\n    source: forum\n"), 0o644)

	entries, err := LoadFiles([]string{filepath.Join(dir, "**", "*.json"), filepath.Join(dir, "**", "*.yaml")})
	if err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("loaded %d entries, want 2", len(entries))
	}
	if entries[0].Source != "a.json" {
		t.Errorf("default source = %q, want a.json", entries[0].Source)
	}
	if entries[1].Source != "forum" {
		t.Errorf("explicit source = %q, want forum", entries[1].Source)
	}
}

func TestLoadFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte("{not json"), 0o644)
	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for malformed file")
	}
}

func TestIndexSearchAndPersistence(t *testing.T) {
	ctx := context.Background()
	ix, err := NewIndex(embeddings.NewHashEmbedder(64))
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	hits, err := ix.Search(ctx, "anything", 3, "")
	if err != nil || len(hits) != 0 {
		t.Fatalf("empty index Search = %v, %v", hits, err)
	}

	err = ix.Add(ctx, []types.CorpusEntry{
		entry("Kubernetes rollout", "kubernetes deployment rollout strategy", "development"),
		entry("Color palette", "choose a color palette and typography", "design"),
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if ix.Count() != 2 {
		t.Fatalf("Count = %d, want 2", ix.Count())
	}

	hits, err = ix.Search(ctx, "kubernetes rollout", 10, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 || hits[0].Entry.Title != "Kubernetes rollout" {
		t.Errorf("hits = %+v", hits)
	}

	hits, _ = ix.Search(ctx, "kubernetes", 5, "Design")
	if len(hits) != 1 || hits[0].Entry.Category != "design" {
		t.Errorf("category filter hits = %+v", hits)
	}

	path := filepath.Join(t.TempDir(), "index.gob")
	if err := ix.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	restored, _ := NewIndex(embeddings.NewHashEmbedder(64))
	if err := restored.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if restored.Count() != 2 {
		t.Errorf("restored Count = %d, want 2", restored.Count())
	}
	if err := restored.Load(filepath.Join(t.TempDir(), "missing.gob")); err != nil {
		t.Errorf("Load of missing file: %v", err)
	}
}

func TestRoutes(t *testing.T) {
	s := setupTestStore(t)
	repo := expert.NewRepository(expert.DefaultPatterns()...)
	r := chi.NewRouter()
	RegisterRoutes(r, &Handlers{Store: s, Enhancer: NewEnhancer(repo, s, nil)})

	body := `{"entries":[{"title":"API","content":"Document the backend api","category":"development"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/corpus", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, body %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/corpus/refresh", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("refresh status = %d", w.Code)
	}
	var out struct {
		Related map[string]int `json:"related"`
	}
	json.NewDecoder(w.Body).Decode(&out)
	if out.Related["tech-architect"] != 1 {
		t.Errorf("related = %v", out.Related)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/corpus/search?q=backend", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var hits []Hit
	json.NewDecoder(w.Body).Decode(&hits)
	if len(hits) != 1 {
		t.Errorf("search hits = %+v", hits)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/corpus/search", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing q status = %d", w.Code)
	}
}
