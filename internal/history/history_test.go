package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/promptsuite/internal/db"
	"github.com/ziadkadry99/promptsuite/internal/expert"
	"github.com/ziadkadry99/promptsuite/internal/llm"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

func setupTestStore(t *testing.T) (*Store, *db.DB) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	s, err := NewStore(database)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s, database
}

func closeRecorder(t *testing.T, r *Recorder) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestSaveAndGetRun(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	run := Run{
		ID:           "run-1",
		PatternID:    "tech-architect",
		Domain:       types.DomainTech,
		OverallScore: 8.1,
		Optimized:    true,
		Fallbacks:    []string{"evaluate"},
		Usage:        llm.Usage{Calls: 6, InputTokens: 100},
		Result:       json.RawMessage(`{"ok":true}`),
	}
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := s.SaveRun(ctx, run); err == nil {
		t.Error("saving the same run twice should fail")
	}

	// Bypass the cache.
	s.cache.Purge()
	got, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Mode != ModeFull || !got.Optimized || got.Usage.Calls != 6 || len(got.Fallbacks) != 1 {
		t.Errorf("run = %+v", got)
	}
	if string(got.Result) != `{"ok":true}` {
		t.Errorf("result = %s", got.Result)
	}

	if _, err := s.GetRun(ctx, "missing"); err != ErrNotFound {
		t.Errorf("GetRun(missing) err = %v", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		s.SaveRun(ctx, Run{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Errorf("runs = %+v", runs)
	}
	if runs[0].Result != nil {
		t.Error("list should omit result payloads")
	}
}

func TestQualityHistoryAppends(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	s.AppendQuality(ctx, "r", 1, types.QualityMetrics{OverallScore: 7})
	s.AppendQuality(ctx, "r", 2, types.QualityMetrics{OverallScore: 8.6})

	hist, err := s.QualityHistory(ctx, "r")
	if err != nil {
		t.Fatalf("QualityHistory: %v", err)
	}
	if len(hist) != 2 || hist[0].Metrics.OverallScore != 7 || hist[1].Pass != 2 {
		t.Errorf("history = %+v", hist)
	}
}

func TestFeedbackValidation(t *testing.T) {
	tests := []struct {
		name string
		fb   types.UserFeedback
		ok   bool
	}{
		{"valid", types.UserFeedback{TargetID: "r", Rating: 5, UsageResult: types.UsageSuccess}, true},
		{"no target", types.UserFeedback{Rating: 5, UsageResult: types.UsageSuccess}, false},
		{"rating low", types.UserFeedback{TargetID: "r", Rating: 0, UsageResult: types.UsageSuccess}, false},
		{"rating high", types.UserFeedback{TargetID: "r", Rating: 6, UsageResult: types.UsageSuccess}, false},
		{"bad usage", types.UserFeedback{TargetID: "r", Rating: 3, UsageResult: "great"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateFeedback(tt.fb); (err == nil) != tt.ok {
				t.Errorf("ValidateFeedback err = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestAddAndListFeedback(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	first, err := s.AddFeedback(ctx, types.UserFeedback{TargetID: "r", Rating: 4, UsageResult: types.UsagePartial, FreeText: "close"})
	if err != nil {
		t.Fatalf("AddFeedback: %v", err)
	}
	if first.ID == "" || first.CreatedAt.IsZero() {
		t.Error("id and created_at should be assigned")
	}
	s.AddFeedback(ctx, types.UserFeedback{TargetID: "r", Rating: 2, UsageResult: types.UsageFailed, Suggestions: []string{"shorter"}})
	s.AddFeedback(ctx, types.UserFeedback{TargetID: "other", Rating: 5, UsageResult: types.UsageSuccess})

	got, err := s.ListFeedback(ctx, "r")
	if err != nil {
		t.Fatalf("ListFeedback: %v", err)
	}
	if len(got) != 2 || got[0].FreeText != "close" || got[1].Suggestions[0] != "shorter" {
		t.Errorf("feedback = %+v", got)
	}
}

func TestRecorderPersistsRunAndPattern(t *testing.T) {
	s, database := setupTestStore(t)
	patterns := expert.NewStore(database)
	repo := expert.NewRepository(expert.DefaultPatterns()...)
	rec := NewRecorder(s, RecorderOptions{Patterns: patterns, Repo: repo})

	p, _ := repo.IncrementUsage("tech-architect")
	rec.RecordRun(RunRecord{
		Run:     Run{ID: "run-1", PatternID: p.ID, Domain: p.Domain},
		Quality: []types.QualityMetrics{{OverallScore: 7}, {OverallScore: 8}},
		Pattern: &p,
	})
	closeRecorder(t, rec)

	ctx := context.Background()
	if _, err := s.GetRun(ctx, "run-1"); err != nil {
		t.Fatalf("run not persisted: %v", err)
	}
	hist, _ := s.QualityHistory(ctx, "run-1")
	if len(hist) != 2 {
		t.Errorf("quality passes = %d, want 2", len(hist))
	}
	saved, err := patterns.LoadAll(ctx)
	if err != nil || len(saved) != 1 || saved[0].UsageCount != 1 {
		t.Errorf("saved patterns = %+v, err %v", saved, err)
	}
}

func TestRecorderFeedbackUpdatesPattern(t *testing.T) {
	s, database := setupTestStore(t)
	ctx := context.Background()
	repo := expert.NewRepository(expert.DefaultPatterns()...)
	s.SaveRun(ctx, Run{ID: "run-1", PatternID: "design-lead"})

	rec := NewRecorder(s, RecorderOptions{Patterns: expert.NewStore(database), Repo: repo})
	fb, err := rec.SubmitFeedback(types.UserFeedback{TargetID: "run-1", Rating: 5, UsageResult: types.UsageSuccess})
	if err != nil {
		t.Fatalf("SubmitFeedback: %v", err)
	}
	if fb.ID == "" {
		t.Error("feedback id should be assigned synchronously")
	}
	// Unknown targets are stored without touching any pattern.
	rec.SubmitFeedback(types.UserFeedback{TargetID: "elsewhere", Rating: 1, UsageResult: types.UsageFailed})
	closeRecorder(t, rec)

	p, _ := repo.Get("design-lead")
	if len(p.RatingHistory) != 1 || p.RatingHistory[0] != 5 {
		t.Errorf("rating history = %v", p.RatingHistory)
	}
	if p.SuccessRate != 0.84 {
		t.Errorf("success rate changed to %v", p.SuccessRate)
	}
	stored, _ := s.ListFeedback(ctx, "elsewhere")
	if len(stored) != 1 {
		t.Errorf("unknown-target feedback not stored")
	}
}

func TestRecorderKeepsRatingsAddedAfterSnapshot(t *testing.T) {
	s, database := setupTestStore(t)
	patterns := expert.NewStore(database)
	repo := expert.NewRepository(expert.DefaultPatterns()...)
	rec := NewRecorder(s, RecorderOptions{Patterns: patterns, Repo: repo})

	first, _ := repo.IncrementUsage("tech-architect")
	rec.RecordRun(RunRecord{Run: Run{ID: "run-1", PatternID: first.ID}, Pattern: &first})

	// A second run selects the pattern, then feedback on the first run lands
	// before the second run finishes.
	second, _ := repo.IncrementUsage("tech-architect")
	if _, err := rec.SubmitFeedback(types.UserFeedback{TargetID: "run-1", Rating: 5, UsageResult: types.UsageSuccess}); err != nil {
		t.Fatalf("SubmitFeedback: %v", err)
	}
	rec.RecordRun(RunRecord{Run: Run{ID: "run-2", PatternID: second.ID}, Pattern: &second})
	closeRecorder(t, rec)

	saved, err := patterns.LoadAll(context.Background())
	if err != nil || len(saved) != 1 {
		t.Fatalf("saved patterns = %+v, err %v", saved, err)
	}
	if saved[0].UsageCount != 2 {
		t.Errorf("persisted usage = %d, want 2", saved[0].UsageCount)
	}
	if len(saved[0].RatingHistory) != 1 || saved[0].RatingHistory[0] != 5 {
		t.Errorf("persisted ratings = %v, want [5]", saved[0].RatingHistory)
	}
}

func TestRecorderRejectsAfterClose(t *testing.T) {
	s, _ := setupTestStore(t)
	rec := NewRecorder(s, RecorderOptions{})
	closeRecorder(t, rec)
	_, err := rec.SubmitFeedback(types.UserFeedback{TargetID: "r", Rating: 3, UsageResult: types.UsagePartial})
	if err != ErrClosed {
		t.Errorf("err = %v, want ErrClosed", err)
	}
	// Close is idempotent.
	closeRecorder(t, rec)
}

func TestRoutes(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	s.SaveRun(ctx, Run{ID: "run-1", PatternID: "tech-architect"})
	s.AppendQuality(ctx, "run-1", 1, types.QualityMetrics{OverallScore: 8})
	rec := NewRecorder(s, RecorderOptions{})

	r := chi.NewRouter()
	RegisterRoutes(r, s, rec)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/feedback",
		strings.NewReader(`{"target_id":"run-1","rating":4,"usage_result":"success"}`)))
	if w.Code != http.StatusAccepted {
		t.Fatalf("feedback status = %d, body %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/feedback",
		strings.NewReader(`{"target_id":"run-1","rating":9,"usage_result":"success"}`)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid rating status = %d", w.Code)
	}
	closeRecorder(t, rec)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/runs/run-1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("get run status = %d", w.Code)
	}
	var detail struct {
		ID       string               `json:"id"`
		Quality  []QualityRecord      `json:"quality_history"`
		Feedback []types.UserFeedback `json:"feedback"`
	}
	json.NewDecoder(w.Body).Decode(&detail)
	if detail.ID != "run-1" || len(detail.Quality) != 1 || len(detail.Feedback) != 1 {
		t.Errorf("detail = %+v", detail)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/runs/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("missing run status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/runs?limit=5", nil))
	var runs []Run
	json.NewDecoder(w.Body).Decode(&runs)
	if len(runs) != 1 {
		t.Errorf("runs = %+v", runs)
	}
}
