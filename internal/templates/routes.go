package templates

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/promptsuite/internal/types"
)

// RegisterRoutes mounts template endpoints under /api/templates.
func RegisterRoutes(r chi.Router, catalog *Catalog, strongMatch int) {
	scorer := NewScorer(catalog)
	r.Route("/api/templates", func(r chi.Router) {
		r.Get("/", handleList(catalog))
		r.Get("/recommend", handleRecommendQuery(scorer, strongMatch))
		r.Post("/recommend", handleRecommend(scorer, strongMatch))
		r.Get("/{id}", handleGet(catalog))
	})
}

type recommendRequest struct {
	Messages     []types.ConversationMessage `json:"messages"`
	ProjectBrief string                      `json:"project_brief"`
}

type recommendResponse struct {
	Matches     []types.TemplateMatch `json:"matches"`
	StrongMatch bool                  `json:"strong_match"`
}

func handleList(catalog *Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, catalog.All())
	}
}

func handleGet(catalog *Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := catalog.Get(chi.URLParam(r, "id"))
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "template not found"})
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func handleRecommendQuery(scorer *Scorer, strongMatch int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "q is required"})
			return
		}
		writeJSON(w, http.StatusOK, recommend(scorer, q, strongMatch))
	}
}

func handleRecommend(scorer *Scorer, strongMatch int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recommendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		text := types.JoinConversation(req.Messages, req.ProjectBrief)
		if text == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "messages or project_brief is required"})
			return
		}
		writeJSON(w, http.StatusOK, recommend(scorer, text, strongMatch))
	}
}

func recommend(scorer *Scorer, text string, strongMatch int) recommendResponse {
	matches := scorer.Rank(SignalsFromText(text))
	return recommendResponse{
		Matches:     matches,
		StrongMatch: len(matches) > 0 && IsStrong(matches[0], strongMatch),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
