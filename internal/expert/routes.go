package expert

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/promptsuite/internal/types"
)

// Stats is the public view of a pattern's usage statistics.
type Stats struct {
	ID            string       `json:"id"`
	Domain        types.Domain `json:"domain"`
	Name          string       `json:"name"`
	QualityScore  float64      `json:"quality_score"`
	SuccessRate   float64      `json:"success_rate"`
	Weight        float64      `json:"weight"`
	UsageCount    int          `json:"usage_count"`
	Ratings       int          `json:"ratings"`
	AverageRating float64      `json:"average_rating"`
	RelatedCorpus int          `json:"related_corpus_entries"`
	LastUpdated   time.Time    `json:"last_updated"`
}

// StatsFor summarises p.
func StatsFor(p types.ExpertPattern) Stats {
	s := Stats{
		ID:            p.ID,
		Domain:        p.Domain,
		Name:          p.Name,
		QualityScore:  p.QualityScore,
		SuccessRate:   p.SuccessRate,
		Weight:        p.Weight(),
		UsageCount:    p.UsageCount,
		Ratings:       len(p.RatingHistory),
		RelatedCorpus: len(p.RelatedCorpusEntries),
		LastUpdated:   p.LastUpdated,
	}
	if n := len(p.RatingHistory); n > 0 {
		sum := 0
		for _, r := range p.RatingHistory {
			sum += r
		}
		s.AverageRating = float64(sum) / float64(n)
	}
	return s
}

// RegisterRoutes mounts pattern endpoints under /api/patterns.
func RegisterRoutes(r chi.Router, repo *Repository) {
	r.Route("/api/patterns", func(r chi.Router) {
		r.Get("/", handleList(repo))
		r.Get("/{id}", handleGet(repo))
	})
}

func handleList(repo *Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		domain := types.Domain(r.URL.Query().Get("domain"))
		var patterns []types.ExpertPattern
		if domain != "" {
			if !domain.Valid() {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown domain"})
				return
			}
			patterns = repo.ByDomain(domain)
		} else {
			patterns = repo.All()
		}
		stats := make([]Stats, 0, len(patterns))
		for _, p := range patterns {
			stats = append(stats, StatsFor(p))
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func handleGet(repo *Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := repo.Get(chi.URLParam(r, "id"))
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "pattern not found"})
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
