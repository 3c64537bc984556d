package corpus

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/promptsuite/internal/types"
)

// PatternSaver persists patterns after a refresh.
type PatternSaver interface {
	SaveAll(ctx context.Context, patterns []types.ExpertPattern) error
}

// Handlers serves the corpus endpoints. Index and Saver are optional.
type Handlers struct {
	Store    *Store
	Enhancer *Enhancer
	Index    *Index
	Saver    PatternSaver
}

// RegisterRoutes mounts corpus endpoints under /api/corpus.
func RegisterRoutes(r chi.Router, h *Handlers) {
	r.Route("/api/corpus", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleAdd)
		r.Post("/refresh", h.handleRefresh)
		r.Get("/search", h.handleSearch)
	})
}

func (h *Handlers) handleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.Store.List(r.Context(), r.URL.Query().Get("category"), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []types.CorpusEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

type addRequest struct {
	Entries []types.CorpusEntry `json:"entries"`
}

func (h *Handlers) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Entries) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "entries is required"})
		return
	}
	res, err := h.Store.Add(r.Context(), req.Entries)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if h.Index != nil {
		if err := h.Index.Add(r.Context(), req.Entries); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handlers) handleRefresh(w http.ResponseWriter, r *http.Request) {
	updated, err := h.Enhancer.Refresh(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if h.Saver != nil {
		if err := h.Saver.SaveAll(r.Context(), updated); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}
	related := make(map[string]int, len(updated))
	for _, p := range updated {
		related[p.ID] = len(p.RelatedCorpusEntries)
	}
	writeJSON(w, http.StatusOK, map[string]any{"patterns": len(updated), "related": related})
}

func (h *Handlers) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "q is required"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := Search(r.Context(), h.Store, h.Index, q, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, hits)
}

// Search queries the semantic index when one is available and the store's
// substring search otherwise. Substring hits carry a similarity of 0.
func Search(ctx context.Context, store *Store, index *Index, query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 5
	}
	if index != nil && index.Count() > 0 {
		return index.Search(ctx, query, limit, "")
	}
	entries, err := store.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, len(entries))
	for i, e := range entries {
		hits[i] = Hit{Entry: e}
	}
	return hits, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
