package history

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/promptsuite/internal/types"
)

// RegisterRoutes mounts run history and feedback endpoints.
func RegisterRoutes(r chi.Router, store *Store, rec *Recorder) {
	r.Route("/api/runs", func(r chi.Router) {
		r.Get("/", handleListRuns(store))
		r.Get("/{id}", handleGetRun(store))
	})
	r.Route("/api/feedback", func(r chi.Router) {
		r.Post("/", handleSubmitFeedback(rec))
		r.Get("/", handleListFeedback(store))
	})
}

type runDetail struct {
	Run
	Quality  []QualityRecord      `json:"quality_history"`
	Feedback []types.UserFeedback `json:"feedback"`
}

func handleListRuns(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		runs, err := store.ListRuns(r.Context(), limit)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if runs == nil {
			runs = []Run{}
		}
		writeJSON(w, http.StatusOK, runs)
	}
}

func handleGetRun(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		run, err := store.GetRun(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		quality, err := store.QualityHistory(r.Context(), id)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		feedback, err := store.ListFeedback(r.Context(), id)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, runDetail{Run: run, Quality: quality, Feedback: feedback})
	}
}

func handleSubmitFeedback(rec *Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fb types.UserFeedback
		if err := json.NewDecoder(r.Body).Decode(&fb); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if err := ValidateFeedback(fb); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		stored, err := rec.SubmitFeedback(fb)
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"id": stored.ID, "status": "accepted"})
	}
}

func handleListFeedback(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := r.URL.Query().Get("target_id")
		if target == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "target_id is required"})
			return
		}
		fb, err := store.ListFeedback(r.Context(), target)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if fb == nil {
			fb = []types.UserFeedback{}
		}
		writeJSON(w, http.StatusOK, fb)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
