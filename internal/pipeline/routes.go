package pipeline

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/promptsuite/internal/types"
)

// GenerateRequest is the body of the generation endpoints.
type GenerateRequest struct {
	Messages     []types.ConversationMessage `json:"messages"`
	ProjectBrief string                      `json:"project_brief"`
}

// RegisterRoutes mounts the generation endpoints.
func RegisterRoutes(r chi.Router, p *Pipeline) {
	r.Post("/api/generate", handleGenerate(p))
	r.Post("/api/generate/simple", handleGenerateSimple(p))
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (GenerateRequest, bool) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return req, false
	}
	if len(req.Messages) == 0 && req.ProjectBrief == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "messages or project_brief is required"})
		return req, false
	}
	return req, true
}

func handleGenerate(p *Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeRequest(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, p.Generate(r.Context(), req.Messages, req.ProjectBrief))
	}
}

func handleGenerateSimple(p *Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeRequest(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, p.GenerateSimple(r.Context(), req.Messages, req.ProjectBrief))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
