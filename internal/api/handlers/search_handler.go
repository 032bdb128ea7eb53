package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	middleware "github.com/sonalmogra28/benefitsaichatbot-sub001/internal/api/middlewares"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/models"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/services"
)

type SearchHandler struct {
	retrieval *services.RetrievalService
	defaultK  int
}

func NewSearchHandler(retrieval *services.RetrievalService, defaultK int) *SearchHandler {
	if defaultK <= 0 {
		defaultK = 5
	}
	return &SearchHandler{retrieval: retrieval, defaultK: defaultK}
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// Search returns the company's most similar chunks for a query. This is the
// retrieval contract the chat orchestration layer consumes.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	companyID, _, ok := middleware.Identity(r.Context())
	if !ok {
		http.Error(w, "identity not found in context", http.StatusUnauthorized)
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}
	k := req.TopK
	if k <= 0 {
		k = h.defaultK
	}

	results, err := h.retrieval.Search(r.Context(), companyID, req.Query, k)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrEmbeddingUnavailable), errors.Is(err, core.ErrIndexUnavailable):
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	if results == nil {
		results = []models.ScoredChunk{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"results": results})
}
