package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	middleware "github.com/sonalmogra28/benefitsaichatbot-sub001/internal/api/middlewares"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/services"
)

const maxUploadBytes = 32 << 20 // 32 MB

type DocumentHandler struct {
	docs *services.DocumentService
	log  *slog.Logger
}

func NewDocumentHandler(docs *services.DocumentService, log *slog.Logger) *DocumentHandler {
	if log == nil {
		log = slog.Default()
	}
	return &DocumentHandler{docs: docs, log: log}
}

// UploadDocument stores the file and schedules background ingestion. The
// response carries the pending document; callers poll its status.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	companyID, userID, ok := middleware.Identity(r.Context())
	if !ok {
		http.Error(w, "identity not found in context", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		http.Error(w, "read file", http.StatusBadRequest)
		return
	}
	if len(data) > maxUploadBytes {
		http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Strip any path components from the client-supplied name.
	filename := filepath.Base(header.Filename)

	doc, err := h.docs.Upload(r.Context(), companyID, userID, filename, contentType, data)
	if err != nil {
		h.log.Error("upload failed", "company_id", companyID, "file", filename, "error", err)
		http.Error(w, fmt.Sprintf("upload failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(doc)
}

func (h *DocumentHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	companyID, _, ok := middleware.Identity(r.Context())
	if !ok {
		http.Error(w, "identity not found in context", http.StatusUnauthorized)
		return
	}

	documents, err := h.docs.ListByCompany(r.Context(), companyID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(documents)
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	companyID, _, ok := middleware.Identity(r.Context())
	if !ok {
		http.Error(w, "identity not found in context", http.StatusUnauthorized)
		return
	}

	doc, err := h.docs.Get(r.Context(), companyID, chi.URLParam(r, "documentID"))
	if err != nil {
		writeDocError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	companyID, _, ok := middleware.Identity(r.Context())
	if !ok {
		http.Error(w, "identity not found in context", http.StatusUnauthorized)
		return
	}

	if err := h.docs.Delete(r.Context(), companyID, chi.URLParam(r, "documentID")); err != nil {
		writeDocError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RetryDocument re-enqueues a failed document for ingestion.
func (h *DocumentHandler) RetryDocument(w http.ResponseWriter, r *http.Request) {
	companyID, _, ok := middleware.Identity(r.Context())
	if !ok {
		http.Error(w, "identity not found in context", http.StatusUnauthorized)
		return
	}

	if err := h.docs.Retry(r.Context(), companyID, chi.URLParam(r, "documentID")); err != nil {
		if errors.Is(err, core.ErrDocumentNotFound) {
			http.Error(w, "document not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func writeDocError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrDocumentNotFound) {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
