package models

import (
	"time"
)

// DocumentStatus tracks a document through the ingestion pipeline.
type DocumentStatus string

const (
	StatusPending    DocumentStatus = "pending"
	StatusProcessing DocumentStatus = "processing"
	StatusProcessed  DocumentStatus = "processed"
	StatusFailed     DocumentStatus = "failed"
)

// User represents an authenticated member of a company.
type User struct {
	ID           string    `db:"id" json:"id"`
	CompanyID    string    `db:"company_id" json:"company_id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Document represents an uploaded benefits document owned by a company.
//
// ChunkCount is authoritative only once Status is "processed"; until then it
// reflects whatever an earlier run left behind.
type Document struct {
	ID              string         `db:"id" json:"id"`
	CompanyID       string         `db:"company_id" json:"company_id"`
	UploadedBy      string         `db:"uploaded_by" json:"uploaded_by"`
	FileName        string         `db:"file_name" json:"file_name"`
	ContentType     string         `db:"content_type" json:"content_type"`
	SizeBytes       int64          `db:"size_bytes" json:"size_bytes"`
	StorageKey      string         `db:"storage_key" json:"storage_key"`
	Status          DocumentStatus `db:"status" json:"status"`
	ExtractedText   string         `db:"extracted_text" json:"-"`
	ChunkCount      int            `db:"chunk_count" json:"chunk_count"`
	ErrorMessage    string         `db:"error_message" json:"error_message,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	StatusChangedAt time.Time      `db:"status_changed_at" json:"status_changed_at"`
}

// DocumentChunk is one offset-tracked slice of a document's extracted text.
//
// The ID is derived deterministically from (DocumentID, ChunkIndex), so
// reprocessing the same document overwrites rather than duplicates. A nil
// Embedding marks a chunk whose embedding batch failed; such chunks stay
// readable but are absent from the vector index.
type DocumentChunk struct {
	ID          string    `db:"id" json:"id"`
	DocumentID  string    `db:"document_id" json:"document_id"`
	CompanyID   string    `db:"company_id" json:"company_id"`
	Content     string    `db:"content" json:"content"`
	StartOffset int       `db:"start_offset" json:"start_offset"`
	EndOffset   int       `db:"end_offset" json:"end_offset"`
	ChunkIndex  int       `db:"chunk_index" json:"chunk_index"`
	TotalChunks int       `db:"total_chunks" json:"total_chunks"`
	Embedding   []float32 `db:"embedding" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ScoredChunk pairs a retrieved chunk with its similarity score.
type ScoredChunk struct {
	Chunk DocumentChunk `json:"chunk"`
	Score float64       `json:"score"`
}
