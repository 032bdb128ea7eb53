package core

import (
	"context"

	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
// Every document and chunk operation is company-scoped: the company id is a
// mandatory partition key, not an optional filter.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, companyID, docID string) (*models.Document, error)
	ListDocumentsByCompany(ctx context.Context, companyID string) ([]models.Document, error)
	SetDocumentStatus(ctx context.Context, companyID, docID string, status models.DocumentStatus, errMsg string) error
	// MarkDocumentProcessed flips the status to processed and records the
	// extracted text and chunk count in the same write.
	MarkDocumentProcessed(ctx context.Context, companyID, docID, extractedText string, chunkCount int) error
	DeleteDocument(ctx context.Context, companyID, docID string) error

	// UpsertChunks inserts or replaces chunk rows in one transaction.
	// Chunk ids are deterministic, so re-ingestion overwrites in place.
	UpsertChunks(ctx context.Context, chunks []models.DocumentChunk) error
	ListChunkIDs(ctx context.Context, companyID, docID string) ([]string, error)
	GetChunksByIDs(ctx context.Context, companyID string, ids []string) ([]models.DocumentChunk, error)
	DeleteChunksByIDs(ctx context.Context, companyID string, ids []string) error

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
// The bucket is fixed at construction; callers address objects by key only.
type ObjectClient interface {
	UploadFile(ctx context.Context, key string, data []byte, contentType string) error
	DownloadFile(ctx context.Context, key string) ([]byte, error)
	// DeleteFile is idempotent: deleting a key that does not exist is success.
	DeleteFile(ctx context.Context, key string) error
}

// EmbeddingProvider converts texts into fixed-length vectors.
// Ingestion and retrieval must share one provider so query and corpus
// vectors live in the same embedding space.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorEntry is one (chunk id, vector) pair handed to the index.
type VectorEntry struct {
	ChunkID string
	Vector  []float32
}

// VectorMatch is one ranked query result from the index.
type VectorMatch struct {
	ChunkID string
	Score   float64
}

// VectorIndex stores and queries embeddings partitioned by company.
// Unavailability surfaces as ErrIndexUnavailable; it is never swallowed,
// because a lost index write means a chunk is not retrievable.
type VectorIndex interface {
	// Upsert is idempotent insert-or-replace. Entries whose vector has zero
	// norm (failed embeddings) are not indexed.
	Upsert(ctx context.Context, companyID string, entries []VectorEntry) error
	// Remove is idempotent bulk delete; unknown ids are not an error.
	Remove(ctx context.Context, chunkIDs []string) error
	// Query returns up to k matches ranked by cosine similarity, restricted
	// to the given company's partition.
	Query(ctx context.Context, companyID string, vector []float32, k int) ([]VectorMatch, error)
}

// Extractor turns raw bytes of a known MIME type into plain text.
// Implementations are pure: no state, no I/O beyond the buffer given.
type Extractor interface {
	Extract(data []byte, contentType string) (string, error)
}

// Notifier delivers completion and failure notices to the uploading user.
// Delivery is best effort; a failed notification never changes pipeline state.
type Notifier interface {
	Notify(ctx context.Context, userID, title, body string) error
}
