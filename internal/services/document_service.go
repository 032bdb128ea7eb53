package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/ingest"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/models"
)

// DocumentService owns the two lifecycle entry points around the pipeline:
// upload (store file, create pending record, enqueue) and delete (hand the
// document to the cleanup coordinator).
type DocumentService struct {
	db       core.DbClient
	storage  core.ObjectClient
	pipeline *ingest.Pipeline
	cleaner  *ingest.Cleaner
}

func NewDocumentService(db core.DbClient, storage core.ObjectClient, pipeline *ingest.Pipeline, cleaner *ingest.Cleaner) *DocumentService {
	return &DocumentService{db: db, storage: storage, pipeline: pipeline, cleaner: cleaner}
}

// Upload stores the raw file, creates the pending document record, and
// schedules ingestion. It returns as soon as the record exists; processing
// happens on the pipeline's workers.
func (s *DocumentService) Upload(ctx context.Context, companyID, userID, filename, contentType string, data []byte) (*models.Document, error) {
	docID := uuid.NewString()
	key := s.objectKey(companyID, docID, filename)

	if err := s.storage.UploadFile(ctx, key, data, contentType); err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	doc := &models.Document{
		ID:          docID,
		CompanyID:   companyID,
		UploadedBy:  userID,
		FileName:    filename,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		StorageKey:  key,
		Status:      models.StatusPending,
		CreatedAt:   time.Now(),
	}
	if err := s.db.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document record: %w", err)
	}

	s.pipeline.Enqueue(companyID, docID)
	return doc, nil
}

// Delete cascades removal of the document's chunks, vectors, record, and
// stored file via the cleanup coordinator.
func (s *DocumentService) Delete(ctx context.Context, companyID, docID string) error {
	doc, err := s.db.GetDocument(ctx, companyID, docID)
	if err != nil {
		return err
	}
	s.cleaner.OnDocumentDeleted(ctx, companyID, docID, doc.StorageKey)
	return nil
}

// Retry re-triggers ingestion for a failed document. Safe because chunk ids
// are deterministic and the pipeline replaces stale chunks.
func (s *DocumentService) Retry(ctx context.Context, companyID, docID string) error {
	doc, err := s.db.GetDocument(ctx, companyID, docID)
	if err != nil {
		return err
	}
	if doc.Status != models.StatusFailed {
		return fmt.Errorf("document %s is %s, only failed documents can be retried", docID, doc.Status)
	}
	s.pipeline.Enqueue(companyID, docID)
	return nil
}

func (s *DocumentService) Get(ctx context.Context, companyID, docID string) (*models.Document, error) {
	return s.db.GetDocument(ctx, companyID, docID)
}

func (s *DocumentService) ListByCompany(ctx context.Context, companyID string) ([]models.Document, error) {
	return s.db.ListDocumentsByCompany(ctx, companyID)
}

// objectKey creates a consistent S3 key layout.
func (s *DocumentService) objectKey(companyID, docID, filename string) string {
	filename = strings.TrimSpace(filename)
	filename = strings.ReplaceAll(filename, " ", "_")
	return path.Join("companies", companyID, "documents", docID, filename)
}
