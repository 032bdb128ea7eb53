// Package ingest orchestrates the document pipeline: extract, chunk, embed,
// index. The Pipeline is the only component that mutates a document's
// durable record.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core/chunker"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/models"
)

// chunkNamespace seeds the deterministic chunk ids. Never change it: the
// upsert-on-reprocess behaviour depends on ids staying stable across runs.
var chunkNamespace = uuid.MustParse("8b33f2a9-4a7e-4d6a-9c3e-5d1f0b7a2c41")

// ChunkID derives the stable id for a chunk from its document and position.
func ChunkID(documentID string, index int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(documentID+":"+strconv.Itoa(index))).String()
}

// job identifies one document to process.
type job struct {
	CompanyID  string
	DocumentID string
}

// Pipeline runs document ingestion on a pool of workers fed by a bounded
// job queue. Within one document the stages run strictly sequentially;
// across documents runs are concurrent with no shared mutable state beyond
// the stores.
type Pipeline struct {
	db        core.DbClient
	obj       core.ObjectClient
	embedder  core.EmbeddingProvider
	index     core.VectorIndex
	extractor core.Extractor
	notifier  core.Notifier
	cfg       Config
	log       *slog.Logger
	jobs      chan job
}

func NewPipeline(db core.DbClient, obj core.ObjectClient, emb core.EmbeddingProvider, index core.VectorIndex, ext core.Extractor, notifier core.Notifier, cfg Config, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		db: db, obj: obj, embedder: emb, index: index, extractor: ext,
		notifier: notifier, cfg: cfg.withDefaults(), log: log,
		jobs: make(chan job, 64),
	}
}

// Start launches the worker pool. Workers run until ctx is cancelled.
func (p *Pipeline) Start(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	for w := 1; w <= p.cfg.Workers; w++ {
		w := w
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case j := <-p.jobs:
					p.log.Info("processing document", "document_id", j.DocumentID, "worker", w)
					if err := p.ProcessOne(gctx, j.CompanyID, j.DocumentID); err != nil {
						p.log.Error("ingestion failed", "document_id", j.DocumentID, "error", err)
					}
				}
			}
		})
	}
	go func() { _ = g.Wait() }()
}

// Enqueue schedules a document for ingestion. The caller returns
// immediately; completion is observed through the document status or the
// notification sink. Blocks if the queue is full.
func (p *Pipeline) Enqueue(companyID, documentID string) {
	p.jobs <- job{CompanyID: companyID, DocumentID: documentID}
}

// ProcessOne runs the whole pipeline for a single document. Safe to re-run:
// chunk ids are deterministic and stale chunks are replaced when the count
// changes.
func (p *Pipeline) ProcessOne(ctx context.Context, companyID, documentID string) error {
	procCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	doc, err := p.db.GetDocument(procCtx, companyID, documentID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	// Recorded before any extraction work, so a crash mid-pipeline leaves a
	// visibly stuck "processing" document rather than a silent "pending" one.
	if err := p.db.SetDocumentStatus(procCtx, companyID, documentID, models.StatusProcessing, ""); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	data, err := p.obj.DownloadFile(procCtx, doc.StorageKey)
	if err != nil {
		return p.fail(procCtx, doc, fmt.Errorf("download %s: %w", doc.StorageKey, err))
	}

	text, err := p.extractor.Extract(data, doc.ContentType)
	if err != nil {
		return p.fail(procCtx, doc, fmt.Errorf("extract: %w", err))
	}

	drafts := chunker.Split(text, chunker.Config{Size: p.cfg.ChunkSize, Overlap: p.cfg.ChunkOverlap})
	if len(drafts) == 0 {
		return p.fail(procCtx, doc, fmt.Errorf("extract: %w: no chunkable content", core.ErrEmptyInput))
	}

	// A changed chunk count leaves trailing rows from the previous run that
	// the deterministic upsert would not touch; clear them first.
	if err := p.replaceStale(procCtx, doc, len(drafts)); err != nil {
		return p.fail(procCtx, doc, err)
	}

	vectors, err := p.embedChunks(procCtx, doc, drafts)
	if err != nil {
		return p.fail(procCtx, doc, err)
	}

	now := time.Now()
	records := make([]models.DocumentChunk, len(drafts))
	entries := make([]core.VectorEntry, len(drafts))
	ids := make([]string, len(drafts))
	for i, d := range drafts {
		id := ChunkID(documentID, d.Index)
		ids[i] = id
		records[i] = models.DocumentChunk{
			ID:          id,
			DocumentID:  documentID,
			CompanyID:   companyID,
			Content:     d.Content,
			StartOffset: d.Start,
			EndOffset:   d.End,
			ChunkIndex:  d.Index,
			TotalChunks: d.TotalChunks,
			Embedding:   vectors[i],
			CreatedAt:   now,
		}
		entries[i] = core.VectorEntry{ChunkID: id, Vector: vectors[i]}
	}

	if err := p.db.UpsertChunks(procCtx, records); err != nil {
		return p.fail(procCtx, doc, fmt.Errorf("persist chunks: %w", err))
	}

	if err := p.index.Upsert(procCtx, companyID, entries); err != nil {
		// A failed document must not leave half-committed chunk rows behind.
		if derr := p.db.DeleteChunksByIDs(procCtx, companyID, ids); derr != nil {
			p.log.Error("rollback of chunk rows failed", "document_id", documentID, "error", derr)
		}
		return p.fail(procCtx, doc, fmt.Errorf("index chunks: %w", err))
	}

	if err := p.db.MarkDocumentProcessed(procCtx, companyID, documentID, text, len(records)); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}

	p.notify(procCtx, doc.UploadedBy, "Document processed",
		fmt.Sprintf("%q is ready for search (%d sections indexed).", doc.FileName, len(records)))
	return nil
}

// replaceStale removes the previous run's chunk rows and index entries when
// the new chunk count differs from what is stored.
func (p *Pipeline) replaceStale(ctx context.Context, doc *models.Document, newCount int) error {
	existing, err := p.db.ListChunkIDs(ctx, doc.CompanyID, doc.ID)
	if err != nil {
		return fmt.Errorf("list existing chunks: %w", err)
	}
	if len(existing) == 0 || len(existing) == newCount {
		return nil
	}
	if err := p.index.Remove(ctx, existing); err != nil {
		return fmt.Errorf("remove stale vectors: %w", err)
	}
	for start := 0; start < len(existing); start += p.cfg.DeleteBatchSize {
		end := start + p.cfg.DeleteBatchSize
		if end > len(existing) {
			end = len(existing)
		}
		if err := p.db.DeleteChunksByIDs(ctx, doc.CompanyID, existing[start:end]); err != nil {
			return fmt.Errorf("delete stale chunks: %w", err)
		}
	}
	return nil
}

// fail records the terminal failed status and error message, then emits the
// failure notice. The returned error carries the original cause for the
// worker log.
func (p *Pipeline) fail(ctx context.Context, doc *models.Document, cause error) error {
	if err := p.db.SetDocumentStatus(ctx, doc.CompanyID, doc.ID, models.StatusFailed, cause.Error()); err != nil {
		p.log.Error("failed to record failure status", "document_id", doc.ID, "error", err)
	}
	p.notify(ctx, doc.UploadedBy, "Document processing failed",
		fmt.Sprintf("%q could not be processed: %v", doc.FileName, cause))
	return cause
}

// notify delivers best effort; a failed notification never blocks or
// reverses a status transition.
func (p *Pipeline) notify(ctx context.Context, userID, title, body string) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Notify(ctx, userID, title, body); err != nil {
		p.log.Warn("notification delivery failed", "user_id", userID, "title", title, "error", err)
	}
}
