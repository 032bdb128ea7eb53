package ingest

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core"
)

// Cleaner cascades a document deletion across the chunk store, the vector
// index, and object storage.
type Cleaner struct {
	db    core.DbClient
	obj   core.ObjectClient
	index core.VectorIndex
	cfg   Config
	log   *slog.Logger
}

func NewCleaner(db core.DbClient, obj core.ObjectClient, index core.VectorIndex, cfg Config, log *slog.Logger) *Cleaner {
	if log == nil {
		log = slog.Default()
	}
	return &Cleaner{db: db, obj: obj, index: index, cfg: cfg.withDefaults(), log: log}
}

// OnDocumentDeleted removes everything derived from a document. Vector and
// chunk removal run before the raw file delete, so an interruption leaves at
// worst an orphaned file, never still-queryable chunks pointing at a deleted
// document. Each step is best effort and logged on its own; a third-party
// outage in one store never blocks the others, and there is no rollback;
// a retry resumes from wherever the last run stopped.
func (c *Cleaner) OnDocumentDeleted(ctx context.Context, companyID, documentID, storageKey string) {
	chunkIDs, err := c.db.ListChunkIDs(ctx, companyID, documentID)
	if err != nil {
		c.log.Error("cleanup: list chunk ids failed", "document_id", documentID, "error", err)
	}

	if len(chunkIDs) > 0 {
		if err := c.index.Remove(ctx, chunkIDs); err != nil {
			c.log.Error("cleanup: vector removal failed", "document_id", documentID, "chunks", len(chunkIDs), "error", err)
		}

		for start := 0; start < len(chunkIDs); start += c.cfg.DeleteBatchSize {
			end := start + c.cfg.DeleteBatchSize
			if end > len(chunkIDs) {
				end = len(chunkIDs)
			}
			if err := c.db.DeleteChunksByIDs(ctx, companyID, chunkIDs[start:end]); err != nil {
				c.log.Error("cleanup: chunk batch delete failed", "document_id", documentID, "batch_offset", start, "error", err)
			}
		}
	}

	// Chunks always go before the owning document record.
	if err := c.db.DeleteDocument(ctx, companyID, documentID); err != nil && !errors.Is(err, core.ErrDocumentNotFound) {
		c.log.Error("cleanup: document delete failed", "document_id", documentID, "error", err)
	}

	if storageKey != "" {
		if err := c.obj.DeleteFile(ctx, storageKey); err != nil {
			c.log.Error("cleanup: object delete failed", "document_id", documentID, "key", storageKey, "error", err)
		}
	}
}
