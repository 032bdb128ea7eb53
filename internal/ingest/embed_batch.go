package ingest

import (
	"context"
	"fmt"

	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core/chunker"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/models"
)

// embedChunks converts chunks into vectors in fixed-size batches, processed
// sequentially to keep provider rate limits predictable and preserve
// positional matching.
//
// A failed batch degrades its chunks to nil vectors and processing
// continues: a poorly embedded document is still readable, and the batch
// offset in the log allows a targeted re-embedding pass later. Only when
// every batch fails is the provider treated as unreachable, which fails the
// document. No retries happen here; retry is a document-level concern.
func (p *Pipeline) embedChunks(ctx context.Context, doc *models.Document, drafts []chunker.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(drafts))

	batches := 0
	failed := 0
	for start := 0; start < len(drafts); start += p.cfg.EmbedBatchSize {
		end := start + p.cfg.EmbedBatchSize
		if end > len(drafts) {
			end = len(drafts)
		}
		batches++

		texts := make([]string, end-start)
		for i := start; i < end; i++ {
			texts[i-start] = drafts[i].Content
		}

		vecs, err := p.embedder.EmbedTexts(ctx, texts)
		if err != nil || len(vecs) != len(texts) {
			if err == nil {
				err = fmt.Errorf("got %d vectors for %d chunks", len(vecs), len(texts))
			}
			failed++
			p.log.Warn("embedding batch failed, degrading to zero vectors",
				"document_id", doc.ID, "batch_offset", start, "chunks", end-start, "error", err)
			continue
		}
		for i := range vecs {
			vectors[start+i] = vecs[i]
		}
	}

	if batches > 0 && failed == batches {
		return nil, fmt.Errorf("%w: all %d embedding batches failed", core.ErrEmbeddingUnavailable, batches)
	}
	return vectors, nil
}
