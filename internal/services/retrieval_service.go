package services

import (
	"context"
	"fmt"

	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/models"
)

// RetrievalService answers similarity queries over a company's indexed
// chunks. It is read only: nothing here mutates document or chunk state.
type RetrievalService struct {
	db       core.DbClient
	embedder core.EmbeddingProvider
	index    core.VectorIndex
}

func NewRetrievalService(db core.DbClient, embedder core.EmbeddingProvider, index core.VectorIndex) *RetrievalService {
	return &RetrievalService{db: db, embedder: embedder, index: index}
}

// Search embeds the query with the same provider ingestion uses, ranks
// against the company's vector partition, and hydrates the matching chunks.
// A failed query embedding fails the whole search with a typed error: a
// broken provider must not look like "no matches".
func (s *RetrievalService) Search(ctx context.Context, companyID, query string, k int) ([]models.ScoredChunk, error) {
	vecs, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", core.ErrEmbeddingUnavailable, err)
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("%w: embed query: empty vector", core.ErrEmbeddingUnavailable)
	}

	matches, err := s.index.Query(ctx, companyID, vecs[0], k)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}

	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ChunkID
	}
	chunks, err := s.db.GetChunksByIDs(ctx, companyID, ids)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}

	byID := make(map[string]models.DocumentChunk, len(chunks))
	for _, ch := range chunks {
		byID[ch.ID] = ch
	}

	// Keep the index ranking; drop matches whose chunk row is gone
	// (a delete racing the query).
	out := make([]models.ScoredChunk, 0, len(matches))
	for _, m := range matches {
		ch, ok := byID[m.ChunkID]
		if !ok {
			continue
		}
		out = append(out, models.ScoredChunk{Chunk: ch, Score: m.Score})
	}
	return out, nil
}
