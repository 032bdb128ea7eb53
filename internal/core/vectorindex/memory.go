package vectorindex

import (
	"context"
	"sort"
	"sync"

	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core"
)

var _ core.VectorIndex = (*Memory)(nil)

// Memory is a brute-force in-memory vector index partitioned by company.
// It backs tests and index-less local runs.
type Memory struct {
	mu      sync.RWMutex
	vectors map[string][]float32 // chunk id -> vector
	company map[string]string    // chunk id -> company id
}

func NewMemory() *Memory {
	return &Memory{
		vectors: make(map[string][]float32),
		company: make(map[string]string),
	}
}

func (m *Memory) Upsert(_ context.Context, companyID string, entries []core.VectorEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if isZero(e.Vector) {
			continue
		}
		v := make([]float32, len(e.Vector))
		copy(v, e.Vector)
		m.vectors[e.ChunkID] = v
		m.company[e.ChunkID] = companyID
	}
	return nil
}

func (m *Memory) Remove(_ context.Context, chunkIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range chunkIDs {
		delete(m.vectors, id)
		delete(m.company, id)
	}
	return nil
}

func (m *Memory) Query(_ context.Context, companyID string, vector []float32, k int) ([]core.VectorMatch, error) {
	if k <= 0 {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]core.VectorMatch, 0, len(m.vectors))
	for id, v := range m.vectors {
		if m.company[id] != companyID {
			continue
		}
		matches = append(matches, core.VectorMatch{ChunkID: id, Score: CosineSimilarity(vector, v)})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ChunkID < matches[j].ChunkID
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}
