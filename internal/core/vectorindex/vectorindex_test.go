package vectorindex

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core"
)

func TestCosineSimilarity_Identity(t *testing.T) {
	v := []float32{0.3, -1.2, 4.5, 0.07}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	v := []float32{1, 2, 3}
	zero := []float32{0, 0, 0}
	assert.Equal(t, 0.0, CosineSimilarity(v, zero))
	assert.Equal(t, 0.0, CosineSimilarity(zero, v))
	assert.Equal(t, 0.0, CosineSimilarity(zero, zero))
	assert.Equal(t, 0.0, CosineSimilarity(v, nil))
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
}

func TestCosineSimilarity_Opposite(t *testing.T) {
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{2, 0}, []float32{-5, 0}), 1e-9)
}

func TestCosineSimilarity_Scale(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{2, 4, 6}
	assert.InDelta(t, 1.0, CosineSimilarity(a, b), 1e-6)
	assert.False(t, math.IsNaN(CosineSimilarity(a, b)))
}

func TestMemory_QueryRanksBySimilarity(t *testing.T) {
	ctx := context.Background()
	idx := NewMemory()

	require.NoError(t, idx.Upsert(ctx, "acme", []core.VectorEntry{
		{ChunkID: "far", Vector: []float32{0, 1}},
		{ChunkID: "near", Vector: []float32{1, 0.05}},
		{ChunkID: "mid", Vector: []float32{1, 1}},
	}))

	matches, err := idx.Query(ctx, "acme", []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "near", matches[0].ChunkID)
	assert.Equal(t, "mid", matches[1].ChunkID)
	assert.Equal(t, "far", matches[2].ChunkID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestMemory_QueryLimitsToK(t *testing.T) {
	ctx := context.Background()
	idx := NewMemory()
	require.NoError(t, idx.Upsert(ctx, "acme", []core.VectorEntry{
		{ChunkID: "a", Vector: []float32{1, 0}},
		{ChunkID: "b", Vector: []float32{0.9, 0.1}},
		{ChunkID: "c", Vector: []float32{0.8, 0.2}},
	}))

	matches, err := idx.Query(ctx, "acme", []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestMemory_UpsertIdempotent(t *testing.T) {
	ctx := context.Background()
	idx := NewMemory()

	entry := []core.VectorEntry{{ChunkID: "c1", Vector: []float32{1, 0}}}
	require.NoError(t, idx.Upsert(ctx, "acme", entry))
	require.NoError(t, idx.Upsert(ctx, "acme", entry))

	matches, err := idx.Query(ctx, "acme", []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestMemory_UpsertSkipsZeroVectors(t *testing.T) {
	ctx := context.Background()
	idx := NewMemory()

	require.NoError(t, idx.Upsert(ctx, "acme", []core.VectorEntry{
		{ChunkID: "degraded", Vector: nil},
		{ChunkID: "zeroes", Vector: []float32{0, 0}},
		{ChunkID: "good", Vector: []float32{1, 0}},
	}))

	matches, err := idx.Query(ctx, "acme", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "good", matches[0].ChunkID)
}

func TestMemory_RemoveMissingIsNotAnError(t *testing.T) {
	ctx := context.Background()
	idx := NewMemory()
	assert.NoError(t, idx.Remove(ctx, []string{"never-existed"}))
}

func TestMemory_Remove(t *testing.T) {
	ctx := context.Background()
	idx := NewMemory()
	require.NoError(t, idx.Upsert(ctx, "acme", []core.VectorEntry{
		{ChunkID: "a", Vector: []float32{1, 0}},
		{ChunkID: "b", Vector: []float32{0, 1}},
	}))
	require.NoError(t, idx.Remove(ctx, []string{"a"}))

	matches, err := idx.Query(ctx, "acme", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "b", matches[0].ChunkID)
}

func TestMemory_TenantIsolation(t *testing.T) {
	ctx := context.Background()
	idx := NewMemory()

	// Same chunk-id shape, different companies.
	require.NoError(t, idx.Upsert(ctx, "acme", []core.VectorEntry{{ChunkID: "acme-chunk", Vector: []float32{1, 0}}}))
	require.NoError(t, idx.Upsert(ctx, "globex", []core.VectorEntry{{ChunkID: "globex-chunk", Vector: []float32{1, 0}}}))

	matches, err := idx.Query(ctx, "acme", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "acme-chunk", matches[0].ChunkID)

	matches, err = idx.Query(ctx, "globex", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "globex-chunk", matches[0].ChunkID)
}
