package ingest

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core/vectorindex"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/models"
)

type cleanerEnv struct {
	db    *fakeDB
	obj   *fakeObjectStore
	index core.VectorIndex
	c     *Cleaner
}

func newCleanerEnv(cfg Config) *cleanerEnv {
	env := &cleanerEnv{
		db:    newFakeDB(),
		obj:   newFakeObjectStore(),
		index: vectorindex.NewMemory(),
	}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.c = NewCleaner(env.db, env.obj, env.index, cfg, quiet)
	return env
}

// seedProcessed stores a document with n chunks, their vectors, and the raw file.
func (env *cleanerEnv) seedProcessed(t *testing.T, companyID, docID string, n int) *models.Document {
	t.Helper()
	ctx := context.Background()
	key := "companies/" + companyID + "/documents/" + docID + "/upload"
	require.NoError(t, env.obj.UploadFile(ctx, key, []byte("raw"), "text/plain"))

	doc := &models.Document{
		ID: docID, CompanyID: companyID, UploadedBy: "user-1",
		FileName: "handbook.txt", ContentType: "text/plain",
		StorageKey: key, Status: models.StatusProcessed, ChunkCount: n,
	}
	require.NoError(t, env.db.CreateDocument(ctx, doc))

	var chunks []models.DocumentChunk
	var entries []core.VectorEntry
	for i := 0; i < n; i++ {
		id := ChunkID(docID, i)
		chunks = append(chunks, models.DocumentChunk{
			ID: id, DocumentID: docID, CompanyID: companyID,
			Content: "section", ChunkIndex: i, TotalChunks: n,
		})
		entries = append(entries, core.VectorEntry{ChunkID: id, Vector: []float32{1, float32(i)}})
	}
	require.NoError(t, env.db.UpsertChunks(ctx, chunks))
	require.NoError(t, env.index.Upsert(ctx, companyID, entries))
	return doc
}

func TestCleaner_RemovesChunksVectorsDocumentAndFile(t *testing.T) {
	env := newCleanerEnv(Config{})
	doc := env.seedProcessed(t, "acme", "doc-1", 4)
	ctx := context.Background()

	env.c.OnDocumentDeleted(ctx, "acme", "doc-1", doc.StorageKey)

	assert.Empty(t, env.db.chunksForDoc("acme", "doc-1"))
	_, err := env.db.GetDocument(ctx, "acme", "doc-1")
	assert.ErrorIs(t, err, core.ErrDocumentNotFound)

	matches, err := env.index.Query(ctx, "acme", []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, matches)

	_, err = env.obj.DownloadFile(ctx, doc.StorageKey)
	assert.Error(t, err)
}

func TestCleaner_DeletesChunksInBatches(t *testing.T) {
	env := newCleanerEnv(Config{DeleteBatchSize: 2})
	doc := env.seedProcessed(t, "acme", "doc-1", 5)

	env.c.OnDocumentDeleted(context.Background(), "acme", "doc-1", doc.StorageKey)

	require.Len(t, env.db.deleteCalls, 3)
	assert.Len(t, env.db.deleteCalls[0], 2)
	assert.Len(t, env.db.deleteCalls[1], 2)
	assert.Len(t, env.db.deleteCalls[2], 1)
	assert.Empty(t, env.db.chunksForDoc("acme", "doc-1"))
}

func TestCleaner_MissingDocumentIsQuiet(t *testing.T) {
	env := newCleanerEnv(Config{})

	// Nothing seeded; a repeated delete must not panic or error loudly.
	env.c.OnDocumentDeleted(context.Background(), "acme", "never-existed", "companies/acme/documents/never-existed/upload")

	assert.Empty(t, env.db.deleteCalls)
	assert.Equal(t, []string{"companies/acme/documents/never-existed/upload"}, env.obj.deleted)
}

func TestCleaner_EmptyStorageKeySkipsObjectDelete(t *testing.T) {
	env := newCleanerEnv(Config{})
	env.seedProcessed(t, "acme", "doc-1", 1)

	env.c.OnDocumentDeleted(context.Background(), "acme", "doc-1", "")

	assert.Empty(t, env.obj.deleted)
	assert.Empty(t, env.db.chunksForDoc("acme", "doc-1"))
}

func TestCleaner_LeavesOtherTenantsAlone(t *testing.T) {
	env := newCleanerEnv(Config{})
	doomed := env.seedProcessed(t, "acme", "doc-1", 2)
	env.seedProcessed(t, "globex", "doc-9", 2)
	ctx := context.Background()

	env.c.OnDocumentDeleted(ctx, "acme", "doc-1", doomed.StorageKey)

	assert.Empty(t, env.db.chunksForDoc("acme", "doc-1"))
	assert.Len(t, env.db.chunksForDoc("globex", "doc-9"), 2)
	matches, err := env.index.Query(ctx, "globex", []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}
