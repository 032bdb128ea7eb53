package ingest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/models"
)

// fakeDB is an in-memory DbClient covering only what the pipeline and the
// cleaner touch. It records delete batch sizes and status transitions so
// tests can assert ordering and batching.
type fakeDB struct {
	mu          sync.Mutex
	users       map[string]*models.User
	docs        map[string]*models.Document
	chunks      map[string]models.DocumentChunk
	statusLog   map[string][]models.DocumentStatus
	deleteCalls [][]string
	docsDeleted []string
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:     map[string]*models.User{},
		docs:      map[string]*models.Document{},
		chunks:    map[string]models.DocumentChunk{},
		statusLog: map[string][]models.DocumentStatus{},
	}
}

func docKey(companyID, docID string) string { return companyID + "/" + docID }

func (f *fakeDB) CreateUser(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.Email] = user
	return nil
}

func (f *fakeDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, fmt.Errorf("user %s not found", email)
	}
	return u, nil
}

func (f *fakeDB) CreateDocument(ctx context.Context, doc *models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *doc
	f.docs[docKey(doc.CompanyID, doc.ID)] = &cp
	return nil
}

func (f *fakeDB) GetDocument(ctx context.Context, companyID, docID string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[docKey(companyID, docID)]
	if !ok {
		return nil, core.ErrDocumentNotFound
	}
	cp := *doc
	return &cp, nil
}

func (f *fakeDB) ListDocumentsByCompany(ctx context.Context, companyID string) ([]models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Document
	for _, d := range f.docs {
		if d.CompanyID == companyID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDB) SetDocumentStatus(ctx context.Context, companyID, docID string, status models.DocumentStatus, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[docKey(companyID, docID)]
	if !ok {
		return core.ErrDocumentNotFound
	}
	doc.Status = status
	doc.ErrorMessage = errMsg
	f.statusLog[docID] = append(f.statusLog[docID], status)
	return nil
}

func (f *fakeDB) MarkDocumentProcessed(ctx context.Context, companyID, docID, extractedText string, chunkCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[docKey(companyID, docID)]
	if !ok {
		return core.ErrDocumentNotFound
	}
	doc.Status = models.StatusProcessed
	doc.ExtractedText = extractedText
	doc.ChunkCount = chunkCount
	doc.ErrorMessage = ""
	f.statusLog[docID] = append(f.statusLog[docID], models.StatusProcessed)
	return nil
}

func (f *fakeDB) DeleteDocument(ctx context.Context, companyID, docID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := docKey(companyID, docID)
	if _, ok := f.docs[key]; !ok {
		return core.ErrDocumentNotFound
	}
	delete(f.docs, key)
	f.docsDeleted = append(f.docsDeleted, docID)
	return nil
}

func (f *fakeDB) UpsertChunks(ctx context.Context, chunks []models.DocumentChunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range chunks {
		f.chunks[c.ID] = c
	}
	return nil
}

func (f *fakeDB) ListChunkIDs(ctx context.Context, companyID, docID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []models.DocumentChunk
	for _, c := range f.chunks {
		if c.CompanyID == companyID && c.DocumentID == docID {
			rows = append(rows, c)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ChunkIndex < rows[j].ChunkIndex })
	ids := make([]string, len(rows))
	for i, c := range rows {
		ids[i] = c.ID
	}
	return ids, nil
}

func (f *fakeDB) GetChunksByIDs(ctx context.Context, companyID string, ids []string) ([]models.DocumentChunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.DocumentChunk
	for _, id := range ids {
		if c, ok := f.chunks[id]; ok && c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeDB) DeleteChunksByIDs(ctx context.Context, companyID string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, ids)
	for _, id := range ids {
		if c, ok := f.chunks[id]; ok && c.CompanyID == companyID {
			delete(f.chunks, id)
		}
	}
	return nil
}

func (f *fakeDB) Close() error { return nil }

func (f *fakeDB) chunksForDoc(companyID, docID string) []models.DocumentChunk {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.DocumentChunk
	for _, c := range f.chunks {
		if c.CompanyID == companyID && c.DocumentID == docID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChunkIndex < out[j].ChunkIndex })
	return out
}

// fakeObjectStore keeps uploads in a map and treats missing keys on delete
// as success, matching the S3 client's behaviour.
type fakeObjectStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{files: map[string][]byte{}}
}

func (f *fakeObjectStore) UploadFile(ctx context.Context, key string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[key] = data
	return nil
}

func (f *fakeObjectStore) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return data, nil
}

func (f *fakeObjectStore) DeleteFile(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, key)
	f.deleted = append(f.deleted, key)
	return nil
}

// fakeEmbedder returns a deterministic non-zero vector per text. Individual
// calls can be made to fail through failCalls (1-based call numbers), and
// failAll simulates a provider outage.
type fakeEmbedder struct {
	mu        sync.Mutex
	calls     int
	failCalls map[int]bool
	failAll   bool
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failAll || f.failCalls[f.calls] {
		return nil, fmt.Errorf("embedding provider unavailable")
	}
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = []float32{1, float32(len(texts[i]) % 7)}
	}
	return vecs, nil
}

// fakeNotifier records every notice it is handed.
type fakeNotifier struct {
	mu      sync.Mutex
	notices []string
}

func (f *fakeNotifier) Notify(ctx context.Context, userID, title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, title)
	return nil
}

func (f *fakeNotifier) titles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.notices...)
}

// failingIndex rejects every upsert, for exercising the rollback path.
type failingIndex struct {
	core.VectorIndex
}

func (failingIndex) Upsert(ctx context.Context, companyID string, entries []core.VectorEntry) error {
	return fmt.Errorf("%w: upsert refused", core.ErrIndexUnavailable)
}
