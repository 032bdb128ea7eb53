package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/config"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/models"
)

var _ core.DbClient = (*DatabaseClient)(nil)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// DB exposes the underlying pool so the pgvector index can share it.
func (c *DatabaseClient) DB() *sql.DB {
	return c.db
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, company_id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.CompanyID, user.Email, user.PasswordHash, user.CreatedAt)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, company_id, email, password_hash, created_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.CompanyID, &u.Email, &u.PasswordHash, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Documents

func (c *DatabaseClient) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	const q = `
		INSERT INTO documents
			(id, company_id, uploaded_by, file_name, content_type, size_bytes,
			 storage_key, status, chunk_count, created_at, status_changed_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, 0, COALESCE($9, now()), COALESCE($9, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		doc.ID, doc.CompanyID, doc.UploadedBy, doc.FileName, doc.ContentType,
		doc.SizeBytes, doc.StorageKey, doc.Status, doc.CreatedAt)
	return err
}

func (c *DatabaseClient) GetDocument(ctx context.Context, companyID, docID string) (*models.Document, error) {
	const q = `
		SELECT id, company_id, uploaded_by, file_name, content_type, size_bytes,
		       storage_key, status, COALESCE(extracted_text, ''), chunk_count,
		       COALESCE(error_message, ''), created_at, status_changed_at
		FROM documents
		WHERE company_id = $1 AND id = $2
	`
	var d models.Document
	err := c.db.QueryRowContext(ctx, q, companyID, docID).Scan(
		&d.ID, &d.CompanyID, &d.UploadedBy, &d.FileName, &d.ContentType, &d.SizeBytes,
		&d.StorageKey, &d.Status, &d.ExtractedText, &d.ChunkCount,
		&d.ErrorMessage, &d.CreatedAt, &d.StatusChangedAt,
	)
	if err == sql.ErrNoRows {
		return nil, core.ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DatabaseClient) ListDocumentsByCompany(ctx context.Context, companyID string) ([]models.Document, error) {
	const q = `
		SELECT id, company_id, uploaded_by, file_name, content_type, size_bytes,
		       storage_key, status, chunk_count, COALESCE(error_message, ''),
		       created_at, status_changed_at
		FROM documents
		WHERE company_id = $1
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(
			&d.ID, &d.CompanyID, &d.UploadedBy, &d.FileName, &d.ContentType, &d.SizeBytes,
			&d.StorageKey, &d.Status, &d.ChunkCount, &d.ErrorMessage,
			&d.CreatedAt, &d.StatusChangedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) SetDocumentStatus(ctx context.Context, companyID, docID string, status models.DocumentStatus, errMsg string) error {
	const q = `
		UPDATE documents
		SET status = $3, error_message = $4, status_changed_at = now()
		WHERE company_id = $1 AND id = $2
	`
	res, err := c.db.ExecContext(ctx, q, companyID, docID, status, errMsg)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.ErrDocumentNotFound
	}
	return nil
}

// MarkDocumentProcessed records the extracted text and chunk count in the
// same write as the status flip, so a processed document never shows a
// chunk count from an earlier run.
func (c *DatabaseClient) MarkDocumentProcessed(ctx context.Context, companyID, docID, extractedText string, chunkCount int) error {
	const q = `
		UPDATE documents
		SET status = 'processed', extracted_text = $3, chunk_count = $4,
		    error_message = '', status_changed_at = now()
		WHERE company_id = $1 AND id = $2
	`
	res, err := c.db.ExecContext(ctx, q, companyID, docID, extractedText, chunkCount)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.ErrDocumentNotFound
	}
	return nil
}

func (c *DatabaseClient) DeleteDocument(ctx context.Context, companyID, docID string) error {
	const q = `DELETE FROM documents WHERE company_id = $1 AND id = $2`
	res, err := c.db.ExecContext(ctx, q, companyID, docID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.ErrDocumentNotFound
	}
	return nil
}

// Chunks

// UpsertChunks writes chunk rows in a single transaction. Deterministic ids
// make this an overwrite on re-ingestion rather than a duplicate insert.
func (c *DatabaseClient) UpsertChunks(ctx context.Context, chunks []models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO document_chunks
			(id, document_id, company_id, content, start_offset, end_offset,
			 chunk_index, total_chunks, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, now()))
		ON CONFLICT (id)
		DO UPDATE SET content = EXCLUDED.content,
		              start_offset = EXCLUDED.start_offset,
		              end_offset = EXCLUDED.end_offset,
		              chunk_index = EXCLUDED.chunk_index,
		              total_chunks = EXCLUDED.total_chunks,
		              embedding = EXCLUDED.embedding
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		var vec any
		if len(ch.Embedding) > 0 {
			vec = pgvector.NewVector(ch.Embedding)
		}
		if _, err := stmt.ExecContext(ctx,
			ch.ID, ch.DocumentID, ch.CompanyID, ch.Content, ch.StartOffset, ch.EndOffset,
			ch.ChunkIndex, ch.TotalChunks, vec, ch.CreatedAt,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (c *DatabaseClient) ListChunkIDs(ctx context.Context, companyID, docID string) ([]string, error) {
	const q = `
		SELECT id FROM document_chunks
		WHERE company_id = $1 AND document_id = $2
		ORDER BY chunk_index ASC
	`
	rows, err := c.db.QueryContext(ctx, q, companyID, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) GetChunksByIDs(ctx context.Context, companyID string, ids []string) ([]models.DocumentChunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const q = `
		SELECT id, document_id, company_id, content, start_offset, end_offset,
		       chunk_index, total_chunks, embedding, created_at
		FROM document_chunks
		WHERE company_id = $1 AND id = ANY($2)
	`
	rows, err := c.db.QueryContext(ctx, q, companyID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DocumentChunk
	for rows.Next() {
		var (
			ch  models.DocumentChunk
			emb *pgvector.Vector
		)
		if err := rows.Scan(
			&ch.ID, &ch.DocumentID, &ch.CompanyID, &ch.Content, &ch.StartOffset, &ch.EndOffset,
			&ch.ChunkIndex, &ch.TotalChunks, &emb, &ch.CreatedAt,
		); err != nil {
			return nil, err
		}
		if emb != nil {
			ch.Embedding = emb.Slice()
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) DeleteChunksByIDs(ctx context.Context, companyID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	const q = `DELETE FROM document_chunks WHERE company_id = $1 AND id = ANY($2)`
	_, err := c.db.ExecContext(ctx, q, companyID, ids)
	return err
}
