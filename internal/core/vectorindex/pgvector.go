package vectorindex

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core"
)

var _ core.VectorIndex = (*PGVector)(nil)

// PGVector stores embeddings in a pgvector table partitioned by company id
// and ranks with the cosine distance operator. It shares the service's
// Postgres connection pool, so index and document store stay on one database
// even though callers treat them as separate collaborators.
type PGVector struct {
	db *sql.DB
}

func NewPGVector(db *sql.DB) *PGVector {
	return &PGVector{db: db}
}

func (p *PGVector) Upsert(ctx context.Context, companyID string, entries []core.VectorEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", core.ErrIndexUnavailable, err)
	}

	const q = `
		INSERT INTO chunk_vectors (chunk_id, company_id, embedding)
		VALUES ($1, $2, $3)
		ON CONFLICT (chunk_id)
		DO UPDATE SET company_id = EXCLUDED.company_id, embedding = EXCLUDED.embedding
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: prepare upsert: %v", core.ErrIndexUnavailable, err)
	}
	defer stmt.Close()

	for _, e := range entries {
		// Zero vectors carry no geometry; leaving them out keeps the cosine
		// operator well-defined and ranks the degraded chunks last.
		if isZero(e.Vector) {
			continue
		}
		if _, err := stmt.ExecContext(ctx, e.ChunkID, companyID, pgvector.NewVector(e.Vector)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%w: upsert %s: %v", core.ErrIndexUnavailable, e.ChunkID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit upsert: %v", core.ErrIndexUnavailable, err)
	}
	return nil
}

func (p *PGVector) Remove(ctx context.Context, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}
	const q = `DELETE FROM chunk_vectors WHERE chunk_id = ANY($1)`
	if _, err := p.db.ExecContext(ctx, q, chunkIDs); err != nil {
		return fmt.Errorf("%w: remove: %v", core.ErrIndexUnavailable, err)
	}
	return nil
}

func (p *PGVector) Query(ctx context.Context, companyID string, vector []float32, k int) ([]core.VectorMatch, error) {
	if k <= 0 {
		return nil, nil
	}
	const q = `
		SELECT chunk_id, 1 - (embedding <=> $2) AS score
		FROM chunk_vectors
		WHERE company_id = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := p.db.QueryContext(ctx, q, companyID, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", core.ErrIndexUnavailable, err)
	}
	defer rows.Close()

	var out []core.VectorMatch
	for rows.Next() {
		var m core.VectorMatch
		if err := rows.Scan(&m.ChunkID, &m.Score); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", core.ErrIndexUnavailable, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", core.ErrIndexUnavailable, err)
	}
	return out, nil
}
