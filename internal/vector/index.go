// Package vector implements the SQLite-backed semantic index of embedded
// dataset chunks.
package vector

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sucharith-p/personal-data-lake/internal/domain"
)

// Index stores (chunk, embedding) pairs and answers nearest-neighbor
// queries by brute-force cosine distance. At personal-lake scale a linear
// scan over a few thousand chunks beats maintaining an ANN structure.
type Index struct {
	db *sql.DB
}

// NewIndex creates a vector index over an open (and migrated) database.
func NewIndex(db *sql.DB) *Index {
	return &Index{db: db}
}

// Exists reports whether any chunk of the given source blob is indexed.
func (ix *Index) Exists(ctx context.Context, sourceName string) (bool, error) {
	var one int
	err := ix.db.QueryRowContext(ctx,
		`SELECT 1 FROM vector_chunks WHERE source_name = ? LIMIT 1`, sourceName,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check chunks for %q: %w", sourceName, err)
	}
	return true, nil
}

// Upsert inserts a chunk if its id is absent. Chunk ids are deterministic
// per (source, chunk index), so repeated or concurrent sweeps converge on the
// same rows instead of duplicating them.
func (ix *Index) Upsert(ctx context.Context, chunk *domain.VectorChunk) error {
	createdAt := chunk.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := ix.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO vector_chunks (id, source_name, chunk_text, embedding, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		chunk.ID, chunk.SourceName, chunk.Text,
		packEmbedding(chunk.Embedding), createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert chunk %s: %w", chunk.ID, err)
	}
	return nil
}

// Count returns the total number of indexed chunks.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vector_chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// Nearest returns the k chunks closest to the query embedding, ordered by
// ascending cosine distance.
func (ix *Index) Nearest(ctx context.Context, embedding []float32, k int) ([]domain.ScoredChunk, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT id, source_name, chunk_text, embedding, created_at FROM vector_chunks`)
	if err != nil {
		return nil, fmt.Errorf("scan chunks: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var scored []domain.ScoredChunk
	for rows.Next() {
		var (
			chunk     domain.VectorChunk
			packed    []byte
			createdAt string
		)
		if err := rows.Scan(&chunk.ID, &chunk.SourceName, &chunk.Text, &packed, &createdAt); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunk.Embedding = unpackEmbedding(packed)
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			chunk.CreatedAt = ts
		}
		scored = append(scored, domain.ScoredChunk{
			VectorChunk: chunk,
			Distance:    cosineDistance(embedding, chunk.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Distance < scored[j].Distance })
	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// packEmbedding encodes a vector as little-endian float32 bytes.
func packEmbedding(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func unpackEmbedding(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

// cosineDistance is 1 - cosine similarity. Mismatched or zero-norm vectors
// sort last.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.MaxFloat64
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return math.MaxFloat64
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

var _ domain.VectorIndex = (*Index)(nil)
