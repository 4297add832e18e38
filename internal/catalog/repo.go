// Package catalog implements the SQLite-backed dataset metadata catalog.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sucharith-p/personal-data-lake/internal/domain"
)

// createdAtLayout is a fixed-width RFC3339 variant: the fractional second
// always carries nine digits. List orders by the stored text, and variable
// width fractions (RFC3339Nano strips trailing zeros) would make two
// same-second timestamps compare out of registration order.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Repo persists DatasetRecords in the SQLite metastore.
type Repo struct {
	db *sql.DB
}

// NewRepo creates a catalog repository over an open (and migrated) database.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Put inserts a new dataset record. Records are insert-only: the storage key
// carries a UNIQUE constraint, so two writers racing on the same key conflict
// instead of corrupting state.
func (r *Repo) Put(ctx context.Context, rec *domain.DatasetRecord) error {
	schemaJSON, err := json.Marshal(rec.Schema)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO datasets (id, display_name, storage_key, schema_json, created_at, size_bytes)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.DisplayName, rec.StorageKey, string(schemaJSON),
		rec.CreatedAt.UTC().Format(createdAtLayout), rec.SizeBytes,
	)
	if err != nil {
		return fmt.Errorf("insert dataset %q: %w", rec.DisplayName, err)
	}
	return nil
}

// List returns every dataset record in registration order.
func (r *Repo) List(ctx context.Context) ([]domain.DatasetRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, display_name, storage_key, schema_json, created_at, size_bytes
		FROM datasets
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var records []domain.DatasetRecord
	for rows.Next() {
		var (
			rec        domain.DatasetRecord
			schemaJSON string
			createdAt  string
		)
		if err := rows.Scan(&rec.ID, &rec.DisplayName, &rec.StorageKey,
			&schemaJSON, &createdAt, &rec.SizeBytes); err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		if err := json.Unmarshal([]byte(schemaJSON), &rec.Schema); err != nil {
			return nil, fmt.Errorf("unmarshal schema for %q: %w", rec.DisplayName, err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			rec.CreatedAt = ts
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Delete removes a dataset record by id. Deleting a missing id returns NotFound.
func (r *Repo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete dataset %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound("dataset %s not found", id)
	}
	return nil
}

var _ domain.CatalogStore = (*Repo)(nil)
