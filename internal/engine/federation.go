// Package engine implements the federated query engine: every call
// materializes all cataloged datasets into a fresh in-process DuckDB
// session and executes one SQL statement against it.
package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // duckdb driver
	"golang.org/x/sync/errgroup"

	"github.com/sucharith-p/personal-data-lake/internal/blob"
	"github.com/sucharith-p/personal-data-lake/internal/codec"
	"github.com/sucharith-p/personal-data-lake/internal/domain"
)

// fetchConcurrency bounds parallel blob downloads during materialization.
const fetchConcurrency = 4

// Federation executes SQL over an ephemeral session rebuilt from the
// catalog and blob store on every call. No session state survives a call,
// so concurrent queries never interfere.
type Federation struct {
	catalog domain.CatalogStore
	blobs   domain.BlobStore
	logger  *slog.Logger
}

// NewFederation creates a federation engine.
func NewFederation(catalog domain.CatalogStore, blobs domain.BlobStore, logger *slog.Logger) *Federation {
	return &Federation{catalog: catalog, blobs: blobs, logger: logger}
}

// Run materializes every cataloged dataset as a table and executes sqlQuery
// against the session.
//
// Missing blobs are skipped, not fatal: the catalog may lag storage reality
// between reconciler sweeps, and a query over the remaining datasets is more
// useful than an error. Execution failures surface as a QueryError carrying
// DuckDB's message verbatim.
func (f *Federation) Run(ctx context.Context, sqlQuery string) (*domain.QueryResult, error) {
	records, err := f.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	session, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open query session: %w", err)
	}
	defer session.Close() //nolint:errcheck

	tmpDir, err := os.MkdirTemp("", "lake-query-")
	if err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	defer os.RemoveAll(tmpDir) //nolint:errcheck

	payloads := f.fetchAll(ctx, records)

	// Register in catalog order so that when two display names derive the
	// same table name, the later-registered record wins the binding.
	for i, rec := range records {
		if payloads[i] == nil {
			continue
		}
		if err := f.register(ctx, session, tmpDir, i, &rec, payloads[i]); err != nil {
			f.logger.Warn("skipping dataset", "dataset", rec.DisplayName, "key", rec.StorageKey, "error", err)
		}
	}

	rows, err := session.QueryContext(ctx, sqlQuery)
	if err != nil {
		return nil, domain.ErrQuery("%s", err.Error())
	}
	defer rows.Close() //nolint:errcheck

	result, err := scanRows(rows)
	if err != nil {
		return nil, domain.ErrQuery("read result: %s", err.Error())
	}
	return result, nil
}

// fetchAll downloads every record's blob concurrently. A missing or
// unreadable blob yields a nil payload and a warning, never an error.
func (f *Federation) fetchAll(ctx context.Context, records []domain.DatasetRecord) [][]byte {
	payloads := make([][]byte, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, rec := range records {
		g.Go(func() error {
			data, err := f.blobs.Get(gctx, rec.StorageKey)
			if err != nil {
				if errors.Is(err, blob.ErrNotFound) {
					f.logger.Warn("blob missing for cataloged dataset",
						"dataset", rec.DisplayName, "key", rec.StorageKey)
				} else {
					f.logger.Warn("blob fetch failed",
						"dataset", rec.DisplayName, "key", rec.StorageKey, "error", err)
				}
				return nil
			}
			payloads[i] = data
			return nil
		})
	}
	_ = g.Wait() // workers never return errors
	return payloads
}

// register writes the payload to a session-scoped file and creates a table
// over it using DuckDB's native readers.
func (f *Federation) register(ctx context.Context, session *sql.DB, tmpDir string, idx int, rec *domain.DatasetRecord, data []byte) error {
	format, err := codec.FormatForName(rec.DisplayName)
	if err != nil {
		return err
	}

	path := filepath.Join(tmpDir, fmt.Sprintf("ds_%d.%s", idx, format))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("stage dataset file: %w", err)
	}

	stmt := fmt.Sprintf(`CREATE OR REPLACE TABLE %s AS SELECT * FROM %s(%s)`,
		quoteIdent(TableName(rec.DisplayName)), readerFunc(format), quoteString(path))
	if _, err := session.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("materialize table: %w", err)
	}
	return nil
}

func readerFunc(format codec.Format) string {
	switch format {
	case codec.FormatParquet:
		return "read_parquet"
	case codec.FormatJSON:
		return "read_json_auto"
	default:
		return "read_csv_auto"
	}
}

// TableName derives the session table identifier from a display name:
// the file extension is stripped and spaces become underscores.
func TableName(displayName string) string {
	name := strings.TrimSuffix(displayName, filepath.Ext(displayName))
	return strings.ReplaceAll(name, " ", "_")
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteString(s string) string {
	return `'` + strings.ReplaceAll(s, `'`, `''`) + `'`
}

func scanRows(rows *sql.Rows) (*domain.QueryResult, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var resultRows [][]interface{}
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		// Convert byte slices to strings for JSON serialization
		row := make([]interface{}, len(vals))
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				row[i] = string(b)
			} else {
				row[i] = v
			}
		}
		resultRows = append(resultRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.QueryResult{
		Columns:  cols,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}

var _ domain.QueryEngine = (*Federation)(nil)
