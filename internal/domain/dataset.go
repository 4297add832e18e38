// Package domain defines core types, interfaces, and errors for the data lake.
package domain

import "time"

// DatasetRecord is one row of the metadata catalog: the durable mapping from
// a dataset's identity to its storage location and advisory schema.
//
// Records are immutable after creation. Re-uploading a file with the same
// display name creates a new record under a fresh storage key; it never
// mutates an existing one.
type DatasetRecord struct {
	ID          string
	DisplayName string
	StorageKey  string
	Schema      map[string]string
	CreatedAt   time.Time
	SizeBytes   int64
}

// QueryResult holds the structured output of a federated SQL query.
// Rows preserve the engine's native column ordering and row order.
type QueryResult struct {
	Columns  []string
	Rows     [][]interface{}
	RowCount int
}

// VectorChunk is one embedded text chunk in the semantic index.
// ID is deterministic for a given (source, chunk index) pair so repeated
// backfill sweeps converge on the same rows.
type VectorChunk struct {
	ID         string
	SourceName string
	Text       string
	Embedding  []float32
	CreatedAt  time.Time
}

// ScoredChunk is a VectorChunk with its distance to a query embedding.
type ScoredChunk struct {
	VectorChunk
	Distance float64
}

// DatasetInfo is the drift-tolerant listing view: catalog metadata joined
// with the live blob listing (size and modified time come from storage).
type DatasetInfo struct {
	DisplayName  string
	StorageKey   string
	SizeBytes    int64
	LastModified time.Time
}

// CleanupReport summarizes one orphan-cleanup sweep.
type CleanupReport struct {
	Deleted  []string
	Failures int
}

// BackfillReport summarizes one embedding-backfill sweep.
type BackfillReport struct {
	Scanned  int
	Embedded int
	Skipped  int
	Failures int
}
