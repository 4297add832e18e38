package domain

import (
	"context"
	"time"
)

// CatalogStore is the durable metadata registry: the source of truth for
// "what datasets exist". Implemented by catalog.Repo.
type CatalogStore interface {
	Put(ctx context.Context, rec *DatasetRecord) error
	List(ctx context.Context) ([]DatasetRecord, error)
	Delete(ctx context.Context, id string) error
}

// ObjectInfo describes one stored blob as reported by a listing.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// BlobStore is the durable object store: the source of truth for "what
// bytes exist". Get returns an error satisfying errors.Is(err, blob.ErrNotFound)
// when the key does not resolve.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context) ([]ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// VectorIndex stores embedded text chunks for nearest-neighbor retrieval.
// Upsert is idempotent by chunk ID so concurrent or repeated backfill
// sweeps never duplicate rows.
type VectorIndex interface {
	Exists(ctx context.Context, sourceName string) (bool, error)
	Upsert(ctx context.Context, chunk *VectorChunk) error
	Nearest(ctx context.Context, embedding []float32, k int) ([]ScoredChunk, error)
}

// Embedder turns text into a fixed-length numeric vector.
// Implemented by embed.OllamaEmbedder.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// QueryEngine executes SQL over an ephemeral session materialized from the
// catalog and blob store. Implemented by engine.Federation.
type QueryEngine interface {
	Run(ctx context.Context, sqlQuery string) (*QueryResult, error)
}
