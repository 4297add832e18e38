// Package ingest implements the upload pipeline: encode a dataset per its
// display name's suffix, write the blob, then register a catalog record.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sucharith-p/personal-data-lake/internal/codec"
	"github.com/sucharith-p/personal-data-lake/internal/domain"
)

// Service writes dataset payloads to blob storage and registers them in the
// catalog. The two writes are not atomic: blob put happens first, so a
// failure in between leaves an orphan blob that the reconciler tolerates.
// The reverse order would leave a record pointing at nothing, which would
// poison every query until cleanup.
type Service struct {
	catalog domain.CatalogStore
	blobs   domain.BlobStore
	logger  *slog.Logger
}

// NewService creates an ingestion service.
func NewService(catalog domain.CatalogStore, blobs domain.BlobStore, logger *slog.Logger) *Service {
	return &Service{catalog: catalog, blobs: blobs, logger: logger}
}

// Ingest encodes ds according to displayName's suffix and stores it.
// Re-uploading an existing display name creates a brand new record under a
// fresh storage key; the old record stays untouched.
func (s *Service) Ingest(ctx context.Context, displayName string, ds *codec.Dataset, schema map[string]string) (*domain.DatasetRecord, error) {
	if strings.TrimSpace(displayName) == "" {
		return nil, domain.ErrValidation("display name is required")
	}
	format, err := codec.FormatForName(displayName)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		schema = codec.InferSchema(ds)
	}

	data, err := codec.Encode(ds, schema, format)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}

	record := &domain.DatasetRecord{
		ID:          uuid.New().String(),
		DisplayName: displayName,
		StorageKey:  uuid.New().String() + "_" + sanitizeName(displayName),
		Schema:      schema,
		CreatedAt:   time.Now().UTC(),
		SizeBytes:   int64(len(data)),
	}

	if err := s.blobs.Put(ctx, record.StorageKey, data); err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}
	if err := s.catalog.Put(ctx, record); err != nil {
		// The blob is now an orphan; the reconciler's listing treats
		// unregistered keys as tolerated garbage.
		return nil, fmt.Errorf("register dataset: %w", err)
	}

	s.logger.Info("dataset ingested",
		"dataset", displayName, "key", record.StorageKey, "bytes", record.SizeBytes)
	return record, nil
}

// sanitizeName makes a display name safe for use inside a storage key.
func sanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
