// Package reconciler keeps the catalog, blob store, and vector index
// converging: it deletes catalog records whose blobs vanished and backfills
// embeddings for blobs the vector index has not seen yet.
package reconciler

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sucharith-p/personal-data-lake/internal/blob"
	"github.com/sucharith-p/personal-data-lake/internal/codec"
	"github.com/sucharith-p/personal-data-lake/internal/domain"
)

// Service runs the two reconciliation sweeps. Sweeps never fail an entire
// run over one bad item: per-item failures are logged and counted in the
// returned report.
type Service struct {
	catalog domain.CatalogStore
	blobs   domain.BlobStore
	index   domain.VectorIndex
	embed   domain.Embedder
	logger  *slog.Logger
}

// NewService creates a reconciler service.
func NewService(catalog domain.CatalogStore, blobs domain.BlobStore, index domain.VectorIndex, embed domain.Embedder, logger *slog.Logger) *Service {
	return &Service{catalog: catalog, blobs: blobs, index: index, embed: embed, logger: logger}
}

// CleanupOrphans deletes catalog records whose storage key no longer exists
// in the blob store. It only ever touches records; blobs without records are
// left alone, since deleting data to fix metadata is the wrong direction.
func (s *Service) CleanupOrphans(ctx context.Context) (*domain.CleanupReport, error) {
	records, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	objects, err := s.blobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}

	live := make(map[string]struct{}, len(objects))
	for _, obj := range objects {
		live[obj.Key] = struct{}{}
	}

	report := &domain.CleanupReport{}
	for _, rec := range records {
		if _, ok := live[rec.StorageKey]; ok {
			continue
		}
		if err := s.catalog.Delete(ctx, rec.ID); err != nil {
			s.logger.Warn("orphan record delete failed",
				"dataset", rec.DisplayName, "id", rec.ID, "error", err)
			report.Failures++
			continue
		}
		s.logger.Info("orphan record removed", "dataset", rec.DisplayName, "key", rec.StorageKey)
		report.Deleted = append(report.Deleted, rec.ID)
	}
	return report, nil
}

// BackfillEmbeddings embeds every blob the vector index has not indexed yet.
// Each row is flattened to text and upserted under a deterministic chunk id,
// so re-running the sweep over the same blob inserts nothing new.
func (s *Service) BackfillEmbeddings(ctx context.Context) (*domain.BackfillReport, error) {
	objects, err := s.blobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}

	report := &domain.BackfillReport{}
	for _, obj := range objects {
		report.Scanned++

		// An unrecognized suffix is permanent, not transient: count it as
		// skipped so one stray file does not report failures on every sweep.
		if _, err := codec.FormatForName(obj.Key); err != nil {
			s.logger.Info("skipping blob with unsupported suffix", "key", obj.Key)
			report.Skipped++
			continue
		}

		indexed, err := s.index.Exists(ctx, obj.Key)
		if err != nil {
			s.logger.Warn("index lookup failed", "key", obj.Key, "error", err)
			report.Failures++
			continue
		}
		if indexed {
			report.Skipped++
			continue
		}

		if err := s.embedBlob(ctx, obj.Key); err != nil {
			s.logger.Warn("embedding backfill failed", "key", obj.Key, "error", err)
			report.Failures++
			continue
		}
		report.Embedded++
	}
	return report, nil
}

func (s *Service) embedBlob(ctx context.Context, key string) error {
	data, err := s.blobs.Get(ctx, key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return fmt.Errorf("blob vanished during sweep")
		}
		return fmt.Errorf("fetch blob: %w", err)
	}

	format, err := codec.FormatForName(key)
	if err != nil {
		return fmt.Errorf("unrecognized suffix: %w", err)
	}
	ds, err := codec.Decode(data, format)
	if err != nil {
		return fmt.Errorf("decode %s: %w", format, err)
	}

	now := time.Now().UTC()
	for i, row := range ds.Rows {
		text := codec.RowText(row)
		embedding, err := s.embed.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("embed row: %w", err)
		}
		chunk := &domain.VectorChunk{
			ID:         chunkID(key, i),
			SourceName: key,
			Text:       text,
			Embedding:  embedding,
			CreatedAt:  now,
		}
		if err := s.index.Upsert(ctx, chunk); err != nil {
			return fmt.Errorf("upsert chunk: %w", err)
		}
	}
	return nil
}

// chunkID derives a stable id from the blob key and row position, which is
// what makes the backfill idempotent across sweeps.
func chunkID(key string, index int) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s_%d", key, index)))
	return hex.EncodeToString(sum[:])
}
