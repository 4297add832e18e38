package reconciler

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sucharith-p/personal-data-lake/internal/blob"
	"github.com/sucharith-p/personal-data-lake/internal/catalog"
	"github.com/sucharith-p/personal-data-lake/internal/codec"
	"github.com/sucharith-p/personal-data-lake/internal/db"
	"github.com/sucharith-p/personal-data-lake/internal/domain"
	"github.com/sucharith-p/personal-data-lake/internal/embed"
	"github.com/sucharith-p/personal-data-lake/internal/vector"
)

type fixture struct {
	svc     *Service
	catalog *catalog.Repo
	blobs   *blob.MemoryStore
	index   *vector.Index
}

func setupReconcilerTest(t *testing.T) *fixture {
	t.Helper()
	conn := db.OpenTestSQLite(t)
	repo := catalog.NewRepo(conn)
	blobs := blob.NewMemoryStore()
	index := vector.NewIndex(conn)
	svc := NewService(repo, blobs, index, embed.NewFakeEmbedder(8), slog.Default())
	return &fixture{svc: svc, catalog: repo, blobs: blobs, index: index}
}

// putDataset stores an encoded dataset and optionally registers it.
func (f *fixture) putDataset(t *testing.T, name string, register bool) string {
	t.Helper()
	ctx := context.Background()

	ds := &codec.Dataset{
		Columns: []string{"name", "qty"},
		Rows:    [][]interface{}{{"widget", int64(4)}, {"gadget", int64(7)}},
	}
	data, err := codec.Encode(ds, codec.InferSchema(ds), codec.FormatCSV)
	require.NoError(t, err)

	key := uuid.New().String() + "_" + name
	require.NoError(t, f.blobs.Put(ctx, key, data))
	if register {
		require.NoError(t, f.catalog.Put(ctx, &domain.DatasetRecord{
			ID:          uuid.New().String(),
			DisplayName: name,
			StorageKey:  key,
			Schema:      codec.InferSchema(ds),
			CreatedAt:   time.Now().UTC(),
			SizeBytes:   int64(len(data)),
		}))
	}
	return key
}

func TestCleanupOrphans_RemovesDanglingRecords(t *testing.T) {
	f := setupReconcilerTest(t)
	ctx := context.Background()

	f.putDataset(t, "healthy.csv", true)
	key := f.putDataset(t, "doomed.csv", true)
	require.NoError(t, f.blobs.Delete(ctx, key))

	report, err := f.svc.CleanupOrphans(ctx)
	require.NoError(t, err)
	assert.Len(t, report.Deleted, 1)
	assert.Zero(t, report.Failures)

	records, err := f.catalog.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "healthy.csv", records[0].DisplayName)
}

func TestCleanupOrphans_NeverDeletesBlobs(t *testing.T) {
	f := setupReconcilerTest(t)
	ctx := context.Background()

	// An unregistered blob is tolerated garbage, not a cleanup target.
	f.putDataset(t, "orphan_blob.csv", false)

	report, err := f.svc.CleanupOrphans(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Deleted)
	assert.Equal(t, 1, f.blobs.Len())
}

func TestBackfillEmbeddings_Idempotent(t *testing.T) {
	f := setupReconcilerTest(t)
	ctx := context.Background()

	f.putDataset(t, "inventory.csv", true)

	first, err := f.svc.BackfillEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Scanned)
	assert.Equal(t, 1, first.Embedded)

	count, err := f.index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one chunk per row")

	second, err := f.svc.BackfillEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Scanned)
	assert.Zero(t, second.Embedded)
	assert.Equal(t, 1, second.Skipped)

	count, err = f.index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "re-running inserts nothing new")
}

func TestBackfillEmbeddings_DecodeFailureIsCounted(t *testing.T) {
	f := setupReconcilerTest(t)
	ctx := context.Background()

	require.NoError(t, f.blobs.Put(ctx, "garbage.json", []byte("{not json")))
	f.putDataset(t, "inventory.csv", true)

	report, err := f.svc.BackfillEmbeddings(ctx)
	require.NoError(t, err, "a bad blob never fails the sweep")
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Embedded)
	assert.Equal(t, 1, report.Failures)
}

func TestBackfillEmbeddings_UnsupportedSuffixIsSkippedNotFailed(t *testing.T) {
	f := setupReconcilerTest(t)
	ctx := context.Background()

	require.NoError(t, f.blobs.Put(ctx, "notes.txt", []byte("free-form text")))
	f.putDataset(t, "inventory.csv", true)

	first, err := f.svc.BackfillEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Scanned)
	assert.Equal(t, 1, first.Embedded)
	assert.Equal(t, 1, first.Skipped)
	assert.Zero(t, first.Failures, "a suffix we will never support is not a failure")

	// The stray file stays skipped on later sweeps instead of failing forever.
	second, err := f.svc.BackfillEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Skipped)
	assert.Zero(t, second.Failures)
}

func TestChunkID_Deterministic(t *testing.T) {
	a := chunkID("key.csv", 0)
	b := chunkID("key.csv", 0)
	c := chunkID("key.csv", 1)
	d := chunkID("other.csv", 0)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	assert.Len(t, a, 32)
}

func TestRunner_SweepUpdatesStatus(t *testing.T) {
	f := setupReconcilerTest(t)
	ctx := context.Background()

	key := f.putDataset(t, "doomed.csv", true)
	require.NoError(t, f.blobs.Delete(ctx, key))
	f.putDataset(t, "inventory.csv", true)

	runner := NewRunner(f.svc, "@every 1h", slog.Default())
	runner.sweep(ctx)

	status := runner.Status()
	assert.Equal(t, 1, status.Runs)
	assert.Equal(t, 1, status.RecordsRemoved)
	assert.Equal(t, 1, status.BlobsEmbedded)
	assert.Empty(t, status.LastError)
	assert.False(t, status.LastRun.IsZero())
}
