package ingest

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sucharith-p/personal-data-lake/internal/blob"
	"github.com/sucharith-p/personal-data-lake/internal/catalog"
	"github.com/sucharith-p/personal-data-lake/internal/codec"
	"github.com/sucharith-p/personal-data-lake/internal/db"
	"github.com/sucharith-p/personal-data-lake/internal/domain"
)

func setupIngestTest(t *testing.T) (*Service, *catalog.Repo, *blob.MemoryStore) {
	t.Helper()
	repo := catalog.NewRepo(db.OpenTestSQLite(t))
	blobs := blob.NewMemoryStore()
	return NewService(repo, blobs, slog.Default()), repo, blobs
}

func sampleDataset() *codec.Dataset {
	return &codec.Dataset{
		Columns: []string{"name", "qty"},
		Rows: [][]interface{}{
			{"widget", int64(4)},
			{"gadget", int64(7)},
		},
	}
}

func TestIngest_WritesBlobThenRecord(t *testing.T) {
	svc, repo, blobs := setupIngestTest(t)
	ctx := context.Background()

	record, err := svc.Ingest(ctx, "inventory.csv", sampleDataset(), nil)
	require.NoError(t, err)

	assert.Equal(t, "inventory.csv", record.DisplayName)
	assert.True(t, strings.HasSuffix(record.StorageKey, "_inventory.csv"))
	assert.Equal(t, codec.TypeString, record.Schema["name"])
	assert.Equal(t, codec.TypeInteger, record.Schema["qty"])

	data, err := blobs.Get(ctx, record.StorageKey)
	require.NoError(t, err)
	assert.EqualValues(t, len(data), record.SizeBytes)

	got, err := codec.Decode(data, codec.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, sampleDataset().Rows, got.Rows)

	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, record.StorageKey, records[0].StorageKey)
}

func TestIngest_ReuploadCreatesNewRecord(t *testing.T) {
	svc, repo, _ := setupIngestTest(t)
	ctx := context.Background()

	first, err := svc.Ingest(ctx, "inventory.csv", sampleDataset(), nil)
	require.NoError(t, err)
	second, err := svc.Ingest(ctx, "inventory.csv", sampleDataset(), nil)
	require.NoError(t, err)

	assert.NotEqual(t, first.StorageKey, second.StorageKey)
	records, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestIngest_UnsupportedSuffix(t *testing.T) {
	svc, _, blobs := setupIngestTest(t)

	_, err := svc.Ingest(context.Background(), "report.xlsx", sampleDataset(), nil)
	require.Error(t, err)
	var formatErr *domain.UnsupportedFormatError
	assert.ErrorAs(t, err, &formatErr)
	assert.Zero(t, blobs.Len(), "nothing written for rejected formats")
}

func TestIngest_EmptyNameRejected(t *testing.T) {
	svc, _, _ := setupIngestTest(t)

	_, err := svc.Ingest(context.Background(), "   ", sampleDataset(), nil)
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "orders.parquet", sanitizeName("orders.parquet"))
	assert.Equal(t, "my_sales_2024.csv", sanitizeName("my sales/2024.csv"))
	assert.Equal(t, "..__etc_passwd", sanitizeName("../\\etc passwd"))
}
