package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_AllVarsSet(t *testing.T) {
	t.Setenv("S3_ACCESS_KEY", "testkey")
	t.Setenv("S3_SECRET_KEY", "testsecret")
	t.Setenv("S3_ENDPOINT_URL", "s3.example.com")
	t.Setenv("S3_REGION", "us-east-2")
	t.Setenv("S3_BUCKET_NAME", "test-bucket")
	t.Setenv("CATALOG_DB_PATH", "/tmp/test.sqlite")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	require.NotNil(t, cfg.S3KeyID)
	assert.Equal(t, "testkey", *cfg.S3KeyID)
	require.NotNil(t, cfg.S3Bucket)
	assert.Equal(t, "test-bucket", *cfg.S3Bucket)
	assert.Equal(t, "/tmp/test.sqlite", cfg.CatalogDBPath)
	assert.True(t, cfg.HasS3Config())
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("S3_ACCESS_KEY", "")
	t.Setenv("S3_SECRET_KEY", "")
	t.Setenv("S3_ENDPOINT_URL", "")
	t.Setenv("S3_REGION", "")
	t.Setenv("S3_BUCKET_NAME", "")
	t.Setenv("CATALOG_DB_PATH", "")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Nil(t, cfg.S3KeyID)
	assert.Nil(t, cfg.S3Bucket)
	assert.Equal(t, "lake_catalog.sqlite", cfg.CatalogDBPath)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "http://localhost:11434", cfg.OllamaURL)
	assert.Equal(t, "all-minilm", cfg.EmbedModel)
	assert.Equal(t, "@every 10m", cfg.ReconcileSchedule)
	assert.False(t, cfg.HasS3Config())
	assert.NotEmpty(t, cfg.Warnings, "missing S3 config should produce a warning")
}

func TestHasS3Config_PartialConfig(t *testing.T) {
	t.Setenv("S3_ACCESS_KEY", "testkey")
	t.Setenv("S3_SECRET_KEY", "")
	t.Setenv("S3_ENDPOINT_URL", "s3.example.com")
	t.Setenv("S3_BUCKET_NAME", "")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.HasS3Config(), "partial S3 config should return false")
}

func TestLoadFromEnv_ProductionRequiresS3(t *testing.T) {
	t.Setenv("S3_ACCESS_KEY", "")
	t.Setenv("S3_SECRET_KEY", "")
	t.Setenv("S3_ENDPOINT_URL", "")
	t.Setenv("S3_BUCKET_NAME", "")
	t.Setenv("ENV", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://lake.example.com")

	_, err := LoadFromEnv()
	require.Error(t, err)
}

func TestLoadDotEnv_FileNotFound(t *testing.T) {
	err := LoadDotEnv("/nonexistent/.env")
	if err != nil {
		t.Errorf("expected no error for missing .env, got: %v", err)
	}
}

func TestLoadDotEnv_ParsesKeyValue(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	err := os.WriteFile(envFile, []byte("LAKE_TEST_KEY=test_value\n# comment\nLAKE_QUOTED='hello'\n"), 0644)
	require.NoError(t, err)

	t.Setenv("LAKE_TEST_KEY", "")
	t.Setenv("LAKE_QUOTED", "")
	os.Unsetenv("LAKE_TEST_KEY")
	os.Unsetenv("LAKE_QUOTED")

	require.NoError(t, LoadDotEnv(envFile))
	assert.Equal(t, "test_value", os.Getenv("LAKE_TEST_KEY"))
	assert.Equal(t, "hello", os.Getenv("LAKE_QUOTED"))
}

func TestSlogLevel(t *testing.T) {
	cfg := &Config{LogLevel: "debug"}
	assert.Equal(t, "DEBUG", cfg.SlogLevel().String())

	cfg.LogLevel = "unknown"
	assert.Equal(t, "INFO", cfg.SlogLevel().String())
}
