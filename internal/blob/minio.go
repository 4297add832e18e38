package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sucharith-p/personal-data-lake/internal/config"
	"github.com/sucharith-p/personal-data-lake/internal/domain"
)

// MinioStore is a blob store backed by any S3-compatible endpoint
// (MinIO, AWS S3, Hetzner, Cloudflare R2, ...).
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore creates a MinIO-backed blob store from the S3 section of the
// config and ensures the bucket exists.
func NewMinioStore(ctx context.Context, cfg *config.Config) (*MinioStore, error) {
	if !cfg.HasS3Config() {
		return nil, fmt.Errorf("S3 is not configured")
	}

	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(*cfg.S3KeyID, *cfg.S3Secret, ""),
		Secure: cfg.S3UseSSL,
	}
	if cfg.S3Region != nil {
		opts.Region = *cfg.S3Region
	}

	client, err := minio.New(*cfg.S3Endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	store := &MinioStore{client: client, bucket: *cfg.S3Bucket}
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *MinioStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %q: %w", s.bucket, err)
	}
	return nil
}

// Put writes a blob.
func (s *MinioStore) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// Get reads a blob fully into memory. Missing keys map to ErrNotFound.
func (s *MinioStore) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapMinioError(key, err)
	}
	defer obj.Close() //nolint:errcheck

	data, err := io.ReadAll(obj)
	if err != nil {
		// GetObject is lazy, so NoSuchKey often surfaces here.
		return nil, mapMinioError(key, err)
	}
	return data, nil
}

// List returns every object in the bucket with size and modified time.
func (s *MinioStore) List(ctx context.Context) ([]domain.ObjectInfo, error) {
	var infos []domain.ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list bucket %q: %w", s.bucket, obj.Err)
		}
		infos = append(infos, domain.ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return infos, nil
}

// Delete removes a blob. Deleting a missing key is not an error.
func (s *MinioStore) Delete(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NotFound" {
			return nil // already gone
		}
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func mapMinioError(key string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.Code == "NotFound" {
		return fmt.Errorf("get %q: %w", key, ErrNotFound)
	}
	return fmt.Errorf("get %q: %w", key, err)
}

var _ domain.BlobStore = (*MinioStore)(nil)
