package source

import (
	"context"
	"fmt"
	"io"

	"github.com/rpattn/listimport/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStore reads input files from an S3 compatible object store.
type MinIOStore struct {
	mc     *minio.Client
	bucket string
}

func NewMinIOStore(cfg config.StorageConfig) (*MinIOStore, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinIOStore{mc: mc, bucket: cfg.Bucket}, nil
}

// Open fetches bucket/key, falling back to the configured bucket when
// bucket is empty. The object is stat'ed first so a missing key fails here
// rather than on the first read.
func (s *MinIOStore) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if bucket == "" {
		bucket = s.bucket
	}
	if bucket == "" {
		return nil, fmt.Errorf("no bucket for object %s", key)
	}

	obj, err := s.mc.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, fmt.Errorf("stat %s/%s: %w", bucket, key, err)
	}
	return obj, nil
}

// Bucket returns the default bucket.
func (s *MinIOStore) Bucket() string {
	return s.bucket
}
