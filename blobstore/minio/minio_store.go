// Package minio implements blobstore.Store for MinIO and other
// S3-compatible object storage, as an alternative to blobstore/s3's native
// AWS SDK client for deployments that run their own object store.
package minio

import (
	"bytes"
	"context"
	"io"
	"path"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/segdb/blobstore"
)

// Client is the subset of *minio.Client the store depends on, so tests can
// substitute a fake.
type Client interface {
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Store implements blobstore.Store for MinIO and S3-compatible storage:
// one object per key, under an optional root prefix.
type Store struct {
	client Client
	bucket string
	prefix string
}

// NewStore creates a new MinIO-backed Store. prefix is prepended to every
// key (e.g. "my-db/"), allowing multiple segdb instances to share a bucket.
func NewStore(client Client, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Get fetches the object at key in full and returns its bytes.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(key), minio.GetObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Set uploads value as the object at key, replacing any prior object.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(key), bytes.NewReader(value), int64(len(value)), minio.PutObjectOptions{})
	return err
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NotFound"
}

var _ blobstore.Store = (*Store)(nil)
