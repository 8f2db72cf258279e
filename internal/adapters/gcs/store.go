// Package gcs stores key/value documents as objects in a Google Cloud
// Storage bucket, one object per key.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const contentType = "application/json"

// objects is the slice of the bucket API the store needs.
type objects interface {
	read(ctx context.Context, name string) ([]byte, error)
	write(ctx context.Context, name string, data []byte) error
}

// Store implements ports.KVStore on a GCS bucket.
type Store struct {
	bucket  objects
	prefix  string
	timeout time.Duration
	closer  io.Closer
}

// NewStore creates a client for bucketName. Objects are named
// "<prefix>/<key>.json". With an empty credentialsFile the application
// default credentials are used.
func NewStore(ctx context.Context, bucketName, prefix, credentialsFile string) (*Store, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: failed to create client: %w", err)
	}

	return &Store{
		bucket:  &bucketObjects{handle: client.Bucket(bucketName)},
		prefix:  prefix,
		timeout: 30 * time.Second,
		closer:  client,
	}, nil
}

func (s *Store) Read(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.bucket.read(ctx, s.objectName(key))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("gcs: read %s: %w", key, err)
	}
	return data, true, nil
}

func (s *Store) Write(ctx context.Context, key string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.bucket.write(ctx, s.objectName(key), value); err != nil {
		return fmt.Errorf("gcs: write %s: %w", key, err)
	}
	return nil
}

// Close closes the GCS client
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *Store) objectName(key string) string {
	if s.prefix == "" {
		return key + ".json"
	}
	return path.Join(s.prefix, key+".json")
}

type bucketObjects struct {
	handle *storage.BucketHandle
}

func (b *bucketObjects) read(ctx context.Context, name string) ([]byte, error) {
	r, err := b.handle.Object(name).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (b *bucketObjects) write(ctx context.Context, name string, data []byte) error {
	w := b.handle.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to copy data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}
