package ports

import "context"

// KVStore is durable key/value storage for JSON documents.
type KVStore interface {
	// Read returns the stored value and whether the key exists.
	Read(ctx context.Context, key string) ([]byte, bool, error)
	Write(ctx context.Context, key string, value []byte) error
}
