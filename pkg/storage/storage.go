package storage

import (
	"context"
	"io"
)

// Repository persists opaque blobs, participant snapshots in practice, under
// string keys. Save overwrites.
type Repository interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]string, error)
	io.Closer
}
