package storage

import (
	"context"
	"fmt"
	"io"
	"os"
)

type ObjectStore interface {
	CreateBucket(ctx context.Context, bucket string) error

	PutObject(ctx context.Context, bucket, key string, data io.Reader) error

	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// UploadFile streams a local file to the store, overwriting any existing
// object at the destination. A single attempt; failures are returned to the
// caller, which treats them as fatal.
func UploadFile(ctx context.Context, store ObjectStore, bucket, key, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file %s for upload: %w", path, err)
	}
	defer file.Close()

	if err := store.PutObject(ctx, bucket, key, file); err != nil {
		return fmt.Errorf("failed to upload file %s to %s/%s: %w", path, bucket, key, err)
	}

	return nil
}
