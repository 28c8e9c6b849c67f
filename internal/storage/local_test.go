package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestObjectStore(t *testing.T) (*LocalObjectStore, string) {
	t.Helper()
	dir := t.TempDir()
	return NewLocalObjectStore(dir), dir
}

func TestLocalObjectStore_PutObject(t *testing.T) {
	objectStore, baseDir := setupTestObjectStore(t)

	bucket := "test-bucket"
	key := "datasets/train_data.jsonl"
	content := []byte(`{"text": "### Instruction:\nhi\n### Response:\nhello"}`)

	err := objectStore.PutObject(context.Background(), bucket, key, bytes.NewReader(content))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(baseDir, bucket, key))
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestLocalObjectStore_PutObjectOverwrites(t *testing.T) {
	objectStore, _ := setupTestObjectStore(t)

	bucket := "test-bucket"
	key := "datasets/train_data.jsonl"

	require.NoError(t, objectStore.PutObject(context.Background(), bucket, key, bytes.NewReader([]byte("old"))))
	require.NoError(t, objectStore.PutObject(context.Background(), bucket, key, bytes.NewReader([]byte("new"))))

	data, err := objectStore.GetObject(context.Background(), bucket, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), data)
}

func TestUploadFile(t *testing.T) {
	objectStore, _ := setupTestObjectStore(t)

	localPath := filepath.Join(t.TempDir(), "train_data.array_record")
	content := []byte("serialized records")
	require.NoError(t, os.WriteFile(localPath, content, 0644))

	err := UploadFile(context.Background(), objectStore, "test-bucket", "datasets/train_data.array_record", localPath)
	require.NoError(t, err)

	data, err := objectStore.GetObject(context.Background(), "test-bucket", "datasets/train_data.array_record")
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestUploadFileMissingFile(t *testing.T) {
	objectStore, _ := setupTestObjectStore(t)

	err := UploadFile(context.Background(), objectStore, "test-bucket", "key", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
