package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Open(t *testing.T) {
	tmpDir := t.TempDir()
	data := []byte("tconst\taverageRating\tnumVotes\ntt0000001\t5.7\t2000\n")
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "title.ratings.tsv"), data, 0o644))

	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	blob, err := store.Open(ctx, "title.ratings.tsv")
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	got, err := io.ReadAll(blob)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestLocalStore_Empty(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "empty.tsv"), nil, 0o644))

	blob, err := NewLocalStore(tmpDir).Open(context.Background(), "empty.tsv")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(0), blob.Size())
	got, err := io.ReadAll(blob)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLocalStore_NotFound(t *testing.T) {
	_, err := NewLocalStore(t.TempDir()).Open(context.Background(), "missing.tsv")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_Directory(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, "title.crew.tsv"), 0o755))

	_, err := NewLocalStore(tmpDir).Open(context.Background(), "title.crew.tsv")
	require.ErrorIs(t, err, syscall.EISDIR)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocalStore(t.TempDir()).Open(ctx, "any.tsv")
	require.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	src := []byte("hello")
	store.Put("a.tsv", src)
	src[0] = 'j'

	blob, err := store.Open(ctx, "a.tsv")
	require.NoError(t, err)
	assert.Equal(t, int64(5), blob.Size())

	got, err := io.ReadAll(blob)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
	require.NoError(t, blob.Close())

	store.Delete("a.tsv")
	_, err = store.Open(ctx, "a.tsv")
	require.ErrorIs(t, err, ErrNotFound)
}
