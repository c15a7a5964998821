package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/hupe1980/tsvsubset/internal/mmap"
)

// LocalStore implements BlobStore using the local file system.
type LocalStore struct {
	root string
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Open maps the file read-only and advises sequential access. Pipes and
// platforms without mmap are read through the file instead.
func (s *LocalStore) Open(ctx context.Context, name string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.root, filepath.FromSlash(name))

	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, &fs.PathError{Op: "open", Path: path, Err: syscall.EISDIR}
	}
	if !fi.Mode().IsRegular() {
		return openFile(path)
	}

	m, err := mmap.Open(path)
	if errors.Is(err, mmap.ErrUnsupported) {
		return openFile(path)
	}
	if err != nil {
		return nil, err
	}

	_ = m.Advise(mmap.AccessSequential)

	return &mappedBlob{Reader: bytes.NewReader(m.Bytes()), m: m}, nil
}

func openFile(path string) (Blob, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &fileBlob{File: f, size: fi.Size()}, nil
}

type mappedBlob struct {
	*bytes.Reader
	m *mmap.Mapping
}

func (b *mappedBlob) Close() error { return b.m.Close() }

func (b *mappedBlob) Size() int64 { return int64(b.m.Size()) }

type fileBlob struct {
	*os.File
	size int64
}

func (b *fileBlob) Size() int64 { return b.size }
