package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/hupe1980/tsvsubset/blobstore"
)

// ErrInjected is the default injected fault.
var ErrInjected = errors.New("injected fault error")

// Fault defines specific failure behavior.
type Fault struct {
	FailOnOpen     bool
	FailAfterBytes int64 // Fail reads after this many bytes read from this blob. -1 to disable.
	Err            error
}

// FaultyStore is a BlobStore wrapper that can inject errors.
type FaultyStore struct {
	Store blobstore.BlobStore

	mu    sync.Mutex
	rules map[string]Fault // Name pattern -> Fault
}

// NewFaultyStore wraps store.
func NewFaultyStore(store blobstore.BlobStore) *FaultyStore {
	return &FaultyStore{
		Store: store,
		rules: make(map[string]Fault),
	}
}

// AddRule adds a fault injection rule for blob names containing pattern.
func (f *FaultyStore) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[pattern] = fault
}

// Open implements blobstore.BlobStore.
func (f *FaultyStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	f.mu.Lock()
	fault := Fault{FailAfterBytes: -1}
	for pattern, rule := range f.rules {
		if strings.Contains(name, pattern) {
			fault = rule
		}
	}
	f.mu.Unlock()

	if fault.Err == nil {
		fault.Err = ErrInjected
	}
	if fault.FailOnOpen {
		return nil, fault.Err
	}

	b, err := f.Store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &faultyBlob{Blob: b, fault: fault}, nil
}

type faultyBlob struct {
	blobstore.Blob
	fault Fault
	read  int64
}

func (b *faultyBlob) Read(p []byte) (int, error) {
	if b.fault.FailAfterBytes >= 0 {
		left := b.fault.FailAfterBytes - b.read
		if left <= 0 {
			return 0, b.fault.Err
		}
		if int64(len(p)) > left {
			p = p[:left]
		}
	}

	n, err := b.Blob.Read(p)
	b.read += int64(n)
	return n, err
}
