package tsvsubset

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/tsvsubset/blobstore"
	"github.com/hupe1980/tsvsubset/extract"
	"github.com/hupe1980/tsvsubset/key"
	"github.com/hupe1980/tsvsubset/resource"
	"github.com/hupe1980/tsvsubset/scan"
	"github.com/hupe1980/tsvsubset/seed"
	"github.com/hupe1980/tsvsubset/sink"
)

var (
	// ErrMalformedIdentifier is returned for an identifier with a non-digit
	// after its tag.
	ErrMalformedIdentifier = key.ErrMalformedIdentifier

	// ErrMalformedRecord is returned for a record without a field delimiter.
	ErrMalformedRecord = extract.ErrMalformedRecord

	// ErrUnterminatedRecord is returned when an input ends mid-record.
	ErrUnterminatedRecord = scan.ErrUnterminatedRecord

	// ErrRecordTooLong is returned for a record larger than the scan buffer.
	ErrRecordTooLong = scan.ErrRecordTooLong

	// ErrSourceUnavailable is returned when the seed source or an input file
	// is missing or unreadable.
	ErrSourceUnavailable = seed.ErrSourceUnavailable

	// ErrSinkFailure is returned when the sink rejects the commit.
	ErrSinkFailure = sink.ErrCommitFailed

	// ErrMemoryLimit is returned when buffered rows exceed the memory budget.
	ErrMemoryLimit = resource.ErrMemoryLimit

	// ErrInvalidDataset is returned by New for an unusable dataset definition.
	ErrInvalidDataset = errors.New("invalid dataset")
)

// ScanError reports where a dataset scan failed.
//
// The failure kind can be tested with errors.Is.
type ScanError struct {
	Dataset string
	File    string
	// Line is the number of records read, header included, when the scan
	// failed.
	Line int64
	// Offset is the number of decompressed bytes consumed.
	Offset int64
	cause  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s (%s) at line %d, offset %d: %v", e.Dataset, e.File, e.Line, e.Offset, e.cause)
}

func (e *ScanError) Unwrap() error { return e.cause }

// errUnsealedKeys guards scans against a key set that may still change.
var errUnsealedKeys = errors.New("tsvsubset: scan key set is not sealed")

// sourceError tags a failure to open or read a stored input with
// ErrSourceUnavailable. Cancellation is returned unchanged.
func sourceError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrSourceUnavailable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
}

// openInput opens file in store. Open failures and read failures of the
// stored bytes carry ErrSourceUnavailable. Decompression and record errors
// raised above the returned blob keep their own kind.
func openInput(ctx context.Context, store blobstore.BlobStore, file string) (blobstore.Blob, error) {
	blob, err := store.Open(ctx, file)
	if err != nil {
		return nil, sourceError(err)
	}
	return &inputBlob{Blob: blob}, nil
}

type inputBlob struct {
	blobstore.Blob
}

func (b *inputBlob) Read(p []byte) (int, error) {
	n, err := b.Blob.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		err = sourceError(err)
	}
	return n, err
}
