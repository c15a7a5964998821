package seed

import (
	"bytes"
	"context"
	"errors"
	"io"
	"iter"

	"github.com/hupe1980/tsvsubset/blobstore"
	"github.com/hupe1980/tsvsubset/compression"
	"github.com/hupe1980/tsvsubset/scan"
)

// File reads one identifier per line from a blob. Only the first
// tab-separated field of each line is used; empty lines are skipped.
// Compressed files are detected by their magic bytes.
type File struct {
	Store  blobstore.BlobStore
	Name   string
	Header bool
}

// Identifiers implements Source.
func (f *File) Identifiers(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		blob, err := f.Store.Open(ctx, f.Name)
		if err != nil {
			yield("", err)
			return
		}
		defer func() { _ = blob.Close() }()

		rc, _, err := compression.Open(blob)
		if err != nil {
			yield("", err)
			return
		}
		defer func() { _ = rc.Close() }()

		sc := scan.New(rc)
		if f.Header {
			if err := sc.SkipHeader(); err != nil && !errors.Is(err, io.EOF) {
				yield("", err)
				return
			}
		}

		for {
			rec, err := sc.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			if sc.Lines()%4096 == 0 {
				if err := ctx.Err(); err != nil {
					yield("", err)
					return
				}
			}

			if i := bytes.IndexByte(rec, '\t'); i >= 0 {
				rec = rec[:i]
			}
			rec = bytes.TrimSuffix(rec, []byte{'\r'})
			if len(rec) == 0 {
				continue
			}
			if !yield(string(rec), nil) {
				return
			}
		}
	}
}
