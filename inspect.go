package tsvsubset

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/hupe1980/tsvsubset/blobstore"
	"github.com/hupe1980/tsvsubset/compression"
	"github.com/hupe1980/tsvsubset/resource"
	"github.com/hupe1980/tsvsubset/scan"
)

// InspectReport describes one input file without filtering it.
type InspectReport struct {
	File            string        `json:"file"`
	Compression     string        `json:"compression"`
	Header          []string      `json:"header"`
	Records         int64         `json:"records"`
	MinFields       int           `json:"min_fields"`
	MaxFields       int           `json:"max_fields"`
	Bytes           int64         `json:"bytes"`
	CompressedBytes int64         `json:"compressed_bytes"`
	Duration        time.Duration `json:"duration"`
}

// Inspect reads every record of file and reports its shape. rc may be nil. The first record
// is reported as the header and not counted. Scan failures are returned as a
// *ScanError.
func Inspect(ctx context.Context, store blobstore.BlobStore, file string, chunkSize int, rc *resource.Controller) (*InspectReport, error) {
	start := time.Now()
	if chunkSize <= 0 {
		chunkSize = scan.DefaultChunkSize
	}

	blob, err := openInput(ctx, store, file)
	if err != nil {
		return nil, &ScanError{Dataset: "inspect", File: file, cause: err}
	}
	defer func() { _ = blob.Close() }()

	compressed := resource.NewCountingReader(resource.NewRateLimitedReader(ctx, blob, rc))

	rd, typ, err := compression.Open(compressed)
	if err != nil {
		return nil, &ScanError{Dataset: "inspect", File: file, cause: err}
	}
	defer func() { _ = rd.Close() }()

	rep := &InspectReport{File: file, Compression: typ.String()}
	sc := scan.New(rd, scan.WithChunkSize(chunkSize))

	for {
		rec, err := sc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ScanError{Dataset: "inspect", File: file, Line: sc.Lines(), Offset: sc.Offset(), cause: err}
		}

		if rep.Header == nil {
			rep.Header = strings.Split(string(rec), "\t")
			continue
		}

		fields := bytes.Count(rec, []byte{'\t'}) + 1
		if rep.Records == 0 || fields < rep.MinFields {
			rep.MinFields = fields
		}
		if fields > rep.MaxFields {
			rep.MaxFields = fields
		}
		rep.Records++
	}

	rep.Bytes = sc.Offset()
	rep.CompressedBytes = compressed.Count()
	rep.Duration = time.Since(start)
	return rep, nil
}
