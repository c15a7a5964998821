// Package compression detects and opens the stream formats accepted for
// dataset inputs: gzip, zstd, LZ4 frames and plain text.
package compression

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type identifies a stream format.
type Type uint8

const (
	// None is an uncompressed stream.
	None Type = iota
	// Gzip is an RFC 1952 stream, possibly multi-member.
	Gzip
	// Zstd is a Zstandard frame stream.
	Zstd
	// LZ4 is an LZ4 frame stream.
	LZ4
)

// ErrUnknownType is returned by NewReader for an unsupported Type.
var ErrUnknownType = errors.New("unknown compression type")

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// String returns the stable name of t.
func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// Sniff identifies the type from the first bytes of a stream.
func Sniff(header []byte) Type {
	switch {
	case bytes.HasPrefix(header, gzipMagic):
		return Gzip
	case bytes.HasPrefix(header, zstdMagic):
		return Zstd
	case bytes.HasPrefix(header, lz4Magic):
		return LZ4
	default:
		return None
	}
}

// NewReader returns a decompressing reader of type t over r.
func NewReader(r io.Reader, t Type) (io.ReadCloser, error) {
	switch t {
	case None:
		return io.NopCloser(r), nil
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return zr, nil
	case Zstd:
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return zr.IOReadCloser(), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
}

// Open sniffs the format of r and returns a decompressing reader together
// with the detected type. An empty stream is treated as plain text.
func Open(r io.Reader) (io.ReadCloser, Type, error) {
	br := bufio.NewReaderSize(r, 64<<10)

	header, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, None, err
	}

	t := Sniff(header)
	rc, err := NewReader(br, t)
	if err != nil {
		return nil, t, err
	}
	return rc, t, nil
}
