// Package scan turns a (decompressed) byte stream into newline-delimited
// records using one fixed-capacity buffer.
//
// The buffer never grows: unread residue is shifted to the front and the
// freed capacity is refilled from the reader. A record longer than the
// buffer fails with ErrRecordTooLong, and a stream that ends in the middle
// of a record fails with ErrUnterminatedRecord.
package scan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// DefaultChunkSize is the default buffer capacity.
const DefaultChunkSize = 128 << 10

// maxEmptyReads bounds consecutive (0, nil) reads before giving up.
const maxEmptyReads = 100

var (
	// ErrUnterminatedRecord is returned when the stream ends after a
	// partial record. Every record, including the last, must end with '\n'.
	ErrUnterminatedRecord = errors.New("unterminated record")

	// ErrRecordTooLong is returned when a single record does not fit into
	// the buffer.
	ErrRecordTooLong = errors.New("record exceeds buffer capacity")
)

// Options configures a Scanner.
type Options struct {
	// ChunkSize is the fixed buffer capacity in bytes.
	ChunkSize int
}

// Option mutates Options.
type Option func(*Options)

// WithChunkSize sets the buffer capacity. Values <= 0 select DefaultChunkSize.
func WithChunkSize(n int) Option {
	return func(o *Options) {
		o.ChunkSize = n
	}
}

// Scanner reads newline-terminated records from r.
//
// A Scanner is not safe for concurrent use.
type Scanner struct {
	r   io.Reader
	buf []byte

	start int // first unconsumed byte
	end   int // one past the last valid byte
	from  int // search resumes here; buf[start:from] holds no '\n'

	eof    bool
	lines  int64
	offset int64
}

// New creates a Scanner over r.
func New(r io.Reader, optFns ...Option) *Scanner {
	opts := Options{ChunkSize: DefaultChunkSize}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}

	return &Scanner{
		r:   r,
		buf: make([]byte, opts.ChunkSize),
	}
}

// Next returns the next record without its terminating '\n'. A trailing
// '\r' is kept. The returned slice aliases the internal buffer and is only
// valid until the next call to Next.
//
// At the end of a well-formed stream Next returns io.EOF.
func (s *Scanner) Next() ([]byte, error) {
	for {
		if i := bytes.IndexByte(s.buf[s.from:s.end], '\n'); i >= 0 {
			lf := s.from + i
			rec := s.buf[s.start:lf]

			s.offset += int64(lf + 1 - s.start)
			s.start = lf + 1
			s.from = s.start
			s.lines++

			return rec, nil
		}
		s.from = s.end

		if err := s.fill(); err != nil {
			return nil, err
		}
	}
}

// SkipHeader discards one record.
func (s *Scanner) SkipHeader() error {
	_, err := s.Next()
	return err
}

// Lines returns the number of records returned so far.
func (s *Scanner) Lines() int64 { return s.lines }

// Offset returns the number of stream bytes consumed by returned records,
// terminators included.
func (s *Scanner) Offset() int64 { return s.offset }

// ChunkSize returns the buffer capacity.
func (s *Scanner) ChunkSize() int { return len(s.buf) }

// fill shifts the residue to the front of the buffer and reads more bytes
// behind it. It returns nil once at least one byte was added.
func (s *Scanner) fill() error {
	if s.start > 0 {
		n := copy(s.buf, s.buf[s.start:s.end])
		s.from -= s.start
		s.start = 0
		s.end = n
	}

	if s.end == len(s.buf) {
		// A full buffer at end of stream is a truncated record.
		more, err := s.more()
		if err != nil {
			return err
		}
		if !more {
			return s.finish()
		}
		return fmt.Errorf("%w: %d bytes without line feed", ErrRecordTooLong, s.end)
	}

	if s.eof {
		return s.finish()
	}

	for i := 0; i < maxEmptyReads; i++ {
		n, err := s.r.Read(s.buf[s.end:])
		s.end += n

		if err != nil {
			if !errors.Is(err, io.EOF) {
				return err
			}
			s.eof = true
			if n > 0 {
				return nil
			}
			return s.finish()
		}
		if n > 0 {
			return nil
		}
	}
	return io.ErrNoProgress
}

// more reports whether the reader holds bytes beyond a full buffer. The byte
// it reads is discarded, so it is only used on the way to a fatal error.
func (s *Scanner) more() (bool, error) {
	if s.eof {
		return false, nil
	}

	var one [1]byte
	for i := 0; i < maxEmptyReads; i++ {
		n, err := s.r.Read(one[:])
		if n > 0 {
			return true, nil
		}
		if errors.Is(err, io.EOF) {
			s.eof = true
			return false, nil
		}
		if err != nil {
			return false, err
		}
	}
	return false, io.ErrNoProgress
}

func (s *Scanner) finish() error {
	if s.end > s.start {
		return fmt.Errorf("%w: %d trailing bytes", ErrUnterminatedRecord, s.end-s.start)
	}
	return io.EOF
}
