// Package extract filters tab-separated records by their leading field.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/tsvsubset/key"
	"github.com/hupe1980/tsvsubset/scan"
)

// ErrMalformedRecord is returned for a record without a tab after its
// leading field, or with more fields than the dataset declares.
var ErrMalformedRecord = errors.New("malformed record")

// Row is the fields of one matched record, in file order.
type Row []string

// Size returns the number of bytes held by the row's fields.
func (r Row) Size() int {
	n := 0
	for _, f := range r {
		n += len(f)
	}
	return n
}

type options struct {
	columns    int
	skipHeader bool
}

// Option configures an Extractor.
type Option func(*options)

// WithColumns bounds the number of fields per record. Records with more
// fields fail with ErrMalformedRecord; fewer fields are passed through.
func WithColumns(n int) Option {
	return func(o *options) {
		o.columns = n
	}
}

// WithoutHeader treats the first record as data.
func WithoutHeader() Option {
	return func(o *options) {
		o.skipHeader = false
	}
}

// Extractor yields the records of a Scanner whose leading field is a member
// of a key set.
type Extractor[K key.Kind] struct {
	sc   *scan.Scanner
	keys *key.Set[K]
	opts options

	started bool
	scanned int64
	matched int64
}

// New creates an Extractor reading sc and testing against keys.
func New[K key.Kind](sc *scan.Scanner, keys *key.Set[K], optFns ...Option) *Extractor[K] {
	opts := options{skipHeader: true}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Extractor[K]{
		sc:   sc,
		keys: keys,
		opts: opts,
	}
}

// Next returns the next matching row, or io.EOF once the input is
// exhausted. Errors from the scanner are returned unchanged.
func (e *Extractor[K]) Next() (Row, error) {
	if !e.started {
		e.started = true
		if e.opts.skipHeader {
			if err := e.sc.SkipHeader(); err != nil {
				return nil, err
			}
		}
	}

	for {
		rec, err := e.sc.Next()
		if err != nil {
			return nil, err
		}
		e.scanned++

		tab := bytes.IndexByte(rec, '\t')
		if tab < 0 {
			return nil, fmt.Errorf("%w: no field delimiter", ErrMalformedRecord)
		}

		ok, err := e.keys.Lookup(rec[:tab])
		if err != nil {
			return nil, fmt.Errorf("leading field %q: %w", rec[:tab], err)
		}
		if !ok {
			continue
		}

		row, err := e.split(rec)
		if err != nil {
			return nil, err
		}
		e.matched++
		return row, nil
	}
}

// split materializes rec with a single string allocation shared by all
// fields.
func (e *Extractor[K]) split(rec []byte) (Row, error) {
	fields := strings.Split(string(rec), "\t")
	if e.opts.columns > 0 && len(fields) > e.opts.columns {
		return nil, fmt.Errorf("%w: %d fields, want at most %d", ErrMalformedRecord, len(fields), e.opts.columns)
	}
	return Row(fields), nil
}

// Scanned returns the number of data records read, header excluded.
func (e *Extractor[K]) Scanned() int64 { return e.scanned }

// Matched returns the number of rows returned.
func (e *Extractor[K]) Matched() int64 { return e.matched }
