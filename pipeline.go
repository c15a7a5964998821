package tsvsubset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/hupe1980/tsvsubset/blobstore"
	"github.com/hupe1980/tsvsubset/compression"
	"github.com/hupe1980/tsvsubset/extract"
	"github.com/hupe1980/tsvsubset/key"
	"github.com/hupe1980/tsvsubset/resource"
	"github.com/hupe1980/tsvsubset/scan"
	"github.com/hupe1980/tsvsubset/seed"
	"github.com/hupe1980/tsvsubset/sink"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Pipeline runs one extraction: seed load, filtering scans and a single
// commit.
type Pipeline struct {
	store blobstore.BlobStore
	seeds seed.Source
	sink  sink.Sink
	opts  options
}

// New creates a Pipeline reading inputs from store, seeded by seeds and
// committing to out.
func New(store blobstore.BlobStore, seeds seed.Source, out sink.Sink, optFns ...Option) (*Pipeline, error) {
	if store == nil || seeds == nil || out == nil {
		return nil, errors.New("tsvsubset: store, seed source and sink are required")
	}

	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.chunkSize <= 0 {
		return nil, fmt.Errorf("tsvsubset: invalid chunk size %d", opts.chunkSize)
	}
	if err := opts.credits.validateCredits(); err != nil {
		return nil, err
	}
	if err := opts.persons.validate(); err != nil {
		return nil, err
	}

	seen := map[string]bool{opts.credits.Name: true}
	for _, d := range append([]Dataset{opts.persons}, opts.titleScoped...) {
		if err := d.validate(); err != nil {
			return nil, err
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidDataset, d.Name)
		}
		seen[d.Name] = true
	}

	return &Pipeline{
		store: store,
		seeds: seeds,
		sink:  out,
		opts:  opts,
	}, nil
}

// Run executes the pipeline.
//
// The seed title set is loaded first. The credits scan and the person scan
// then run in sequence on one goroutine, the person scan reading the set the
// credits scan sealed. Each title-scoped dataset is scanned on its own
// goroutine. The first failure cancels the remaining scans and nothing is
// committed. Batches are committed in dataset order: credits, persons, then
// title-scoped datasets as configured.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	titles, seedDuration, err := p.loadSeed(ctx)
	if err != nil {
		return nil, err
	}

	n := 2 + len(p.opts.titleScoped)
	batches := make([]sink.Batch, n)
	reports := make([]DatasetReport, n)
	persons := key.NewSet[key.Person]()

	var reserved atomic.Int64
	defer func() { p.opts.resources.ReleaseMemory(reserved.Load()) }()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		field := p.opts.credits.PersonField
		collect := func(row extract.Row) error {
			if field >= len(row) {
				return fmt.Errorf("%w: missing person field %d", ErrMalformedRecord, field)
			}
			return persons.Insert(row[field])
		}

		var err error
		batches[0], reports[0], err = scanDataset(gctx, p, p.opts.credits, titles, &reserved, collect)
		if err != nil {
			return err
		}

		persons.Seal()

		batches[1], reports[1], err = scanDataset(gctx, p, p.opts.persons, persons, &reserved, nil)
		return err
	})

	for i, ds := range p.opts.titleScoped {
		g.Go(func() error {
			var err error
			batches[2+i], reports[2+i], err = scanDataset(gctx, p, ds, titles, &reserved, nil)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var rows int64
	for _, b := range batches {
		rows += int64(len(b.Rows))
	}

	commitStart := time.Now()
	err = p.sink.Commit(ctx, batches)
	commitDuration := time.Since(commitStart)

	p.opts.logger.LogCommit(ctx, rows, commitDuration, err)
	p.opts.metricsCollector.RecordCommit(rows, commitDuration, err)

	if err != nil {
		if !errors.Is(err, ErrSinkFailure) {
			err = fmt.Errorf("%w: %w", ErrSinkFailure, err)
		}
		return nil, err
	}

	return &Report{
		Titles:         titles.Len(),
		Persons:        persons.Len(),
		TitleSetBytes:  titles.SizeInBytes(),
		PersonSetBytes: persons.SizeInBytes(),
		Datasets:       reports,
		Rows:           rows,
		SeedDuration:   seedDuration,
		CommitDuration: commitDuration,
		Duration:       time.Since(start),
	}, nil
}

func (p *Pipeline) loadSeed(ctx context.Context) (*key.Set[key.Title], time.Duration, error) {
	start := time.Now()
	titles, err := seed.Load[key.Title](ctx, p.seeds)
	d := time.Since(start)

	var n uint64
	if titles != nil {
		n = titles.Len()
	}
	p.opts.logger.LogSeed(ctx, n, d, err)
	p.opts.metricsCollector.RecordSeed(n, d, err)

	return titles, d, err
}

// scanDataset filters one dataset against keys and buffers the matched rows.
// onMatch, if set, is called for every matched row before it is buffered.
func scanDataset[K key.Kind](
	ctx context.Context,
	p *Pipeline,
	ds Dataset,
	keys *key.Set[K],
	reserved *atomic.Int64,
	onMatch func(extract.Row) error,
) (batch sink.Batch, rep DatasetReport, err error) {
	log := p.opts.logger.WithDataset(ds.Name)
	rc := p.opts.resources
	start := time.Now()

	batch = sink.Batch{Dataset: ds.Name, Table: ds.Table, Columns: ds.Columns}
	rep = DatasetReport{Dataset: ds.Name, File: ds.File, Table: ds.Table}

	var (
		sc         *scan.Scanner
		ex         *extract.Extractor[K]
		compressed *resource.CountingReader
	)

	defer func() {
		rep.Duration = time.Since(start)
		if sc != nil {
			rep.Bytes = sc.Offset()
		}
		if ex != nil {
			rep.Scanned = ex.Scanned()
			rep.Matched = ex.Matched()
		}
		if compressed != nil {
			rep.CompressedBytes = compressed.Count()
		}
		if err != nil {
			se := &ScanError{Dataset: ds.Name, File: ds.File, cause: err}
			if sc != nil {
				se.Line = sc.Lines()
				se.Offset = sc.Offset()
			}
			err = se
			batch.Rows = nil
		}
		log.LogScanDone(ctx, rep, err)
		p.opts.metricsCollector.RecordScan(ds.Name, rep.Scanned, rep.Matched, rep.Bytes, rep.Duration, err)
	}()

	if !keys.Sealed() {
		return batch, rep, errUnsealedKeys
	}

	if err = rc.AcquireScan(ctx); err != nil {
		return batch, rep, err
	}
	defer rc.ReleaseScan()

	blob, err := openInput(ctx, p.store, ds.File)
	if err != nil {
		return batch, rep, err
	}
	defer func() { _ = blob.Close() }()

	compressed = resource.NewCountingReader(resource.NewRateLimitedReader(ctx, blob, rc))

	rd, typ, err := compression.Open(compressed)
	if err != nil {
		return batch, rep, err
	}
	defer func() { _ = rd.Close() }()
	rep.Compression = typ.String()

	sc = scan.New(rd, scan.WithChunkSize(p.opts.chunkSize))

	exOpts := []extract.Option{extract.WithColumns(len(ds.Columns))}
	if ds.NoHeader {
		exOpts = append(exOpts, extract.WithoutHeader())
	}
	ex = extract.New(sc, keys, exOpts...)

	log.LogScanStart(ctx, ds.File, keys.Len(), keys.SizeInBytes())
	progress := rate.Sometimes{Interval: p.opts.progressInterval}

	for {
		row, nerr := ex.Next()
		if errors.Is(nerr, io.EOF) {
			return batch, rep, nil
		}
		if nerr != nil {
			return batch, rep, nerr
		}

		size := int64(row.Size())
		if err = rc.ReserveMemory(size); err != nil {
			return batch, rep, err
		}
		reserved.Add(size)

		if onMatch != nil {
			if err = onMatch(row); err != nil {
				return batch, rep, err
			}
		}
		batch.Rows = append(batch.Rows, row)

		progress.Do(func() {
			log.LogScanProgress(ctx, ex.Scanned(), ex.Matched(), sc.Offset())
		})
	}
}
