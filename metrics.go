package tsvsubset

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting run metrics.
// Implement this interface to integrate with monitoring systems like Prometheus;
// see observability.PrometheusCollector.
type MetricsCollector interface {
	// RecordSeed is called after the seed key set is loaded.
	RecordSeed(keys uint64, duration time.Duration, err error)

	// RecordScan is called after each dataset scan. bytes is the number of
	// decompressed bytes consumed.
	RecordScan(dataset string, scanned, matched, bytes int64, duration time.Duration, err error)

	// RecordCommit is called after the sink commit.
	RecordCommit(rows int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSeed(uint64, time.Duration, error)                      {}
func (NoopMetricsCollector) RecordScan(string, int64, int64, int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordCommit(int64, time.Duration, error)                     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SeedKeys         atomic.Uint64
	SeedErrors       atomic.Int64
	ScanCount        atomic.Int64
	ScanErrors       atomic.Int64
	RecordsScanned   atomic.Int64
	RowsMatched      atomic.Int64
	BytesScanned     atomic.Int64
	ScanTotalNanos   atomic.Int64
	CommitCount      atomic.Int64
	CommitErrors     atomic.Int64
	RowsCommitted    atomic.Int64
	CommitTotalNanos atomic.Int64

	mu        sync.Mutex
	byDataset map[string]int64
}

// RecordSeed implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSeed(keys uint64, _ time.Duration, err error) {
	if err != nil {
		b.SeedErrors.Add(1)
		return
	}
	b.SeedKeys.Store(keys)
}

// RecordScan implements MetricsCollector.
func (b *BasicMetricsCollector) RecordScan(dataset string, scanned, matched, bytes int64, duration time.Duration, err error) {
	b.ScanCount.Add(1)
	b.RecordsScanned.Add(scanned)
	b.BytesScanned.Add(bytes)
	b.ScanTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ScanErrors.Add(1)
		return
	}
	b.RowsMatched.Add(matched)

	b.mu.Lock()
	if b.byDataset == nil {
		b.byDataset = make(map[string]int64)
	}
	b.byDataset[dataset] += matched
	b.mu.Unlock()
}

// RecordCommit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCommit(rows int64, duration time.Duration, err error) {
	b.CommitCount.Add(1)
	b.CommitTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CommitErrors.Add(1)
		return
	}
	b.RowsCommitted.Add(rows)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	b.mu.Lock()
	matched := make(map[string]int64, len(b.byDataset))
	for k, v := range b.byDataset {
		matched[k] = v
	}
	b.mu.Unlock()

	return BasicMetricsStats{
		SeedKeys:         b.SeedKeys.Load(),
		SeedErrors:       b.SeedErrors.Load(),
		ScanCount:        b.ScanCount.Load(),
		ScanErrors:       b.ScanErrors.Load(),
		RecordsScanned:   b.RecordsScanned.Load(),
		RowsMatched:      b.RowsMatched.Load(),
		BytesScanned:     b.BytesScanned.Load(),
		ScanAvgNanos:     avg(b.ScanTotalNanos.Load(), b.ScanCount.Load()),
		CommitCount:      b.CommitCount.Load(),
		CommitErrors:     b.CommitErrors.Load(),
		RowsCommitted:    b.RowsCommitted.Load(),
		MatchedByDataset: matched,
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SeedKeys         uint64
	SeedErrors       int64
	ScanCount        int64
	ScanErrors       int64
	RecordsScanned   int64
	RowsMatched      int64
	BytesScanned     int64
	ScanAvgNanos     int64
	CommitCount      int64
	CommitErrors     int64
	RowsCommitted    int64
	MatchedByDataset map[string]int64
}
