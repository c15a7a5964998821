package sink

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/hupe1980/tsvsubset/extract"
)

// ErrCommitFailed is returned when the destination rejects a commit.
var ErrCommitFailed = errors.New("sink commit failed")

// ErrInvalidBatch is returned for a batch whose table or columns cannot be
// used as SQL identifiers, or whose rows are wider than its columns.
var ErrInvalidBatch = errors.New("invalid batch")

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Batch is the ordered matched rows of one dataset.
type Batch struct {
	Dataset string
	Table   string
	Columns []string
	Rows    []extract.Row
}

// Validate checks the table and column names and the row widths.
func (b *Batch) Validate() error {
	if !identRE.MatchString(b.Table) {
		return fmt.Errorf("%w: table %q", ErrInvalidBatch, b.Table)
	}
	if len(b.Columns) == 0 {
		return fmt.Errorf("%w: table %q has no columns", ErrInvalidBatch, b.Table)
	}
	for _, c := range b.Columns {
		if !identRE.MatchString(c) {
			return fmt.Errorf("%w: column %q", ErrInvalidBatch, c)
		}
	}
	for i, r := range b.Rows {
		if len(r) > len(b.Columns) {
			return fmt.Errorf("%w: row %d has %d fields, table %q has %d columns",
				ErrInvalidBatch, i, len(r), b.Table, len(b.Columns))
		}
	}
	return nil
}

// Sink persists batches atomically.
type Sink interface {
	Commit(ctx context.Context, batches []Batch) error
}

// Memory is a Sink that keeps committed batches in memory.
// Thread-safe.
type Memory struct {
	mu      sync.Mutex
	batches []Batch
	commits int
	// Err, when set, makes every Commit fail without storing anything.
	Err error
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Commit implements Sink.
func (m *Memory) Commit(ctx context.Context, batches []Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return fmt.Errorf("%w: %w", ErrCommitFailed, m.Err)
	}
	for i := range batches {
		if err := batches[i].Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrCommitFailed, err)
		}
	}

	m.batches = append(m.batches, batches...)
	m.commits++
	return nil
}

// Batches returns all committed batches in commit order.
func (m *Memory) Batches() []Batch {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Batch, len(m.batches))
	copy(out, m.batches)
	return out
}

// Batch returns the committed batch of dataset, if any.
func (m *Memory) Batch(dataset string) (Batch, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.batches {
		if b.Dataset == dataset {
			return b, true
		}
	}
	return Batch{}, false
}

// Commits returns the number of successful commits.
func (m *Memory) Commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.commits
}
