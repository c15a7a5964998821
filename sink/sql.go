package sink

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// DefaultNullToken is the IMDb placeholder for a missing value.
const DefaultNullToken = `\N`

// SQLOption configures a SQL sink.
type SQLOption func(*sqlOptions)

type sqlOptions struct {
	replace      bool
	createTables bool
	nullToken    string
	keepNulls    bool
}

// WithReplace deletes existing rows of each table inside the commit
// transaction before inserting.
func WithReplace() SQLOption {
	return func(o *sqlOptions) { o.replace = true }
}

// WithCreateTables creates missing tables with text columns.
func WithCreateTables() SQLOption {
	return func(o *sqlOptions) { o.createTables = true }
}

// WithNullToken sets the field value stored as NULL.
func WithNullToken(tok string) SQLOption {
	return func(o *sqlOptions) { o.nullToken = tok }
}

// WithoutNullToken stores every field verbatim.
func WithoutNullToken() SQLOption {
	return func(o *sqlOptions) { o.keepNulls = true }
}

// SQL is a Sink writing each batch into a table of a database/sql database.
// One Commit is one transaction.
type SQL struct {
	db   *sqlx.DB
	opts sqlOptions
}

// NewSQL creates a SQL sink.
func NewSQL(db *sqlx.DB, optFns ...SQLOption) *SQL {
	opts := sqlOptions{nullToken: DefaultNullToken}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &SQL{db: db, opts: opts}
}

// Commit implements Sink. Either all batches are persisted or none.
func (s *SQL) Commit(ctx context.Context, batches []Batch) (err error) {
	for i := range batches {
		if err := batches[i].Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrCommitFailed, err)
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrCommitFailed, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i := range batches {
		if err := s.write(ctx, tx, &batches[i]); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrCommitFailed, batches[i].Table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrCommitFailed, err)
	}
	return nil
}

func (s *SQL) write(ctx context.Context, tx *sqlx.Tx, b *Batch) error {
	if s.opts.createTables {
		if _, err := tx.ExecContext(ctx, createTableSQL(b)); err != nil {
			return err
		}
	}
	if s.opts.replace {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+b.Table); err != nil {
			return err
		}
	}
	if len(b.Rows) == 0 {
		return nil
	}

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(insertSQL(b)))
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	args := make([]any, len(b.Columns))
	for _, row := range b.Rows {
		for i := range args {
			args[i] = s.value(row, i)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}

// value maps field i of row to a bind argument. Missing trailing fields and
// the null token become NULL.
func (s *SQL) value(row []string, i int) any {
	if i >= len(row) {
		return nil
	}
	if !s.opts.keepNulls && row[i] == s.opts.nullToken {
		return nil
	}
	return row[i]
}

func createTableSQL(b *Batch) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS ")
	sb.WriteString(b.Table)
	sb.WriteString(" (")
	for i, c := range b.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c)
		sb.WriteString(" TEXT")
	}
	sb.WriteString(")")
	return sb.String()
}

func insertSQL(b *Batch) string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(b.Table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(b.Columns, ", "))
	sb.WriteString(") VALUES (")
	for i := range b.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('?')
	}
	sb.WriteString(")")
	return sb.String()
}
