package seed

import (
	"context"
	"iter"

	"github.com/jmoiron/sqlx"
)

// SQL yields the first column of every row returned by Query.
//
// Query is written with '?' bindvars and rebound for the driver.
type SQL struct {
	DB    *sqlx.DB
	Query string
	Args  []any
}

// Identifiers implements Source.
func (s *SQL) Identifiers(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		rows, err := s.DB.QueryxContext(ctx, s.DB.Rebind(s.Query), s.Args...)
		if err != nil {
			yield("", err)
			return
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				yield("", err)
				return
			}
			if !yield(id, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield("", err)
		}
	}
}
