package seed

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/hupe1980/tsvsubset/key"
)

// ErrSourceUnavailable is returned when a seed source or input file is
// missing or unreadable.
var ErrSourceUnavailable = errors.New("source unavailable")

// Source yields seed identifiers.
type Source interface {
	Identifiers(ctx context.Context) iter.Seq2[string, error]
}

// Load drains src into a new set and seals it.
//
// Errors reported by the source are wrapped with ErrSourceUnavailable.
// Malformed identifiers fail with key.ErrMalformedIdentifier.
func Load[K key.Kind](ctx context.Context, src Source) (*key.Set[K], error) {
	set := key.NewSet[K]()

	for id, err := range src.Identifiers(ctx) {
		if err != nil {
			if errors.Is(err, ErrSourceUnavailable) || ctx.Err() != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}
		if err := set.Insert(id); err != nil {
			return nil, fmt.Errorf("seed identifier %q: %w", id, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set.Seal()
	return set, nil
}

// Static is a fixed list of identifiers.
type Static []string

// Identifiers implements Source.
func (s Static) Identifiers(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, id := range s {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(id, nil) {
				return
			}
		}
	}
}
