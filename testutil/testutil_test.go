package testutil

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/hupe1980/tsvsubset/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDumps(t *testing.T) {
	d := GenerateDumps(NewRNG(4711), Sizes{Titles: 20, Persons: 10, Credits: 50})

	assert.Len(t, dataLines(d.Credits), 50)
	assert.Len(t, dataLines(d.Persons), 10)
	for _, line := range dataLines(d.Credits) {
		assert.Len(t, strings.Split(line, "\t"), 6)
	}

	again := GenerateDumps(NewRNG(4711), Sizes{Titles: 20, Persons: 10, Credits: 50})
	assert.Equal(t, d, again, "generation is deterministic per seed")
}

func TestReference(t *testing.T) {
	d := &Dumps{
		Credits: "h\ntt0000001\t1\tnm0000001\ta\tb\tc\ntt0000005\t1\tnm0000004\ta\tb\tc\n",
		Persons: "h\nnm0000001\tA\nnm0000004\tD\n",
		Ratings: "h\ntt0000001\t5\t1\n",
		Crew:    "h\n",
	}

	ref := d.Reference([]string{"tt0000001"})
	assert.Equal(t, []string{"tt0000001\t1\tnm0000001\ta\tb\tc"}, ref["credits"])
	assert.Equal(t, []string{"nm0000001\tA"}, ref["persons"])
	assert.Len(t, ref["ratings"], 1)
	assert.Empty(t, ref["crew"])
}

func TestFaultyStore(t *testing.T) {
	mem := blobstore.NewMemoryStore()
	mem.Put("a.tsv", []byte("0123456789"))
	mem.Put("b.tsv", []byte("x"))

	store := NewFaultyStore(mem)
	store.AddRule("a.", Fault{FailAfterBytes: 4})
	store.AddRule("b.", Fault{FailOnOpen: true})

	blob, err := store.Open(context.Background(), "a.tsv")
	require.NoError(t, err)
	data, err := io.ReadAll(blob)
	assert.ErrorIs(t, err, ErrInjected)
	assert.Equal(t, "0123", string(data))

	_, err = store.Open(context.Background(), "b.tsv")
	assert.ErrorIs(t, err, ErrInjected)
}
