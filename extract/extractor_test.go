package extract

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tsvsubset/key"
	"github.com/hupe1980/tsvsubset/scan"
)

const credits = "tconst\tordering\tnconst\tcategory\tjob\tcharacters\n" +
	"tt0000001\t1\tnm0000001\tself\t\\N\t[\"Self\"]\n" +
	"tt0000001\t2\tnm0000002\tdirector\t\\N\t\\N\n" +
	"tt0000002\t1\tnm0000001\tdirector\t\\N\t\\N\n" +
	"tt0000005\t1\tnm0000004\tactor\t\\N\t\\N\n"

func titles(t *testing.T, ids ...string) *key.Set[key.Title] {
	t.Helper()
	s := key.NewSet[key.Title]()
	for _, id := range ids {
		require.NoError(t, s.Insert(id))
	}
	s.Seal()
	return s
}

func drain[K key.Kind](t *testing.T, e *Extractor[K]) ([]Row, error) {
	t.Helper()
	var rows []Row
	for {
		row, err := e.Next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}

func TestExtractor_Matches(t *testing.T) {
	e := New(scan.New(strings.NewReader(credits)), titles(t, "tt0000001", "tt0000002", "tt0000003"), WithColumns(6))

	rows, err := drain(t, e)
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, Row{"tt0000001", "1", "nm0000001", "self", "\\N", "[\"Self\"]"}, rows[0])
	assert.Equal(t, "nm0000002", rows[1][2])
	assert.Equal(t, "tt0000002", rows[2][0])
	assert.Equal(t, int64(4), e.Scanned())
	assert.Equal(t, int64(3), e.Matched())
}

func TestExtractor_Idempotent(t *testing.T) {
	run := func() ([]Row, int64, int64) {
		e := New(scan.New(strings.NewReader(credits)), titles(t, "tt0000001", "tt0000005"))
		rows, err := drain(t, e)
		require.NoError(t, err)
		return rows, e.Scanned(), e.Matched()
	}

	rows1, scanned1, matched1 := run()
	rows2, scanned2, matched2 := run()
	assert.Equal(t, rows1, rows2)
	assert.Equal(t, scanned1, scanned2)
	assert.Equal(t, matched1, matched2)
}

func TestExtractor_RowsSurviveNextCall(t *testing.T) {
	e := New(scan.New(strings.NewReader(credits), scan.WithChunkSize(64)), titles(t, "tt0000001"))

	first, err := e.Next()
	require.NoError(t, err)
	second, err := e.Next()
	require.NoError(t, err)

	assert.Equal(t, "nm0000001", first[2])
	assert.Equal(t, "nm0000002", second[2])
}

func TestExtractor_MalformedRecord(t *testing.T) {
	input := "tconst\tx\ntt0000001\ta\ntt0000002\n"
	e := New(scan.New(strings.NewReader(input)), titles(t, "tt0000001", "tt0000002"))

	rows, err := drain(t, e)
	assert.ErrorIs(t, err, ErrMalformedRecord)
	assert.Len(t, rows, 1)
}

func TestExtractor_TooManyFields(t *testing.T) {
	input := "tconst\tx\ntt0000001\ta\tb\n"
	e := New(scan.New(strings.NewReader(input)), titles(t, "tt0000001"), WithColumns(2))

	_, err := e.Next()
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestExtractor_MissingTrailingFieldsPassThrough(t *testing.T) {
	input := "tconst\ta\tb\ntt0000001\ta\n"
	e := New(scan.New(strings.NewReader(input)), titles(t, "tt0000001"), WithColumns(3))

	row, err := e.Next()
	require.NoError(t, err)
	assert.Equal(t, Row{"tt0000001", "a"}, row)
}

func TestExtractor_MalformedIdentifier(t *testing.T) {
	input := "tconst\tx\nttXYZ\ta\n"
	e := New(scan.New(strings.NewReader(input)), titles(t, "tt0000001"))

	_, err := e.Next()
	assert.ErrorIs(t, err, key.ErrMalformedIdentifier)
}

func TestExtractor_Unterminated(t *testing.T) {
	input := "tconst\tx\ntt0000001\ta\ntt0000001\tb"
	e := New(scan.New(strings.NewReader(input)), titles(t, "tt0000001"))

	rows, err := drain(t, e)
	assert.ErrorIs(t, err, scan.ErrUnterminatedRecord)
	assert.Len(t, rows, 1)
}

func TestExtractor_WithoutHeader(t *testing.T) {
	input := "tt0000001\ta\ntt0000002\tb\n"
	e := New(scan.New(strings.NewReader(input)), titles(t, "tt0000001"), WithoutHeader())

	rows, err := drain(t, e)
	require.NoError(t, err)
	assert.Equal(t, []Row{{"tt0000001", "a"}}, rows)
	assert.Equal(t, int64(2), e.Scanned())
}

func TestExtractor_EmptyInput(t *testing.T) {
	e := New(scan.New(strings.NewReader("")), titles(t))
	_, err := e.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestRow_Size(t *testing.T) {
	assert.Equal(t, 6, Row{"ab", "cde", "f"}.Size())
}
