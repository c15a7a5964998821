package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hupe1980/tsvsubset"
	"github.com/hupe1980/tsvsubset/blobstore"
	"github.com/jmoiron/sqlx"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGz(t *testing.T, path string, lines ...string) {
	t.Helper()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

// dumpDir writes a minimal set of the four default dumps.
func dumpDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	writeGz(t, filepath.Join(dir, "title.principals.tsv.gz"),
		"tconst\tordering\tnconst\tcategory\tjob\tcharacters",
		"tt0000001\t1\tnm0000001\tactor\t\\N\t\\N",
		"tt0000001\t2\tnm0000002\tactress\t\\N\t\\N",
		"tt0000002\t1\tnm0000001\tactor\t\\N\t\\N",
		"tt0000005\t1\tnm0000004\tactor\t\\N\t\\N",
	)
	writeGz(t, filepath.Join(dir, "name.basics.tsv.gz"),
		"nconst\tprimaryName\tbirthYear\tdeathYear\tprimaryProfession\tknownForTitles",
		"nm0000001\tFred Astaire\t1899\t1987\tactor\ttt0000001",
		"nm0000002\tLauren Bacall\t1924\t2014\tactress\ttt0000001",
		"nm0000004\tJohn Belushi\t1949\t1982\tactor\ttt0000005",
	)
	writeGz(t, filepath.Join(dir, "title.ratings.tsv.gz"),
		"tconst\taverageRating\tnumVotes",
		"tt0000001\t5.7\t2000",
		"tt0000004\t5.5\t180",
	)
	writeGz(t, filepath.Join(dir, "title.crew.tsv.gz"),
		"tconst\tdirectors\twriters",
		"tt0000002\tnm0000001\t\\N",
	)
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	rc := NewRootCommand(strings.NewReader(""), &stdout, &stderr)
	rc.SetArgs(args)
	err := rc.ExecuteContext(context.Background())
	return stdout.String(), err
}

func count(t *testing.T, dsn, table string) int {
	t.Helper()

	db, err := sqlx.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}

func TestRun(t *testing.T) {
	dir := dumpDir(t)
	dsn := filepath.Join(t.TempDir(), "subset.db")
	prom := filepath.Join(t.TempDir(), "tsvsubset.prom")

	out, err := execute(t, "run",
		"--input", dir,
		"--seed", "tt0000001,tt0000002,tt0000003",
		"--sink-dsn", dsn,
		"--create-tables",
		"--log-level", "error",
		"--metrics-textfile", prom,
	)
	require.NoError(t, err)

	var report tsvsubset.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, uint64(3), report.Titles)
	assert.Equal(t, uint64(2), report.Persons)
	assert.Equal(t, int64(3+2+1+1), report.Rows)

	assert.Equal(t, 3, count(t, dsn, "title_principals"))
	assert.Equal(t, 2, count(t, dsn, "name_basics"))
	assert.Equal(t, 1, count(t, dsn, "title_ratings"))
	assert.Equal(t, 1, count(t, dsn, "title_crew"))

	metrics, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "tsvsubset_rows_committed_total 7")
}

func TestRun_EnvAndConfigFile(t *testing.T) {
	dir := dumpDir(t)
	dsn := filepath.Join(t.TempDir(), "subset.db")

	cfg := filepath.Join(t.TempDir(), "tsvsubset.toml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
input = "`+dir+`"
sink-dsn = "`+dsn+`"
create-tables = true
title-scoped = ["ratings"]
log-level = "error"
`), 0o600))

	t.Setenv("TSVSUBSET_SEED", "tt0000001")

	out, err := execute(t, "run", "--config", cfg, "--report-format", "json")
	require.NoError(t, err)

	var report tsvsubset.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Datasets, 3)
	assert.Equal(t, "ratings", report.Datasets[2].Dataset)
	assert.Equal(t, int64(2), report.Datasets[0].Matched)
}

func TestRun_SeedFile(t *testing.T) {
	dir := dumpDir(t)
	dsn := filepath.Join(t.TempDir(), "subset.db")
	seedFile := filepath.Join(t.TempDir(), "seeds.txt")
	require.NoError(t, os.WriteFile(seedFile, []byte("tt0000002\n"), 0o600))

	_, err := execute(t, "run", "--input", dir, "--seed-file", seedFile,
		"--sink-dsn", dsn, "--create-tables", "--title-scoped", "", "--report", "", "--log-level", "error")
	require.NoError(t, err)

	assert.Equal(t, 1, count(t, dsn, "title_principals"))
	assert.Equal(t, 1, count(t, dsn, "name_basics"))
}

func TestRun_SeedQuery(t *testing.T) {
	dir := dumpDir(t)
	dsn := filepath.Join(t.TempDir(), "subset.db")

	db, err := sqlx.Open("sqlite", dsn)
	require.NoError(t, err)
	db.MustExec(`CREATE TABLE watchlist (tconst TEXT)`)
	db.MustExec(`INSERT INTO watchlist VALUES ('tt0000001')`)
	require.NoError(t, db.Close())

	_, err = execute(t, "run", "--input", dir, "--seed-query", "SELECT tconst FROM watchlist",
		"--sink-dsn", dsn, "--create-tables", "--report", "", "--log-level", "error")
	require.NoError(t, err)

	assert.Equal(t, 2, count(t, dsn, "title_principals"))
}

func TestRun_Errors(t *testing.T) {
	dir := dumpDir(t)
	dsn := filepath.Join(t.TempDir(), "subset.db")

	_, err := execute(t, "run", "--input", dir, "--sink-dsn", dsn)
	assert.ErrorContains(t, err, "no seed source")

	_, err = execute(t, "run", "--input", dir, "--sink-dsn", dsn, "--seed", "tt0000001", "--seed-file", "x")
	assert.ErrorContains(t, err, "conflicting seed sources")

	_, err = execute(t, "run", "--input", dir, "--sink-dsn", dsn, "--seed", "tt0000001", "--title-scoped", "episodes")
	assert.ErrorContains(t, err, "unknown title-scoped dataset")

	_, err = execute(t, "run", "--input", dir, "--sink-dsn", dsn, "--seed", "tt0000001", "--log-format", "xml")
	assert.ErrorContains(t, err, "invalid log format")

	cfg := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(cfg, []byte(`bogus = 1`), 0o600))
	_, err = execute(t, "run", "--config", cfg)
	assert.ErrorContains(t, err, "invalid option in configuration file")

	// Missing tables without --create-tables: nothing is committed.
	_, err = execute(t, "run", "--input", dir, "--sink-dsn", dsn, "--seed", "tt0000001", "--log-level", "error")
	assert.ErrorIs(t, err, tsvsubset.ErrSinkFailure)
}

func TestInspect(t *testing.T) {
	dir := dumpDir(t)

	out, err := execute(t, "inspect", "--input", dir, "title.ratings.tsv.gz")
	require.NoError(t, err)

	var rep tsvsubset.InspectReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "gzip", rep.Compression)
	assert.Equal(t, int64(2), rep.Records)
	assert.Equal(t, []string{"tconst", "averageRating", "numVotes"}, rep.Header)

	_, err = execute(t, "inspect", "--input", dir, "missing.tsv")
	assert.ErrorIs(t, err, tsvsubset.ErrSourceUnavailable)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	store, err := openStore(ctx, &inputConfig{Input: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &blobstore.LocalStore{}, store)

	_, err = openStore(ctx, &inputConfig{Input: "minio://localhost:9000"})
	assert.ErrorContains(t, err, "missing bucket")

	_, err = openStore(ctx, &inputConfig{Input: "minio://localhost:9000/imdb/2024"})
	assert.NoError(t, err)
}
