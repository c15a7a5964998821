package testutil

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hupe1980/tsvsubset/blobstore"
	"github.com/klauspost/compress/gzip"
)

// Sizes controls GenerateDumps.
type Sizes struct {
	Titles  int
	Persons int
	Credits int
}

// Dumps holds synthetic IMDb-shaped files as uncompressed text.
type Dumps struct {
	Credits string
	Persons string
	Ratings string
	Crew    string
}

// TitleID returns the canonical title identifier for n.
func TitleID(n int) string { return fmt.Sprintf("tt%07d", n) }

// PersonID returns the canonical person identifier for n.
func PersonID(n int) string { return fmt.Sprintf("nm%07d", n) }

// GenerateDumps creates credits, persons, ratings and crew files with random
// links. Credits reference titles in [1,Titles] and persons in [1,Persons],
// with duplicates. Ratings and crew cover a random half of the titles each.
// Missing values use the \N token.
func GenerateDumps(rng *RNG, s Sizes) *Dumps {
	var credits, persons, ratings, crew strings.Builder

	credits.WriteString("tconst\tordering\tnconst\tcategory\tjob\tcharacters\n")
	for i := 0; i < s.Credits; i++ {
		fmt.Fprintf(&credits, "%s\t%d\t%s\tactor\t\\N\t\\N\n",
			TitleID(1+rng.Intn(s.Titles)), 1+rng.Intn(10), PersonID(1+rng.Intn(s.Persons)))
	}

	persons.WriteString("nconst\tprimaryName\tbirthYear\tdeathYear\tprimaryProfession\tknownForTitles\n")
	for n := 1; n <= s.Persons; n++ {
		fmt.Fprintf(&persons, "%s\tPerson %d\t%d\t\\N\tactor\t%s\n",
			PersonID(n), n, 1900+rng.Intn(100), TitleID(1+rng.Intn(s.Titles)))
	}

	ratings.WriteString("tconst\taverageRating\tnumVotes\n")
	crew.WriteString("tconst\tdirectors\twriters\n")
	for n := 1; n <= s.Titles; n++ {
		if rng.Intn(2) == 0 {
			fmt.Fprintf(&ratings, "%s\t%d.%d\t%d\n", TitleID(n), rng.Intn(10), rng.Intn(10), rng.Intn(100000))
		}
		if rng.Intn(2) == 0 {
			fmt.Fprintf(&crew, "%s\t%s\t\\N\n", TitleID(n), PersonID(1+rng.Intn(s.Persons)))
		}
	}

	return &Dumps{
		Credits: credits.String(),
		Persons: persons.String(),
		Ratings: ratings.String(),
		Crew:    crew.String(),
	}
}

// Store returns a memory store holding the gzipped dumps under the default
// IMDb file names.
func (d *Dumps) Store() *blobstore.MemoryStore {
	store := blobstore.NewMemoryStore()
	store.Put("title.principals.tsv.gz", Gzip(d.Credits))
	store.Put("name.basics.tsv.gz", Gzip(d.Persons))
	store.Put("title.ratings.tsv.gz", Gzip(d.Ratings))
	store.Put("title.crew.tsv.gz", Gzip(d.Crew))
	return store
}

// Reference computes the expected subset by brute force: the data lines of
// each dataset, keyed by dataset name, in file order.
func (d *Dumps) Reference(seeds []string) map[string][]string {
	titles := make(map[string]bool, len(seeds))
	for _, s := range seeds {
		titles[s] = true
	}

	out := map[string][]string{}
	persons := map[string]bool{}

	for _, line := range dataLines(d.Credits) {
		f := strings.Split(line, "\t")
		if titles[f[0]] {
			out["credits"] = append(out["credits"], line)
			persons[f[2]] = true
		}
	}
	for _, line := range dataLines(d.Persons) {
		if persons[strings.Split(line, "\t")[0]] {
			out["persons"] = append(out["persons"], line)
		}
	}
	for name, text := range map[string]string{"ratings": d.Ratings, "crew": d.Crew} {
		for _, line := range dataLines(text) {
			if titles[strings.Split(line, "\t")[0]] {
				out[name] = append(out[name], line)
			}
		}
	}
	return out
}

func dataLines(text string) []string {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	return lines[1:]
}

// Gzip compresses text.
func Gzip(text string) []byte {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(text)); err != nil {
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
