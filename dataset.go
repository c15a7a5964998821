package tsvsubset

import (
	"fmt"
)

// Dataset describes one tab-separated input file and the table its matched
// rows are committed to.
//
// The leading field of every record is the join identifier.
type Dataset struct {
	// Name identifies the dataset in reports, logs and metrics.
	Name string
	// File is the blob name passed to the store.
	File string
	// Table is the sink table.
	Table string
	// Columns names the sink columns. Records with more fields are
	// malformed.
	Columns []string
	// NoHeader marks files whose first record is data.
	NoHeader bool
	// PersonField is the index of the person identifier in credits records.
	// Ignored for other datasets.
	PersonField int
}

func (d Dataset) validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidDataset)
	}
	if d.File == "" {
		return fmt.Errorf("%w: %s: missing file", ErrInvalidDataset, d.Name)
	}
	if d.Table == "" {
		return fmt.Errorf("%w: %s: missing table", ErrInvalidDataset, d.Name)
	}
	if len(d.Columns) < 2 {
		return fmt.Errorf("%w: %s: need at least 2 columns, got %d", ErrInvalidDataset, d.Name, len(d.Columns))
	}
	return nil
}

func (d Dataset) validateCredits() error {
	if err := d.validate(); err != nil {
		return err
	}
	if d.PersonField < 1 || d.PersonField >= len(d.Columns) {
		return fmt.Errorf("%w: %s: person field %d out of range [1,%d)", ErrInvalidDataset, d.Name, d.PersonField, len(d.Columns))
	}
	return nil
}

// IMDbCredits returns the title.principals dataset.
func IMDbCredits() Dataset {
	return Dataset{
		Name:        "credits",
		File:        "title.principals.tsv.gz",
		Table:       "title_principals",
		Columns:     []string{"tconst", "ordering", "nconst", "category", "job", "characters"},
		PersonField: 2,
	}
}

// IMDbPersons returns the name.basics dataset.
func IMDbPersons() Dataset {
	return Dataset{
		Name:    "persons",
		File:    "name.basics.tsv.gz",
		Table:   "name_basics",
		Columns: []string{"nconst", "primary_name", "birth_year", "death_year", "primary_profession", "known_for_titles"},
	}
}

// IMDbRatings returns the title.ratings dataset.
func IMDbRatings() Dataset {
	return Dataset{
		Name:    "ratings",
		File:    "title.ratings.tsv.gz",
		Table:   "title_ratings",
		Columns: []string{"tconst", "average_rating", "num_votes"},
	}
}

// IMDbCrew returns the title.crew dataset.
func IMDbCrew() Dataset {
	return Dataset{
		Name:    "crew",
		File:    "title.crew.tsv.gz",
		Table:   "title_crew",
		Columns: []string{"tconst", "directors", "writers"},
	}
}
