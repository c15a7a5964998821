// Package tsvsubset extracts a relevance-filtered subset of linked,
// compressed tab-separated datasets.
//
// A run starts from a seed set of title identifiers. The credits dataset is
// scanned against it, keeping matching rows and collecting the person
// identifiers they reference. The person dataset is then scanned against
// that derived set. Every other title-scoped dataset is scanned against the
// seed set concurrently. All matched rows are handed to a sink in one
// atomic commit.
//
// # Quick Start
//
//	store := blobstore.NewLocalStore("./imdb")
//	seeds := seed.Static{"tt0111161", "tt0068646"}
//	out := sink.NewSQL(db, sink.WithCreateTables())
//
//	p, err := tsvsubset.New(store, seeds, out)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := p.Run(ctx)
//
// # Datasets
//
// The defaults describe the IMDb bulk files:
//
//	title.principals.tsv.gz  credits, person identifier in field 2
//	name.basics.tsv.gz       persons
//	title.ratings.tsv.gz     title-scoped
//	title.crew.tsv.gz        title-scoped
//
// Override them with WithCredits, WithPersons and WithTitleScoped.
//
// # Failure Model
//
// Any malformed identifier, malformed or unterminated record, oversized
// record, unavailable input or rejected commit fails the whole run. A failed
// run commits nothing. Errors raised while scanning are wrapped in a
// *ScanError carrying the dataset, file, line and offset.
package tsvsubset
