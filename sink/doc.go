// Package sink persists filtered row batches.
//
// A Sink receives every dataset's batch in one Commit call and persists them
// all or none.
package sink
