// Package key maps tagged decimal identifiers to 64-bit integers and keeps
// them in compact sets.
//
// An identifier is a fixed two-character tag followed by ASCII digits, for
// example "tt0000001" (a title) or "nm0000001" (a person). The tag is never
// stored: "tt0000001" and "nm0000001" both encode to 1. Sets are therefore
// parameterized by a key kind so that a title set cannot be used where a
// person set is expected.
//
// # Hot path
//
// EncodeBytes and Set.Lookup operate on raw byte views so that testing a
// candidate record against a set does not allocate:
//
//	titles := key.NewSet[key.Title]()
//	_ = titles.Insert("tt0000001")
//	titles.Seal()
//
//	ok := titles.Contains(record[:tab])
package key
