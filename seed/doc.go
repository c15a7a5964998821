// Package seed loads the initial title key set from an external source.
//
// A Source yields identifier strings lazily and is consumed exactly once.
// Load drains a Source into a sealed key.Set.
package seed
