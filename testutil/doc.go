// Package testutil provides testing utilities for tsvsubset.
//
// This package is intended for use in tests and benchmarks only.
// It generates linked synthetic dumps, computes the expected subset by brute
// force and injects input faults.
//
// # Synthetic Dumps
//
//	rng := testutil.NewRNG(seed)
//	dumps := testutil.GenerateDumps(rng, testutil.Sizes{Titles: 500, Persons: 200, Credits: 2000})
//	store := dumps.Store()
//
// # Ground Truth
//
//	want := dumps.Reference(seeds)
//
// # Fault Injection
//
//	faulty := testutil.NewFaultyStore(store)
//	faulty.AddRule("name.basics", testutil.Fault{FailAfterBytes: 64})
package testutil
