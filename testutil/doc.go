// Package testutil provides testing utilities for sketchbin.
//
// This package is intended for use in tests and benchmarks only. It provides
// helpers for generating random weighted columns and for computing exact
// weighted quantiles as ground truth.
//
// # Random Column Generation
//
//	rng := testutil.NewRNG(seed)
//	col := rng.SortedUniformColumn(1000)   // sorted values, unit weights
//	col = rng.SortedWeightedColumn(1000)   // sorted values, random weights
//
// # Ground Truth
//
//	q := testutil.ExactWeightedQuantile(col, 0.5) // exact weighted median
package testutil
