// Package sketchbin computes approximate weighted quantile summaries per
// feature column and materializes them into histogram bin boundaries.
//
// The Container maintains one bounded-size, rank-error-bounded summary per
// column over a single flat entry buffer, so that push, prune, merge and
// dedupe run as fused segmented passes across all columns instead of one
// operation per column.
//
// # Quick Start
//
//	ctx := context.Background()
//	c, _ := sketchbin.New(3, 1000, 32)
//
//	// batches arrive as per-column, value-sorted weighted samples
//	_ = c.Push(ctx, batch)
//
//	cuts, _ := sketchbin.BuildCuts(ctx, c, nil)
//	bin := cuts.SearchBin(0, 4.2)
//
// # Distributed Training
//
// Workers holding disjoint row (or column) partitions combine their local
// summaries through a Communicator, typically backed by shared blob storage:
//
//	store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("sketches/"))
//	comm, _ := allreduce.NewBlobCommunicator(store, rank, worldSize)
//	cuts, _ := sketchbin.BuildCuts(ctx, c, comm)
//
// # Pipeline Ordering
//
// Container methods must be invoked in the sequence
// Push* -> [Merge/Prune]* -> Unique -> AllReduce -> FixError -> Prune ->
// MakeCuts. BuildCuts runs that sequence for you. Calling out of order does
// not crash but produces summaries with undefined quantile quality.
//
// A Container is single-writer: its methods must never run concurrently on
// the same instance. Independent containers may run fully in parallel.
package sketchbin
