package sketchbin

import (
	"context"
)

// BuildCuts runs the finalization pipeline on a container that has received
// all of its batches via Push, and materializes the histogram bin boundaries:
//
//	Unique -> AllReduce -> FixError -> Prune(maxBin) -> Unique -> MakeCuts
//
// comm may be nil (or have WorldSize 1) for single-process sketching. For
// distributed datasets, split selects the partitioning regime; see DataSplit.
//
// The container is consumed: after BuildCuts it holds the final pruned
// summary and should not receive further pushes.
func BuildCuts(ctx context.Context, c *Container, comm Communicator, optFns ...func(*BuildOptions)) (*Cuts, error) {
	opts := BuildOptions{
		Split: SplitRow,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := c.Unique(ctx); err != nil {
		return nil, err
	}

	if comm != nil {
		if err := c.AllReduce(ctx, comm, opts.Split, opts.AllReduce...); err != nil {
			return nil, err
		}
	}

	if err := c.FixError(ctx); err != nil {
		return nil, err
	}
	if err := c.Prune(ctx, c.maxBin); err != nil {
		return nil, err
	}
	// Cross-worker merges introduce duplicate values; dedupe once more so
	// categorical columns end as exact level lists.
	if err := c.Unique(ctx); err != nil {
		return nil, err
	}

	return c.MakeCuts(ctx)
}

// BuildOptions configures the finalization pipeline.
type BuildOptions struct {
	// Split selects the distributed partitioning regime. Defaults to SplitRow.
	Split DataSplit

	// AllReduce options are forwarded to Container.AllReduce.
	AllReduce []func(*AllReduceOptions)
}

// WithSplit sets the distributed partitioning regime.
func WithSplit(split DataSplit) func(*BuildOptions) {
	return func(o *BuildOptions) {
		o.Split = split
	}
}

// WithAllReduceOptions forwards options to the summary exchange.
func WithAllReduceOptions(optFns ...func(*AllReduceOptions)) func(*BuildOptions) {
	return func(o *BuildOptions) {
		o.AllReduce = append(o.AllReduce, optFns...)
	}
}
