package sketchbin

import (
	"context"
	"fmt"

	"github.com/hupe1980/sketchbin/codec"
)

// Communicator is the opaque collective used for distributed merge: every
// worker contributes one payload and receives all workers' payloads in rank
// order, or the call fails fatally. Any transport satisfies the contract as
// long as delivery is atomic relative to the merge step.
type Communicator interface {
	// Rank returns this worker's index in [0, WorldSize).
	Rank() int

	// WorldSize returns the number of workers in the group.
	WorldSize() int

	// AllGather broadcasts the local payload and returns every worker's
	// payload ordered by rank.
	AllGather(ctx context.Context, payload []byte) ([][]byte, error)
}

// DataSplit describes how the dataset is partitioned across workers.
type DataSplit int

const (
	// SplitRow means each worker holds a disjoint row subset of all columns.
	// Peer summaries are genuinely merged column-wise.
	SplitRow DataSplit = iota

	// SplitCol means each worker holds all rows of a disjoint column subset.
	// Peer summaries are concatenated into the global layout without merging;
	// every worker constructs its container with the global column count and
	// pushes only its owned columns.
	SplitCol
)

// AllReduceOptions configures summary exchange.
type AllReduceOptions struct {
	// Codec encodes summary payloads. Defaults to codec.Default.
	Codec codec.Codec

	// Compression is applied to encoded payloads. Defaults to none.
	Compression codec.CompressionType
}

// AllReduce combines this container's local, finalized (post-Unique) summary
// with every other worker's through the communicator.
//
// A communication failure is fatal: the error is returned wrapped in
// ErrCommunication and the container's state is undefined afterwards.
func (c *Container) AllReduce(ctx context.Context, comm Communicator, split DataSplit, optFns ...func(*AllReduceOptions)) error {
	if comm == nil || comm.WorldSize() <= 1 {
		return nil
	}

	opts := AllReduceOptions{
		Codec:       codec.Default,
		Compression: codec.CompressionNone,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	payload, err := codec.EncodeFrame(opts.Codec, opts.Compression, c.Summary())
	if err != nil {
		return err
	}

	gathered, err := comm.AllGather(ctx, payload)
	c.logger.LogAllReduce(ctx, comm.Rank(), comm.WorldSize(), len(payload), err)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCommunication, err)
	}
	if len(gathered) != comm.WorldSize() {
		return fmt.Errorf("%w: expected %d payloads, got %d", ErrCommunication, comm.WorldSize(), len(gathered))
	}

	switch split {
	case SplitCol:
		return c.gatherColumns(gathered)
	default:
		return c.foldRows(ctx, gathered, comm.Rank())
	}
}

// foldRows merges every peer's summary into the local one, repairing
// floating-point drift after each fold.
func (c *Container) foldRows(ctx context.Context, gathered [][]byte, rank int) error {
	for r, data := range gathered {
		if r == rank {
			continue
		}

		var s Summary
		if err := codec.DecodeFrame(data, &s); err != nil {
			return fmt.Errorf("%w: decoding rank %d summary: %w", ErrCommunication, r, err)
		}
		if err := c.validateSummary(&s); err != nil {
			return err
		}

		if err := c.merge(ctx, s.Entries, s.Offsets); err != nil {
			return err
		}
		if err := c.FixError(ctx); err != nil {
			return err
		}
	}
	return nil
}

// gatherColumns concatenates column-split peer summaries into the global
// layout. A column's data lives entirely on one worker, so for each column
// the single non-empty segment wins; no merge is needed.
func (c *Container) gatherColumns(gathered [][]byte) error {
	summaries := make([]*Summary, len(gathered))
	for r, data := range gathered {
		s := &Summary{}
		if err := codec.DecodeFrame(data, s); err != nil {
			return fmt.Errorf("%w: decoding rank %d summary: %w", ErrCommunication, r, err)
		}
		if err := c.validateSummary(s); err != nil {
			return err
		}
		summaries[r] = s
	}

	owner := make([]*Summary, c.numColumns)
	c.staging[0] = 0
	for col := 0; col < c.numColumns; col++ {
		var count int
		for _, s := range summaries {
			if n := s.Offsets[col+1] - s.Offsets[col]; n > 0 {
				owner[col] = s
				count = n
				break
			}
		}
		c.staging[col+1] = c.staging[col] + count
	}

	out, err := c.other(c.staging[c.numColumns])
	if err != nil {
		return err
	}
	for col := 0; col < c.numColumns; col++ {
		if s := owner[col]; s != nil {
			copy(out[c.staging[col]:c.staging[col+1]], s.Entries[s.Offsets[col]:s.Offsets[col+1]])
		}
	}

	c.adoptStaging()
	c.flip()
	return nil
}
