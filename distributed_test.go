package sketchbin_test

import (
	"context"
	"testing"

	"github.com/hupe1980/sketchbin"
	"github.com/hupe1980/sketchbin/allreduce"
	"github.com/hupe1980/sketchbin/codec"
	"github.com/hupe1980/sketchbin/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestAllReduceSingleWorkerNoop(t *testing.T) {
	ctx := context.Background()

	c := newPushed(t, 16, []sketchbin.WeightedSample{
		{Value: 1, Weight: 1}, {Value: 2, Weight: 1},
	})
	before := append([]sketchbin.Entry(nil), c.Column(0)...)

	require.NoError(t, c.AllReduce(ctx, nil, sketchbin.SplitRow))

	comms := allreduce.NewMemoryGroup(1)
	require.NoError(t, c.AllReduce(ctx, comms[0], sketchbin.SplitRow))

	require.Equal(t, before, c.Column(0))
}

func TestAllReduceRowSplit(t *testing.T) {
	ctx := context.Background()

	workers := [][]sketchbin.WeightedSample{
		{{Value: 1, Weight: 1}, {Value: 3, Weight: 1}, {Value: 5, Weight: 1}},
		{{Value: 2, Weight: 1}, {Value: 4, Weight: 1}, {Value: 6, Weight: 1}},
	}

	comms := allreduce.NewMemoryGroup(2)
	results := make([]*sketchbin.Container, 2)

	g, gctx := errgroup.WithContext(ctx)
	for rank := range workers {
		g.Go(func() error {
			c, err := sketchbin.New(1, 3, 16)
			if err != nil {
				return err
			}
			if err := c.Push(gctx, [][]sketchbin.WeightedSample{workers[rank]}); err != nil {
				return err
			}
			if err := c.Unique(gctx); err != nil {
				return err
			}
			if err := c.AllReduce(gctx, comms[rank], sketchbin.SplitRow); err != nil {
				return err
			}
			results[rank] = c
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, c := range results {
		col := c.Column(0)
		require.Len(t, col, 6)
		require.InDelta(t, 6.0, c.TotalWeight(0), 1e-12)
		requireValidColumn(t, col)

		for i, e := range col {
			require.Equal(t, float64(i+1), e.Value)
		}
	}
}

func TestAllReduceColumnSplit(t *testing.T) {
	ctx := context.Background()

	// two workers, four global columns; worker 0 owns columns 0-1,
	// worker 1 owns columns 2-3
	rng := testutil.NewRNG(71)
	owned := [][][]sketchbin.WeightedSample{
		{rng.SortedUniformColumn(50), rng.SortedWeightedColumn(40), nil, nil},
		{nil, nil, rng.SortedUniformColumn(30), rng.SortedWeightedColumn(20)},
	}

	comms := allreduce.NewMemoryGroup(2)
	results := make([]*sketchbin.Container, 2)

	g, gctx := errgroup.WithContext(ctx)
	for rank := range owned {
		g.Go(func() error {
			c, err := sketchbin.New(4, 50, 16)
			if err != nil {
				return err
			}
			if err := c.Push(gctx, owned[rank]); err != nil {
				return err
			}
			if err := c.Unique(gctx); err != nil {
				return err
			}
			if err := c.AllReduce(gctx, comms[rank], sketchbin.SplitCol); err != nil {
				return err
			}
			results[rank] = c
			return nil
		})
	}
	require.NoError(t, g.Wait())

	// both workers end up with the identical global layout
	require.Equal(t, results[0].Summary(), results[1].Summary())

	c := results[0]
	require.Equal(t, 50, c.ColumnCount(0))
	require.Equal(t, 40, c.ColumnCount(1))
	require.Equal(t, 30, c.ColumnCount(2))
	require.Equal(t, 20, c.ColumnCount(3))
}

func TestAllReduceCompressedPayloads(t *testing.T) {
	ctx := context.Background()

	rng := testutil.NewRNG(73)
	full := rng.SortedUniformColumn(600)
	parts := testutil.SplitColumn(full, 3)

	comms := allreduce.NewMemoryGroup(3)
	results := make([]*sketchbin.Container, 3)

	g, gctx := errgroup.WithContext(ctx)
	for rank := range parts {
		g.Go(func() error {
			c, err := sketchbin.New(1, 200, 32)
			if err != nil {
				return err
			}
			if err := c.Push(gctx, [][]sketchbin.WeightedSample{parts[rank]}); err != nil {
				return err
			}
			if err := c.Unique(gctx); err != nil {
				return err
			}
			if err := c.AllReduce(gctx, comms[rank], sketchbin.SplitRow, func(o *sketchbin.AllReduceOptions) {
				o.Compression = codec.CompressionZSTD
			}); err != nil {
				return err
			}
			results[rank] = c
			return nil
		})
	}
	require.NoError(t, g.Wait())

	want := testutil.TotalWeight(full)
	for _, c := range results {
		require.InDelta(t, want, c.TotalWeight(0), 1e-9)
		requireValidColumn(t, c.Column(0))
	}
}

func TestAllReduceColumnMismatch(t *testing.T) {
	ctx := context.Background()

	comms := allreduce.NewMemoryGroup(2)
	errs := make([]error, 2)

	g := new(errgroup.Group)
	for rank := 0; rank < 2; rank++ {
		g.Go(func() error {
			cols := 1 + rank // workers disagree on the column count
			c, err := sketchbin.New(cols, 2, 16)
			if err != nil {
				return err
			}
			batch := make([][]sketchbin.WeightedSample, cols)
			batch[0] = []sketchbin.WeightedSample{{Value: 1, Weight: 1}}
			if err := c.Push(ctx, batch); err != nil {
				return err
			}
			errs[rank] = c.AllReduce(ctx, comms[rank], sketchbin.SplitRow)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var mismatch *sketchbin.ErrColumnMismatch
	require.ErrorAs(t, errs[0], &mismatch)
	require.ErrorAs(t, errs[1], &mismatch)
}
