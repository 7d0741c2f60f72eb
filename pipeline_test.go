package sketchbin_test

import (
	"context"
	"math"
	"testing"

	"github.com/hupe1980/sketchbin"
	"github.com/hupe1980/sketchbin/allreduce"
	"github.com/hupe1980/sketchbin/codec"
	"github.com/hupe1980/sketchbin/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestBuildCutsSingleProcess(t *testing.T) {
	ctx := context.Background()

	const maxBin = 64
	rng := testutil.NewRNG(81)
	raw := rng.SortedUniformColumn(20000)

	c, err := sketchbin.New(1, len(raw), maxBin)
	require.NoError(t, err)

	// feed in chunks like a real scan would
	for begin := 0; begin < len(raw); begin += 4096 {
		end := min(begin+4096, len(raw))
		require.NoError(t, c.Push(ctx, [][]sketchbin.WeightedSample{raw[begin:end]}))
	}

	cuts, err := sketchbin.BuildCuts(ctx, c, nil)
	require.NoError(t, err)

	require.LessOrEqual(t, cuts.NumBins(0), maxBin)
	requireBalancedCuts(t, cuts, raw)
}

func TestBuildCutsDistributedRowSplit(t *testing.T) {
	ctx := context.Background()

	const (
		maxBin  = 32
		workers = 4
	)

	rng := testutil.NewRNG(83)
	full := rng.SortedWeightedColumn(8000)
	parts := testutil.SplitColumn(full, workers)

	comms := allreduce.NewMemoryGroup(workers)
	results := make([]*sketchbin.Cuts, workers)

	g, gctx := errgroup.WithContext(ctx)
	for rank := 0; rank < workers; rank++ {
		g.Go(func() error {
			c, err := sketchbin.New(1, len(parts[rank]), maxBin)
			if err != nil {
				return err
			}
			if err := c.Push(gctx, [][]sketchbin.WeightedSample{parts[rank]}); err != nil {
				return err
			}

			cuts, err := sketchbin.BuildCuts(gctx, c, comms[rank],
				sketchbin.WithAllReduceOptions(func(o *sketchbin.AllReduceOptions) {
					o.Compression = codec.CompressionLZ4
				}),
			)
			if err != nil {
				return err
			}
			results[rank] = cuts
			return nil
		})
	}
	require.NoError(t, g.Wait())

	// every worker materializes identical boundaries
	for rank := 1; rank < workers; rank++ {
		require.Equal(t, results[0].Values(), results[rank].Values())
		require.Equal(t, results[0].Ptrs(), results[rank].Ptrs())
	}

	require.LessOrEqual(t, results[0].NumBins(0), maxBin)
	requireBalancedCuts(t, results[0], full)
}

func TestBuildCutsColumnSplit(t *testing.T) {
	ctx := context.Background()

	rng := testutil.NewRNG(87)
	cols := [][]sketchbin.WeightedSample{
		rng.SortedUniformColumn(500),
		rng.SortedGaussianColumn(500),
	}

	comms := allreduce.NewMemoryGroup(2)
	results := make([]*sketchbin.Cuts, 2)

	g, gctx := errgroup.WithContext(ctx)
	for rank := 0; rank < 2; rank++ {
		g.Go(func() error {
			owned := make([][]sketchbin.WeightedSample, 2)
			owned[rank] = cols[rank]

			c, err := sketchbin.New(2, 500, 16)
			if err != nil {
				return err
			}
			if err := c.Push(gctx, owned); err != nil {
				return err
			}

			cuts, err := sketchbin.BuildCuts(gctx, c, comms[rank],
				sketchbin.WithSplit(sketchbin.SplitCol))
			if err != nil {
				return err
			}
			results[rank] = cuts
			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.Equal(t, results[0].Values(), results[1].Values())
	for col := 0; col < 2; col++ {
		require.Greater(t, results[0].NumBins(col), 0)
		require.LessOrEqual(t, results[0].NumBins(col), 16)
	}
}

// requireBalancedCuts checks that the materialized boundaries split the raw
// column into bins of roughly equal weight: the sketch's approximation
// guarantee surfaced at the histogram level.
func requireBalancedCuts(t *testing.T, cuts *sketchbin.Cuts, raw []sketchbin.WeightedSample) {
	t.Helper()

	boundaries := cuts.ColumnCuts(0)
	total := testutil.TotalWeight(raw)
	ideal := total / float64(len(boundaries))

	var (
		idx int
		cum float64
	)
	prev := 0.0
	for _, b := range boundaries {
		for idx < len(raw) && raw[idx].Value <= b {
			cum += raw[idx].Weight
			idx++
		}
		binWeight := cum - prev
		prev = cum

		// generous bound: bins may drift but never collapse the distribution
		require.Less(t, math.Abs(binWeight-ideal), total*0.05,
			"bin ending at %v holds weight %v, ideal %v", b, binWeight, ideal)
	}
	require.Equal(t, len(raw), idx, "last boundary must cover the column maximum")
}
