package sketchbin_test

import (
	"context"
	"testing"

	"github.com/hupe1980/sketchbin"
	"github.com/hupe1980/sketchbin/testutil"
	"github.com/stretchr/testify/require"
)

func TestUniqueMergesDuplicateValues(t *testing.T) {
	ctx := context.Background()

	c := newPushed(t, 16, []sketchbin.WeightedSample{
		{Value: 1, Weight: 1},
		{Value: 2, Weight: 1},
		{Value: 2, Weight: 1},
		{Value: 2, Weight: 1},
		{Value: 3, Weight: 1},
	})

	require.NoError(t, c.Unique(ctx))

	col := c.Column(0)
	require.Equal(t, []sketchbin.Entry{
		{Value: 1, Weight: 1, RMin: 0, RMax: 1},
		{Value: 2, Weight: 3, RMin: 1, RMax: 4},
		{Value: 3, Weight: 1, RMin: 4, RMax: 5},
	}, col)

	// strictly ascending afterwards
	for i := 1; i < len(col); i++ {
		require.Greater(t, col[i].Value, col[i-1].Value)
	}
}

func TestUniqueCompactsAcrossColumns(t *testing.T) {
	ctx := context.Background()

	c := newPushed(t, 16,
		[]sketchbin.WeightedSample{
			{Value: 1, Weight: 1}, {Value: 1, Weight: 1}, {Value: 1, Weight: 1},
		},
		[]sketchbin.WeightedSample{
			{Value: 7, Weight: 2}, {Value: 8, Weight: 1},
		},
	)

	require.NoError(t, c.Unique(ctx))

	require.Equal(t, 1, c.ColumnCount(0))
	require.Equal(t, 2, c.ColumnCount(1))
	require.Equal(t, 3, c.Len())

	require.Equal(t, sketchbin.Entry{Value: 1, Weight: 3, RMin: 0, RMax: 3}, c.Column(0)[0])
	require.Equal(t, sketchbin.Entry{Value: 7, Weight: 2, RMin: 0, RMax: 2}, c.Column(1)[0])
}

func TestUniqueIdempotent(t *testing.T) {
	ctx := context.Background()

	rng := testutil.NewRNG(41)
	c := newPushed(t, 32, rng.CategoricalColumn(300, 20))

	require.NoError(t, c.Unique(ctx))
	once := append([]sketchbin.Entry(nil), c.Column(0)...)

	require.NoError(t, c.Unique(ctx))
	require.Equal(t, once, c.Column(0))
}

func TestFixErrorRepairsDrift(t *testing.T) {
	ctx := context.Background()

	c, err := sketchbin.New(1, 0, 16)
	require.NoError(t, err)

	// simulated float drift: rmin dips, rmax dips below rmin
	drifted := &sketchbin.Summary{
		NumColumns: 1,
		Offsets:    []int{0, 3},
		Entries: []sketchbin.Entry{
			{Value: 1, Weight: 1, RMin: 0, RMax: 1},
			{Value: 2, Weight: 1, RMin: -0.25, RMax: 0.5},
			{Value: 3, Weight: 1, RMin: 2, RMax: 1.5},
		},
	}
	require.NoError(t, c.SetSummary(drifted))

	require.NoError(t, c.FixError(ctx))

	col := c.Column(0)
	requireValidColumn(t, col)
	require.Equal(t, 0.0, col[1].RMin)
	require.Equal(t, 1.0, col[1].RMax)
	require.Equal(t, 2.0, col[2].RMin)
	require.Equal(t, 2.0, col[2].RMax)

	// idempotent: a second pass changes nothing
	once := append([]sketchbin.Entry(nil), col...)
	require.NoError(t, c.FixError(ctx))
	require.Equal(t, once, c.Column(0))
}
