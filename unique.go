package sketchbin

import (
	"context"
)

// Unique deduplicates entries sharing a value within each column, summing
// their weights and keeping the first duplicate's RMin and the last
// duplicate's RMax.
//
// This is the only operation that shrinks the total entry count without a
// caller-specified target. It runs in place: each column compacts inside its
// own segment in one fused pass, then columns slide left to close the gaps.
// Categorical columns come out as exact distinct-value lists, one entry per
// category level.
func (c *Container) Unique(ctx context.Context) error {
	before := c.Len()

	buf := c.buffers[c.active]
	layout := c.layout
	counts := make([]int, c.numColumns)

	if err := c.runner.Segmented(ctx, c.numColumns, func(col int) error {
		counts[col] = uniqueColumn(buf[layout[col]:layout[col+1]])
		return nil
	}); err != nil {
		return err
	}

	compactColumns(buf, layout, counts, c.staging)
	c.adoptStaging()
	c.buffers[c.active] = buf[:c.layout[c.numColumns]]

	c.logger.LogUnique(ctx, before, c.Len())
	return nil
}

// uniqueColumn compacts duplicate-valued entries in place and returns the
// new count. Write position never passes the read position.
func uniqueColumn(seg []Entry) int {
	if len(seg) == 0 {
		return 0
	}

	w := 1
	for r := 1; r < len(seg); r++ {
		e := seg[r]
		if e.Value == seg[w-1].Value {
			seg[w-1].Weight += e.Weight
			seg[w-1].RMax = e.RMax
			continue
		}
		seg[w] = e
		w++
	}
	return w
}

// FixError repairs rank-bound drift introduced by floating-point addition
// during merge sequences.
//
// It clamps each column so that RMin is non-decreasing, RMax >= RMin and
// RMax is non-decreasing, without changing values or weights. The repair is
// pure order-based clamping and therefore idempotent. It must run after any
// merge sequence before Prune or MakeCuts, since violated bounds corrupt the
// quantile query.
func (c *Container) FixError(ctx context.Context) error {
	buf := c.buffers[c.active]
	layout := c.layout

	return c.runner.Segmented(ctx, c.numColumns, func(col int) error {
		fixColumn(buf[layout[col]:layout[col+1]])
		return nil
	})
}

func fixColumn(seg []Entry) {
	var prevRMin, prevRMax float64
	for i := range seg {
		if seg[i].RMin < prevRMin {
			seg[i].RMin = prevRMin
		}
		if seg[i].RMax < seg[i].RMin {
			seg[i].RMax = seg[i].RMin
		}
		if seg[i].RMax < prevRMax {
			seg[i].RMax = prevRMax
		}
		prevRMin = seg[i].RMin
		prevRMax = seg[i].RMax
	}
}
