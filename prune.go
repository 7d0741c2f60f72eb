package sketchbin

import (
	"context"
)

// Prune reduces every numerical column to at most `to` entries while
// preserving the approximation guarantees.
//
// A pruned column always keeps its first and last entries (the column minimum
// and maximum survive pruning); interior entries are selected at target ranks
// spread over the column's weight via the standard quantile-summary query.
// Categorical columns are never pruned: they are exact distinct-value lists.
//
// The selection runs as one fused segmented pass writing into the inactive
// buffer, which then becomes current.
func (c *Container) Prune(ctx context.Context, to int) error {
	before := c.Len()
	err := c.prune(ctx, to)
	c.logger.LogPrune(ctx, to, before, c.Len(), err)
	return err
}

func (c *Container) prune(ctx context.Context, to int) error {
	if to < 2 {
		return ErrInvalidPruneTarget
	}

	// Stage upper-bound counts so every column has a destination range, then
	// compact after the pass; duplicate query picks make actual counts
	// data-dependent.
	c.staging[0] = 0
	for col := 0; col < c.numColumns; col++ {
		n := c.ColumnCount(col)
		if n > to && !c.featureTypes.IsCategorical(col) {
			n = to
		}
		c.staging[col+1] = c.staging[col] + n
	}

	out, err := c.other(c.staging[c.numColumns])
	if err != nil {
		return err
	}

	src := c.buffers[c.active]
	layout := c.layout
	staging := c.staging
	counts := make([]int, c.numColumns)

	if err := c.runner.Segmented(ctx, c.numColumns, func(col int) error {
		counts[col] = pruneColumn(
			src[layout[col]:layout[col+1]],
			out[staging[col]:staging[col+1]],
		)
		return nil
	}); err != nil {
		return err
	}

	compactColumns(out, staging, counts, c.layout)
	c.flip()
	return nil
}

// pruneColumn selects the entries of dst from src and returns the number
// written (at most len(dst), fewer when target ranks collapse onto the same
// entry).
//
// Interior picks target the midpoints of len(dst)-2 equal weight strata of
// [0, totalWeight]. For each target rank d the query advances to the last
// entry whose combined bounds still admit d, then chooses between it and its
// successor by comparing 2d against RMinNext+RMaxPrev, the classic summary
// query rule.
func pruneColumn(src, dst []Entry) int {
	n := len(src)
	to := len(dst)
	if to >= n {
		copy(dst, src)
		return n
	}

	total := src[n-1].RMax

	dst[0] = src[0]
	w := 1
	lastIdx := 0

	curIdx := 0
	for k := 1; k <= to-2; k++ {
		d2 := total * float64(2*k-1) / float64(to-2)
		nextIdx := curIdx + 1
		for nextIdx < n && d2 >= src[nextIdx].RMin+src[nextIdx].RMax {
			nextIdx++
		}
		curIdx = nextIdx - 1

		pick := nextIdx
		if nextIdx == n || d2 < src[curIdx].RMinNext()+src[nextIdx].RMaxPrev() {
			pick = curIdx
		}

		// Skip collapsed picks; the final entry is reserved below.
		if pick <= lastIdx || pick >= n-1 {
			continue
		}
		dst[w] = src[pick]
		w++
		lastIdx = pick
	}

	dst[w] = src[n-1]
	w++
	return w
}
