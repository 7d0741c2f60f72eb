package sketchbin

import (
	"context"
)

// Merge combines another column-aligned container's summary into this one.
//
// Each column pair is merged by a joint walk over both sorted entry lists;
// rank bounds compose by adding the other side's bound from its closest
// preceding/following entry. The result count per column is the sum of both
// input counts: Merge never reduces size, a subsequent Prune re-bounds
// memory. FixError must run after any merge sequence.
func (c *Container) Merge(ctx context.Context, other *Container) error {
	if other.numColumns != c.numColumns {
		return &ErrColumnMismatch{Expected: c.numColumns, Actual: other.numColumns}
	}
	err := c.merge(ctx, other.current(), other.layout)
	c.logger.LogMerge(ctx, c.Len(), err)
	return err
}

// merge folds a flat entry array with its segment offsets into this container.
func (c *Container) merge(ctx context.Context, entries []Entry, offsets []int) error {
	if err := validateLayout(offsets, c.numColumns); err != nil {
		return err
	}
	if offsets[c.numColumns] == 0 {
		return nil
	}

	if c.Len() == 0 {
		return c.adopt(entries, offsets)
	}

	c.staging[0] = 0
	for col := 0; col < c.numColumns; col++ {
		c.staging[col+1] = c.staging[col] + c.ColumnCount(col) + (offsets[col+1] - offsets[col])
	}

	out, err := c.other(c.staging[c.numColumns])
	if err != nil {
		return err
	}

	src := c.buffers[c.active]
	layout := c.layout
	staging := c.staging

	if err := c.runner.Segmented(ctx, c.numColumns, func(col int) error {
		mergeColumns(
			src[layout[col]:layout[col+1]],
			entries[offsets[col]:offsets[col+1]],
			out[staging[col]:staging[col+1]],
		)
		return nil
	}); err != nil {
		return err
	}

	c.adoptStaging()
	c.flip()
	return nil
}

// adopt copies a summary into an empty container.
func (c *Container) adopt(entries []Entry, offsets []int) error {
	if err := c.grow(c.active, offsets[c.numColumns]); err != nil {
		return err
	}
	copy(c.buffers[c.active], entries[:offsets[c.numColumns]])
	copy(c.layout, offsets)
	return nil
}

// mergeColumns merges two sorted summary columns into out, which must have
// room for exactly len(a)+len(b) entries.
//
// For an entry taken from one side, the other side contributes its
// next-min-rank from the closest strictly-smaller entry to RMin and its
// prev-max-rank from the closest strictly-larger entry to RMax. Equal values
// are emitted as an adjacent pair whose combined bounds match the classic
// coalesced entry, so a later Unique reproduces it exactly.
func mergeColumns(a, b, out []Entry) {
	var (
		i, j  int
		w     int
		aNext float64 // RMinNext of the last consumed entry from a
		bNext float64 // RMinNext of the last consumed entry from b
	)

	for i < len(a) && j < len(b) {
		ea, eb := a[i], b[j]
		switch {
		case ea.Value < eb.Value:
			out[w] = Entry{
				Value:  ea.Value,
				Weight: ea.Weight,
				RMin:   ea.RMin + bNext,
				RMax:   ea.RMax + eb.RMaxPrev(),
			}
			aNext = ea.RMinNext()
			i++
		case eb.Value < ea.Value:
			out[w] = Entry{
				Value:  eb.Value,
				Weight: eb.Weight,
				RMin:   eb.RMin + aNext,
				RMax:   eb.RMax + ea.RMaxPrev(),
			}
			bNext = eb.RMinNext()
			j++
		default:
			// Equal values: the pair below carries the coalesced bounds
			// (RMin on the first, RMax on the second).
			out[w] = Entry{
				Value:  ea.Value,
				Weight: ea.Weight,
				RMin:   ea.RMin + eb.RMin,
				RMax:   ea.RMax + eb.RMaxPrev(),
			}
			w++
			out[w] = Entry{
				Value:  eb.Value,
				Weight: eb.Weight,
				RMin:   eb.RMin + ea.RMinNext(),
				RMax:   ea.RMax + eb.RMax,
			}
			aNext = ea.RMinNext()
			bNext = eb.RMinNext()
			i++
			j++
		}
		w++
	}

	// Residual tails: the exhausted side contributes its full weight below.
	var aTotal, bTotal float64
	if len(a) > 0 {
		aTotal = a[len(a)-1].RMax
	}
	if len(b) > 0 {
		bTotal = b[len(b)-1].RMax
	}

	for ; i < len(a); i++ {
		out[w] = Entry{
			Value:  a[i].Value,
			Weight: a[i].Weight,
			RMin:   a[i].RMin + bNext,
			RMax:   a[i].RMax + bTotal,
		}
		w++
	}
	for ; j < len(b); j++ {
		out[w] = Entry{
			Value:  b[j].Value,
			Weight: b[j].Weight,
			RMin:   b[j].RMin + aNext,
			RMax:   b[j].RMax + aTotal,
		}
		w++
	}
}
