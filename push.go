package sketchbin

import (
	"context"
)

// Push ingests one batch of per-column, value-sorted weighted samples.
//
// Each column's samples produce one summary entry per sample, with RMin/RMax
// computed by a prefix accumulation of weight. Numerical columns whose sample
// count exceeds the per-column bound are stride-subsampled down to it;
// duplicate values are resolved later by Unique, not here.
//
// Into an empty container the batch is written directly; otherwise it is
// staged into a scratch container, merged in, repaired with FixError and
// pruned back under the per-column bound.
func (c *Container) Push(ctx context.Context, batch [][]WeightedSample) error {
	err := c.push(ctx, batch)
	c.logger.LogPush(ctx, len(batch), c.Len(), err)
	return err
}

func (c *Container) push(ctx context.Context, batch [][]WeightedSample) error {
	if len(batch) != c.numColumns {
		return &ErrColumnMismatch{Expected: c.numColumns, Actual: len(batch)}
	}

	if c.Len() == 0 {
		return c.pushInitial(ctx, batch)
	}

	// Stage the batch in a scratch container sharing this one's config, then
	// fold it in. The scratch buffers are short-lived by design; the merge
	// result lands in this container's inactive buffer.
	tmp := &Container{
		numColumns:   c.numColumns,
		numRows:      c.numRows,
		maxBin:       c.maxBin,
		limit:        c.limit,
		featureTypes: c.featureTypes,
		logger:       NoopLogger(),
		runner:       c.runner,
		rc:           c.rc,
		layout:       make([]int, c.numColumns+1),
		staging:      make([]int, c.numColumns+1),
	}
	if err := tmp.pushInitial(ctx, batch); err != nil {
		return err
	}

	if err := c.Merge(ctx, tmp); err != nil {
		return err
	}
	if err := c.FixError(ctx); err != nil {
		return err
	}

	over := false
	for col := 0; col < c.numColumns; col++ {
		if !c.featureTypes.IsCategorical(col) && c.ColumnCount(col) > c.limit {
			over = true
			break
		}
	}
	if over {
		return c.Prune(ctx, c.limit)
	}
	return nil
}

// pushInitial writes a batch straight into the active buffer of an empty
// container at the positions implied by the staged target layout.
func (c *Container) pushInitial(ctx context.Context, batch [][]WeightedSample) error {
	c.staging[0] = 0
	for col, samples := range batch {
		slots := len(samples)
		if !c.featureTypes.IsCategorical(col) && slots > c.limit {
			slots = c.limit
		}
		c.staging[col+1] = c.staging[col] + slots
	}

	total := c.staging[c.numColumns]
	if err := c.grow(c.active, total); err != nil {
		return err
	}
	c.adoptStaging()

	buf := c.buffers[c.active]
	layout := c.layout

	return c.runner.Segmented(ctx, c.numColumns, func(col int) error {
		return pushColumn(batch[col], buf[layout[col]:layout[col+1]])
	})
}

// pushColumn turns one column's sorted samples into summary entries.
//
// When len(dst) < len(col), the column is split into len(dst) contiguous
// spans of near-equal sample count; each span becomes one entry carrying the
// span's weight and rank bounds, valued at the span's last (largest) sample.
func pushColumn(col []WeightedSample, dst []Entry) error {
	n := len(col)
	if n == 0 {
		return nil
	}

	for i, s := range col {
		if s.Weight < 0 {
			return ErrNegativeWeight
		}
		if i > 0 && s.Value < col[i-1].Value {
			return ErrUnsortedInput
		}
	}

	slots := len(dst)
	if slots == n {
		cum := 0.0
		for i, s := range col {
			dst[i] = Entry{
				Value:  s.Value,
				Weight: s.Weight,
				RMin:   cum,
				RMax:   cum + s.Weight,
			}
			cum += s.Weight
		}
		return nil
	}

	prefix := make([]float64, n+1)
	for i, s := range col {
		prefix[i+1] = prefix[i] + s.Weight
	}

	for k := 0; k < slots; k++ {
		begin := k * n / slots
		end := (k + 1) * n / slots
		dst[k] = Entry{
			Value:  col[end-1].Value,
			Weight: prefix[end] - prefix[begin],
			RMin:   prefix[begin],
			RMax:   prefix[end],
		}
	}
	return nil
}
