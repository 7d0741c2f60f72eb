package sketchbin

import (
	"context"
	"sort"
)

// Cuts is the materialized histogram bin boundary set consumed by the
// histogram builder: one flat ordered value array with a per-column
// prefix-offset index, mirroring the sketch's segment layout.
type Cuts struct {
	values       []float64
	ptrs         []uint32
	minValues    []float64
	featureTypes *FeatureTypes
}

// Values returns the flat ordered bin boundary array.
func (ct *Cuts) Values() []float64 {
	return ct.values
}

// Ptrs returns the per-column prefix offsets into Values.
func (ct *Cuts) Ptrs() []uint32 {
	return ct.ptrs
}

// MinValues returns, per column, a value strictly below the column minimum:
// the left edge of the first bin for numerical columns.
func (ct *Cuts) MinValues() []float64 {
	return ct.minValues
}

// NumColumns returns the number of feature columns.
func (ct *Cuts) NumColumns() int {
	return len(ct.ptrs) - 1
}

// TotalBins returns the total bin count across all columns.
func (ct *Cuts) TotalBins() int {
	return int(ct.ptrs[len(ct.ptrs)-1])
}

// ColumnCuts returns one column's ordered bin boundaries as a view into the
// flat array.
func (ct *Cuts) ColumnCuts(col int) []float64 {
	return ct.values[ct.ptrs[col]:ct.ptrs[col+1]]
}

// NumBins returns the bin count of one column.
func (ct *Cuts) NumBins(col int) int {
	return int(ct.ptrs[col+1] - ct.ptrs[col])
}

// IsCategorical reports whether a column's boundaries are exact category
// levels (equality-based splits) rather than thresholds.
func (ct *Cuts) IsCategorical(col int) bool {
	return ct.featureTypes.IsCategorical(col)
}

// FeatureTypes returns the per-column categorical/numerical flags.
func (ct *Cuts) FeatureTypes() *FeatureTypes {
	return ct.featureTypes
}

// SearchBin returns the global bin index for a value in a column: the
// column's prefix offset plus the index of the first boundary >= value,
// clamped into the column's bin range.
func (ct *Cuts) SearchBin(col int, value float64) int {
	cuts := ct.ColumnCuts(col)
	if len(cuts) == 0 {
		return int(ct.ptrs[col])
	}
	idx := sort.Search(len(cuts), func(i int) bool {
		return cuts[i] >= value
	})
	if idx == len(cuts) {
		idx = len(cuts) - 1
	}
	return int(ct.ptrs[col]) + idx
}

// MakeCuts converts the finalized (merged, pruned, deduplicated, error-fixed)
// summary into histogram bin boundaries.
//
// Numerical columns follow the right-edge convention: boundaries are the
// entry values from the second entry on, plus a final boundary strictly above
// the column maximum; the left edge of the first bin is recorded in
// MinValues. Categorical columns emit exactly their distinct category levels
// in ascending order, regardless of the max-bin budget.
//
// The container may be discarded after materialization.
func (c *Container) MakeCuts(ctx context.Context) (*Cuts, error) {
	counts := make([]int, c.numColumns)
	minValues := make([]float64, c.numColumns)

	buf := c.buffers[c.active]
	layout := c.layout

	if err := c.runner.Segmented(ctx, c.numColumns, func(col int) error {
		seg := buf[layout[col]:layout[col+1]]
		if len(seg) == 0 {
			return nil
		}
		if c.featureTypes.IsCategorical(col) {
			counts[col] = countDistinct(seg)
			return nil
		}
		minValues[col] = belowMin(seg[0].Value)
		// one boundary per entry after the first, plus the right edge
		counts[col] = countDistinct(seg[1:]) + 1
		return nil
	}); err != nil {
		return nil, err
	}

	ptrs := make([]uint32, c.numColumns+1)
	for col, n := range counts {
		ptrs[col+1] = ptrs[col] + uint32(n)
	}

	values := make([]float64, ptrs[c.numColumns])

	if err := c.runner.Segmented(ctx, c.numColumns, func(col int) error {
		seg := buf[layout[col]:layout[col+1]]
		if len(seg) == 0 {
			return nil
		}
		dst := values[ptrs[col]:ptrs[col+1]]
		if c.featureTypes.IsCategorical(col) {
			fillDistinct(seg, dst)
			return nil
		}
		w := fillDistinct(seg[1:], dst)
		dst[w] = aboveMax(seg[len(seg)-1].Value)
		return nil
	}); err != nil {
		return nil, err
	}

	cuts := &Cuts{
		values:       values,
		ptrs:         ptrs,
		minValues:    minValues,
		featureTypes: c.featureTypes,
	}
	c.logger.LogCuts(ctx, c.numColumns, cuts.TotalBins())
	return cuts, nil
}

// countDistinct counts the strictly ascending values of a sorted segment.
func countDistinct(seg []Entry) int {
	n := 0
	for i, e := range seg {
		if i == 0 || e.Value > seg[i-1].Value {
			n++
		}
	}
	return n
}

// fillDistinct writes the strictly ascending values of a sorted segment into
// dst and returns the number written.
func fillDistinct(seg []Entry, dst []float64) int {
	w := 0
	for i, e := range seg {
		if i == 0 || e.Value > seg[i-1].Value {
			dst[w] = e.Value
			w++
		}
	}
	return w
}

// belowMin returns a value strictly below v, the left edge of the first bin.
func belowMin(v float64) float64 {
	return v - (abs(v) + 1e-5)
}

// aboveMax returns a value strictly above v, the right edge of the last bin.
func aboveMax(v float64) float64 {
	return v + (abs(v) + 1e-5)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
