package sketchbin

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// FeatureType classifies a column as numerical or categorical.
type FeatureType uint8

const (
	// Numerical columns are approximated by the quantile summary.
	Numerical FeatureType = iota
	// Categorical columns are kept as exact distinct-value lists; prune and
	// the max-bin budget do not apply to them.
	Categorical
)

// FeatureTypes holds the per-column categorical/numerical flags.
//
// The categorical set is a roaring bitmap of column indices; real datasets
// have sparse categorical columns among thousands of numerical ones.
// FeatureTypes is immutable after construction and safe for concurrent reads.
type FeatureTypes struct {
	numColumns     int
	categorical    *roaring.Bitmap
	hasCategorical bool
}

// NewFeatureTypes creates FeatureTypes from a per-column type array.
func NewFeatureTypes(types []FeatureType) *FeatureTypes {
	cats := roaring.New()
	for i, t := range types {
		if t == Categorical {
			cats.Add(uint32(i))
		}
	}
	return &FeatureTypes{
		numColumns:     len(types),
		categorical:    cats,
		hasCategorical: !cats.IsEmpty(),
	}
}

// NumericalFeatureTypes creates FeatureTypes with every column numerical.
func NumericalFeatureTypes(numColumns int) *FeatureTypes {
	return &FeatureTypes{
		numColumns:  numColumns,
		categorical: roaring.New(),
	}
}

// NumColumns returns the column count.
func (ft *FeatureTypes) NumColumns() int {
	return ft.numColumns
}

// IsCategorical reports whether the column is categorical.
func (ft *FeatureTypes) IsCategorical(col int) bool {
	return ft.categorical.Contains(uint32(col))
}

// HasCategorical reports whether any column is categorical.
// Derived once at construction, never re-derived.
func (ft *FeatureTypes) HasCategorical() bool {
	return ft.hasCategorical
}

// CategoricalCount returns the number of categorical columns.
func (ft *FeatureTypes) CategoricalCount() int {
	return int(ft.categorical.GetCardinality())
}
