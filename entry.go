package sketchbin

// Entry is one record of a per-column weighted quantile summary.
//
// RMin and RMax bound the true cumulative weighted rank of Value within its
// column: RMin <= rank(Value) <= RMax. Entries within a column are ordered by
// ascending Value, and RMin/RMax are non-decreasing along that order. The
// last entry's RMax equals the column's total weight.
type Entry struct {
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
	RMin   float64 `json:"rmin"`
	RMax   float64 `json:"rmax"`
}

// RMinNext returns the smallest possible rank of the value immediately after
// this entry: all of this entry's own mass counted below.
func (e Entry) RMinNext() float64 {
	return e.RMin + e.Weight
}

// RMaxPrev returns the largest possible rank of the value immediately before
// this entry: none of this entry's own mass counted below.
func (e Entry) RMaxPrev() float64 {
	return e.RMax - e.Weight
}

// WeightedSample is one raw input observation for Push.
// Samples within a column must be sorted ascending by Value.
type WeightedSample struct {
	Value  float64
	Weight float64
}
