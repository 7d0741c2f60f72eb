package testutil

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/hupe1980/sketchbin"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns, as a float64, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// SortedUniformColumn generates n unit-weight samples with distinct sorted
// uniform values in [0, 1).
func (r *RNG) SortedUniformColumn(n int) []sketchbin.WeightedSample {
	r.mu.Lock()
	defer r.mu.Unlock()

	col := make([]sketchbin.WeightedSample, n)
	for i := range col {
		col[i] = sketchbin.WeightedSample{Value: r.rand.Float64(), Weight: 1}
	}
	sortColumn(col)
	return col
}

// SortedWeightedColumn generates n samples with sorted uniform values and
// random positive weights in [0.5, 1.5).
func (r *RNG) SortedWeightedColumn(n int) []sketchbin.WeightedSample {
	r.mu.Lock()
	defer r.mu.Unlock()

	col := make([]sketchbin.WeightedSample, n)
	for i := range col {
		col[i] = sketchbin.WeightedSample{
			Value:  r.rand.Float64(),
			Weight: 0.5 + r.rand.Float64(),
		}
	}
	sortColumn(col)
	return col
}

// SortedGaussianColumn generates n unit-weight samples from a standard
// normal distribution, sorted ascending.
func (r *RNG) SortedGaussianColumn(n int) []sketchbin.WeightedSample {
	r.mu.Lock()
	defer r.mu.Unlock()

	col := make([]sketchbin.WeightedSample, n)
	for i := range col {
		col[i] = sketchbin.WeightedSample{Value: r.rand.NormFloat64(), Weight: 1}
	}
	sortColumn(col)
	return col
}

// CategoricalColumn generates n unit-weight samples drawn from levels
// category codes, sorted ascending. Duplicate values are expected.
func (r *RNG) CategoricalColumn(n, levels int) []sketchbin.WeightedSample {
	r.mu.Lock()
	defer r.mu.Unlock()

	col := make([]sketchbin.WeightedSample, n)
	for i := range col {
		col[i] = sketchbin.WeightedSample{Value: float64(r.rand.Intn(levels)), Weight: 1}
	}
	sortColumn(col)
	return col
}

// SplitColumn partitions a sorted column into parts disjoint row subsets,
// dealing rows round-robin so every part spans the full value range. Each
// part is itself sorted.
func SplitColumn(col []sketchbin.WeightedSample, parts int) [][]sketchbin.WeightedSample {
	out := make([][]sketchbin.WeightedSample, parts)
	for i, s := range col {
		p := i % parts
		out[p] = append(out[p], s)
	}
	return out
}

// TotalWeight sums a column's weights.
func TotalWeight(col []sketchbin.WeightedSample) float64 {
	var total float64
	for _, s := range col {
		total += s.Weight
	}
	return total
}

// ExactWeightedQuantile computes the exact weighted quantile of a sorted
// column: the smallest value whose cumulative weight reaches q*totalWeight.
func ExactWeightedQuantile(col []sketchbin.WeightedSample, q float64) float64 {
	target := q * TotalWeight(col)

	var cum float64
	for _, s := range col {
		cum += s.Weight
		if cum >= target {
			return s.Value
		}
	}
	return col[len(col)-1].Value
}

// ExactRank returns the cumulative weight of all samples with value strictly
// below v, the true rmin of v in the column.
func ExactRank(col []sketchbin.WeightedSample, v float64) float64 {
	var cum float64
	for _, s := range col {
		if s.Value >= v {
			break
		}
		cum += s.Weight
	}
	return cum
}

func sortColumn(col []sketchbin.WeightedSample) {
	sort.Slice(col, func(i, j int) bool {
		return col[i].Value < col[j].Value
	})
}
