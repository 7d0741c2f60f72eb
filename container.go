package sketchbin

import (
	"fmt"

	"github.com/hupe1980/sketchbin/internal/parallel"
	"github.com/hupe1980/sketchbin/resource"
)

// kFactor scales the max-bin budget into the per-column entry bound kept
// between prune cycles. Larger factors trade memory for tighter rank error.
const kFactor = 8

// entryBytes is the in-memory size of one Entry, used for buffer accounting.
const entryBytes = 32

// Container accumulates per-column weighted quantile summaries over one flat
// entry buffer.
//
// It is double-buffered: operations that cannot run in place (prune, merge)
// write into the inactive buffer and flip the selector. A Container is
// move-only and single-writer; see the package documentation for the required
// operation ordering.
type Container struct {
	numColumns int
	numRows    int
	maxBin     int
	limit      int // per-column entry bound between prune cycles

	featureTypes *FeatureTypes
	logger       *Logger
	runner       *parallel.Runner
	rc           *resource.Controller

	buffers [2][]Entry
	active  int
	layout  []int // numColumns+1 offsets into the active buffer
	staging []int // scratch offsets for count-changing operations
}

// New creates a Container for numColumns feature columns.
//
// numRows is a capacity hint only. maxBin is the histogram bin budget per
// numerical column and must be at least 2.
func New(numColumns, numRows, maxBin int, optFns ...Option) (*Container, error) {
	if maxBin < 2 {
		return nil, ErrInvalidMaxBin
	}
	if numColumns <= 0 {
		return nil, &ErrColumnMismatch{Expected: 1, Actual: numColumns}
	}

	opts := options{
		logger: NoopLogger(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	ft := opts.featureTypes
	if ft == nil {
		ft = NumericalFeatureTypes(numColumns)
	}
	if ft.NumColumns() != numColumns {
		return nil, &ErrColumnMismatch{Expected: numColumns, Actual: ft.NumColumns()}
	}

	return &Container{
		numColumns:   numColumns,
		numRows:      numRows,
		maxBin:       maxBin,
		limit:        kFactor * maxBin,
		featureTypes: ft,
		logger:       opts.logger,
		runner:       parallel.NewRunner(opts.parallelism),
		rc:           opts.controller,
		layout:       make([]int, numColumns+1),
		staging:      make([]int, numColumns+1),
	}, nil
}

// NumColumns returns the number of feature columns.
func (c *Container) NumColumns() int {
	return c.numColumns
}

// MaxBin returns the configured histogram bin budget.
func (c *Container) MaxBin() int {
	return c.maxBin
}

// Limit returns the per-column entry bound kept between prune cycles.
func (c *Container) Limit() int {
	return c.limit
}

// FeatureTypes returns the per-column categorical/numerical flags.
func (c *Container) FeatureTypes() *FeatureTypes {
	return c.featureTypes
}

// Len returns the total entry count across all columns.
func (c *Container) Len() int {
	return c.layout[c.numColumns]
}

// ColumnCount returns the entry count of one column.
func (c *Container) ColumnCount(col int) int {
	return c.layout[col+1] - c.layout[col]
}

// Column returns the current entries of one column.
// The returned slice aliases the container's buffer and is invalidated by the
// next operation; callers must not mutate it.
func (c *Container) Column(col int) []Entry {
	return c.buffers[c.active][c.layout[col]:c.layout[col+1]]
}

// TotalWeight returns the total accumulated weight of one column, i.e. the
// last entry's RMax, or 0 for an empty column.
func (c *Container) TotalWeight(col int) float64 {
	seg := c.Column(col)
	if len(seg) == 0 {
		return 0
	}
	return seg[len(seg)-1].RMax
}

// current returns the active buffer sliced to the layout total.
func (c *Container) current() []Entry {
	return c.buffers[c.active][:c.layout[c.numColumns]]
}

// grow resizes one buffer slot to n entries, accounting the growth against
// the resource controller. Allocation failure is fatal (ErrAllocation).
func (c *Container) grow(slot, n int) error {
	buf := c.buffers[slot]
	if cap(buf) >= n {
		c.buffers[slot] = buf[:n]
		return nil
	}

	if err := c.rc.AcquireMemory(int64(n) * entryBytes); err != nil {
		return fmt.Errorf("%w: %w", ErrAllocation, err)
	}
	c.rc.ReleaseMemory(int64(cap(buf)) * entryBytes)

	c.buffers[slot] = make([]Entry, n)
	return nil
}

// other resizes and returns the inactive buffer.
func (c *Container) other(n int) ([]Entry, error) {
	slot := 1 - c.active
	if err := c.grow(slot, n); err != nil {
		return nil, err
	}
	return c.buffers[slot], nil
}

// flip toggles the active buffer selector. Safe only because container
// methods are never called concurrently on one instance.
func (c *Container) flip() {
	c.active = 1 - c.active
}

// adoptStaging installs the staged offsets as the live layout.
func (c *Container) adoptStaging() {
	c.layout, c.staging = c.staging, c.layout
}

// compactColumns moves each column's first counts[i] entries left so columns
// become contiguous again, and writes the new offsets into dst.
//
// Columns only ever move toward lower offsets, so the sequential forward
// copies never overwrite unread source data.
func compactColumns(buf []Entry, offsets, counts, dst []int) {
	numColumns := len(counts)
	dst[0] = 0
	for i := 0; i < numColumns; i++ {
		src := offsets[i]
		n := counts[i]
		if dst[i] != src && n > 0 {
			copy(buf[dst[i]:dst[i]+n], buf[src:src+n])
		}
		dst[i+1] = dst[i] + n
	}
}

// validateLayout checks that offsets are monotonically non-decreasing and
// start at zero. Used on deserialized peer summaries.
func validateLayout(offsets []int, numColumns int) error {
	if len(offsets) != numColumns+1 {
		return &ErrColumnMismatch{Expected: numColumns + 1, Actual: len(offsets)}
	}
	if offsets[0] != 0 {
		return &ErrInvalidLayout{Column: 0}
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return &ErrInvalidLayout{Column: i - 1}
		}
	}
	return nil
}
