// Package parallel runs segmented bulk operations over column ranges.
//
// The sketch operates on one flat entry array partitioned into per-column
// segments. Every bulk operation (push, prune, merge, dedupe) is independent
// per segment, so the runner only has to partition segment ids across a
// bounded worker set; no cross-segment synchronization is needed.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Runner executes per-segment functions across a bounded worker pool.
type Runner struct {
	workers int
}

// NewRunner creates a Runner with the given worker count.
// If workers <= 0, runtime.GOMAXPROCS(0) is used.
func NewRunner(workers int) *Runner {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Runner{workers: workers}
}

// Workers returns the configured worker count.
func (r *Runner) Workers() int {
	return r.workers
}

// Segmented applies fn to every segment id in [0, numSegments).
//
// Segments are statically partitioned into contiguous chunks, one chunk per
// worker. fn must not touch state outside its own segment. The first error
// cancels the remaining workers.
func (r *Runner) Segmented(ctx context.Context, numSegments int, fn func(seg int) error) error {
	if numSegments <= 0 {
		return nil
	}

	workers := r.workers
	if workers > numSegments {
		workers = numSegments
	}
	if workers == 1 {
		for seg := 0; seg < numSegments; seg++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(seg); err != nil {
				return err
			}
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	chunk := (numSegments + workers - 1) / workers

	for start := 0; start < numSegments; start += chunk {
		end := start + chunk
		if end > numSegments {
			end = numSegments
		}
		g.Go(func() error {
			for seg := start; seg < end; seg++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := fn(seg); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return g.Wait()
}
