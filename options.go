package sketchbin

import (
	"github.com/hupe1980/sketchbin/resource"
)

type options struct {
	logger       *Logger
	parallelism  int
	featureTypes *FeatureTypes
	controller   *resource.Controller
}

// Option configures Container construction.
type Option func(*options)

// WithLogger configures the structured logger used by the container.
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithParallelism configures the worker count for fused segmented passes.
// If n <= 0, runtime.GOMAXPROCS(0) is used.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithFeatureTypes configures the per-column categorical/numerical flags.
// The column count must match the container's; a mismatch is a fatal
// configuration error at construction.
func WithFeatureTypes(ft *FeatureTypes) Option {
	return func(o *options) {
		o.featureTypes = ft
	}
}

// WithResourceController attaches a resource controller that accounts for
// entry buffer memory. Exceeding its memory limit surfaces as ErrAllocation.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}
