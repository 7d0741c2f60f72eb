package allreduce

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/hupe1980/sketchbin/blobstore"
	"github.com/hupe1980/sketchbin/resource"
)

const (
	defaultPollInterval = 50 * time.Millisecond
)

// BlobCommunicator implements the collective over a shared blob store. Every
// worker uploads its payload under a per-round key and polls the store until
// all ranks' payloads are visible, then downloads them in rank order.
//
// Correctness relies on the store's atomic-Put guarantee: a listed blob is
// always complete. All workers of a group must be constructed with the same
// store, prefix, and world size, and must call AllGather the same number of
// times.
type BlobCommunicator struct {
	store        blobstore.Store
	rank         int
	worldSize    int
	round        int
	prefix       string
	pollInterval time.Duration
	controller   *resource.Controller
}

// BlobCommunicatorOptions configures a BlobCommunicator.
type BlobCommunicatorOptions struct {
	// Prefix namespaces the group's blobs inside the store. Workers of the
	// same group must agree on it.
	Prefix string

	// PollInterval is the delay between store listings while waiting for
	// peers. Defaults to 50ms.
	PollInterval time.Duration

	// Controller rate-limits payload uploads. May be nil.
	Controller *resource.Controller
}

// NewBlobCommunicator creates a communicator for one worker of a group.
func NewBlobCommunicator(store blobstore.Store, rank, worldSize int, optFns ...func(*BlobCommunicatorOptions)) (*BlobCommunicator, error) {
	opts := BlobCommunicatorOptions{
		PollInterval: defaultPollInterval,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if worldSize < 1 {
		return nil, fmt.Errorf("world size must be at least 1, got %d", worldSize)
	}
	if rank < 0 || rank >= worldSize {
		return nil, fmt.Errorf("rank %d out of range [0, %d)", rank, worldSize)
	}

	return &BlobCommunicator{
		store:        store,
		rank:         rank,
		worldSize:    worldSize,
		prefix:       opts.Prefix,
		pollInterval: opts.PollInterval,
		controller:   opts.Controller,
	}, nil
}

// WithPrefix namespaces the group's blobs inside the store.
func WithPrefix(prefix string) func(*BlobCommunicatorOptions) {
	return func(o *BlobCommunicatorOptions) {
		o.Prefix = prefix
	}
}

// WithPollInterval sets the delay between store listings while waiting for
// peers.
func WithPollInterval(d time.Duration) func(*BlobCommunicatorOptions) {
	return func(o *BlobCommunicatorOptions) {
		o.PollInterval = d
	}
}

// WithController rate-limits payload uploads through a resource controller.
func WithController(rc *resource.Controller) func(*BlobCommunicatorOptions) {
	return func(o *BlobCommunicatorOptions) {
		o.Controller = rc
	}
}

// Rank returns this worker's index in the group.
func (c *BlobCommunicator) Rank() int {
	return c.rank
}

// WorldSize returns the group size.
func (c *BlobCommunicator) WorldSize() int {
	return c.worldSize
}

// AllGather uploads the local payload for the current round, waits until all
// ranks' payloads are listed, and returns them ordered by rank.
func (c *BlobCommunicator) AllGather(ctx context.Context, payload []byte) ([][]byte, error) {
	round := c.round
	c.round++

	if err := c.controller.AcquireIO(ctx, len(payload)); err != nil {
		return nil, err
	}
	if err := c.store.Put(ctx, c.blobName(round, c.rank), payload); err != nil {
		return nil, fmt.Errorf("uploading rank %d payload: %w", c.rank, err)
	}

	if err := c.waitForPeers(ctx, round); err != nil {
		return nil, err
	}

	// Everyone putting round N implies everyone finished reading round N-1,
	// so the own stale blob can be reclaimed now.
	if round > 0 {
		_ = c.store.Delete(ctx, c.blobName(round-1, c.rank))
	}

	gathered := make([][]byte, c.worldSize)
	for r := 0; r < c.worldSize; r++ {
		data, err := blobstore.ReadAll(ctx, c.store, c.blobName(round, r))
		if err != nil {
			return nil, fmt.Errorf("downloading rank %d payload: %w", r, err)
		}
		gathered[r] = data
	}
	return gathered, nil
}

// waitForPeers polls the store until all worldSize payloads of the round are
// visible.
func (c *BlobCommunicator) waitForPeers(ctx context.Context, round int) error {
	prefix := c.roundPrefix(round)

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		names, err := c.store.List(ctx, prefix)
		if err != nil {
			return fmt.Errorf("listing round %d payloads: %w", round, err)
		}
		if len(names) >= c.worldSize {
			return nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *BlobCommunicator) roundPrefix(round int) string {
	return path.Join(c.prefix, fmt.Sprintf("round-%06d", round)) + "/"
}

func (c *BlobCommunicator) blobName(round, rank int) string {
	return path.Join(c.prefix, fmt.Sprintf("round-%06d", round), fmt.Sprintf("rank-%04d", rank))
}
