package allreduce

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hupe1980/sketchbin/blobstore"
	"github.com/hupe1980/sketchbin/resource"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestMemoryGroupAllGather(t *testing.T) {
	const workers = 4

	comms := NewMemoryGroup(workers)
	require.Len(t, comms, workers)

	results := make([][][]byte, workers)

	g := new(errgroup.Group)
	for rank := 0; rank < workers; rank++ {
		g.Go(func() error {
			gathered, err := comms[rank].AllGather(context.Background(), []byte(fmt.Sprintf("payload-%d", rank)))
			if err != nil {
				return err
			}
			results[rank] = gathered
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for rank := 0; rank < workers; rank++ {
		require.Equal(t, rank, comms[rank].Rank())
		require.Equal(t, workers, comms[rank].WorldSize())

		require.Len(t, results[rank], workers)
		for r, payload := range results[rank] {
			require.Equal(t, []byte(fmt.Sprintf("payload-%d", r)), payload)
		}
	}
}

func TestMemoryGroupMultipleRounds(t *testing.T) {
	const (
		workers = 3
		rounds  = 5
	)

	comms := NewMemoryGroup(workers)

	g := new(errgroup.Group)
	for rank := 0; rank < workers; rank++ {
		g.Go(func() error {
			for round := 0; round < rounds; round++ {
				gathered, err := comms[rank].AllGather(context.Background(), []byte{byte(rank), byte(round)})
				if err != nil {
					return err
				}
				for r, payload := range gathered {
					if payload[0] != byte(r) || payload[1] != byte(round) {
						return fmt.Errorf("round %d rank %d saw stale payload %v", round, r, payload)
					}
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestMemoryGroupContextCancel(t *testing.T) {
	comms := NewMemoryGroup(2)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// the peer never shows up
	_, err := comms[0].AllGather(ctx, []byte("alone"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewBlobCommunicatorValidation(t *testing.T) {
	store := blobstore.NewMemoryStore()

	_, err := NewBlobCommunicator(store, 0, 0)
	require.Error(t, err)

	_, err = NewBlobCommunicator(store, -1, 2)
	require.Error(t, err)

	_, err = NewBlobCommunicator(store, 2, 2)
	require.Error(t, err)

	c, err := NewBlobCommunicator(store, 1, 2)
	require.NoError(t, err)
	require.Equal(t, 1, c.Rank())
	require.Equal(t, 2, c.WorldSize())
}

func testBlobStores(t *testing.T) map[string]blobstore.Store {
	t.Helper()
	return map[string]blobstore.Store{
		"memory": blobstore.NewMemoryStore(),
		"local":  blobstore.NewLocalStore(t.TempDir()),
	}
}

func TestBlobCommunicatorAllGather(t *testing.T) {
	const workers = 3

	for name, store := range testBlobStores(t) {
		t.Run(name, func(t *testing.T) {
			results := make([][][]byte, workers)

			g := new(errgroup.Group)
			for rank := 0; rank < workers; rank++ {
				g.Go(func() error {
					comm, err := NewBlobCommunicator(store, rank, workers,
						WithPrefix("group-a"),
						WithPollInterval(5*time.Millisecond),
					)
					if err != nil {
						return err
					}

					gathered, err := comm.AllGather(context.Background(), []byte(fmt.Sprintf("summary-%d", rank)))
					if err != nil {
						return err
					}
					results[rank] = gathered
					return nil
				})
			}
			require.NoError(t, g.Wait())

			for rank := 0; rank < workers; rank++ {
				require.Len(t, results[rank], workers)
				for r, payload := range results[rank] {
					require.Equal(t, []byte(fmt.Sprintf("summary-%d", r)), payload)
				}
			}
		})
	}
}

func TestBlobCommunicatorReclaimsStaleRounds(t *testing.T) {
	const (
		workers = 2
		rounds  = 3
	)

	store := blobstore.NewMemoryStore()
	ctx := context.Background()

	g := new(errgroup.Group)
	for rank := 0; rank < workers; rank++ {
		g.Go(func() error {
			comm, err := NewBlobCommunicator(store, rank, workers,
				WithPollInterval(time.Millisecond))
			if err != nil {
				return err
			}
			for round := 0; round < rounds; round++ {
				if _, err := comm.AllGather(ctx, []byte{byte(round)}); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	// only the final round's blobs may remain
	names, err := store.List(ctx, "")
	require.NoError(t, err)
	for _, name := range names {
		require.Contains(t, name, fmt.Sprintf("round-%06d", rounds-1))
	}
}

func TestBlobCommunicatorRateLimited(t *testing.T) {
	store := blobstore.NewMemoryStore()
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 20})

	comms := make([]*BlobCommunicator, 2)
	for rank := range comms {
		var err error
		comms[rank], err = NewBlobCommunicator(store, rank, 2,
			WithPollInterval(time.Millisecond),
			WithController(rc),
		)
		require.NoError(t, err)
	}

	g := new(errgroup.Group)
	for rank := range comms {
		g.Go(func() error {
			_, err := comms[rank].AllGather(context.Background(), []byte("limited"))
			return err
		})
	}
	require.NoError(t, g.Wait())
}

func TestBlobCommunicatorPrefixIsolation(t *testing.T) {
	store := blobstore.NewMemoryStore()
	ctx := context.Background()

	run := func(prefix, payload string) error {
		g := new(errgroup.Group)
		for rank := 0; rank < 2; rank++ {
			g.Go(func() error {
				comm, err := NewBlobCommunicator(store, rank, 2,
					WithPrefix(prefix),
					WithPollInterval(time.Millisecond))
				if err != nil {
					return err
				}
				gathered, err := comm.AllGather(ctx, []byte(payload))
				if err != nil {
					return err
				}
				for _, p := range gathered {
					if string(p) != payload {
						return fmt.Errorf("prefix %q leaked payload %q", prefix, p)
					}
				}
				return nil
			})
		}
		return g.Wait()
	}

	g := new(errgroup.Group)
	g.Go(func() error { return run("group-a", "aaa") })
	g.Go(func() error { return run("group-b", "bbb") })
	require.NoError(t, g.Wait())
}
