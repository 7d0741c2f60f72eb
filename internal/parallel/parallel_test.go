package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRunnerDefaults(t *testing.T) {
	require.Equal(t, runtime.GOMAXPROCS(0), NewRunner(0).Workers())
	require.Equal(t, runtime.GOMAXPROCS(0), NewRunner(-5).Workers())
	require.Equal(t, 3, NewRunner(3).Workers())
}

func TestSegmentedCoversAllSegments(t *testing.T) {
	for _, workers := range []int{1, 2, 7, 64} {
		r := NewRunner(workers)

		const n = 100
		var hits [n]atomic.Int32

		err := r.Segmented(context.Background(), n, func(seg int) error {
			hits[seg].Add(1)
			return nil
		})
		require.NoError(t, err)

		for seg := range hits {
			require.Equal(t, int32(1), hits[seg].Load(), "segment %d", seg)
		}
	}
}

func TestSegmentedZeroSegments(t *testing.T) {
	err := NewRunner(4).Segmented(context.Background(), 0, func(int) error {
		t.Fatal("fn must not be called")
		return nil
	})
	require.NoError(t, err)
}

func TestSegmentedPropagatesError(t *testing.T) {
	boom := errors.New("boom")

	for _, workers := range []int{1, 4} {
		err := NewRunner(workers).Segmented(context.Background(), 50, func(seg int) error {
			if seg == 17 {
				return boom
			}
			return nil
		})
		require.ErrorIs(t, err, boom)
	}
}

func TestSegmentedHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	err := NewRunner(1).Segmented(ctx, 10, func(int) error {
		calls.Add(1)
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, int32(0), calls.Load())
}
