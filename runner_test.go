package lanes

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lanekit/lanes/metrics"
)

var errBoom = errors.New("boom")

// indexOp returns the item's own index after a random small delay, so later
// indices routinely settle before earlier ones.
func indexOp(maxDelay time.Duration) Operation[int, int] {
	return func(_ context.Context, item int) (int, error) {
		if maxDelay > 0 {
			time.Sleep(time.Duration(rand.Int63n(int64(maxDelay))))
		}
		return item, nil
	}
}

func seq(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func TestRun_OrderPreserved(t *testing.T) {
	ctx := context.Background()

	results, err := Run(ctx, seq(100), 10, indexOp(3*time.Millisecond))
	require.NoError(t, err)
	require.Equal(t, seq(100), results)
}

func TestRun_ConcurrencyBound(t *testing.T) {
	ctx := context.Background()

	var current, peak atomic.Int64
	op := func(_ context.Context, item int) (int, error) {
		c := current.Add(1)
		for {
			p := peak.Load()
			if c <= p || peak.CompareAndSwap(p, c) {
				break
			}
		}
		time.Sleep(time.Duration(rand.Int63n(int64(2 * time.Millisecond))))
		current.Add(-1)
		return item, nil
	}

	const limit = 7
	results, err := Run(ctx, seq(60), limit, op)
	require.NoError(t, err)
	require.Len(t, results, 60)
	require.LessOrEqual(t, peak.Load(), int64(limit))
	require.Zero(t, current.Load())
}

func TestRun_DispatchesEveryIndexExactlyOnce(t *testing.T) {
	ctx := context.Background()

	const n = 200
	counts := make([]atomic.Int32, n)
	op := func(_ context.Context, item int) (int, error) {
		counts[item].Add(1)
		return item, nil
	}

	_, err := Run(ctx, seq(n), 16, op)
	require.NoError(t, err)
	for i := range counts {
		require.EqualValues(t, 1, counts[i].Load(), "index %d claimed %d times", i, counts[i].Load())
	}
}

func TestRun_EmptyInput(t *testing.T) {
	ctx := context.Background()

	var invoked atomic.Int32
	results, err := Run(ctx, []int{}, 5, func(context.Context, int) (int, error) {
		invoked.Add(1)
		return 0, nil
	})
	require.NoError(t, err)
	require.Empty(t, results)
	require.Zero(t, invoked.Load())
}

func TestRun_LimitClampedToItemCount(t *testing.T) {
	ctx := context.Background()

	exact, err := Run(ctx, seq(5), 5, indexOp(2*time.Millisecond))
	require.NoError(t, err)

	clamped, err := Run(ctx, seq(5), 50, indexOp(2*time.Millisecond))
	require.NoError(t, err)
	require.Equal(t, exact, clamped)
}

func TestRun_InvalidLimit(t *testing.T) {
	ctx := context.Background()

	for _, limit := range []int{0, -1} {
		_, err := Run(ctx, seq(3), limit, indexOp(0))
		require.ErrorIs(t, err, ErrInvalidLimit)
	}
}

func TestRun_FastFail(t *testing.T) {
	ctx := context.Background()

	op := func(c context.Context, item int) (int, error) {
		switch item {
		case 2:
			time.Sleep(10 * time.Millisecond)
			return 0, errBoom
		case 3:
			// Slow tail that should never be returned as a success.
			select {
			case <-c.Done():
				return 0, c.Err()
			case <-time.After(5 * time.Second):
				return item, nil
			}
		default:
			return item, nil
		}
	}

	start := time.Now()
	results, err := Run(ctx, []int{0, 1, 2, 3}, 2, op)
	require.ErrorIs(t, err, errBoom)
	require.Nil(t, results)
	require.Less(t, time.Since(start), 2*time.Second, "fast-fail must not wait for the slow tail")

	idx, ok := ExtractTaskIndex(err)
	require.True(t, ok)
	require.Equal(t, 2, idx)
}

func TestRun_FastFail_FirstErrorWins(t *testing.T) {
	ctx := context.Background()

	// Index 1 errors first; index 0 errors later. The run's outcome must be
	// index 1's error even though index 0 was dispatched earlier.
	op := func(c context.Context, item int) (int, error) {
		if item == 1 {
			return 0, errBoom
		}
		time.Sleep(50 * time.Millisecond)
		return 0, errors.New("late")
	}

	_, err := Run(ctx, seq(2), 2, op)
	require.ErrorIs(t, err, errBoom)
	idx, ok := ExtractTaskIndex(err)
	require.True(t, ok)
	require.Equal(t, 1, idx)
}

func TestRun_PanicSettlesAsError(t *testing.T) {
	ctx := context.Background()

	_, err := Run(ctx, seq(4), 2, func(_ context.Context, item int) (int, error) {
		if item == 1 {
			panic("kaboom")
		}
		return item, nil
	})
	require.ErrorIs(t, err, ErrTaskPanicked)
}

func TestRun_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	op := func(c context.Context, item int) (int, error) {
		select {
		case <-c.Done():
			return 0, c.Err()
		case <-time.After(5 * time.Second):
			return item, nil
		}
	}

	results, err := Run(ctx, seq(10), 3, op)
	require.ErrorIs(t, err, ErrTaskCancelled)
	require.Nil(t, results)
}

func TestRunAll_CollectsAllOutcomes(t *testing.T) {
	ctx := context.Background()

	op := func(_ context.Context, item int) (int, error) {
		if item%3 == 0 {
			return 0, errBoom
		}
		time.Sleep(time.Duration(rand.Int63n(int64(2 * time.Millisecond))))
		return item * 10, nil
	}

	outcomes, err := RunAll(ctx, seq(12), 4, op)
	require.NoError(t, err)
	require.Len(t, outcomes, 12)
	for i, o := range outcomes {
		if i%3 == 0 {
			require.False(t, o.Ok())
			require.ErrorIs(t, o.Err, errBoom)
		} else {
			require.True(t, o.Ok())
			require.Equal(t, i*10, o.Value)
		}
	}
}

func TestRunAll_EmptyInput(t *testing.T) {
	outcomes, err := RunAll(context.Background(), []string{}, 3, func(_ context.Context, s string) (int, error) {
		return len(s), nil
	})
	require.NoError(t, err)
	require.Empty(t, outcomes)
}

func TestRunAll_ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	op := func(c context.Context, item int) (int, error) {
		select {
		case <-c.Done():
			return 0, c.Err()
		case <-time.After(5 * time.Second):
			return item, nil
		}
	}

	outcomes, err := RunAll(ctx, seq(8), 2, op)
	require.ErrorIs(t, err, ErrTaskCancelled)
	require.Nil(t, outcomes)
}

func TestForEach(t *testing.T) {
	ctx := context.Background()

	var done atomic.Int32
	err := ForEach(ctx, seq(20), 4, func(_ context.Context, item int) error {
		done.Add(1)
		return nil
	})
	require.NoError(t, err)
	require.EqualValues(t, 20, done.Load())

	err = ForEach(ctx, seq(20), 4, func(_ context.Context, item int) error {
		if item == 7 {
			return errBoom
		}
		return nil
	})
	require.ErrorIs(t, err, errBoom)
	idx, ok := ExtractTaskIndex(err)
	require.True(t, ok)
	require.Equal(t, 7, idx)
}

func TestRun_Metrics(t *testing.T) {
	ctx := context.Background()
	provider := metrics.NewBasicProvider()

	results, err := Run(ctx, seq(10), 3, indexOp(time.Millisecond), WithMetrics(provider))
	require.NoError(t, err)
	require.Len(t, results, 10)

	completed := provider.Counter(MetricTasksCompleted).(*metrics.BasicCounter)
	failed := provider.Counter(MetricTasksFailed).(*metrics.BasicCounter)
	inFlight := provider.UpDownCounter(MetricTasksInFlight).(*metrics.BasicUpDownCounter)
	duration := provider.Histogram(MetricTaskDuration).(*metrics.BasicHistogram)

	require.EqualValues(t, 10, completed.Snapshot())
	require.EqualValues(t, 0, failed.Snapshot())
	require.EqualValues(t, 0, inFlight.Snapshot())
	require.EqualValues(t, 10, duration.Snapshot().Count)
}

func TestRun_IndependentConcurrentRuns(t *testing.T) {
	ctx := context.Background()

	resCh := make(chan []int, 2)
	errCh := make(chan error, 2)
	for range 2 {
		go func() {
			r, err := Run(ctx, seq(50), 5, indexOp(2*time.Millisecond))
			resCh <- r
			errCh <- err
		}()
	}
	for range 2 {
		require.NoError(t, <-errCh)
		require.Equal(t, seq(50), <-resCh)
	}
}
