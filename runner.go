package lanes

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lanekit/lanes/metrics"
)

// Instrument names recorded by the engine.
const (
	MetricTasksCompleted = "lanes_tasks_completed"
	MetricTasksFailed    = "lanes_tasks_failed"
	MetricTasksInFlight  = "lanes_tasks_inflight"
	MetricTaskDuration   = "lanes_task_duration_seconds"
)

type instruments struct {
	completed metrics.Counter
	failed    metrics.Counter
	inFlight  metrics.UpDownCounter
	duration  metrics.Histogram
}

func newInstruments(p metrics.Provider) instruments {
	return instruments{
		completed: p.Counter(MetricTasksCompleted),
		failed:    p.Counter(MetricTasksFailed),
		inFlight:  p.UpDownCounter(MetricTasksInFlight),
		duration:  p.Histogram(MetricTaskDuration),
	}
}

// runner is the per-run scheduler instance. All mutable state (cursor, slots,
// failure latch) lives here, so independent concurrent runs never interfere.
// It is created fresh per invocation and discarded once the run settles.
type runner[T, R any] struct {
	items      []T
	op         Operation[T, R]
	collectAll bool

	// cursor holds the next unclaimed task index; lanes claim indices with an
	// atomic increment, which makes dispatch exactly-once by construction.
	cursor   atomic.Int64
	outcomes []Outcome[R]

	cancel   context.CancelFunc
	failOnce sync.Once
	failErr  error

	inst instruments
}

func newRunner[T, R any](items []T, op Operation[T, R], collectAll bool, cfg config) *runner[T, R] {
	return &runner[T, R]{
		items:      items,
		op:         op,
		collectAll: collectAll,
		outcomes:   make([]Outcome[R], len(items)),
		inst:       newInstruments(cfg.Metrics),
	}
}

// Run executes op over items with at most limit operations in flight,
// returning results in input order. The first task failure fails the whole
// run with an IndexedError identifying the failing task; the internal run
// context is cancelled so cooperative operations can stop early, and
// settlements of already-dispatched operations are discarded.
func Run[T, R any](
	ctx context.Context, items []T, limit int, op Operation[T, R], opts ...Option,
) ([]R, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if err = checkLimit(limit); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []R{}, nil
	}

	r := newRunner(items, op, false, cfg)
	if err = r.execute(ctx, limit); err != nil {
		return nil, err
	}

	results := make([]R, len(items))
	for i := range r.outcomes {
		results[i] = r.outcomes[i].Value
	}
	return results, nil
}

// RunAll executes op over items with at most limit operations in flight and
// collects every settlement: the returned slice holds one Outcome per input,
// in input order, once all tasks have settled. Task failures never abort the
// run; the error return is reserved for invalid configuration and parent
// context cancellation.
func RunAll[T, R any](
	ctx context.Context, items []T, limit int, op Operation[T, R], opts ...Option,
) ([]Outcome[R], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if err = checkLimit(limit); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []Outcome[R]{}, nil
	}

	r := newRunner(items, op, true, cfg)
	if err = r.execute(ctx, limit); err != nil {
		return nil, err
	}
	return r.outcomes, nil
}

// ForEach applies fn to each item with at most limit invocations in flight.
// It fails fast: the first error aborts the run and is returned wrapped with
// the failing item's index.
func ForEach[T any](
	ctx context.Context, items []T, limit int, fn func(context.Context, T) error, opts ...Option,
) error {
	_, err := Run(ctx, items, limit, func(c context.Context, item T) (struct{}, error) {
		return struct{}{}, fn(c, item)
	}, opts...)
	return err
}

// execute spins up min(limit, len(items)) lanes and waits for them to drain
// the cursor. It reports the recorded failure, or the context error when the
// run was cut short before every task could settle.
func (r *runner[T, R]) execute(ctx context.Context, limit int) error {
	if n := len(r.items); limit > n {
		limit = n
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	r.cancel = cancel

	var wg sync.WaitGroup
	for lane := 0; lane < limit; lane++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.lane(runCtx)
		}()
	}
	wg.Wait()

	if r.failErr != nil {
		return r.failErr
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrTaskCancelled, err)
	}
	return nil
}

// lane repeatedly claims the next index from the shared cursor and settles it.
// Claiming is a single atomic increment, so no index is ever claimed twice and
// none is skipped. The lane exits when the cursor is exhausted, or when the
// run context is cancelled (failure latch or caller cancellation).
func (r *runner[T, R]) lane(ctx context.Context) {
	total := int64(len(r.items))
	for {
		if ctx.Err() != nil {
			return
		}
		claimed := r.cursor.Add(1) - 1
		if claimed >= total {
			return
		}
		i := int(claimed)

		r.inst.inFlight.Add(1)
		start := time.Now()
		res, err := invoke(ctx, r.op, r.items[i])
		r.inst.duration.Record(time.Since(start).Seconds())
		r.inst.inFlight.Add(-1)

		if err != nil {
			r.inst.failed.Add(1)
			if r.collectAll {
				r.outcomes[i] = Outcome[R]{Err: err}
				continue
			}
			r.fail(err, i)
			return
		}

		r.inst.completed.Add(1)
		r.outcomes[i] = Outcome[R]{Value: res}
	}
}

// fail latches the first failure and cancels the run context. Later failures
// (including cancellations induced by the latch itself) are discarded.
func (r *runner[T, R]) fail(err error, index int) {
	r.failOnce.Do(func() {
		r.failErr = newIndexedError(err, index)
		r.cancel()
	})
}
