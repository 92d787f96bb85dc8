package lanes

import (
	"context"
	"fmt"
)

// Operation is the canonical unit of work executed for each input item.
// It takes a context and the item, and produces exactly one settlement:
// a result of type R or an error. The concrete transport (HTTP call, file
// read, etc.) lives entirely inside the operation; the scheduler only
// observes the settlement.
type Operation[T, R any] func(ctx context.Context, item T) (R, error)

// Outcome is the tagged settlement of a single task, used by the collect-all
// variants. Exactly one of Value/Err is meaningful; Err == nil means success.
type Outcome[R any] struct {
	Value R
	Err   error
}

// Ok reports whether the task settled successfully.
func (o Outcome[R]) Ok() bool { return o.Err == nil }

// invoke centralizes operation launch, panic recovery, and context racing.
// A panicking operation settles as ErrTaskPanicked. If ctx is done before the
// operation settles, invoke returns ErrTaskCancelled immediately; the
// operation goroutine finishes detached and its settlement is discarded.
func invoke[T, R any](ctx context.Context, op Operation[T, R], item T) (R, error) {
	var (
		result R
		err    error
	)

	done := make(chan struct{}, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("%w: %v", ErrTaskPanicked, p)
			}
			done <- struct{}{}
		}()

		result, err = op(ctx, item)
	}()

	select {
	case <-ctx.Done():
		return *(new(R)), fmt.Errorf("%w: %w", ErrTaskCancelled, ctx.Err())
	case <-done:
		return result, err
	}
}
