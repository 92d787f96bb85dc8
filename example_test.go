package lanes_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lanekit/lanes"
)

// ExampleRun executes a batch of tasks with at most two in flight. Later
// inputs finish sooner, yet results come back in input order.
func ExampleRun() {
	ctx := context.Background()

	items := []int{0, 1, 2, 3}
	results, _ := lanes.Run(ctx, items, 2, func(_ context.Context, item int) (string, error) {
		time.Sleep(time.Duration(len(items)-item) * 5 * time.Millisecond)
		return fmt.Sprintf("task-%d", item), nil
	})

	fmt.Println(results)
	// Output: [task-0 task-1 task-2 task-3]
}

// ExampleRunAll collects every settlement instead of aborting on the first
// error, which suits workloads where partial failures are acceptable.
func ExampleRunAll() {
	ctx := context.Background()

	outcomes, _ := lanes.RunAll(ctx, []int{1, 2, 3}, 3, func(_ context.Context, item int) (int, error) {
		if item == 2 {
			return 0, errors.New("unreachable")
		}
		return item * 10, nil
	})

	for i, o := range outcomes {
		if o.Ok() {
			fmt.Printf("%d: %d\n", i, o.Value)
		} else {
			fmt.Printf("%d: %v\n", i, o.Err)
		}
	}
	// Output:
	// 0: 10
	// 1: unreachable
	// 2: 30
}

// ExampleStream processes a channel of unknown length with a bounded number
// of in-flight operations; results arrive in intake order.
func ExampleStream() {
	ctx := context.Background()

	in := make(chan int, 5)
	for i := range 5 {
		in <- i
	}
	close(in)

	results, errs, _ := lanes.Stream(ctx, in, 3, func(_ context.Context, item int) (int, error) {
		time.Sleep(time.Duration(5-item) * 3 * time.Millisecond)
		return item * item, nil
	})

	for r := range results {
		fmt.Println(r)
	}
	for e := range errs {
		fmt.Println(e)
	}
	// Output:
	// 0
	// 1
	// 4
	// 9
	// 16
}
