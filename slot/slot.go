// Package slot provides the execution-slot pools used to bound the number of
// concurrently in-flight operations when the total amount of work is not
// known up front (channel intake).
package slot

import "context"

// Pool grants execution slots. A holder must call Release exactly once per
// successful Acquire/TryAcquire. Implementations are safe for concurrent use.
type Pool interface {
	// Acquire blocks until a slot is free or ctx is done, in which case it
	// returns ctx's error.
	Acquire(ctx context.Context) error

	// TryAcquire claims a slot without blocking and reports whether it succeeded.
	TryAcquire() bool

	// Release returns a previously acquired slot to the pool.
	Release()
}
