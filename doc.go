// Package lanes executes ordered collections of tasks with a strict cap on
// the number of operations in flight at any instant, while keeping the
// pipeline saturated: as soon as an in-flight operation settles, the freed
// lane immediately claims the next pending task. Results are always returned
// in input order, regardless of completion order.
//
// Entry points
//   - Run(ctx, items, limit, op): fast-fail batch execution; returns the
//     ordered results or the first task failure wrapped with its input index.
//   - RunAll(ctx, items, limit, op): collect-all batch execution; returns one
//     Outcome per input once every task has settled.
//   - ForEach(ctx, items, limit, fn): error-only convenience over Run.
//   - Stream(ctx, in, limit, op): channel intake of unknown length; results
//     are emitted in intake order on the returned channel.
//
// Scheduling model
// A run spins up min(limit, len(items)) lane goroutines. Each lane claims the
// next task index from a shared atomic cursor, invokes the operation, writes
// the result into the index-addressed slot, and loops until the cursor is
// exhausted. Lane advancement is driven by operation settlement, never by
// polling.
//
// Failure policy
// Run aborts on the first error: the internal run context is cancelled so
// cooperative operations can stop early; operations that ignore the context
// finish in the background and their outcomes are discarded. RunAll never
// aborts and records every settlement. Pick the variant that matches whether
// partial failures are acceptable.
//
// Channel lifecycle (Stream)
// The results and errors channels returned by Stream are owned by the stream
// and closed once intake has ended and all in-flight operations have settled.
// Callers should drain both channels until closed.
package lanes
