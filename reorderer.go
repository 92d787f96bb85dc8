package lanes

// settlement is a task completion notification consumed by the reorderer.
// idx is the intake index assigned when the task entered the stream.
// present reports whether val carries a result to emit; errored tasks settle
// with present == false so the cursor can still advance past them.
type settlement[R any] struct {
	idx     int
	val     R
	present bool
}

// reorderer enforces result emission order for the stream front-end. It
// consumes settlements (which arrive in completion order) and emits results
// to the sink strictly in intake order, buffering out-of-order completions
// until every earlier index has settled.
//
// It runs as a single goroutine and never closes either channel; shutdown is
// coordinated by the owner closing the settlements channel.
type reorderer[R any] struct {
	settlements <-chan settlement[R]
	results     chan<- R
}

func newReorderer[R any](settlements <-chan settlement[R], results chan<- R) *reorderer[R] {
	return &reorderer[R]{settlements: settlements, results: results}
}

// run executes the coordinator loop until the settlements channel is closed,
// then flushes whatever contiguous tail remains buffered.
func (r *reorderer[R]) run() {
	next := 0
	pending := make(map[int]R)
	skipped := make(map[int]struct{})

	for s := range r.settlements {
		if s.present {
			pending[s.idx] = s.val
		} else {
			skipped[s.idx] = struct{}{}
		}
		next = r.flush(next, pending, skipped)
	}

	r.flush(next, pending, skipped)
}

// flush emits buffered results starting at next for as long as consecutive
// indices have settled, advancing past indices that settled without a value.
// It returns the advanced cursor.
func (r *reorderer[R]) flush(next int, pending map[int]R, skipped map[int]struct{}) int {
	for {
		if v, ok := pending[next]; ok {
			r.results <- v
			delete(pending, next)
			next++
			continue
		}
		if _, ok := skipped[next]; ok {
			delete(skipped, next)
			next++
			continue
		}
		return next
	}
}
