package lanes

import (
	"context"
	"sync"
)

// failureForwarder implements the stream's fail-fast policy. It consumes
// internal worker errors and, on the first one, cancels the stream context
// and forwards exactly that error to the outward errors channel. If the
// outward channel is not immediately writable, a detached sender goroutine
// (tracked by sendWG) delivers it later or drops it once closeCh is closed.
// Subsequent internal errors are drained and discarded so workers settling
// after cancellation can never block.
//
// The forwarder does not close any channels; lifecycle is owned by the stream.
type failureForwarder struct {
	in      <-chan error
	out     chan<- error
	closeCh <-chan struct{}
	cancel  context.CancelFunc
	sendWG  *sync.WaitGroup
}

func newFailureForwarder(
	in <-chan error, out chan<- error, closeCh <-chan struct{}, cancel context.CancelFunc, sendWG *sync.WaitGroup,
) *failureForwarder {
	return &failureForwarder{in: in, out: out, closeCh: closeCh, cancel: cancel, sendWG: sendWG}
}

func (f *failureForwarder) run() {
	forwarded := false
	for {
		select {
		case e := <-f.in:
			// Cancel first so intake stops claiming new tasks promptly.
			f.cancel()
			if forwarded {
				continue
			}
			forwarded = true
			select {
			case f.out <- e:
			default:
				f.sendWG.Add(1)
				go func(err error) {
					defer f.sendWG.Done()
					select {
					case f.out <- err:
					case <-f.closeCh:
						// stream is closing; drop
					}
				}(e)
			}
		case <-f.closeCh:
			// Remaining internal errors are drained by the shutdown sequence.
			return
		}
	}
}
