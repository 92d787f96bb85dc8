package lanes

import "sync"

// shutdownSequence orchestrates stream teardown in a deterministic order.
// It owns no channels itself; it coordinates cancellation, waits, draining,
// and the closures supplied by the stream. Close is idempotent and safe for
// concurrent use.
//
// Order:
//  1. wait for in-flight task executions to settle (a fail-fast or caller
//     cancellation has already been propagated by this point, so cancelled
//     operations settle promptly; operations still running after a clean
//     intake exhaustion finish naturally)
//  2. cancel the stream context to release it
//  3. close closeCh to stop the forwarder and detached senders
//  4. wait for the forwarder and detached senders to exit
//  5. drain leftover internal errors
//  6. close the settlements channel and wait for the reorderer
//  7. close results, then errors
type shutdownSequence struct {
	cancel          func()
	inflight        *sync.WaitGroup
	closeCh         chan struct{}
	forwarderWG     *sync.WaitGroup
	sendWG          *sync.WaitGroup
	drainInternal   func()
	closeSettlement func()
	reorderWG       *sync.WaitGroup
	closeResults    func()
	closeErrors     func()

	once sync.Once
}

func (s *shutdownSequence) Close() {
	s.once.Do(func() {
		s.inflight.Wait()
		if s.cancel != nil {
			s.cancel()
		}
		close(s.closeCh)
		s.forwarderWG.Wait()
		s.sendWG.Wait()
		if s.drainInternal != nil {
			s.drainInternal()
		}
		s.closeSettlement()
		s.reorderWG.Wait()
		s.closeResults()
		s.closeErrors()
	})
}
