package lanes

import (
	"context"
	"sync"
	"time"

	"github.com/lanekit/lanes/slot"
)

// Stream executes op over items received from in, with at most limit
// operations in flight, and returns channels carrying results and errors.
// A non-nil error is returned only for immediate setup failures (invalid
// limit or options); runtime task errors are delivered via the errors channel.
//
// Ordering: results are emitted strictly in intake order. A completion that
// arrives ahead of an earlier task is buffered until every earlier task has
// settled.
//
// Failure policy: fail-fast by default — the first task error cancels intake,
// is delivered once on the errors channel wrapped with the failing task's
// intake index, and later settlements are discarded. With
// WithContinueOnError, every task error is delivered and intake continues
// until in is closed or ctx is done.
//
// Both returned channels are closed once intake has ended and all in-flight
// operations have settled. Callers should drain both until closed.
func Stream[T, R any](
	ctx context.Context, in <-chan T, limit int, op Operation[T, R], opts ...Option,
) (<-chan R, <-chan error, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	if err = checkLimit(limit); err != nil {
		return nil, nil, err
	}

	s := newStreamer(in, op, limit, cfg)
	s.start(ctx)
	return s.results, s.errs, nil
}

// streamer is the per-stream scheduler instance. In-flight operations are
// bounded by a fixed slot pool instead of a lane set, because the total
// amount of work is unknown while intake is open.
type streamer[T, R any] struct {
	in    <-chan T
	op    Operation[T, R]
	slots slot.Pool

	results     chan R
	errs        chan error
	settlements chan settlement[R]

	// In fail-fast mode, task goroutines report errors into failBuf, which
	// the failure forwarder drains; otherwise they write to errs directly.
	failBuf    chan error
	workerErrs chan error

	inflight    sync.WaitGroup
	forwarderWG sync.WaitGroup
	sendWG      sync.WaitGroup
	reorderWG   sync.WaitGroup
	closeCh     chan struct{}

	inst instruments
}

func newStreamer[T, R any](in <-chan T, op Operation[T, R], limit int, cfg config) *streamer[T, R] {
	s := &streamer[T, R]{
		in:          in,
		op:          op,
		slots:       slot.NewFixed(uint(limit)),
		results:     make(chan R, cfg.ResultsBufferSize),
		errs:        make(chan error, cfg.ErrorsBufferSize),
		settlements: make(chan settlement[R], cfg.ResultsBufferSize),
		closeCh:     make(chan struct{}),
		inst:        newInstruments(cfg.Metrics),
	}
	if cfg.ContinueOnError {
		s.workerErrs = s.errs
	} else {
		s.failBuf = make(chan error, cfg.FailFastBufferSize)
		s.workerErrs = s.failBuf
	}
	return s
}

// start launches the reorderer, the failure forwarder (fail-fast mode only),
// and the intake loop.
func (s *streamer[T, R]) start(ctx context.Context) {
	streamCtx, cancel := context.WithCancel(ctx)

	s.reorderWG.Add(1)
	go func() {
		defer s.reorderWG.Done()
		newReorderer(s.settlements, s.results).run()
	}()

	if s.failBuf != nil {
		s.forwarderWG.Add(1)
		f := newFailureForwarder(s.failBuf, s.errs, s.closeCh, cancel, &s.sendWG)
		go func() {
			defer s.forwarderWG.Done()
			f.run()
		}()
	}

	go s.intake(streamCtx, cancel)
}

// intake assigns each received item the next intake index, acquires an
// execution slot (blocking while limit operations are already in flight), and
// launches the settlement goroutine. It stops when in is closed, ctx is done,
// or the failure forwarder cancels the stream.
func (s *streamer[T, R]) intake(ctx context.Context, cancel context.CancelFunc) {
	defer s.shutdown(cancel)

	idx := 0
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-s.in:
			if !ok {
				return
			}
			if err := s.slots.Acquire(ctx); err != nil {
				return
			}
			i := idx
			idx++
			s.inflight.Add(1)
			go func(item T, i int) {
				defer s.inflight.Done()
				defer s.slots.Release()
				s.settle(ctx, item, i)
			}(item, i)
		}
	}
}

// settle invokes the operation for one item and reports its settlement: the
// result (or a no-value marker on error) to the reorderer, and the error,
// wrapped with the intake index, to the worker errors channel.
func (s *streamer[T, R]) settle(ctx context.Context, item T, i int) {
	s.inst.inFlight.Add(1)
	start := time.Now()
	res, err := invoke(ctx, s.op, item)
	s.inst.duration.Record(time.Since(start).Seconds())
	s.inst.inFlight.Add(-1)

	if err != nil {
		s.inst.failed.Add(1)
		s.workerErrs <- newIndexedError(err, i)
		s.settlements <- settlement[R]{idx: i, present: false}
		return
	}

	s.inst.completed.Add(1)
	s.settlements <- settlement[R]{idx: i, val: res, present: true}
}

func (s *streamer[T, R]) shutdown(cancel context.CancelFunc) {
	seq := &shutdownSequence{
		cancel:          cancel,
		inflight:        &s.inflight,
		closeCh:         s.closeCh,
		forwarderWG:     &s.forwarderWG,
		sendWG:          &s.sendWG,
		drainInternal:   s.drainInternal,
		closeSettlement: func() { close(s.settlements) },
		reorderWG:       &s.reorderWG,
		closeResults:    func() { close(s.results) },
		closeErrors:     func() { close(s.errs) },
	}
	seq.Close()
}

// drainInternal discards internal errors left after the forwarder exited.
// Anything still buffered at this point is cancellation noise from tasks that
// settled after the first failure; the stream's outcome is already decided.
func (s *streamer[T, R]) drainInternal() {
	if s.failBuf == nil {
		return
	}
	for {
		select {
		case <-s.failBuf:
		default:
			return
		}
	}
}
