package slot

import "context"

type fixed struct {
	tokens chan struct{}
}

// NewFixed returns a Pool with exactly capacity slots.
func NewFixed(capacity uint) Pool {
	return &fixed{tokens: make(chan struct{}, capacity)}
}

func (p *fixed) Acquire(ctx context.Context) error {
	select {
	case p.tokens <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *fixed) TryAcquire() bool {
	select {
	case p.tokens <- struct{}{}:
		return true
	default:
		return false
	}
}

func (p *fixed) Release() {
	select {
	case <-p.tokens:
	default:
		panic("slot: release without a matching acquire")
	}
}
