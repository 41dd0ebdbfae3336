package workers

import "context"

// Pool bounds the number of enrichment pipelines running at once.
// The limit comes from configuration, not code.
type Pool struct {
	slots chan struct{}
}

// NewPool creates a pool with the given number of slots
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Acquire blocks until a slot is free or the context is done
func (p *Pool) Acquire(ctx context.Context) error {
	select {
	case p.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot taken by Acquire
func (p *Pool) Release() {
	<-p.slots
}
