package session

import (
	"context"
	"sync"
)

// Latch is a one-shot signal. Once resolved it stays resolved; every Wait
// after that returns immediately.
type Latch struct {
	once sync.Once
	ch   chan struct{}
}

func NewLatch() *Latch {
	return &Latch{ch: make(chan struct{})}
}

// Resolve fires the latch and reports whether this call was the one that
// fired it.
func (l *Latch) Resolve() bool {
	fired := false
	l.once.Do(func() {
		close(l.ch)
		fired = true
	})
	return fired
}

// Done reports whether the latch has fired.
func (l *Latch) Done() bool {
	select {
	case <-l.ch:
		return true
	default:
		return false
	}
}

// Wait blocks until the latch fires or ctx ends.
func (l *Latch) Wait(ctx context.Context) error {
	select {
	case <-l.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
