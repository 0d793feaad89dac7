// internal/protocol/fifo_lock.go
package protocol

import (
	"context"
	"sync"
)

// fifoLock is a mutex that hands ownership to waiters strictly in arrival order.
type fifoLock struct {
	mu      sync.Mutex
	held    bool
	waiters []chan struct{}
}

func newFIFOLock() *fifoLock {
	return &fifoLock{}
}

// Lock blocks until the caller owns the lock or ctx is done.
func (l *fifoLock) Lock(ctx context.Context) error {
	l.mu.Lock()
	if !l.held {
		l.held = true
		l.mu.Unlock()
		return nil
	}
	ticket := make(chan struct{})
	l.waiters = append(l.waiters, ticket)
	l.mu.Unlock()

	select {
	case <-ticket:
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		for i, w := range l.waiters {
			if w == ticket {
				l.waiters = append(l.waiters[:i], l.waiters[i+1:]...)
				l.mu.Unlock()
				return ctx.Err()
			}
		}
		l.mu.Unlock()
		// ownership was handed over while ctx fired; pass it on
		l.Unlock()
		return ctx.Err()
	}
}

// Unlock passes ownership to the oldest waiter, or frees the lock.
func (l *fifoLock) Unlock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.waiters) > 0 {
		next := l.waiters[0]
		l.waiters = l.waiters[1:]
		close(next)
		return
	}
	l.held = false
}

// pending reports how many callers are queued behind the current owner.
func (l *fifoLock) pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.waiters)
}
