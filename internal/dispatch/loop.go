// Package dispatch provides the single owning context that session and
// cache state are confined to.
package dispatch

import (
	"context"
	"log/slog"
	"sync"
)

// Loop runs posted functions one at a time, in post order, on the goroutine
// that calls Run. It implements domain.Executor.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	stopped bool

	wake     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	logger   *slog.Logger
}

// NewLoop creates a loop; call Run to start executing
func NewLoop(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		logger: logger,
	}
}

// Post queues fn without blocking. Functions posted after Stop are dropped.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default: // Already signalled
	}
}

// Run executes posted functions until ctx is done or Stop is called
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stop:
			return nil
		case <-l.wake:
			l.drain()
		}
	}
}

// Stop ends Run and drops anything still queued
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		l.mu.Lock()
		l.stopped = true
		l.pending = nil
		l.mu.Unlock()
		close(l.stop)
	})
}

func (l *Loop) drain() {
	l.mu.Lock()
	batch := l.pending
	l.pending = nil
	l.mu.Unlock()

	for _, fn := range batch {
		l.exec(fn)
	}
}

// exec runs fn, logging instead of crashing if it panics
func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("dispatched function panicked", "panic", r)
		}
	}()
	fn()
}
