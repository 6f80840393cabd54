package flickr

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/mmcdole/flickgrid/internal/domain"
)

// Request implements domain.RequestHandle for a single GET
type Request struct {
	kind   domain.RequestKind
	target string

	state           atomic.Int32
	cancelRequested atomic.Bool
	cancel          context.CancelFunc

	done     chan struct{}
	doneOnce sync.Once
}

func newRequest(kind domain.RequestKind, target string, cancel context.CancelFunc) *Request {
	return &Request{
		kind:   kind,
		target: target,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Cancel moves a running request to Cancelled and aborts its transfer.
// Calling it on a finished request only records the cancellation.
func (r *Request) Cancel() {
	r.cancelRequested.Store(true)
	if r.state.CompareAndSwap(int32(domain.RequestRunning), int32(domain.RequestCancelled)) {
		r.cancel()
		r.closeDone()
	}
}

// CancelRequested returns true once Cancel has been called
func (r *Request) CancelRequested() bool {
	return r.cancelRequested.Load()
}

// State returns the current lifecycle state
func (r *Request) State() domain.RequestState {
	return domain.RequestState(r.state.Load())
}

// Kind returns the request kind
func (r *Request) Kind() domain.RequestKind { return r.kind }

// Target returns the tag or URL being fetched
func (r *Request) Target() string { return r.target }

// Done is closed when the request reaches a terminal state
func (r *Request) Done() <-chan struct{} { return r.done }

// finish records the transfer outcome. It returns false if the request was
// cancelled first, in which case the outcome is discarded.
func (r *Request) finish(err error) bool {
	next := domain.RequestCompleted
	if err != nil {
		next = domain.RequestFailed
	}
	if !r.state.CompareAndSwap(int32(domain.RequestRunning), int32(next)) {
		return false
	}
	r.cancel()
	r.closeDone()
	return true
}

func (r *Request) closeDone() {
	r.doneOnce.Do(func() { close(r.done) })
}
