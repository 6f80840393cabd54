package service

import (
	"context"
	"net/url"
	"sync"

	"github.com/mmcdole/flickgrid/internal/domain"
)

// fakeHandle is a RequestHandle whose outcome is driven by the test
type fakeHandle struct {
	mu              sync.Mutex
	kind            domain.RequestKind
	target          string
	state           domain.RequestState
	cancelRequested bool
	done            chan struct{}
	complete        domain.Completion
}

func newFakeHandle(kind domain.RequestKind, target string, done domain.Completion) *fakeHandle {
	return &fakeHandle{kind: kind, target: target, done: make(chan struct{}), complete: done}
}

func (h *fakeHandle) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancelRequested = true
	if h.state == domain.RequestRunning {
		h.state = domain.RequestCancelled
		close(h.done)
	}
}

func (h *fakeHandle) CancelRequested() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelRequested
}

func (h *fakeHandle) State() domain.RequestState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *fakeHandle) Kind() domain.RequestKind { return h.kind }
func (h *fakeHandle) Target() string           { return h.target }
func (h *fakeHandle) Done() <-chan struct{}    { return h.done }

// succeed finishes the transfer with data, as the network goroutine would
func (h *fakeHandle) succeed(data []byte) {
	h.finish(data, nil)
}

// fail finishes the transfer with err
func (h *fakeHandle) fail(err error) {
	h.finish(nil, err)
}

func (h *fakeHandle) finish(data []byte, err error) {
	h.mu.Lock()
	if h.state != domain.RequestRunning {
		h.mu.Unlock()
		h.complete(nil, domain.ErrRequestCancelled)
		return
	}
	if err != nil {
		h.state = domain.RequestFailed
	} else {
		h.state = domain.RequestCompleted
	}
	close(h.done)
	h.mu.Unlock()
	h.complete(data, err)
}

// fakeClient records every request it is asked to start
type fakeClient struct {
	searches []*fakeHandle
	images   []*fakeHandle
}

func (c *fakeClient) SearchByTag(_ context.Context, tag string, done domain.Completion) domain.RequestHandle {
	h := newFakeHandle(domain.RequestKindSearch, tag, done)
	c.searches = append(c.searches, h)
	return h
}

func (c *fakeClient) FetchImage(_ context.Context, imageURL *url.URL, done domain.Completion) domain.RequestHandle {
	h := newFakeHandle(domain.RequestKindImage, imageURL.String(), done)
	c.images = append(c.images, h)
	return h
}

func (c *fakeClient) lastSearch() *fakeHandle {
	if len(c.searches) == 0 {
		return nil
	}
	return c.searches[len(c.searches)-1]
}

// imageFor returns the most recent image request for target
func (c *fakeClient) imageFor(target string) *fakeHandle {
	for i := len(c.images) - 1; i >= 0; i-- {
		if c.images[i].target == target {
			return c.images[i]
		}
	}
	return nil
}

// queueExecutor holds posted functions until the test runs them
type queueExecutor struct {
	mu    sync.Mutex
	queue []func()
}

func (e *queueExecutor) Post(fn func()) {
	e.mu.Lock()
	e.queue = append(e.queue, fn)
	e.mu.Unlock()
}

// run executes everything posted so far, including follow-up posts
func (e *queueExecutor) run() {
	for {
		e.mu.Lock()
		batch := e.queue
		e.queue = nil
		e.mu.Unlock()
		if len(batch) == 0 {
			return
		}
		for _, fn := range batch {
			fn()
		}
	}
}

// recordingListener keeps every session event
type recordingListener struct {
	changes  []string
	items    [][]domain.ResultItem
	loaded   []string
	failures []error
}

func (l *recordingListener) OnItemsChanged(tag string, items []domain.ResultItem) {
	l.changes = append(l.changes, tag)
	l.items = append(l.items, items)
}

func (l *recordingListener) OnImageLoaded(id string, _ []byte) {
	l.loaded = append(l.loaded, id)
}

func (l *recordingListener) OnSearchFailed(_ string, err error) {
	l.failures = append(l.failures, err)
}
