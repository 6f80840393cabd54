package domain

import (
	"context"
	"net/url"
)

// RequestHandle is one outstanding network fetch (search or image).
//
// A handle starts Running and moves to exactly one terminal state.
// Cancel is safe to call any number of times from any goroutine.
type RequestHandle interface {
	// Cancel aborts a running transfer. On a terminal handle the state is
	// left alone but the handle still reports CancelRequested.
	Cancel()

	// CancelRequested returns true once Cancel has been called
	CancelRequested() bool

	// State returns the current lifecycle state
	State() RequestState

	// Kind returns whether this is a search or an image fetch
	Kind() RequestKind

	// Target returns the tag or URL being fetched
	Target() string

	// Done is closed when the handle reaches a terminal state
	Done() <-chan struct{}
}

// Completion receives the outcome of a fetch. It is called exactly once,
// on the goroutine that performed the transfer.
type Completion func(data []byte, err error)

// FetchClient issues the two GET operations the session needs.
// Both return immediately; the caller owns cancellation.
type FetchClient interface {
	SearchByTag(ctx context.Context, tag string, done Completion) RequestHandle
	FetchImage(ctx context.Context, imageURL *url.URL, done Completion) RequestHandle
}

// Executor runs functions on the single owning context.
// Post must not block the caller on the function's execution.
type Executor interface {
	Post(fn func())
}

// SessionListener receives session events on the owning context.
type SessionListener interface {
	// OnItemsChanged is called after the active item list is replaced
	OnItemsChanged(tag string, items []ResultItem)

	// OnImageLoaded is called after an image is stored in the cache
	OnImageLoaded(id string, data []byte)

	// OnSearchFailed is called when a search ends without results
	OnSearchFailed(tag string, err error)
}

// NoOpListener discards session events (for testing/batch operations).
type NoOpListener struct{}

func (NoOpListener) OnItemsChanged(string, []ResultItem) {}
func (NoOpListener) OnImageLoaded(string, []byte)        {}
func (NoOpListener) OnSearchFailed(string, error)        {}
