package tui

import "github.com/mmcdole/flickgrid/internal/domain"

// Message types for the TUI

// syncMsg asks the model to pick up session events and refresh visibility
type syncMsg struct{}

// clearStatusMsg clears the footer status line
type clearStatusMsg struct{}

// openedMsg reports the outcome of opening a photo in the viewer
type openedMsg struct {
	Title string
	Err   error
}

// SessionEvents implements domain.SessionListener by recording events for
// the model to apply after each update. It is only touched from the
// program's update loop.
type SessionEvents struct {
	itemsChanged bool
	failedTag    string
	failure      error
	imagesLoaded int
}

// NewSessionEvents creates an empty event recorder
func NewSessionEvents() *SessionEvents {
	return &SessionEvents{}
}

func (e *SessionEvents) OnItemsChanged(string, []domain.ResultItem) {
	e.itemsChanged = true
	e.failure = nil
}

func (e *SessionEvents) OnImageLoaded(string, []byte) {
	e.imagesLoaded++
}

func (e *SessionEvents) OnSearchFailed(tag string, err error) {
	e.failedTag = tag
	e.failure = err
}

// drain returns the recorded events and resets the recorder
func (e *SessionEvents) drain() SessionEvents {
	out := *e
	*e = SessionEvents{}
	return out
}
