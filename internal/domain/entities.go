package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// ResultItem is a single photo returned by a tag search.
// ID is the join key for every cache in the session.
type ResultItem struct {
	ID       string   // Photo identifier from the source service
	ImageURL *url.URL // Small rendition URL (url_s)
	Title    string   // Display title, may be empty
	Tags     []string // nil when the record carried no tags field
	Height   int      // Pixel height hint for layout before the image arrives
}

// HasTags reports whether the item carries at least one tag
func (r ResultItem) HasTags() bool {
	return len(r.Tags) > 0
}

// DisplayTitle returns the title, or a placeholder for untitled photos
func (r ResultItem) DisplayTitle() string {
	if strings.TrimSpace(r.Title) == "" {
		return "(untitled)"
	}
	return r.Title
}

// Size is a computed display size in terminal cells
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// RequestKind distinguishes the two kinds of outstanding fetch
type RequestKind int

const (
	RequestKindSearch RequestKind = iota
	RequestKindImage
)

// String returns a human-readable representation of the request kind
func (k RequestKind) String() string {
	switch k {
	case RequestKindSearch:
		return "search"
	case RequestKindImage:
		return "image"
	default:
		return "unknown"
	}
}

// RequestState is the lifecycle state of a RequestHandle.
// Running is the only non-terminal state.
type RequestState int32

const (
	RequestRunning RequestState = iota
	RequestCompleted
	RequestCancelled
	RequestFailed
)

// IsTerminal returns true for every state other than Running
func (s RequestState) IsTerminal() bool {
	return s != RequestRunning
}

// String returns a human-readable representation of the request state
func (s RequestState) String() string {
	switch s {
	case RequestRunning:
		return "running"
	case RequestCompleted:
		return "completed"
	case RequestCancelled:
		return "cancelled"
	case RequestFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SessionState is the search state of a session
type SessionState int

const (
	SessionIdle SessionState = iota
	SessionSearching
)

// String returns a human-readable representation of the session state
func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionSearching:
		return "searching"
	default:
		return "unknown"
	}
}
