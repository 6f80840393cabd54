package domain

import (
	"errors"

	platformerrors "github.com/jmgilman/go/errors"
)

// Sentinel errors for fetch and parse operations
var (
	// ErrRequestCancelled indicates the request was cancelled before it finished
	ErrRequestCancelled = errors.New("request cancelled")

	// ErrMalformedResponse indicates the search response was not a usable document
	ErrMalformedResponse = errors.New("malformed search response")

	// ErrMissingAPIKey indicates no API key was configured for the search endpoint
	ErrMissingAPIKey = errors.New("search API key is not configured")
)

// IsNetworkError reports whether err is a fetch failure: connectivity,
// timeout or a non-2xx status.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	switch platformerrors.GetCode(err) {
	case platformerrors.CodeNetwork, platformerrors.CodeTimeout:
		return true
	}
	return false
}

// IsParseError reports whether err came from a malformed top-level document
func IsParseError(err error) bool {
	return errors.Is(err, ErrMalformedResponse)
}

// IsCancelled reports whether err is the result of a cancelled request
func IsCancelled(err error) bool {
	return errors.Is(err, ErrRequestCancelled)
}
