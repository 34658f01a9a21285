package crawl

import (
	"errors"
	"fmt"
)

// FetchErrorKind classifies why a fetch failed.
type FetchErrorKind string

// Fetch failure classes. Non-200 responses are failures, not results.
const (
	FetchTimeout    FetchErrorKind = "timeout"
	FetchNetwork    FetchErrorKind = "network"
	FetchHTTPStatus FetchErrorKind = "http_status"
)

// FetchError wraps a failed fetch with its classification. StatusCode is
// only meaningful for FetchHTTPStatus.
type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchHTTPStatus:
		return fmt.Sprintf("fetch: unexpected status %d", e.StatusCode)
	case FetchTimeout:
		return fmt.Sprintf("fetch: timeout: %v", e.Err)
	default:
		return fmt.Sprintf("fetch: %v", e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// AsFetchError unpacks a FetchError from an error chain.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
