package fetcher

import (
	"errors"
	"fmt"
)

var (
	// ErrRedirectLimit is returned when a response redirects more times
	// than the configured hop limit.
	ErrRedirectLimit = errors.New("redirect limit exceeded")

	// ErrServerError marks a 5xx (or 429/408) response.
	ErrServerError = errors.New("server error")

	// ErrClientError marks a 4xx response.
	ErrClientError = errors.New("client error")

	// ErrNotHTML marks a response whose content type is not HTML.
	ErrNotHTML = errors.New("content is not HTML")

	// ErrInvalidProxy is returned for an unsupported proxy URL.
	ErrInvalidProxy = errors.New("invalid proxy URL")
)

// FailureKind classifies a failed fetch.
type FailureKind int

const (
	// FailureTransient is retried up to the configured bound.
	FailureTransient FailureKind = iota + 1
	// FailureClient is recorded as failed without retry.
	FailureClient
	// FailureNotHTML is recorded as skipped.
	FailureNotHTML
)

// String returns the kind name.
func (k FailureKind) String() string {
	switch k {
	case FailureTransient:
		return "transient"
	case FailureClient:
		return "client"
	case FailureNotHTML:
		return "not_html"
	default:
		return "unknown"
	}
}

// FetchError describes a classified fetch failure.
type FetchError struct {
	Kind       FailureKind
	URL        string
	StatusCode int
	Attempts   int
	Err        error
}

// Error implements error.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %s failure (status %d, %d attempt(s)): %v",
			e.URL, e.Kind, e.StatusCode, e.Attempts, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s failure (%d attempt(s)): %v", e.URL, e.Kind, e.Attempts, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind carried by err, if any.
func KindOf(err error) (FailureKind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}
