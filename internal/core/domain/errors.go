package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Authentication Errors.

	// ErrAuthRequired indicates no access credential is configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the authentication credentials are invalid.
	ErrAuthInvalid = errors.New("authentication invalid")
)

// ErrorKind is the closed set of collaborator failure classes the pipeline
// branches on. Adapters map raw client errors into one of these.
type ErrorKind int

const (
	// ErrorKindUnknown is any failure the pipeline cannot recover from.
	ErrorKindUnknown ErrorKind = iota

	// ErrorKindRateLimit is the primary quota being exhausted.
	ErrorKindRateLimit

	// ErrorKindSecondaryRateLimit is the abuse-detection throttle.
	ErrorKindSecondaryRateLimit

	// ErrorKindWindowCeiling is a search page beyond the result window.
	ErrorKindWindowCeiling

	// ErrorKindNotFound is a missing resource or an unsupported endpoint.
	ErrorKindNotFound
)

// String returns the string representation.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindRateLimit:
		return "rate_limit"
	case ErrorKindSecondaryRateLimit:
		return "secondary_rate_limit"
	case ErrorKindWindowCeiling:
		return "window_ceiling"
	case ErrorKindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// IsTransient reports whether waiting and retrying can clear the failure.
func (k ErrorKind) IsTransient() bool {
	return k == ErrorKindRateLimit || k == ErrorKindSecondaryRateLimit
}

// APIError is a classified collaborator failure.
type APIError struct {
	Kind ErrorKind
	Op   string

	// RetryAfter is the server-suggested wait, zero when not provided.
	RetryAfter time.Duration

	Err error
}

func (e *APIError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the domain sentinels for classified failures.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == ErrorKindNotFound
	case ErrRateLimited:
		return e.Kind.IsTransient()
	}
	return false
}

// KindOf returns the classification of err, ErrorKindUnknown if unclassified.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ErrorKindUnknown
}

// RetryAfterOf returns the server-suggested wait carried by err, if any.
func RetryAfterOf(err error) time.Duration {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.RetryAfter
	}
	return 0
}
