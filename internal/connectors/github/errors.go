package github

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"
	gh "github.com/google/go-github/v68/github"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
)

// Message fragments GitHub uses for failures that carry no typed error.
var (
	secondaryPatterns = []string{
		"secondaryratelimit detected",
		"exceeded a secondary rate limit",
	}
	primaryPatterns = []string{
		"api rate limit exceeded",
	}
	windowPatterns = []string{
		"cannot access beyond the first",
		"only the first 1000 search results",
	}
)

// GraphQL error types.
const (
	graphQLRateLimited = "RATE_LIMITED"
	graphQLNotFound    = "NOT_FOUND"
)

// classify maps a raw client failure to a *domain.APIError.
// Context cancellation passes through untouched.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var classified *domain.APIError
	if errors.As(err, &classified) {
		return err
	}

	kind, retryAfter := kindOf(err)
	return &domain.APIError{Kind: kind, Op: op, RetryAfter: retryAfter, Err: err}
}

func kindOf(err error) (domain.ErrorKind, time.Duration) {
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return domain.ErrorKindSecondaryRateLimit, abuseErr.GetRetryAfter()
	}

	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return domain.ErrorKindRateLimit, untilReset(rateErr.Rate.Reset.Time)
	}

	var gqlErr *api.GraphQLError
	if errors.As(err, &gqlErr) {
		for _, item := range gqlErr.Errors {
			switch item.Type {
			case graphQLRateLimited:
				return domain.ErrorKindRateLimit, 0
			case graphQLNotFound:
				return domain.ErrorKindNotFound, 0
			}
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, secondaryPatterns):
		return domain.ErrorKindSecondaryRateLimit, 0
	case containsAny(msg, primaryPatterns):
		return domain.ErrorKindRateLimit, 0
	case containsAny(msg, windowPatterns):
		return domain.ErrorKindWindowCeiling, 0
	}

	if statusCode(err) == http.StatusNotFound || strings.Contains(msg, "not found") {
		return domain.ErrorKindNotFound, 0
	}
	return domain.ErrorKindUnknown, 0
}

// statusCode extracts the HTTP status from any client error type, 0 if none.
func statusCode(err error) int {
	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return respErr.Response.StatusCode
	}
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

func untilReset(reset time.Time) time.Duration {
	if reset.IsZero() {
		return 0
	}
	if d := time.Until(reset); d > 0 {
		return d
	}
	return 0
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// StatusError is a non-2xx response from a raw download.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return "github: unexpected status " + http.StatusText(e.StatusCode) + " for " + e.URL
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	return statusCode(err) == http.StatusUnauthorized
}
