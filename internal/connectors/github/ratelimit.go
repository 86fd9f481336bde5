package github

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
)

const (
	// ProactiveRate is the core throttle rate (~1.2 req/sec = 4320/hr).
	ProactiveRate = 1.2

	// SearchRate is the search throttle rate (30/min).
	SearchRate = 0.5

	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "X-RateLimit-Remaining"

	// HeaderRateReset is the reset timestamp header (Unix seconds).
	HeaderRateReset = "X-RateLimit-Reset"

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"
)

// RateLimiter throttles requests per quota class with token buckets.
// Quota exhaustion itself is handled by the caller through classified errors.
type RateLimiter struct {
	buckets map[domain.ResourceClass]*rate.Limiter
}

// NewRateLimiter creates a rate limiter with the default per-class rates.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		buckets: map[domain.ResourceClass]*rate.Limiter{
			domain.ResourceSearch:  rate.NewLimiter(rate.Limit(SearchRate), 1),
			domain.ResourceCore:    rate.NewLimiter(rate.Limit(ProactiveRate), 1),
			domain.ResourceGraphQL: rate.NewLimiter(rate.Limit(ProactiveRate), 1),
		},
	}
}

// Wait blocks until the bucket for class admits one request.
func (r *RateLimiter) Wait(ctx context.Context, class domain.ResourceClass) error {
	bucket, ok := r.buckets[class]
	if !ok {
		bucket = r.buckets[domain.ResourceCore]
	}
	return bucket.Wait(ctx)
}

// CheckResponse classifies a raw response that did not go through go-github.
// Returns nil for 2xx responses.
func CheckResponse(op string, resp *http.Response) error {
	if resp == nil || (resp.StatusCode >= 200 && resp.StatusCode < 300) {
		return nil
	}

	statusErr := &StatusError{StatusCode: resp.StatusCode}
	if resp.Request != nil && resp.Request.URL != nil {
		statusErr.URL = domain.StripQuery(resp.Request.URL.String())
	}
	apiErr := &domain.APIError{Kind: domain.ErrorKindUnknown, Op: op, Err: statusErr}

	retryAfter := parseRetryAfter(resp.Header.Get(HeaderRetryAfter))
	switch {
	case resp.StatusCode == http.StatusNotFound:
		apiErr.Kind = domain.ErrorKindNotFound
	case resp.StatusCode == http.StatusForbidden && resp.Header.Get(HeaderRateRemaining) == "0":
		apiErr.Kind = domain.ErrorKindRateLimit
		apiErr.RetryAfter = untilReset(parseReset(resp.Header.Get(HeaderRateReset)))
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusForbidden && retryAfter > 0:
		apiErr.Kind = domain.ErrorKindSecondaryRateLimit
		apiErr.RetryAfter = retryAfter
	}
	return apiErr
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func parseReset(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	unix, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(unix, 0)
}
