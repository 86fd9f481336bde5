package driven

import (
	"context"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
)

// RateLimitAPI reads the current quota counters.
type RateLimitAPI interface {
	// RateLimit returns a fresh snapshot for the given class.
	// Self-managed hosts without rate limiting return an ErrorKindNotFound error.
	RateLimit(ctx context.Context, class domain.ResourceClass) (*domain.RateLimitSnapshot, error)
}
