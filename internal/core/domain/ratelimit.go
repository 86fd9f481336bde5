package domain

import "time"

// ResourceClass identifies an independently throttled quota counter.
type ResourceClass string

const (
	// ResourceSearch is the search API quota (30 requests per minute).
	ResourceSearch ResourceClass = "search"

	// ResourceCore is the REST API quota (5000 requests per hour).
	ResourceCore ResourceClass = "core"

	// ResourceGraphQL is the GraphQL point quota.
	ResourceGraphQL ResourceClass = "graphql"
)

// RateLimitSnapshot is a point-in-time read of one quota counter.
// It goes stale immediately since other consumers share the quota.
type RateLimitSnapshot struct {
	Resource  ResourceClass
	Limit     int
	Remaining int
	ResetAt   time.Time
}
