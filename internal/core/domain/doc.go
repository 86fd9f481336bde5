// Package domain defines the core business entities for action discovery.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SearchQuery: A composed code or repository search query
//   - RateLimitSnapshot: A point-in-time read of a quota counter
//   - Candidate: A discovered action location prior to enrichment
//   - ActionRecord / WorkflowRecord: The normalised output rows
//   - Report: The assembled discovery result
//   - Settings: The immutable run-scoped configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
