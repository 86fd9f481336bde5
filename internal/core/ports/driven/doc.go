// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SearchAPI: Code and repository search, one page per call
//   - RateLimitAPI: Quota counters per resource class
//   - RepositoryAPI: Repository detail, file content and README lookups
//   - ContentFetcher: Raw file download by URL
//   - Cloner: Local working copies of forked repositories
//   - NormaliserRegistry: Selects the parser for a candidate's definition file
//   - ReportWriter: Persists the assembled report
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ForkLister: GraphQL fork enumeration. Without it, repository search is used.
//   - Recorder: Run metrics. Without it, nothing is recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
