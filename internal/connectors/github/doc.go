// Package github implements the GitHub facing driven ports.
//
// # Components
//
//   - Client: REST access through go-github for search, rate limit,
//     repository, content and README lookups, plus raw downloads.
//   - ForkLister: fork enumeration through the GraphQL API.
//
// # Errors
//
// Every failure leaves this package as a *domain.APIError whose kind the
// pipeline branches on. classify is the single mapping point: typed
// go-github and go-gh errors first, then the message fragments GitHub uses
// for secondary limits and the search result window.
//
// # Rate Limiting
//
// Each quota class has a token bucket that spaces requests out. Quota
// exhaustion is not handled here; it surfaces as a classified error and
// the services layer waits for the reset.
package github
