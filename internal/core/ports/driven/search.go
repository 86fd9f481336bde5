package driven

import (
	"context"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
)

// SearchAPI runs a single search page request.
// Failures are returned as *domain.APIError so callers can branch on the kind.
type SearchAPI interface {
	// SearchPage fetches one page of results. Page numbers start at 1.
	SearchPage(ctx context.Context, query domain.SearchQuery, kind domain.ResultKind, page, perPage int) (*domain.SearchPage, error)
}
