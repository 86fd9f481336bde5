package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/core/ports/driven"
	"github.com/devops-actions/load-available-actions/internal/logger"
)

// Search limits.
const (
	// PageSize is the number of results requested per page.
	PageSize = 100

	// WindowCeiling is the most results the search index will return for
	// one query.
	WindowCeiling = 1000

	// PageDelay separates page requests to stay under the search quota.
	PageDelay = 6 * time.Second
)

// SearchExecutor drives a query across result pages.
type SearchExecutor struct {
	api     driven.SearchAPI
	retrier *retrier
	opts    options
}

// NewSearchExecutor creates an executor. The gate is consulted whenever a
// page request hits the primary rate limit.
func NewSearchExecutor(api driven.SearchAPI, gate *RateLimitGate, opts ...Option) *SearchExecutor {
	o := newOptions(opts)
	return &SearchExecutor{
		api:     api,
		retrier: &retrier{gate: gate, opts: o},
		opts:    o,
	}
}

// Search returns every result of query in page order, truncated to
// WindowCeiling. Reaching the ceiling is not an error.
func (e *SearchExecutor) Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchItem, error) {
	kind := query.ResultKind()
	ctx, span := tracer.Start(ctx, "search",
		trace.WithAttributes(
			attribute.String("search.query", query.String()),
			attribute.String("search.kind", string(kind)),
		),
	)
	defer span.End()

	logger.Debug("Searching %s: %s", kind, query)

	var items []domain.SearchItem
	for page := 1; ; page++ {
		result, err := e.fetchPage(ctx, query, kind, page)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("search %q page %d: %w", query, page, err)
		}
		if result == nil {
			logger.Info("Search window ceiling reached for %q, keeping %d results", query, len(items))
			break
		}
		if len(result.Items) == 0 {
			break
		}

		items = append(items, result.Items...)
		logger.Debug("Page %d: %d/%d results", page, len(items), result.TotalCount)

		if len(items) >= WindowCeiling {
			if result.TotalCount > WindowCeiling {
				logger.Info("Search %q matched %d results, only the first %d are available", query, result.TotalCount, WindowCeiling)
			}
			items = items[:WindowCeiling]
			break
		}
		if len(items) >= result.TotalCount {
			break
		}

		if err := e.opts.sleep(ctx, PageDelay); err != nil {
			return nil, err
		}
	}

	span.SetAttributes(attribute.Int("search.results", len(items)))
	return items, nil
}

// fetchPage requests one page, retrying quota errors. It returns nil, nil
// when the page lies beyond the search window.
func (e *SearchExecutor) fetchPage(ctx context.Context, query domain.SearchQuery, kind domain.ResultKind, page int) (*domain.SearchPage, error) {
	result, err := retryTransient(ctx, e.retrier, domain.ResourceSearch, "search page",
		func(ctx context.Context) (*domain.SearchPage, error) {
			return e.api.SearchPage(ctx, query, kind, page, PageSize)
		})
	if err != nil {
		if domain.KindOf(err) == domain.ErrorKindWindowCeiling {
			return nil, nil
		}
		return nil, err
	}
	e.opts.recorder.SearchPage(kind)
	return result, nil
}
