package services

import (
	"context"
	"fmt"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/core/ports/driven"
	"github.com/devops-actions/load-available-actions/internal/logger"
)

// repositoryCache memoises repository detail lookups for one run.
type repositoryCache struct {
	repos   driven.RepositoryAPI
	retrier *retrier
	details map[string]*domain.RepositoryRef
}

func newRepositoryCache(repos driven.RepositoryAPI, r *retrier) *repositoryCache {
	return &repositoryCache{
		repos:   repos,
		retrier: r,
		details: make(map[string]*domain.RepositoryRef),
	}
}

// get returns the detail record for repo. A repository that disappeared
// since the search keeps the fields the search returned.
func (c *repositoryCache) get(ctx context.Context, repo domain.RepositoryRef) (*domain.RepositoryRef, error) {
	key := repo.FullName()
	if detail, ok := c.details[key]; ok {
		return detail, nil
	}

	detail, err := retryTransient(ctx, c.retrier, domain.ResourceCore, "get repository",
		func(ctx context.Context) (*domain.RepositoryRef, error) {
			return c.repos.GetRepository(ctx, repo.Owner, repo.Name)
		})
	if err != nil {
		if domain.KindOf(err) != domain.ErrorKindNotFound {
			return nil, fmt.Errorf("get repository %s: %w", key, err)
		}
		logger.Warn("Repository %s not found, using search result details", key)
		fallback := repo
		detail = &fallback
	}

	c.details[key] = detail
	return detail, nil
}
