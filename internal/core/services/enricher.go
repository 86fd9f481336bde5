package services

import (
	"context"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/core/ports/driven"
	"github.com/devops-actions/load-available-actions/internal/logger"
)

// Enricher fills in download URLs, content, metadata and READMEs.
// Problems are logged and leave Undefined fields; they never drop a
// candidate.
type Enricher struct {
	settings domain.Settings
	repos    driven.RepositoryAPI
	content  driven.ContentFetcher
	registry driven.NormaliserRegistry
	retrier  *retrier

	readmes map[string]string
}

// EnricherDeps groups the collaborators of an Enricher.
type EnricherDeps struct {
	Repos    driven.RepositoryAPI
	Content  driven.ContentFetcher
	Registry driven.NormaliserRegistry
	Gate     *RateLimitGate
}

// NewEnricher creates an enricher.
func NewEnricher(settings domain.Settings, deps EnricherDeps, opts ...Option) *Enricher {
	return &Enricher{
		settings: settings,
		repos:    deps.Repos,
		content:  deps.Content,
		registry: deps.Registry,
		retrier:  &retrier{gate: deps.Gate, opts: newOptions(opts)},
		readmes:  make(map[string]string),
	}
}

// Enrich returns a copy of candidate with derived fields populated.
func (e *Enricher) Enrich(ctx context.Context, candidate domain.Candidate) domain.Candidate {
	c := candidate

	if c.DownloadURL == "" {
		c.DownloadURL = e.downloadURL(ctx, c)
	}

	if len(c.Content) == 0 && c.Origin == domain.OriginCodeSearch && c.DownloadURL != "" {
		body, err := retryTransient(ctx, e.retrier, domain.ResourceCore, "download",
			func(ctx context.Context) ([]byte, error) {
				return e.content.Download(ctx, c.DownloadURL)
			})
		if err != nil {
			logger.Warn("Could not download %s from %s: %v", c.Path, c.RepoFullName(), err)
		} else {
			c.Content = body
		}
	}

	c.Metadata = domain.UndefinedMetadata()
	result, err := e.registry.Normalise(ctx, &c)
	if err != nil {
		logger.Info("Could not parse %s in %s: %v", c.Path, c.RepoFullName(), err)
	}
	if result != nil {
		c.Metadata = result.Metadata
	}

	if e.settings.FetchReadme {
		c.Readme = e.readme(ctx, c.Owner, c.Repo)
	}

	if e.settings.RemoveToken {
		c.DownloadURL = domain.StripQuery(c.DownloadURL)
	}
	return c
}

func (e *Enricher) downloadURL(ctx context.Context, c domain.Candidate) string {
	info, err := retryTransient(ctx, e.retrier, domain.ResourceCore, "get content",
		func(ctx context.Context) (*domain.FileInfo, error) {
			return e.repos.GetContent(ctx, c.Owner, c.Repo, c.Path)
		})
	switch {
	case err == nil:
		return info.DownloadURL
	case domain.KindOf(err) == domain.ErrorKindNotFound:
		logger.Debug("No content found for %s in %s", c.Path, c.RepoFullName())
	default:
		logger.Warn("Could not look up %s in %s: %v", c.Path, c.RepoFullName(), err)
	}
	return ""
}

// readme fetches a repository's README once per run.
func (e *Enricher) readme(ctx context.Context, owner, repo string) string {
	key := owner + "/" + repo
	if readme, ok := e.readmes[key]; ok {
		return readme
	}

	readme, err := retryTransient(ctx, e.retrier, domain.ResourceCore, "get readme",
		func(ctx context.Context) (string, error) {
			return e.repos.GetReadme(ctx, owner, repo)
		})
	if err != nil && domain.KindOf(err) != domain.ErrorKindNotFound {
		logger.Warn("Could not load README for %s: %v", key, err)
	}
	e.readmes[key] = readme
	return readme
}
