package services

import (
	"context"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/core/ports/driven"
	"github.com/devops-actions/load-available-actions/internal/logger"
)

// WorkflowDir is where reusable workflows live.
const WorkflowDir = ".github/workflows"

// WorkflowFinder discovers reusable workflows through code search.
type WorkflowFinder struct {
	settings domain.Settings
	search   *SearchExecutor
	repos    driven.RepositoryAPI
	content  driven.ContentFetcher
	parser   driven.WorkflowParser
	retrier  *retrier
	details  *repositoryCache
}

// WorkflowDeps groups the collaborators of a WorkflowFinder.
type WorkflowDeps struct {
	Search  *SearchExecutor
	Repos   driven.RepositoryAPI
	Content driven.ContentFetcher
	Parser  driven.WorkflowParser
	Gate    *RateLimitGate
}

// NewWorkflowFinder creates a workflow finder.
func NewWorkflowFinder(settings domain.Settings, deps WorkflowDeps, opts ...Option) *WorkflowFinder {
	r := &retrier{gate: deps.Gate, opts: newOptions(opts)}
	return &WorkflowFinder{
		settings: settings,
		search:   deps.Search,
		repos:    deps.Repos,
		content:  deps.Content,
		parser:   deps.Parser,
		retrier:  r,
		details:  newRepositoryCache(deps.Repos, r),
	}
}

// FindAll returns every workflow in scope that declares workflow_call.
// Workflows in non-public repositories are skipped unless
// IncludePrivateWorkflows is set.
func (w *WorkflowFinder) FindAll(ctx context.Context) ([]domain.WorkflowRecord, error) {
	ctx, span := tracer.Start(ctx, "find_workflows")
	defer span.End()

	query := domain.NewQueryBuilder().
		Term("workflow_call").
		Path(WorkflowDir).
		Language("YAML").
		Scope(w.settings.User, w.settings.Organization).
		Build()

	items, err := w.search.Search(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var workflows []domain.WorkflowRecord
	for _, item := range items {
		repo := item.Repository
		if w.settings.IsExcluded(repo.Owner, repo.Name) {
			continue
		}

		detail, err := w.details.get(ctx, repo)
		if err != nil {
			return nil, err
		}
		if detail.Visibility != domain.VisibilityPublic && !w.settings.IncludePrivateWorkflows {
			logger.Debug("Skipping %s in %s: %s repository", item.Path, detail.FullName(), detail.Visibility)
			continue
		}

		candidate := domain.Candidate{
			Owner:      detail.Owner,
			Repo:       detail.Name,
			Path:       item.Path,
			IsFork:     detail.Fork,
			IsArchived: detail.Archived,
			Visibility: detail.Visibility,
			ForkedFrom: detail.Parent,
			Metadata:   domain.UndefinedMetadata(),
		}
		if !w.enrich(ctx, &candidate) {
			logger.Debug("Skipping %s in %s: not a reusable workflow", item.Path, detail.FullName())
			continue
		}
		workflows = append(workflows, workflowRecord(candidate))
	}

	logger.Info("Found %d reusable workflows", len(workflows))
	return workflows, nil
}

// enrich fetches and parses the workflow. It reports false only when the
// document was read and does not declare workflow_call.
func (w *WorkflowFinder) enrich(ctx context.Context, c *domain.Candidate) bool {
	info, err := retryTransient(ctx, w.retrier, domain.ResourceCore, "get content",
		func(ctx context.Context) (*domain.FileInfo, error) {
			return w.repos.GetContent(ctx, c.Owner, c.Repo, c.Path)
		})
	if err != nil {
		logger.Warn("Could not look up %s in %s: %v", c.Path, c.RepoFullName(), err)
		return true
	}
	c.DownloadURL = info.DownloadURL

	body, err := retryTransient(ctx, w.retrier, domain.ResourceCore, "download",
		func(ctx context.Context) ([]byte, error) {
			return w.content.Download(ctx, info.DownloadURL)
		})
	if w.settings.RemoveToken {
		c.DownloadURL = domain.StripQuery(c.DownloadURL)
	}
	if err != nil {
		logger.Warn("Could not download %s from %s: %v", c.Path, c.RepoFullName(), err)
		return true
	}

	meta, reusable, err := w.parser.ParseWorkflow(body)
	if err != nil {
		logger.Info("Could not parse %s in %s: %v", c.Path, c.RepoFullName(), err)
		return true
	}
	c.Metadata = meta
	return reusable
}
