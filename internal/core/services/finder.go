package services

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/core/ports/driven"
	"github.com/devops-actions/load-available-actions/internal/logger"
)

// cloneDirName is the single working copy reused for every fork.
const cloneDirName = "fork"

// ActionFinder discovers action definitions through code search and, since
// the search index skips forks, through cloning every forked repository.
type ActionFinder struct {
	settings domain.Settings
	search   *SearchExecutor
	forks    driven.ForkLister
	cloner   driven.Cloner
	labels   driven.LabelParser
	retrier  *retrier
	details  *repositoryCache
	opts     options
}

// FinderDeps groups the collaborators of an ActionFinder.
// Forks may be nil, in which case forks are found with repository search.
type FinderDeps struct {
	Search *SearchExecutor
	Repos  driven.RepositoryAPI
	Forks  driven.ForkLister
	Cloner driven.Cloner
	Labels driven.LabelParser
	Gate   *RateLimitGate
}

// NewActionFinder creates a finder.
func NewActionFinder(settings domain.Settings, deps FinderDeps, opts ...Option) *ActionFinder {
	o := newOptions(opts)
	r := &retrier{gate: deps.Gate, opts: o}
	return &ActionFinder{
		settings: settings,
		search:   deps.Search,
		forks:    deps.Forks,
		cloner:   deps.Cloner,
		labels:   deps.Labels,
		retrier:  r,
		details:  newRepositoryCache(deps.Repos, r),
		opts:     o,
	}
}

// FindAll returns code search candidates followed by fork candidates.
func (f *ActionFinder) FindAll(ctx context.Context) ([]domain.Candidate, error) {
	ctx, span := tracer.Start(ctx, "find_actions")
	defer span.End()

	logger.Section("Code search")
	fromSearch, err := f.findByCodeSearch(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Section("Forked repositories")
	fromForks, err := f.findInForks(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Info("Found %d actions through code search and %d in forks", len(fromSearch), len(fromForks))
	span.SetAttributes(
		attribute.Int("candidates.code_search", len(fromSearch)),
		attribute.Int("candidates.forks", len(fromForks)),
	)
	return append(fromSearch, fromForks...), nil
}

func (f *ActionFinder) findByCodeSearch(ctx context.Context) ([]domain.Candidate, error) {
	query := domain.NewQueryBuilder().
		Filename("action").
		Language("YAML").
		Scope(f.settings.User, f.settings.Organization).
		Build()

	items, err := f.search.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	var candidates []domain.Candidate
	for _, item := range items {
		repo := item.Repository
		if !domain.IsActionFileName(path.Base(item.Path)) {
			continue
		}
		if domain.IsInTestFolder(item.Path) {
			logger.Debug("Skipping %s in %s: test folder", item.Path, repo.FullName())
			continue
		}
		if f.settings.IsExcluded(repo.Owner, repo.Name) {
			logger.Debug("Skipping %s: repository is excluded", repo.FullName())
			continue
		}

		detail, err := f.details.get(ctx, repo)
		if err != nil {
			return nil, err
		}

		candidates = append(candidates, domain.Candidate{
			Origin:     domain.OriginCodeSearch,
			Owner:      detail.Owner,
			Repo:       detail.Name,
			Path:       item.Path,
			IsFork:     detail.Fork,
			IsArchived: detail.Archived,
			Visibility: detail.Visibility,
			ForkedFrom: detail.Parent,
		})
		f.opts.recorder.Candidate(domain.OriginCodeSearch)
	}
	return candidates, nil
}

func (f *ActionFinder) findInForks(ctx context.Context) ([]domain.Candidate, error) {
	forks, err := f.listForks(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("Found %d forked repositories to scan", len(forks))

	var candidates []domain.Candidate
	for _, fork := range forks {
		if f.settings.IsExcluded(fork.Owner, fork.Name) {
			logger.Debug("Skipping %s: repository is excluded", fork.FullName())
			continue
		}
		found, err := f.scanFork(ctx, fork)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, found...)
	}
	return candidates, nil
}

// listForks uses GraphQL when configured, otherwise a fork:true
// repository search filtered to repositories flagged as forks.
func (f *ActionFinder) listForks(ctx context.Context) ([]domain.RepositoryRef, error) {
	if f.settings.ForkDiscovery == domain.ForkDiscoveryGraphQL && f.forks != nil {
		var forks []domain.RepositoryRef
		for _, owner := range f.owners() {
			found, err := retryTransient(ctx, f.retrier, domain.ResourceGraphQL, "list forks",
				func(ctx context.Context) ([]domain.RepositoryRef, error) {
					return f.forks.ListForks(ctx, owner)
				})
			if err != nil {
				return nil, fmt.Errorf("list forks of %s: %w", owner, err)
			}
			forks = append(forks, found...)
		}
		return forks, nil
	}

	query := domain.NewQueryBuilder().
		Fork("true").
		Scope(f.settings.User, f.settings.Organization).
		Build()

	items, err := f.search.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	var forks []domain.RepositoryRef
	for _, item := range items {
		if item.Repository.Fork {
			forks = append(forks, item.Repository)
		}
	}
	return forks, nil
}

func (f *ActionFinder) owners() []string {
	var owners []string
	if f.settings.Organization != "" {
		owners = append(owners, f.settings.Organization)
	}
	if f.settings.User != "" {
		owners = append(owners, f.settings.User)
	}
	return owners
}

// scanFork clones a fork and turns its action files and labelled
// Dockerfiles into candidates. Clone and scan failures skip the fork.
func (f *ActionFinder) scanFork(ctx context.Context, fork domain.RepositoryRef) ([]domain.Candidate, error) {
	ctx, span := tracer.Start(ctx, "scan_fork",
		trace.WithAttributes(attribute.String("repository", fork.FullName())),
	)
	defer span.End()

	detail := &fork
	if fork.Parent == "" || fork.CloneURL == "" {
		var err error
		detail, err = f.details.get(ctx, fork)
		if err != nil {
			return nil, err
		}
	}

	dir := filepath.Join(f.settings.WorkDir, cloneDirName)
	if err := f.cloner.Clone(ctx, detail.CloneURL, dir); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("Could not clone %s, skipping: %v", fork.FullName(), err)
		f.opts.recorder.CloneFailure()
		span.RecordError(err)
		return nil, nil
	}

	files, err := f.cloner.FindActionFiles(dir)
	if err != nil {
		logger.Warn("Could not scan %s, skipping: %v", fork.FullName(), err)
		return nil, nil
	}

	var candidates []domain.Candidate
	for _, file := range files {
		if domain.IsInTestFolder(file.Path) {
			continue
		}
		candidate := domain.Candidate{
			Owner:      detail.Owner,
			Repo:       detail.Name,
			Path:       file.Path,
			IsFork:     true,
			IsArchived: detail.Archived,
			Visibility: detail.Visibility,
			ForkedFrom: detail.Parent,
			Content:    file.Content,
		}

		name := path.Base(file.Path)
		switch {
		case domain.IsActionFileName(name):
			candidate.Origin = domain.OriginForkScan
		case domain.IsDockerfileName(name):
			labels := f.labels.Labels(file.Content)
			if !domain.HasActionLabels(labels) {
				continue
			}
			candidate.Origin = domain.OriginDockerLabel
			candidate.Labels = labels
		default:
			continue
		}

		logger.Debug("Found %s in fork %s", file.Path, fork.FullName())
		candidates = append(candidates, candidate)
		f.opts.recorder.Candidate(candidate.Origin)
	}
	return candidates, nil
}
