package services

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/core/ports/driven"
	"github.com/devops-actions/load-available-actions/internal/core/ports/driving"
	"github.com/devops-actions/load-available-actions/internal/logger"
)

// Ensure Discovery implements the interface.
var _ driving.Discovery = (*Discovery)(nil)

// Authentication failure messages.
const (
	msgTokenRequired = "Parameter 'PAT' is required to load all private and internal actions from the organization"
	msgScopeRequired = "Either parameter 'user' or 'organization' is required"
	msgAuthFailed    = "Could not authenticate with PAT. Please check that it is correct and that it has read access to the organization or user account."
)

// Discovery runs the complete pipeline: authenticate, find, dedupe,
// enrich and assemble.
type Discovery struct {
	settings  domain.Settings
	repos     driven.RepositoryAPI
	actions   *ActionFinder
	workflows *WorkflowFinder
	enricher  *Enricher
	assembler *Assembler
	opts      options
}

// DiscoveryDeps groups the components a Discovery drives.
// Workflows may be nil when workflow scanning is disabled.
type DiscoveryDeps struct {
	Repos     driven.RepositoryAPI
	Actions   *ActionFinder
	Workflows *WorkflowFinder
	Enricher  *Enricher
	Assembler *Assembler
}

// NewDiscovery creates the pipeline orchestrator.
func NewDiscovery(settings domain.Settings, deps DiscoveryDeps, opts ...Option) *Discovery {
	return &Discovery{
		settings:  settings,
		repos:     deps.Repos,
		actions:   deps.Actions,
		workflows: deps.Workflows,
		enricher:  deps.Enricher,
		assembler: deps.Assembler,
		opts:      newOptions(opts),
	}
}

// Run performs one discovery pass. Any unrecoverable error aborts the run
// without a report.
func (d *Discovery) Run(ctx context.Context) (*domain.Report, error) {
	ctx, span := tracer.Start(ctx, "discovery")
	defer span.End()

	report, err := d.run(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("report.actions", len(report.Actions)),
		attribute.Int("report.workflows", len(report.Workflows)),
	)
	return report, nil
}

func (d *Discovery) run(ctx context.Context) (*domain.Report, error) {
	if err := CheckScope(d.settings); err != nil {
		return nil, err
	}

	logger.Section("Authentication")
	login, err := d.repos.AuthenticatedUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", msgAuthFailed, errors.Join(domain.ErrAuthInvalid, err))
	}
	logger.Info("Hello, %s", login)

	candidates, err := d.actions.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	candidates = DedupeCandidates(candidates)

	logger.Section("Enrichment")
	enriched := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		enriched = append(enriched, d.enricher.Enrich(ctx, c))
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	var workflows []domain.WorkflowRecord
	if d.settings.ScanWorkflows && d.workflows != nil {
		logger.Section("Reusable workflows")
		workflows, err = d.workflows.FindAll(ctx)
		if err != nil {
			return nil, err
		}
	}

	report := d.assembler.Assemble(d.opts.now(), enriched, workflows)
	logger.Info("Found %d actions and %d reusable workflows", len(report.Actions), len(report.Workflows))
	return report, nil
}

// CheckScope verifies the credential and scope before any network call.
func CheckScope(settings domain.Settings) error {
	if settings.Token == "" {
		return fmt.Errorf("%w: %s", domain.ErrAuthRequired, msgTokenRequired)
	}
	if settings.User == "" && settings.Organization == "" {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, msgScopeRequired)
	}
	return nil
}
