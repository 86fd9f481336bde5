package main

import (
	"context"
	"fmt"

	"github.com/devops-actions/load-available-actions/internal/adapters/driven/git"
	"github.com/devops-actions/load-available-actions/internal/connectors/github"
	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/core/ports/driven"
	"github.com/devops-actions/load-available-actions/internal/core/ports/driving"
	"github.com/devops-actions/load-available-actions/internal/core/services"
	"github.com/devops-actions/load-available-actions/internal/normalisers"
	"github.com/devops-actions/load-available-actions/internal/normalisers/dockerfile"
	"github.com/devops-actions/load-available-actions/internal/normalisers/workflow"
)

// newDiscovery wires the GitHub adapters into the discovery pipeline.
func newDiscovery(ctx context.Context, settings domain.Settings, recorder driven.Recorder) (driving.Discovery, error) {
	client, err := github.NewClient(ctx, settings.Token, settings.EnterpriseURL)
	if err != nil {
		return nil, fmt.Errorf("create github client: %w", err)
	}

	var forks driven.ForkLister
	if settings.ForkDiscovery == domain.ForkDiscoveryGraphQL {
		lister, err := github.NewForkLister(settings.Token, settings.EnterpriseURL)
		if err != nil {
			return nil, fmt.Errorf("create fork lister: %w", err)
		}
		forks = lister
	}

	opts := []services.Option{services.WithRecorder(recorder)}
	gate := services.NewRateLimitGate(client, settings.IsEnterprise(), opts...)
	search := services.NewSearchExecutor(client, gate, opts...)

	actions := services.NewActionFinder(settings, services.FinderDeps{
		Search: search,
		Repos:  client,
		Forks:  forks,
		Cloner: git.NewCloner(settings.Token, git.DefaultTimeout),
		Labels: dockerfile.New(),
		Gate:   gate,
	}, opts...)

	var workflows *services.WorkflowFinder
	if settings.ScanWorkflows {
		workflows = services.NewWorkflowFinder(settings, services.WorkflowDeps{
			Search:  search,
			Repos:   client,
			Content: client,
			Parser:  workflow.New(),
			Gate:    gate,
		}, opts...)
	}

	enricher := services.NewEnricher(settings, services.EnricherDeps{
		Repos:    client,
		Content:  client,
		Registry: normalisers.DefaultRegistry(),
		Gate:     gate,
	}, opts...)

	return services.NewDiscovery(settings, services.DiscoveryDeps{
		Repos:     client,
		Actions:   actions,
		Workflows: workflows,
		Enricher:  enricher,
		Assembler: services.NewAssembler(settings),
	}, opts...), nil
}
