package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/normalisers/workflow"
)

func newWorkflowFinderForTest(settings domain.Settings, search *mockSearchAPI, repos *mockRepositoryAPI, content *mockContentFetcher) *WorkflowFinder {
	sleeper := &sleepRecorder{}
	opts := []Option{WithSleep(sleeper.sleep), WithClock(fixedClock)}
	gate := NewRateLimitGate(healthyLimits(), false, opts...)
	return NewWorkflowFinder(settings, WorkflowDeps{
		Search:  NewSearchExecutor(search, gate, opts...),
		Repos:   repos,
		Content: content,
		Parser:  workflow.New(),
		Gate:    gate,
	}, opts...)
}

func TestWorkflowFinder_FindAll(t *testing.T) {
	search := staticSearch(map[domain.ResultKind][]domain.SearchItem{
		domain.ResultKindCode: {
			codeHit("octo", "ci", ".github/workflows/deploy.yml"),
			codeHit("octo", "ci", ".github/workflows/build.yml"),
			codeHit("octo", "secret", ".github/workflows/release.yml"),
			codeHit("octo", "ci", ".github/workflows/unreadable.yml"),
		},
	})
	repos := newMockRepositoryAPI()
	repos.addRepo(domain.RepositoryRef{Owner: "octo", Name: "ci", Visibility: domain.VisibilityPublic})
	repos.addRepo(domain.RepositoryRef{Owner: "octo", Name: "secret", Visibility: domain.VisibilityPrivate})
	repos.contents["octo/ci/.github/workflows/deploy.yml"] = "https://raw.example.com/deploy?token=1"
	repos.contents["octo/ci/.github/workflows/build.yml"] = "https://raw.example.com/build"
	repos.contents["octo/secret/.github/workflows/release.yml"] = "https://raw.example.com/release"
	content := &mockContentFetcher{bodies: map[string]string{
		"https://raw.example.com/deploy?token=1": "name: Deploy\non:\n  workflow_call: {}\n",
		"https://raw.example.com/build":          "name: Build\non: push\n",
		"https://raw.example.com/release":        "name: Release\non: workflow_call\n",
	}}
	settings := domain.Settings{Organization: "octo", RemoveToken: true}

	workflows, err := newWorkflowFinderForTest(settings, search, repos, content).FindAll(context.Background())
	require.NoError(t, err)

	require.Len(t, workflows, 2)
	assert.Equal(t, "Deploy", workflows[0].Name)
	assert.Equal(t, "https://raw.example.com/deploy", workflows[0].DownloadURL)
	assert.Equal(t, domain.VisibilityPublic, workflows[0].Visibility)
	assert.Equal(t, ".github/workflows/unreadable.yml", workflows[1].Path)
	assert.Equal(t, domain.Undefined, workflows[1].Name)

	require.NotEmpty(t, search.calls)
	assert.Equal(t, domain.SearchQuery("workflow_call path:.github/workflows language:YAML org:octo"), search.calls[0].query)
}

func TestWorkflowFinder_IncludePrivate(t *testing.T) {
	search := staticSearch(map[domain.ResultKind][]domain.SearchItem{
		domain.ResultKindCode: {codeHit("octo", "secret", ".github/workflows/release.yml")},
	})
	repos := newMockRepositoryAPI()
	repos.addRepo(domain.RepositoryRef{Owner: "octo", Name: "secret", Visibility: domain.VisibilityInternal})
	repos.contents["octo/secret/.github/workflows/release.yml"] = "https://raw.example.com/release"
	content := &mockContentFetcher{bodies: map[string]string{
		"https://raw.example.com/release": "name: Release\non: [workflow_call]\n",
	}}
	settings := domain.Settings{Organization: "octo", IncludePrivateWorkflows: true}

	workflows, err := newWorkflowFinderForTest(settings, search, repos, content).FindAll(context.Background())
	require.NoError(t, err)

	require.Len(t, workflows, 1)
	assert.Equal(t, domain.VisibilityInternal, workflows[0].Visibility)
}
