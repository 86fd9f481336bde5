package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
)

type finderFixture struct {
	settings domain.Settings
	search   *mockSearchAPI
	repos    *mockRepositoryAPI
	cloner   *mockCloner
	forks    *mockForkLister
	recorder *mockRecorder
}

func newFinderFixture() *finderFixture {
	return &finderFixture{
		settings: domain.Settings{Token: "t", Organization: "octo", WorkDir: "/work", ForkDiscovery: domain.ForkDiscoverySearch},
		search:   staticSearch(nil),
		repos:    newMockRepositoryAPI(),
		cloner:   &mockCloner{files: map[string][]domain.LocalFile{}, fail: map[string]bool{}},
		forks:    &mockForkLister{forks: map[string][]domain.RepositoryRef{}},
		recorder: newMockRecorder(),
	}
}

func (f *finderFixture) finder() *ActionFinder {
	sleeper := &sleepRecorder{}
	opts := []Option{WithSleep(sleeper.sleep), WithClock(fixedClock), WithRecorder(f.recorder)}
	gate := NewRateLimitGate(healthyLimits(), false, opts...)
	return NewActionFinder(f.settings, FinderDeps{
		Search: NewSearchExecutor(f.search, gate, opts...),
		Repos:  f.repos,
		Forks:  f.forks,
		Cloner: f.cloner,
		Labels: mockLabelParser{},
		Gate:   gate,
	}, opts...)
}

func codeHit(owner, repo, path string) domain.SearchItem {
	name := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			name = path[i+1:]
			break
		}
	}
	return domain.SearchItem{Name: name, Path: path, Repository: domain.RepositoryRef{Owner: owner, Name: repo}}
}

func TestActionFinder_CodeSearch(t *testing.T) {
	f := newFinderFixture()
	f.settings.ExcludeRepos = domain.ParseExcludeRepos("octo/Legacy")
	f.search = staticSearch(map[domain.ResultKind][]domain.SearchItem{
		domain.ResultKindCode: {
			codeHit("octo", "tools", "action.yml"),
			codeHit("octo", "tools", "lint/action.yaml"),
			codeHit("octo", "tools", "__tests__/action.yml"),
			codeHit("octo", "tools", "docs/action.md"),
			codeHit("octo", "legacy", "action.yml"),
			codeHit("octo", "attestation", "attestation/action.yml"),
		},
	})
	f.repos.addRepo(domain.RepositoryRef{Owner: "octo", Name: "tools", Visibility: domain.VisibilityInternal, Archived: true})
	f.repos.addRepo(domain.RepositoryRef{Owner: "octo", Name: "attestation", Fork: true, Parent: "up/attestation", Visibility: domain.VisibilityPublic})

	candidates, err := f.finder().FindAll(context.Background())
	require.NoError(t, err)

	require.Len(t, candidates, 3)
	assert.Equal(t, "action.yml", candidates[0].Path)
	assert.Equal(t, "lint/action.yaml", candidates[1].Path)
	assert.Equal(t, "attestation/action.yml", candidates[2].Path)

	assert.Equal(t, domain.OriginCodeSearch, candidates[0].Origin)
	assert.True(t, candidates[0].IsArchived)
	assert.Equal(t, domain.VisibilityInternal, candidates[0].Visibility)
	assert.True(t, candidates[2].IsFork)
	assert.Equal(t, "up/attestation", candidates[2].ForkedFrom)

	assert.Equal(t, 2, f.repos.repoCalls, "repository detail is fetched once per repository")
	assert.Equal(t, 3, f.recorder.candidates[domain.OriginCodeSearch])

	require.NotEmpty(t, f.search.calls)
	assert.Equal(t, domain.SearchQuery("filename:action language:YAML org:octo"), f.search.calls[0].query)
	assert.Equal(t, domain.SearchQuery("fork:true org:octo"), f.search.calls[1].query)
}

func TestActionFinder_MissingRepositoryUsesSearchFields(t *testing.T) {
	f := newFinderFixture()
	f.search = staticSearch(map[domain.ResultKind][]domain.SearchItem{
		domain.ResultKindCode: {codeHit("octo", "gone", "action.yml")},
	})

	candidates, err := f.finder().FindAll(context.Background())
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, "gone", candidates[0].Repo)
}

func TestActionFinder_RepositoryErrorIsFatal(t *testing.T) {
	f := newFinderFixture()
	f.search = staticSearch(map[domain.ResultKind][]domain.SearchItem{
		domain.ResultKindCode: {codeHit("octo", "tools", "action.yml")},
	})
	cause := errors.New("401 Bad credentials")
	f.repos.repoErr = cause

	candidates, err := f.finder().FindAll(context.Background())

	assert.Nil(t, candidates)
	assert.ErrorIs(t, err, cause)
}

func TestActionFinder_Forks(t *testing.T) {
	f := newFinderFixture()
	f.search = staticSearch(map[domain.ResultKind][]domain.SearchItem{
		domain.ResultKindCode: {codeHit("octo", "tools", "action.yml")},
		domain.ResultKindRepository: {
			{Repository: domain.RepositoryRef{Owner: "octo", Name: "checkout", Fork: true}},
			{Repository: domain.RepositoryRef{Owner: "octo", Name: "not-a-fork"}},
			{Repository: domain.RepositoryRef{Owner: "octo", Name: "broken", Fork: true}},
			{Repository: domain.RepositoryRef{Owner: "octo", Name: "docker-thing", Fork: true}},
		},
	})
	f.repos.addRepo(domain.RepositoryRef{Owner: "octo", Name: "tools", Visibility: domain.VisibilityPublic})
	f.repos.addRepo(domain.RepositoryRef{Owner: "octo", Name: "checkout", Fork: true, Parent: "actions/checkout", CloneURL: "https://x/octo/checkout.git", Visibility: domain.VisibilityPublic})
	f.repos.addRepo(domain.RepositoryRef{Owner: "octo", Name: "broken", Fork: true, Parent: "up/broken", CloneURL: "https://x/octo/broken.git"})
	f.repos.addRepo(domain.RepositoryRef{Owner: "octo", Name: "docker-thing", Fork: true, Parent: "up/docker-thing", CloneURL: "https://x/octo/docker-thing.git"})

	f.cloner.fail["https://x/octo/broken.git"] = true
	f.cloner.files["https://x/octo/checkout.git"] = []domain.LocalFile{
		{Path: "action.yml", Content: []byte("name: Checkout\n")},
		{Path: "test/action.yml", Content: []byte("name: fixture\n")},
	}
	f.cloner.files["https://x/octo/docker-thing.git"] = []domain.LocalFile{
		{Path: "Dockerfile", Content: []byte("com.github.actions.name=Container\n")},
		{Path: "build/Dockerfile", Content: []byte("maintainer=someone\n")},
	}

	candidates, err := f.finder().FindAll(context.Background())
	require.NoError(t, err)

	require.Len(t, candidates, 3)
	assert.Equal(t, domain.OriginCodeSearch, candidates[0].Origin)

	fork := candidates[1]
	assert.Equal(t, domain.OriginForkScan, fork.Origin)
	assert.Equal(t, "checkout", fork.Repo)
	assert.Equal(t, "actions/checkout", fork.ForkedFrom)
	assert.True(t, fork.IsFork)
	assert.Equal(t, []byte("name: Checkout\n"), fork.Content)

	docker := candidates[2]
	assert.Equal(t, domain.OriginDockerLabel, docker.Origin)
	assert.Equal(t, "Dockerfile", docker.Path)
	assert.Equal(t, "Container", docker.Labels["com.github.actions.name"])

	assert.Equal(t, 1, f.recorder.cloneFailures)
	for _, dir := range f.cloner.dirs {
		assert.Equal(t, "/work/fork", dir)
	}
}

func TestActionFinder_GraphQLForks(t *testing.T) {
	f := newFinderFixture()
	f.settings.ForkDiscovery = domain.ForkDiscoveryGraphQL
	f.settings.User = "mona"
	f.forks.forks["octo"] = []domain.RepositoryRef{
		{Owner: "octo", Name: "setup", Fork: true, Parent: "actions/setup", CloneURL: "https://x/octo/setup.git"},
	}
	f.cloner.files["https://x/octo/setup.git"] = []domain.LocalFile{
		{Path: "action.yaml", Content: []byte("name: Setup\n")},
	}

	candidates, err := f.finder().FindAll(context.Background())
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, "actions/setup", candidates[0].ForkedFrom)
	assert.Equal(t, []string{"octo", "mona"}, f.forks.owners)
	assert.Zero(t, f.repos.repoCalls, "graphql results already carry parent and clone url")
	for _, call := range f.search.calls {
		assert.Equal(t, domain.ResultKindCode, call.kind)
	}
}

func TestActionFinder_ExcludedFork(t *testing.T) {
	f := newFinderFixture()
	f.settings.ExcludeRepos = []string{"octo/checkout"}
	f.search = staticSearch(map[domain.ResultKind][]domain.SearchItem{
		domain.ResultKindRepository: {
			{Repository: domain.RepositoryRef{Owner: "octo", Name: "checkout", Fork: true}},
		},
	})

	candidates, err := f.finder().FindAll(context.Background())
	require.NoError(t, err)

	assert.Empty(t, candidates)
	assert.Empty(t, f.cloner.dirs)
}

func TestActionFinder_ExcludedByRepositoryName(t *testing.T) {
	f := newFinderFixture()
	f.settings.ExcludeRepos = domain.ParseExcludeRepos("My-Repo\nlegacy-fork")
	f.search = staticSearch(map[domain.ResultKind][]domain.SearchItem{
		domain.ResultKindCode: {
			codeHit("octo", "my-repo", "action.yml"),
			codeHit("octo", "tools", "action.yml"),
		},
		domain.ResultKindRepository: {
			{Repository: domain.RepositoryRef{Owner: "octo", Name: "Legacy-Fork", Fork: true}},
		},
	})
	f.repos.addRepo(domain.RepositoryRef{Owner: "octo", Name: "tools", Visibility: domain.VisibilityPublic})

	candidates, err := f.finder().FindAll(context.Background())
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, "tools", candidates[0].Repo)
	assert.Empty(t, f.cloner.dirs)
}
