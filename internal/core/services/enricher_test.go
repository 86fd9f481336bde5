package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/normalisers"
)

type enricherFixture struct {
	settings domain.Settings
	repos    *mockRepositoryAPI
	content  *mockContentFetcher
}

func newEnricherFixture() *enricherFixture {
	return &enricherFixture{
		settings: domain.Settings{Token: "t", User: "mona"},
		repos:    newMockRepositoryAPI(),
		content:  &mockContentFetcher{bodies: map[string]string{}},
	}
}

func (f *enricherFixture) enricher() *Enricher {
	sleeper := &sleepRecorder{}
	opts := []Option{WithSleep(sleeper.sleep), WithClock(fixedClock)}
	return NewEnricher(f.settings, EnricherDeps{
		Repos:    f.repos,
		Content:  f.content,
		Registry: normalisers.DefaultRegistry(),
		Gate:     NewRateLimitGate(healthyLimits(), false, opts...),
	}, opts...)
}

func TestEnricher_CodeSearchCandidate(t *testing.T) {
	f := newEnricherFixture()
	url := "https://raw.example.com/mona/tools/main/action.yml?token=SECRET"
	f.repos.contents["mona/tools/action.yml"] = url
	f.content.bodies[url] = "name: 'test-name'\nauthor: 'test-author'\ndescription: 'testing'\nruns:\n  using: 'node20'\n"

	got := f.enricher().Enrich(context.Background(), domain.Candidate{
		Origin: domain.OriginCodeSearch,
		Owner:  "mona",
		Repo:   "tools",
		Path:   "action.yml",
	})

	assert.Equal(t, url, got.DownloadURL)
	assert.Equal(t, "testname", got.Metadata.Name)
	assert.Equal(t, "testauthor", got.Metadata.Author)
	assert.Equal(t, "testing", got.Metadata.Description)
	assert.Equal(t, "node20", got.Metadata.Using)
	assert.Empty(t, got.Readme)
}

func TestEnricher_RemoveToken(t *testing.T) {
	f := newEnricherFixture()
	f.settings.RemoveToken = true
	url := "https://raw.example.com/mona/tools/main/action.yml?token=SECRET"
	f.repos.contents["mona/tools/action.yml"] = url
	f.content.bodies[url] = "name: x\n"

	got := f.enricher().Enrich(context.Background(), domain.Candidate{
		Origin: domain.OriginCodeSearch, Owner: "mona", Repo: "tools", Path: "action.yml",
	})

	assert.Equal(t, "https://raw.example.com/mona/tools/main/action.yml", got.DownloadURL)
	assert.Equal(t, []string{url}, f.content.calls, "download uses the tokenised url")
}

func TestEnricher_FailuresKeepCandidate(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *enricherFixture)
	}{
		{"content not found", func(f *enricherFixture) {}},
		{"download fails", func(f *enricherFixture) {
			f.repos.contents["mona/tools/action.yml"] = "https://raw.example.com/missing"
		}},
		{"malformed yaml", func(f *enricherFixture) {
			f.repos.contents["mona/tools/action.yml"] = "https://raw.example.com/bad"
			f.content.bodies["https://raw.example.com/bad"] = "name: [oops\n"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEnricherFixture()
			tt.setup(f)

			got := f.enricher().Enrich(context.Background(), domain.Candidate{
				Origin: domain.OriginCodeSearch, Owner: "mona", Repo: "tools", Path: "action.yml",
			})

			assert.Equal(t, "tools", got.Repo)
			assert.Equal(t, domain.UndefinedMetadata(), got.Metadata)
		})
	}
}

func TestEnricher_WorkflowShapedAction(t *testing.T) {
	f := newEnricherFixture()
	f.repos.contents["mona/tools/action.yml"] = "https://raw.example.com/wf"
	f.content.bodies["https://raw.example.com/wf"] = "name: CI\non: push\n"

	got := f.enricher().Enrich(context.Background(), domain.Candidate{
		Origin: domain.OriginCodeSearch, Owner: "mona", Repo: "tools", Path: "action.yml",
	})

	assert.True(t, got.Metadata.IsWorkflow)
	assert.Equal(t, domain.Undefined, got.Metadata.Name)
}

func TestEnricher_ForkCandidateUsesScannedContent(t *testing.T) {
	f := newEnricherFixture()
	f.repos.contents["mona/checkout/action.yml"] = "https://raw.example.com/checkout"

	got := f.enricher().Enrich(context.Background(), domain.Candidate{
		Origin:  domain.OriginForkScan,
		Owner:   "mona",
		Repo:    "checkout",
		Path:    "action.yml",
		Content: []byte("name: Checkout\nruns:\n  using: node20\n"),
	})

	assert.Equal(t, "https://raw.example.com/checkout", got.DownloadURL)
	assert.Equal(t, "Checkout", got.Metadata.Name)
	assert.Empty(t, f.content.calls)
}

func TestEnricher_DockerCandidate(t *testing.T) {
	f := newEnricherFixture()

	got := f.enricher().Enrich(context.Background(), domain.Candidate{
		Origin: domain.OriginDockerLabel,
		Owner:  "mona",
		Repo:   "container",
		Path:   "Dockerfile",
		Labels: map[string]string{
			"com.github.actions.name":        "Container",
			"com.github.actions.description": "Runs in docker",
			"maintainer":                     "Mona",
		},
	})

	assert.Equal(t, "Container", got.Metadata.Name)
	assert.Equal(t, "Runs in docker", got.Metadata.Description)
	assert.Equal(t, "Mona", got.Metadata.Author)
	assert.Equal(t, "docker", got.Metadata.Using)
	assert.Empty(t, got.DownloadURL)
}

func TestEnricher_Readme(t *testing.T) {
	f := newEnricherFixture()
	f.settings.FetchReadme = true
	f.repos.readmes["mona/tools"] = "# Tools"
	e := f.enricher()

	withReadme := e.Enrich(context.Background(), domain.Candidate{
		Origin: domain.OriginForkScan, Owner: "mona", Repo: "tools", Path: "action.yml", Content: []byte("name: a\n"),
	})
	withoutReadme := e.Enrich(context.Background(), domain.Candidate{
		Origin: domain.OriginForkScan, Owner: "mona", Repo: "bare", Path: "action.yml", Content: []byte("name: b\n"),
	})

	assert.Equal(t, "# Tools", withReadme.Readme)
	assert.Empty(t, withoutReadme.Readme)
}
