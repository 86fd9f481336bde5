package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
)

// --- Mock implementations ---

// sleepRecorder records every requested wait instead of sleeping.
type sleepRecorder struct {
	waits []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return ctx.Err()
}

func (s *sleepRecorder) count(d time.Duration) int {
	n := 0
	for _, w := range s.waits {
		if w == d {
			n++
		}
	}
	return n
}

var fixedNow = time.Date(2024, time.May, 4, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// mockRateLimitAPI implements driven.RateLimitAPI for testing.
type mockRateLimitAPI struct {
	snapshot domain.RateLimitSnapshot
	err      error
	calls    []domain.ResourceClass
}

func (m *mockRateLimitAPI) RateLimit(_ context.Context, class domain.ResourceClass) (*domain.RateLimitSnapshot, error) {
	m.calls = append(m.calls, class)
	if m.err != nil {
		return nil, m.err
	}
	snap := m.snapshot
	snap.Resource = class
	return &snap, nil
}

// healthyLimits never triggers a wait.
func healthyLimits() *mockRateLimitAPI {
	return &mockRateLimitAPI{snapshot: domain.RateLimitSnapshot{Limit: 30, Remaining: 30, ResetAt: fixedNow.Add(time.Minute)}}
}

type searchCall struct {
	query domain.SearchQuery
	kind  domain.ResultKind
	page  int
}

// mockSearchAPI implements driven.SearchAPI for testing.
type mockSearchAPI struct {
	handler func(call searchCall) (*domain.SearchPage, error)
	calls   []searchCall
}

func (m *mockSearchAPI) SearchPage(_ context.Context, query domain.SearchQuery, kind domain.ResultKind, page, _ int) (*domain.SearchPage, error) {
	call := searchCall{query: query, kind: kind, page: page}
	m.calls = append(m.calls, call)
	return m.handler(call)
}

// staticSearch answers every query from a fixed table keyed by result kind.
func staticSearch(byKind map[domain.ResultKind][]domain.SearchItem) *mockSearchAPI {
	return &mockSearchAPI{handler: func(call searchCall) (*domain.SearchPage, error) {
		items := byKind[call.kind]
		if call.page > 1 {
			return &domain.SearchPage{TotalCount: len(items), PageNumber: call.page}, nil
		}
		return &domain.SearchPage{Items: items, TotalCount: len(items), PageNumber: call.page}, nil
	}}
}

func apiError(kind domain.ErrorKind, msg string) error {
	return &domain.APIError{Kind: kind, Op: "test", Err: errors.New(msg)}
}

// mockRepositoryAPI implements driven.RepositoryAPI for testing.
type mockRepositoryAPI struct {
	login     string
	loginErr  error
	repos     map[string]*domain.RepositoryRef
	repoErr   error
	contents  map[string]string
	readmes   map[string]string
	repoCalls int
}

func newMockRepositoryAPI() *mockRepositoryAPI {
	return &mockRepositoryAPI{
		login:    "mona",
		repos:    make(map[string]*domain.RepositoryRef),
		contents: make(map[string]string),
		readmes:  make(map[string]string),
	}
}

func (m *mockRepositoryAPI) addRepo(ref domain.RepositoryRef) {
	m.repos[ref.FullName()] = &ref
}

func (m *mockRepositoryAPI) AuthenticatedUser(_ context.Context) (string, error) {
	return m.login, m.loginErr
}

func (m *mockRepositoryAPI) GetRepository(_ context.Context, owner, name string) (*domain.RepositoryRef, error) {
	m.repoCalls++
	if m.repoErr != nil {
		return nil, m.repoErr
	}
	ref, ok := m.repos[owner+"/"+name]
	if !ok {
		return nil, apiError(domain.ErrorKindNotFound, "Not Found")
	}
	return ref, nil
}

func (m *mockRepositoryAPI) GetContent(_ context.Context, owner, name, path string) (*domain.FileInfo, error) {
	url, ok := m.contents[owner+"/"+name+"/"+path]
	if !ok {
		return nil, apiError(domain.ErrorKindNotFound, "Not Found")
	}
	return &domain.FileInfo{Path: path, DownloadURL: url}, nil
}

func (m *mockRepositoryAPI) GetReadme(_ context.Context, owner, name string) (string, error) {
	readme, ok := m.readmes[owner+"/"+name]
	if !ok {
		return "", apiError(domain.ErrorKindNotFound, "Not Found")
	}
	return readme, nil
}

// mockContentFetcher implements driven.ContentFetcher for testing.
type mockContentFetcher struct {
	bodies map[string]string
	calls  []string
}

func (m *mockContentFetcher) Download(_ context.Context, url string) ([]byte, error) {
	m.calls = append(m.calls, url)
	body, ok := m.bodies[url]
	if !ok {
		return nil, fmt.Errorf("download %s: connection reset", url)
	}
	return []byte(body), nil
}

// mockCloner implements driven.Cloner for testing.
type mockCloner struct {
	files   map[string][]domain.LocalFile
	fail    map[string]bool
	current string
	dirs    []string
}

func (m *mockCloner) Clone(_ context.Context, cloneURL, dir string) error {
	m.dirs = append(m.dirs, dir)
	if m.fail[cloneURL] {
		return errors.New("clone failed: authentication required")
	}
	m.current = cloneURL
	return nil
}

func (m *mockCloner) FindActionFiles(_ string) ([]domain.LocalFile, error) {
	return m.files[m.current], nil
}

// mockForkLister implements driven.ForkLister for testing.
type mockForkLister struct {
	forks  map[string][]domain.RepositoryRef
	owners []string
}

func (m *mockForkLister) ListForks(_ context.Context, owner string) ([]domain.RepositoryRef, error) {
	m.owners = append(m.owners, owner)
	return m.forks[owner], nil
}

// mockRecorder implements driven.Recorder for testing.
type mockRecorder struct {
	pages         int
	retries       map[domain.ErrorKind]int
	waits         []time.Duration
	candidates    map[domain.Origin]int
	cloneFailures int
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{
		retries:    make(map[domain.ErrorKind]int),
		candidates: make(map[domain.Origin]int),
	}
}

func (m *mockRecorder) SearchPage(domain.ResultKind) { m.pages++ }

func (m *mockRecorder) Retry(kind domain.ErrorKind) { m.retries[kind]++ }

func (m *mockRecorder) RateLimitWait(_ domain.ResourceClass, d time.Duration) {
	m.waits = append(m.waits, d)
}

func (m *mockRecorder) Candidate(origin domain.Origin) { m.candidates[origin]++ }

func (m *mockRecorder) CloneFailure() { m.cloneFailures++ }

// mockLabelParser implements driven.LabelParser for testing.
// Each line of the form key=value becomes a label.
type mockLabelParser struct{}

func (mockLabelParser) Labels(content []byte) map[string]string {
	labels := make(map[string]string)
	for _, line := range strings.Split(string(content), "\n") {
		if key, value, ok := strings.Cut(line, "="); ok {
			labels[key] = value
		}
	}
	return labels
}
