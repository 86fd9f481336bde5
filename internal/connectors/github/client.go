package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/core/ports/driven"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxDownloadSize caps a single raw file download.
	MaxDownloadSize = 10 << 20
)

// Client wraps the go-github client and implements the REST facing ports.
type Client struct {
	gh          *gh.Client
	http        *http.Client
	rateLimiter *RateLimiter
}

// Verify interface compliance.
var (
	_ driven.SearchAPI      = (*Client)(nil)
	_ driven.RateLimitAPI   = (*Client)(nil)
	_ driven.RepositoryAPI  = (*Client)(nil)
	_ driven.ContentFetcher = (*Client)(nil)
)

// NewClient creates a client authenticated with token. A non-empty
// enterpriseURL points the client at a GitHub Enterprise Server.
func NewClient(ctx context.Context, token, enterpriseURL string) (*Client, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout

	client := gh.NewClient(tc)
	if enterpriseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(enterpriseURL, enterpriseURL)
		if err != nil {
			return nil, fmt.Errorf("configure enterprise url: %w", err)
		}
	}

	return &Client{
		gh:          client,
		http:        tc,
		rateLimiter: NewRateLimiter(),
	}, nil
}

// NewClientWithHTTPClient creates a client that sends requests through
// httpClient to baseURL as is.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		parsed, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		client.BaseURL = parsed
	}
	return &Client{
		gh:          client,
		http:        httpClient,
		rateLimiter: NewRateLimiter(),
	}, nil
}

// SearchPage fetches one page of code or repository search results.
func (c *Client) SearchPage(
	ctx context.Context,
	query domain.SearchQuery,
	kind domain.ResultKind,
	page, perPage int,
) (*domain.SearchPage, error) {
	if err := c.rateLimiter.Wait(ctx, domain.ResourceSearch); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	opts := &gh.SearchOptions{
		ListOptions: gh.ListOptions{Page: page, PerPage: perPage},
	}
	result := &domain.SearchPage{PageNumber: page}

	switch kind {
	case domain.ResultKindRepository:
		repos, _, err := c.gh.Search.Repositories(ctx, query.String(), opts)
		if err != nil {
			return nil, classify("search repositories", err)
		}
		result.TotalCount = repos.GetTotal()
		result.Items = make([]domain.SearchItem, 0, len(repos.Repositories))
		for _, r := range repos.Repositories {
			result.Items = append(result.Items, domain.SearchItem{Repository: repositoryRef(r)})
		}
	default:
		code, _, err := c.gh.Search.Code(ctx, query.String(), opts)
		if err != nil {
			return nil, classify("search code", err)
		}
		result.TotalCount = code.GetTotal()
		result.Items = make([]domain.SearchItem, 0, len(code.CodeResults))
		for _, r := range code.CodeResults {
			result.Items = append(result.Items, domain.SearchItem{
				Name:       r.GetName(),
				Path:       r.GetPath(),
				Repository: repositoryRef(r.Repository),
			})
		}
	}

	return result, nil
}

// RateLimit reads the current quota of class.
func (c *Client) RateLimit(ctx context.Context, class domain.ResourceClass) (*domain.RateLimitSnapshot, error) {
	limits, _, err := c.gh.RateLimit.Get(ctx)
	if err != nil {
		return nil, classify("get rate limit", err)
	}

	var rate *gh.Rate
	switch class {
	case domain.ResourceSearch:
		rate = limits.GetSearch()
	case domain.ResourceGraphQL:
		rate = limits.GetGraphQL()
	default:
		rate = limits.GetCore()
	}
	if rate == nil {
		return nil, &domain.APIError{
			Kind: domain.ErrorKindNotFound,
			Op:   "get rate limit",
			Err:  fmt.Errorf("no %s quota reported", class),
		}
	}

	return &domain.RateLimitSnapshot{
		Resource:  class,
		Limit:     rate.Limit,
		Remaining: rate.Remaining,
		ResetAt:   rate.Reset.Time,
	}, nil
}

// AuthenticatedUser returns the login of the token owner.
func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	if err := c.rateLimiter.Wait(ctx, domain.ResourceCore); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	user, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		if IsUnauthorized(err) {
			return "", errors.Join(domain.ErrAuthInvalid, classify("get authenticated user", err))
		}
		return "", classify("get authenticated user", err)
	}
	return user.GetLogin(), nil
}

// GetRepository fetches a single repository.
func (c *Client) GetRepository(ctx context.Context, owner, name string) (*domain.RepositoryRef, error) {
	if err := c.rateLimiter.Wait(ctx, domain.ResourceCore); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	repo, _, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, classify("get repository", err)
	}
	ref := repositoryRef(repo)
	return &ref, nil
}

// GetContent returns the metadata of a single file.
func (c *Client) GetContent(ctx context.Context, owner, name, path string) (*domain.FileInfo, error) {
	if err := c.rateLimiter.Wait(ctx, domain.ResourceCore); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	file, _, _, err := c.gh.Repositories.GetContents(ctx, owner, name, path, nil)
	if err != nil {
		return nil, classify("get content", err)
	}
	if file == nil {
		return nil, &domain.APIError{
			Kind: domain.ErrorKindNotFound,
			Op:   "get content",
			Err:  fmt.Errorf("%s is a directory", path),
		}
	}

	return &domain.FileInfo{
		Path:        file.GetPath(),
		DownloadURL: file.GetDownloadURL(),
	}, nil
}

// GetReadme returns the decoded README of the default branch.
func (c *Client) GetReadme(ctx context.Context, owner, name string) (string, error) {
	if err := c.rateLimiter.Wait(ctx, domain.ResourceCore); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	readme, _, err := c.gh.Repositories.GetReadme(ctx, owner, name, nil)
	if err != nil {
		return "", classify("get readme", err)
	}

	content, err := readme.GetContent()
	if err != nil {
		return "", fmt.Errorf("decode readme: %w", err)
	}
	return content, nil
}

// Download fetches a raw file body.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx, domain.ResourceCore); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = domain.StripQuery(urlErr.URL)
		}
		return nil, classify("download", err)
	}
	defer resp.Body.Close()

	if err := CheckResponse("download", resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadSize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
