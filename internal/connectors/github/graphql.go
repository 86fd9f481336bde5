package github

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/core/ports/driven"
)

const (
	// DefaultHost is the GitHub.com host name.
	DefaultHost = "github.com"

	// ForkPageSize is the number of repositories per GraphQL page.
	ForkPageSize = 100

	// ForkPageDelay is the pause between GraphQL pages.
	ForkPageDelay = time.Second
)

const forksQuery = `query($owner: String!, $first: Int!, $cursor: String) {
  repositoryOwner(login: $owner) {
    repositories(first: $first, after: $cursor, isFork: true) {
      nodes {
        name
        owner { login }
        isArchived
        isDisabled
        visibility
        url
        parent { nameWithOwner }
      }
      pageInfo { hasNextPage endCursor }
    }
  }
}`

type repositoryNode struct {
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	IsArchived bool   `json:"isArchived"`
	IsDisabled bool   `json:"isDisabled"`
	Visibility string `json:"visibility"`
	URL        string `json:"url"`
	Parent     *struct {
		NameWithOwner string `json:"nameWithOwner"`
	} `json:"parent"`
}

func (n repositoryNode) ref() domain.RepositoryRef {
	ref := domain.RepositoryRef{
		Owner:      n.Owner.Login,
		Name:       n.Name,
		Fork:       true,
		Archived:   n.IsArchived,
		Visibility: domain.ParseVisibility(n.Visibility, false),
	}
	if n.URL != "" {
		ref.CloneURL = n.URL + ".git"
	}
	if n.Parent != nil {
		ref.Parent = n.Parent.NameWithOwner
	}
	return ref
}

type forksResponse struct {
	RepositoryOwner *struct {
		Repositories struct {
			Nodes    []repositoryNode `json:"nodes"`
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
		} `json:"repositories"`
	} `json:"repositoryOwner"`
}

// ForkLister enumerates forks through the GraphQL API, which has no
// search result window.
type ForkLister struct {
	client      *api.GraphQLClient
	rateLimiter *RateLimiter
	pageDelay   time.Duration
}

// Verify interface compliance.
var _ driven.ForkLister = (*ForkLister)(nil)

// NewForkLister creates a fork lister for token. A non-empty enterpriseURL
// selects the GraphQL endpoint of that host.
func NewForkLister(token, enterpriseURL string) (*ForkLister, error) {
	host, err := hostOf(enterpriseURL)
	if err != nil {
		return nil, err
	}
	return NewForkListerWithOptions(api.ClientOptions{
		AuthToken: token,
		Host:      host,
		Timeout:   DefaultTimeout,
	})
}

// NewForkListerWithOptions creates a fork lister from explicit client options.
func NewForkListerWithOptions(opts api.ClientOptions) (*ForkLister, error) {
	client, err := api.NewGraphQLClient(opts)
	if err != nil {
		return nil, fmt.Errorf("create graphql client: %w", err)
	}
	return &ForkLister{
		client:      client,
		rateLimiter: NewRateLimiter(),
		pageDelay:   ForkPageDelay,
	}, nil
}

// ListForks returns every usable fork owned by owner.
func (l *ForkLister) ListForks(ctx context.Context, owner string) ([]domain.RepositoryRef, error) {
	var forks []domain.RepositoryRef
	variables := map[string]interface{}{
		"owner":  owner,
		"first":  ForkPageSize,
		"cursor": nil,
	}

	for page := 0; ; page++ {
		if page > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(l.pageDelay):
			}
		}
		if err := l.rateLimiter.Wait(ctx, domain.ResourceGraphQL); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		var resp forksResponse
		if err := l.client.DoWithContext(ctx, forksQuery, variables, &resp); err != nil {
			return nil, classify("list forks", err)
		}
		if resp.RepositoryOwner == nil {
			return nil, &domain.APIError{
				Kind: domain.ErrorKindNotFound,
				Op:   "list forks",
				Err:  fmt.Errorf("owner %s not found", owner),
			}
		}

		repos := resp.RepositoryOwner.Repositories
		forks = append(forks, FilterForks(repos.Nodes)...)

		if !repos.PageInfo.HasNextPage || repos.PageInfo.EndCursor == "" {
			break
		}
		variables["cursor"] = repos.PageInfo.EndCursor
	}

	return forks, nil
}

// hostOf returns the host name of an enterprise URL, DefaultHost if empty.
func hostOf(enterpriseURL string) (string, error) {
	if enterpriseURL == "" {
		return DefaultHost, nil
	}
	parsed, err := url.Parse(enterpriseURL)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("%w: enterprise url %q", domain.ErrInvalidInput, enterpriseURL)
	}
	return parsed.Host, nil
}
