package github

import (
	gh "github.com/google/go-github/v68/github"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
)

// repositoryRef maps a REST repository to the domain reference.
func repositoryRef(r *gh.Repository) domain.RepositoryRef {
	if r == nil {
		return domain.RepositoryRef{}
	}
	ref := domain.RepositoryRef{
		Owner:         r.GetOwner().GetLogin(),
		Name:          r.GetName(),
		Fork:          r.GetFork(),
		Archived:      r.GetArchived(),
		Visibility:    domain.ParseVisibility(r.GetVisibility(), r.GetPrivate()),
		CloneURL:      r.GetCloneURL(),
		DefaultBranch: r.GetDefaultBranch(),
	}
	if r.Parent != nil {
		ref.Parent = r.GetParent().GetFullName()
	}
	return ref
}

// FilterForks keeps the usable forks of a GraphQL listing.
// Disabled repositories cannot be cloned and are dropped.
func FilterForks(nodes []repositoryNode) []domain.RepositoryRef {
	filtered := make([]domain.RepositoryRef, 0, len(nodes))
	for _, n := range nodes {
		if n.IsDisabled {
			continue
		}
		filtered = append(filtered, n.ref())
	}
	return filtered
}
