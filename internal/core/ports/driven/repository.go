package driven

import (
	"context"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
)

// RepositoryAPI provides repository level lookups.
type RepositoryAPI interface {
	// AuthenticatedUser returns the login of the credential's owner.
	AuthenticatedUser(ctx context.Context) (string, error)

	// GetRepository returns the detail record for owner/name.
	GetRepository(ctx context.Context, owner, name string) (*domain.RepositoryRef, error)

	// GetContent returns file metadata including the download URL.
	// A missing file is an ErrorKindNotFound error.
	GetContent(ctx context.Context, owner, name, path string) (*domain.FileInfo, error)

	// GetReadme returns the decoded README of the default branch.
	GetReadme(ctx context.Context, owner, name string) (string, error)
}

// ContentFetcher downloads raw file bodies.
type ContentFetcher interface {
	// Download returns the body served at url.
	Download(ctx context.Context, url string) ([]byte, error)
}

// ForkLister enumerates forked repositories of an owner without the
// search window ceiling.
type ForkLister interface {
	// ListForks returns every fork owned by owner.
	ListForks(ctx context.Context, owner string) ([]domain.RepositoryRef, error)
}
