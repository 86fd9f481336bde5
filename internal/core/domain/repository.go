package domain

import "strings"

// Visibility is the access level of a repository.
type Visibility string

// Available visibilities.
const (
	VisibilityPublic   Visibility = "public"
	VisibilityPrivate  Visibility = "private"
	VisibilityInternal Visibility = "internal"
)

// ParseVisibility normalises API spellings ("PUBLIC", "Private") and falls
// back to private for a flagged but unnamed private repository.
func ParseVisibility(s string, private bool) Visibility {
	switch Visibility(strings.ToLower(strings.TrimSpace(s))) {
	case VisibilityPublic:
		return VisibilityPublic
	case VisibilityPrivate:
		return VisibilityPrivate
	case VisibilityInternal:
		return VisibilityInternal
	}
	if private {
		return VisibilityPrivate
	}
	return VisibilityPublic
}

// RepositoryRef is the repository information the pipeline needs.
// Search results only carry a subset; a detail lookup fills the rest.
type RepositoryRef struct {
	Owner         string
	Name          string
	Fork          bool
	Archived      bool
	Visibility    Visibility
	Parent        string // owner/name of the fork parent, empty if not a fork
	CloneURL      string
	DefaultBranch string
}

// FullName returns owner/name.
func (r RepositoryRef) FullName() string {
	return r.Owner + "/" + r.Name
}

// SearchItem is one raw search hit. Repository search hits leave Name and
// Path empty.
type SearchItem struct {
	Name       string
	Path       string
	Repository RepositoryRef
}

// SearchPage is one page of search results.
type SearchPage struct {
	Items      []SearchItem
	TotalCount int
	PageNumber int
}

// FileInfo is the content API metadata for a single file.
type FileInfo struct {
	Path        string
	DownloadURL string
}

// LocalFile is a file found while scanning a local working copy.
type LocalFile struct {
	// Path is relative to the working copy root, slash separated.
	Path    string
	Content []byte
}
