package domain

import "strings"

// Undefined is the value every metadata field holds when the source
// document does not declare it.
const Undefined = "Undefined"

// Origin identifies which discovery strategy produced a Candidate.
type Origin string

// Available origins.
const (
	// OriginCodeSearch is an action file found through code search.
	OriginCodeSearch Origin = "code_search"

	// OriginForkScan is an action file found in a cloned fork.
	OriginForkScan Origin = "fork_scan"

	// OriginDockerLabel is a Dockerfile carrying com.github.actions labels.
	OriginDockerLabel Origin = "docker_label"
)

// String returns the string representation.
func (o Origin) String() string {
	return string(o)
}

// ActionMetadata is the descriptive data parsed out of a definition file.
type ActionMetadata struct {
	Name        string
	Author      string
	Description string
	Using       string
	IsWorkflow  bool
}

// UndefinedMetadata returns metadata with every text field set to Undefined.
func UndefinedMetadata() ActionMetadata {
	return ActionMetadata{
		Name:        Undefined,
		Author:      Undefined,
		Description: Undefined,
		Using:       Undefined,
	}
}

// Candidate is a discovered artifact location prior to enrichment.
// Only the Enricher sets DownloadURL, Content, Metadata and Readme after
// creation.
type Candidate struct {
	Origin     Origin
	Owner      string
	Repo       string
	Path       string
	IsFork     bool
	IsArchived bool
	Visibility Visibility

	// ForkedFrom is the parent full name for forks, empty otherwise.
	ForkedFrom string

	DownloadURL string

	// Content is the raw file body. Fork and docker candidates carry it from
	// the local scan; code search candidates get it during enrichment.
	Content []byte

	// Labels holds the com.github.actions.* labels of a docker candidate.
	Labels map[string]string

	Metadata ActionMetadata
	Readme   string
}

// RepoFullName returns owner/repo.
func (c Candidate) RepoFullName() string {
	return c.Owner + "/" + c.Repo
}

// Key identifies the file a candidate points at.
func (c Candidate) Key() string {
	return c.RepoFullName() + ":" + c.Path
}

// ActionLabelPrefix marks Dockerfile labels that describe an action.
const ActionLabelPrefix = "com.github.actions."

// HasActionLabels reports whether any label uses ActionLabelPrefix.
func HasActionLabels(labels map[string]string) bool {
	for key := range labels {
		if strings.HasPrefix(key, ActionLabelPrefix) {
			return true
		}
	}
	return false
}
