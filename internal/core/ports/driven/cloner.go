package driven

import (
	"context"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
)

// Cloner materialises repositories locally and scans them.
type Cloner interface {
	// Clone creates a working copy of cloneURL in dir, replacing anything
	// already there.
	Clone(ctx context.Context, cloneURL, dir string) error

	// FindActionFiles returns action definition files and Dockerfiles under
	// root with their contents.
	FindActionFiles(root string) ([]domain.LocalFile, error)
}

// LabelParser reads LABEL instructions from a Dockerfile.
type LabelParser interface {
	// Labels returns every declared label, later declarations winning.
	Labels(content []byte) map[string]string
}
