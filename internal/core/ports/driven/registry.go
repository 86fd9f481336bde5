package driven

import (
	"context"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
)

// NormaliserRegistry selects the appropriate normaliser for a candidate.
type NormaliserRegistry interface {
	// Normalise parses a candidate using the normaliser registered for its origin.
	Normalise(ctx context.Context, candidate *domain.Candidate) (*NormaliseResult, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)
}

// WorkflowParser reads reusable workflow definitions.
type WorkflowParser interface {
	// ParseWorkflow returns metadata and whether the document declares a
	// workflow_call trigger.
	ParseWorkflow(content []byte) (domain.ActionMetadata, bool, error)
}
