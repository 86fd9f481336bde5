package driven

import (
	"context"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
)

// Normaliser extracts metadata from a candidate's definition file.
// Each normaliser handles the candidates of specific origins.
type Normaliser interface {
	// SupportedOrigins returns the candidate origins this normaliser handles.
	SupportedOrigins() []domain.Origin

	// Normalise parses the candidate's content into metadata.
	// Unparseable content returns an error alongside sentinel metadata.
	Normalise(ctx context.Context, candidate *domain.Candidate) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
type NormaliseResult struct {
	// Metadata holds sanitised fields, Undefined where absent.
	Metadata domain.ActionMetadata
}
