package normalisers

import (
	"context"
	"fmt"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/core/ports/driven"
	"github.com/devops-actions/load-available-actions/internal/normalisers/action"
	"github.com/devops-actions/load-available-actions/internal/normalisers/dockerfile"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry maps candidate origins to their normalisers.
type Registry struct {
	byOrigin map[domain.Origin]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byOrigin: make(map[domain.Origin]driven.Normaliser),
	}
}

// DefaultRegistry returns a registry with the action and Dockerfile
// normalisers registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(action.New())
	r.Register(dockerfile.New())
	return r
}

// Register adds a normaliser for every origin it supports.
// A later registration for the same origin replaces the earlier one.
func (r *Registry) Register(normaliser driven.Normaliser) {
	for _, origin := range normaliser.SupportedOrigins() {
		r.byOrigin[origin] = normaliser
	}
}

// Normalise dispatches the candidate to the normaliser for its origin.
func (r *Registry) Normalise(ctx context.Context, candidate *domain.Candidate) (*driven.NormaliseResult, error) {
	if candidate == nil {
		return nil, domain.ErrInvalidInput
	}
	normaliser, ok := r.byOrigin[candidate.Origin]
	if !ok {
		return &driven.NormaliseResult{Metadata: domain.UndefinedMetadata()},
			fmt.Errorf("no normaliser for origin %q", candidate.Origin)
	}
	return normaliser.Normalise(ctx, candidate)
}
