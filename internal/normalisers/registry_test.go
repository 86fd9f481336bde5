package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/core/ports/driven"
)

type stubNormaliser struct {
	origins []domain.Origin
	name    string
}

func (s *stubNormaliser) SupportedOrigins() []domain.Origin { return s.origins }

func (s *stubNormaliser) Normalise(_ context.Context, _ *domain.Candidate) (*driven.NormaliseResult, error) {
	meta := domain.UndefinedMetadata()
	meta.Name = s.name
	return &driven.NormaliseResult{Metadata: meta}, nil
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	assert.Contains(t, r.byOrigin, domain.OriginCodeSearch)
	assert.Contains(t, r.byOrigin, domain.OriginForkScan)
	assert.Contains(t, r.byOrigin, domain.OriginDockerLabel)
}

func TestRegistry_Dispatch(t *testing.T) {
	r := DefaultRegistry()
	ctx := context.Background()

	action, err := r.Normalise(ctx, &domain.Candidate{
		Origin:  domain.OriginForkScan,
		Content: []byte("name: Fork action\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Fork action", action.Metadata.Name)

	docker, err := r.Normalise(ctx, &domain.Candidate{
		Origin:  domain.OriginDockerLabel,
		Content: []byte("LABEL com.github.actions.name=Container\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Container", docker.Metadata.Name)
	assert.Equal(t, "docker", docker.Metadata.Using)
}

func TestRegistry_Replace(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubNormaliser{origins: []domain.Origin{domain.OriginCodeSearch}, name: "first"})
	r.Register(&stubNormaliser{origins: []domain.Origin{domain.OriginCodeSearch}, name: "second"})

	result, err := r.Normalise(context.Background(), &domain.Candidate{Origin: domain.OriginCodeSearch})
	require.NoError(t, err)
	assert.Equal(t, "second", result.Metadata.Name)
}

func TestRegistry_UnknownOrigin(t *testing.T) {
	result, err := NewRegistry().Normalise(context.Background(), &domain.Candidate{Origin: domain.OriginDockerLabel})

	assert.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, domain.UndefinedMetadata(), result.Metadata)
}

func TestRegistry_NilCandidate(t *testing.T) {
	_, err := NewRegistry().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
