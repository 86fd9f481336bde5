// Package action parses action.yml definitions.
package action

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/core/ports/driven"
	"github.com/devops-actions/load-available-actions/internal/logger"
	"github.com/devops-actions/load-available-actions/internal/normalisers/sanitize"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ErrEmptyContent is returned when a candidate has no content to parse.
var ErrEmptyContent = errors.New("empty content")

// Normaliser handles action.yml and action.yaml files.
type Normaliser struct{}

// New creates a new action normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedOrigins returns the candidate origins this normaliser handles.
func (n *Normaliser) SupportedOrigins() []domain.Origin {
	return []domain.Origin{domain.OriginCodeSearch, domain.OriginForkScan}
}

// Normalise parses the candidate's YAML content.
func (n *Normaliser) Normalise(_ context.Context, candidate *domain.Candidate) (*driven.NormaliseResult, error) {
	if candidate == nil {
		return nil, domain.ErrInvalidInput
	}
	if len(candidate.Content) == 0 {
		return &driven.NormaliseResult{Metadata: domain.UndefinedMetadata()}, ErrEmptyContent
	}

	meta, err := Parse(candidate.Content)
	if meta.IsWorkflow {
		logger.Info("%s in %s was detected as workflow, not an action", candidate.Path, candidate.RepoFullName())
	}
	return &driven.NormaliseResult{Metadata: meta}, err
}

type document struct {
	Name        string `yaml:"name"`
	Author      string `yaml:"author"`
	Description string `yaml:"description"`
	Runs        struct {
		Using string `yaml:"using"`
	} `yaml:"runs"`
}

// Parse extracts metadata from an action definition. A document with a
// top-level "on" key is a workflow: every field is Undefined and
// IsWorkflow is set. Parse failures return Undefined metadata and the error.
func Parse(content []byte) (domain.ActionMetadata, error) {
	meta := domain.UndefinedMetadata()

	var root yaml.Node
	if err := yaml.Unmarshal(content, &root); err != nil {
		return meta, fmt.Errorf("parse yaml: %w", err)
	}
	mapping := TopLevelMapping(&root)
	if mapping == nil {
		return meta, fmt.Errorf("parse yaml: document is not a mapping")
	}
	if MappingValue(mapping, "on") != nil {
		meta.IsWorkflow = true
		return meta, nil
	}

	var doc document
	if err := mapping.Decode(&doc); err != nil {
		return meta, fmt.Errorf("decode action: %w", err)
	}

	meta.Name = sanitize.Field(doc.Name)
	meta.Author = sanitize.Field(doc.Author)
	meta.Description = sanitize.Field(doc.Description)
	meta.Using = sanitize.Field(doc.Runs.Using)
	return meta, nil
}

// TopLevelMapping returns the root mapping node of a parsed document.
func TopLevelMapping(root *yaml.Node) *yaml.Node {
	node := root
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil
		}
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil
	}
	return node
}

// MappingValue returns the value node stored under key, or nil.
func MappingValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}
