// Package workflow parses reusable workflow definitions.
package workflow

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/core/ports/driven"
	"github.com/devops-actions/load-available-actions/internal/normalisers/action"
	"github.com/devops-actions/load-available-actions/internal/normalisers/sanitize"
)

// Ensure Parser implements the interface.
var _ driven.WorkflowParser = (*Parser)(nil)

// Trigger is the event that makes a workflow callable from other workflows.
const Trigger = "workflow_call"

// Parser reads .github/workflows documents.
type Parser struct{}

// New creates a new workflow parser.
func New() *Parser {
	return &Parser{}
}

// ParseWorkflow returns the workflow's name and description and whether its
// "on" block declares workflow_call.
func (p *Parser) ParseWorkflow(content []byte) (domain.ActionMetadata, bool, error) {
	meta := domain.UndefinedMetadata()
	meta.IsWorkflow = true

	var root yaml.Node
	if err := yaml.Unmarshal(content, &root); err != nil {
		return meta, false, fmt.Errorf("parse yaml: %w", err)
	}
	mapping := action.TopLevelMapping(&root)
	if mapping == nil {
		return meta, false, fmt.Errorf("parse yaml: document is not a mapping")
	}

	if name := action.MappingValue(mapping, "name"); name != nil && name.Kind == yaml.ScalarNode {
		meta.Name = sanitize.Field(name.Value)
	}
	if desc := action.MappingValue(mapping, "description"); desc != nil && desc.Kind == yaml.ScalarNode {
		meta.Description = sanitize.Field(desc.Value)
	}

	on := action.MappingValue(mapping, "on")
	return meta, on != nil && declares(on, Trigger), nil
}

// declares reports whether an "on" node names the event. The block can be
// a scalar, a sequence of events, or a mapping keyed by event.
func declares(on *yaml.Node, event string) bool {
	switch on.Kind {
	case yaml.ScalarNode:
		return on.Value == event
	case yaml.SequenceNode:
		for _, item := range on.Content {
			if item.Kind == yaml.ScalarNode && item.Value == event {
				return true
			}
		}
	case yaml.MappingNode:
		return action.MappingValue(on, event) != nil
	}
	return false
}
