// Package dockerfile extracts action metadata from Dockerfile LABEL
// instructions using the com.github.actions.* convention.
package dockerfile

import (
	"bufio"
	"bytes"
	"context"
	"strings"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/core/ports/driven"
	"github.com/devops-actions/load-available-actions/internal/normalisers/sanitize"
)

// Ensure Normaliser implements the interfaces.
var (
	_ driven.Normaliser  = (*Normaliser)(nil)
	_ driven.LabelParser = (*Normaliser)(nil)
)

// Label keys.
const (
	LabelName        = domain.ActionLabelPrefix + "name"
	LabelDescription = domain.ActionLabelPrefix + "description"
	LabelMaintainer  = "maintainer"
	LabelOCIAuthors  = "org.opencontainers.image.authors"
)

// Using is the runtime reported for Dockerfile based actions.
const Using = "docker"

// Normaliser handles Dockerfile candidates.
type Normaliser struct{}

// New creates a new Dockerfile normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedOrigins returns the candidate origins this normaliser handles.
func (n *Normaliser) SupportedOrigins() []domain.Origin {
	return []domain.Origin{domain.OriginDockerLabel}
}

// Normalise builds metadata from the candidate's labels, parsing its
// content when the labels were not captured during the scan.
func (n *Normaliser) Normalise(_ context.Context, candidate *domain.Candidate) (*driven.NormaliseResult, error) {
	if candidate == nil {
		return nil, domain.ErrInvalidInput
	}
	labels := candidate.Labels
	if labels == nil {
		labels = Labels(candidate.Content)
	}
	return &driven.NormaliseResult{Metadata: Metadata(labels)}, nil
}

// Labels parses the LABEL instructions of a Dockerfile.
func (n *Normaliser) Labels(content []byte) map[string]string {
	return Labels(content)
}

// Metadata maps labels onto action metadata.
func Metadata(labels map[string]string) domain.ActionMetadata {
	meta := domain.UndefinedMetadata()
	meta.Using = Using
	meta.Name = sanitize.Field(labels[LabelName])
	meta.Description = sanitize.Field(labels[LabelDescription])
	if author := labels[LabelMaintainer]; author != "" {
		meta.Author = sanitize.Field(author)
	} else {
		meta.Author = sanitize.Field(labels[LabelOCIAuthors])
	}
	return meta
}

// Labels returns every LABEL key/value pair declared in a Dockerfile.
// Later declarations override earlier ones.
func Labels(content []byte) map[string]string {
	labels := make(map[string]string)
	for _, instruction := range instructions(content) {
		keyword, args, _ := strings.Cut(instruction, " ")
		if !strings.EqualFold(keyword, "LABEL") {
			continue
		}
		for key, value := range parseLabelArgs(args) {
			labels[key] = value
		}
	}
	return labels
}

// instructions joins continuation lines and drops comments and blanks.
func instructions(content []byte) []string {
	var out []string
	var current strings.Builder

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasSuffix(line, "\\") {
			current.WriteString(strings.TrimSuffix(line, "\\"))
			current.WriteByte(' ')
			continue
		}
		current.WriteString(line)
		out = append(out, current.String())
		current.Reset()
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}

// parseLabelArgs handles both "LABEL k=v k2="v 2"" and the legacy
// "LABEL key some value" form.
func parseLabelArgs(args string) map[string]string {
	args = strings.TrimSpace(args)
	labels := make(map[string]string)

	firstSpace := strings.IndexAny(args, " \t")
	firstEquals := strings.IndexByte(args, '=')
	if firstEquals < 0 || (firstSpace >= 0 && firstSpace < firstEquals) {
		key, value, _ := strings.Cut(args, " ")
		if key != "" {
			labels[unquote(key)] = unquote(strings.TrimSpace(value))
		}
		return labels
	}

	for args != "" {
		key, rest, ok := strings.Cut(args, "=")
		if !ok {
			break
		}
		value, remaining := readValue(rest)
		labels[unquote(strings.TrimSpace(key))] = value
		args = strings.TrimSpace(remaining)
	}
	return labels
}

// readValue reads one possibly quoted value and returns the unread rest.
func readValue(s string) (string, string) {
	if s == "" {
		return "", ""
	}
	quote := s[0]
	if quote != '"' && quote != '\'' {
		end := strings.IndexAny(s, " \t")
		if end < 0 {
			return s, ""
		}
		return s[:end], s[end:]
	}

	var b strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		if c == '\\' && quote == '"' && i+1 < len(s) {
			i++
			b.WriteByte(s[i])
			continue
		}
		if c == quote {
			return b.String(), s[i+1:]
		}
		b.WriteByte(c)
	}
	return b.String(), ""
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
