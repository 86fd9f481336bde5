package domain

import "strings"

// ResultKind selects which search endpoint serves a query.
type ResultKind string

const (
	// ResultKindCode searches file contents and paths.
	ResultKindCode ResultKind = "code"

	// ResultKindRepository searches repositories.
	ResultKindRepository ResultKind = "repository"
)

// SearchQuery is a composed search string such as
// "filename:action language:YAML org:octo".
type SearchQuery string

// String returns the string representation.
func (q SearchQuery) String() string {
	return string(q)
}

// Clauses returns the space separated clauses of the query.
func (q SearchQuery) Clauses() []string {
	return strings.Fields(string(q))
}

// ResultKind routes queries carrying a fork clause to repository search and
// everything else to code search.
func (q SearchQuery) ResultKind() ResultKind {
	for _, clause := range q.Clauses() {
		if strings.HasPrefix(clause, "fork:") {
			return ResultKindRepository
		}
	}
	return ResultKindCode
}

// QueryBuilder assembles a SearchQuery. Clauses are always emitted in the same
// order regardless of the order the setters are called in, so equal inputs
// produce byte-identical queries.
type QueryBuilder struct {
	term         string
	filename     string
	path         string
	language     string
	fork         string
	user         string
	organization string
}

// NewQueryBuilder creates an empty builder.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

// Term adds a free-text term.
func (b *QueryBuilder) Term(term string) *QueryBuilder {
	b.term = strings.TrimSpace(term)
	return b
}

// Filename adds a filename: clause.
func (b *QueryBuilder) Filename(name string) *QueryBuilder {
	b.filename = strings.TrimSpace(name)
	return b
}

// Path adds a path: clause.
func (b *QueryBuilder) Path(path string) *QueryBuilder {
	b.path = strings.TrimSpace(path)
	return b
}

// Language adds a language: clause.
func (b *QueryBuilder) Language(language string) *QueryBuilder {
	b.language = strings.TrimSpace(language)
	return b
}

// Fork adds a fork: clause ("true" or "only").
func (b *QueryBuilder) Fork(mode string) *QueryBuilder {
	b.fork = strings.TrimSpace(mode)
	return b
}

// Scope adds user: and org: clauses for whichever of the two is set.
func (b *QueryBuilder) Scope(user, organization string) *QueryBuilder {
	b.user = strings.TrimSpace(user)
	b.organization = strings.TrimSpace(organization)
	return b
}

// Build returns the composed query.
func (b *QueryBuilder) Build() SearchQuery {
	clauses := make([]string, 0, 7)
	if b.term != "" {
		clauses = append(clauses, b.term)
	}
	if b.filename != "" {
		clauses = append(clauses, "filename:"+b.filename)
	}
	if b.path != "" {
		clauses = append(clauses, "path:"+b.path)
	}
	if b.language != "" {
		clauses = append(clauses, "language:"+b.language)
	}
	if b.fork != "" {
		clauses = append(clauses, "fork:"+b.fork)
	}
	if b.user != "" {
		clauses = append(clauses, "user:"+b.user)
	}
	if b.organization != "" {
		clauses = append(clauses, "org:"+b.organization)
	}
	return SearchQuery(strings.Join(clauses, " "))
}
