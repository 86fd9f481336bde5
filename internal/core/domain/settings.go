package domain

import "strings"

// ForkDiscovery selects how forked repositories are enumerated.
type ForkDiscovery string

// Available fork discovery modes.
const (
	// ForkDiscoverySearch uses repository search with a fork:true clause.
	ForkDiscoverySearch ForkDiscovery = "search"

	// ForkDiscoveryGraphQL walks the owner's repositories through GraphQL.
	ForkDiscoveryGraphQL ForkDiscovery = "graphql"
)

// IsValid returns true if the mode is recognised.
func (m ForkDiscovery) IsValid() bool {
	return m == ForkDiscoverySearch || m == ForkDiscoveryGraphQL
}

// String returns the string representation.
func (m ForkDiscovery) String() string {
	return string(m)
}

// Default values.
const (
	DefaultOutputFile    = "actions.json"
	DefaultForkDiscovery = ForkDiscoverySearch
)

// Settings is the run-scoped configuration. It is built once by the CLI
// and passed by value to every component that needs it.
type Settings struct {
	Token         string `validate:"required"`
	User          string `validate:"required_without=Organization"`
	Organization  string `validate:"required_without=User"`
	EnterpriseURL string `validate:"omitempty,url"`
	OutputFile    string `validate:"required"`

	RemoveToken             bool
	FetchReadme             bool
	ScanWorkflows           bool
	IncludePrivateWorkflows bool

	// ExcludeRepos holds lower-cased repository names or owner/name entries.
	ExcludeRepos []string

	ForkDiscovery ForkDiscovery `validate:"oneof=search graphql"`

	// WorkDir is the parent of the per-run clone directory; empty means the
	// system temp directory.
	WorkDir string

	Verbose bool

	MetricsFile string
	TraceFile   string
}

// DefaultSettings returns settings populated with defaults.
func DefaultSettings() Settings {
	return Settings{
		OutputFile:    DefaultOutputFile,
		ForkDiscovery: DefaultForkDiscovery,
	}
}

// IsEnterprise reports whether the run targets a self-managed host.
func (s Settings) IsEnterprise() bool {
	return s.EnterpriseURL != ""
}

// IsExcluded reports whether a repository is on the exclusion list. An
// entry without a slash matches the repository name under any owner, an
// owner/name entry matches that repository only. Matching is
// case-insensitive.
func (s Settings) IsExcluded(owner, name string) bool {
	if len(s.ExcludeRepos) == 0 {
		return false
	}
	repo := strings.ToLower(name)
	full := strings.ToLower(owner) + "/" + repo
	for _, excluded := range s.ExcludeRepos {
		if strings.Contains(excluded, "/") {
			if excluded == full {
				return true
			}
			continue
		}
		if excluded == repo {
			return true
		}
	}
	return false
}

// ParseExcludeRepos splits a newline or comma separated list into trimmed,
// lower-cased, de-duplicated entries.
func ParseExcludeRepos(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
