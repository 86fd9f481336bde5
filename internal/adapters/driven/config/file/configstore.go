package file

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
)

// Configuration keys. Nested tables are addressed with dotted keys.
const (
	KeyToken                   = "token"
	KeyUser                    = "user"
	KeyOrganization            = "organization"
	KeyBaseURL                 = "base_url"
	KeyOutputFile              = "output_file"
	KeyRemoveToken             = "remove_token"
	KeyFetchReadme             = "fetch_readme"
	KeyScanWorkflows           = "scan_workflows"
	KeyIncludePrivateWorkflows = "include_private_workflows"
	KeyExcludeRepos            = "exclude_repos"
	KeyForkDiscovery           = "fork_discovery"
	KeyWorkDir                 = "work_dir"
	KeyVerbose                 = "verbose"
	KeyMetricsFile             = "telemetry.metrics_file"
	KeyTraceFile               = "telemetry.trace_file"
)

// ConfigStore is a read-only TOML configuration file.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// NewConfigStore loads the TOML file at path.
// An empty path yields an empty store.
func NewConfigStore(path string) (*ConfigStore, error) {
	s := &ConfigStore{
		filePath: path,
		data:     make(map[string]any),
	}
	if path == "" {
		return s, nil
	}
	if err := s.Load(); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return s, nil
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	val, ok := s.Get(key)
	if !ok {
		return ""
	}

	str, ok := val.(string)
	if !ok {
		return ""
	}
	return str
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	val, ok := s.Get(key)
	if !ok {
		return false
	}

	b, ok := val.(bool)
	if !ok {
		return false
	}
	return b
}

// GetStringSlice retrieves a string slice configuration value. A plain
// string is returned as a single element.
func (s *ConfigStore) GetStringSlice(key string) []string {
	val, ok := s.Get(key)
	if !ok {
		return nil
	}

	// TOML arrays are parsed as []any
	switch v := val.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	default:
		return nil
	}
}

// Load reads configuration from the TOML file.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var loaded map[string]any
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return err
	}

	if loaded == nil {
		loaded = make(map[string]any)
	}

	// Flatten nested maps into dot-notation keys for easier access
	s.data = flattenMap(loaded, "")
	return nil
}

// Apply overrides the fields of settings whose keys the file sets.
func (s *ConfigStore) Apply(settings *domain.Settings) {
	strs := map[string]*string{
		KeyToken:        &settings.Token,
		KeyUser:         &settings.User,
		KeyOrganization: &settings.Organization,
		KeyBaseURL:      &settings.EnterpriseURL,
		KeyOutputFile:   &settings.OutputFile,
		KeyWorkDir:      &settings.WorkDir,
		KeyMetricsFile:  &settings.MetricsFile,
		KeyTraceFile:    &settings.TraceFile,
	}
	for key, field := range strs {
		if _, ok := s.Get(key); ok {
			*field = s.GetString(key)
		}
	}

	bools := map[string]*bool{
		KeyRemoveToken:             &settings.RemoveToken,
		KeyFetchReadme:             &settings.FetchReadme,
		KeyScanWorkflows:           &settings.ScanWorkflows,
		KeyIncludePrivateWorkflows: &settings.IncludePrivateWorkflows,
		KeyVerbose:                 &settings.Verbose,
	}
	for key, field := range bools {
		if _, ok := s.Get(key); ok {
			*field = s.GetBool(key)
		}
	}

	if _, ok := s.Get(KeyForkDiscovery); ok {
		settings.ForkDiscovery = domain.ForkDiscovery(s.GetString(KeyForkDiscovery))
	}
	if _, ok := s.Get(KeyExcludeRepos); ok {
		settings.ExcludeRepos = domain.ParseExcludeRepos(strings.Join(s.GetStringSlice(KeyExcludeRepos), "\n"))
	}
}

// flattenMap converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			// Recursively flatten nested maps
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
		} else {
			result[fullKey] = value
		}
	}

	return result
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
