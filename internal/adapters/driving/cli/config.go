package cli

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/cli/go-gh/v2/pkg/auth"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/devops-actions/load-available-actions/internal/adapters/driven/config/file"
	"github.com/devops-actions/load-available-actions/internal/core/domain"
	coreservices "github.com/devops-actions/load-available-actions/internal/core/services"
)

// Environment variables read when the tool runs as an Action step.
const (
	EnvToken                   = "INPUT_PAT"
	EnvUser                    = "INPUT_USER"
	EnvOrganization            = "INPUT_ORGANIZATION"
	EnvBaseURL                 = "INPUT_BASEURL"
	EnvOutputFile              = "INPUT_OUTPUTFILENAME"
	EnvRemoveToken             = "INPUT_REMOVETOKEN"
	EnvFetchReadme             = "INPUT_FETCHREADMES"
	EnvScanWorkflows           = "INPUT_SCANFORREUSABLEWORKFLOWS"
	EnvIncludePrivateWorkflows = "INPUT_INCLUDEPRIVATEWORKFLOWS"
	EnvExcludeRepos            = "INPUT_EXCLUDEREPOS"
	EnvForkDiscovery           = "INPUT_FORKDISCOVERY"
)

// Flag names.
const (
	flagConfig                  = "config"
	flagToken                   = "token"
	flagUser                    = "user"
	flagOrganization            = "organization"
	flagBaseURL                 = "base-url"
	flagOutput                  = "output"
	flagRemoveToken             = "remove-token"
	flagFetchReadme             = "fetch-readme"
	flagScanWorkflows           = "scan-workflows"
	flagIncludePrivateWorkflows = "include-private-workflows"
	flagExcludeRepos            = "exclude-repos"
	flagForkDiscovery           = "fork-discovery"
	flagWorkDir                 = "work-dir"
	flagVerbose                 = "verbose"
	flagMetricsFile             = "metrics-file"
	flagTraceFile               = "trace-file"
)

// tokenForHost looks up a stored gh credential. Replaced in tests.
var tokenForHost = auth.TokenForHost

var validate = validator.New()

// flagValues holds the raw root command flags.
type flagValues struct {
	configFile              string
	token                   string
	user                    string
	organization            string
	baseURL                 string
	output                  string
	removeToken             bool
	fetchReadme             bool
	scanWorkflows           bool
	includePrivateWorkflows bool
	excludeRepos            string
	forkDiscovery           string
	workDir                 string
	verbose                 bool
	metricsFile             string
	traceFile               string
}

var flags flagValues

func registerFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&flags.configFile, flagConfig, "c", "", "path to a TOML configuration file")
	f.StringVar(&flags.token, flagToken, "", "access token (defaults to the gh credential store)")
	f.StringVarP(&flags.user, flagUser, "u", "", "user whose repositories are scanned")
	f.StringVarP(&flags.organization, flagOrganization, "o", "", "organization whose repositories are scanned")
	f.StringVar(&flags.baseURL, flagBaseURL, "", "GitHub Enterprise Server URL")
	f.StringVar(&flags.output, flagOutput, domain.DefaultOutputFile, "report file path")
	f.BoolVar(&flags.removeToken, flagRemoveToken, false, "strip query strings from download URLs")
	f.BoolVar(&flags.fetchReadme, flagFetchReadme, false, "include README content for each action")
	f.BoolVar(&flags.scanWorkflows, flagScanWorkflows, false, "also report reusable workflows")
	f.BoolVar(&flags.includePrivateWorkflows, flagIncludePrivateWorkflows, false,
		"include reusable workflows from non-public repositories")
	f.StringVar(&flags.excludeRepos, flagExcludeRepos, "", "owner/name repositories to skip, comma or newline separated")
	f.StringVar(&flags.forkDiscovery, flagForkDiscovery, string(domain.DefaultForkDiscovery),
		"fork enumeration mode: search or graphql")
	f.StringVar(&flags.workDir, flagWorkDir, "", "parent directory for fork clones (defaults to the temp directory)")
	f.BoolVarP(&flags.verbose, flagVerbose, "v", false, "enable debug output")
	f.StringVar(&flags.metricsFile, flagMetricsFile, "", "write run metrics in Prometheus text format to this file")
	f.StringVar(&flags.traceFile, flagTraceFile, "", "write trace spans as JSON to this file")
}

// resolveSettings layers defaults, the config file, the environment and
// explicitly set flags, then fills a missing token from the gh store.
func resolveSettings(cmd *cobra.Command) (domain.Settings, error) {
	settings := domain.DefaultSettings()

	store, err := file.NewConfigStore(flags.configFile)
	if err != nil {
		return settings, err
	}
	store.Apply(&settings)

	if err := applyEnv(&settings, os.Getenv); err != nil {
		return settings, err
	}
	applyFlags(cmd, &settings)

	if settings.Token == "" {
		host, err := hostForToken(settings.EnterpriseURL)
		if err != nil {
			return settings, err
		}
		settings.Token, _ = tokenForHost(host)
	}

	if err := coreservices.CheckScope(settings); err != nil {
		return settings, err
	}
	if err := validateSettings(settings); err != nil {
		return settings, err
	}
	return settings, nil
}

func applyEnv(settings *domain.Settings, getenv func(string) string) error {
	strs := map[string]*string{
		EnvToken:        &settings.Token,
		EnvUser:         &settings.User,
		EnvOrganization: &settings.Organization,
		EnvBaseURL:      &settings.EnterpriseURL,
		EnvOutputFile:   &settings.OutputFile,
	}
	for key, field := range strs {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*field = v
		}
	}

	bools := map[string]*bool{
		EnvRemoveToken:             &settings.RemoveToken,
		EnvFetchReadme:             &settings.FetchReadme,
		EnvScanWorkflows:           &settings.ScanWorkflows,
		EnvIncludePrivateWorkflows: &settings.IncludePrivateWorkflows,
	}
	for key, field := range bools {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false, got %q", domain.ErrInvalidInput, key, v)
		}
		*field = b
	}

	if v := getenv(EnvExcludeRepos); strings.TrimSpace(v) != "" {
		settings.ExcludeRepos = domain.ParseExcludeRepos(v)
	}
	if v := strings.TrimSpace(getenv(EnvForkDiscovery)); v != "" {
		settings.ForkDiscovery = domain.ForkDiscovery(v)
	}
	return nil
}

func applyFlags(cmd *cobra.Command, settings *domain.Settings) {
	changed := cmd.Flags().Changed

	strs := map[string]struct {
		src string
		dst *string
	}{
		flagToken:        {flags.token, &settings.Token},
		flagUser:         {flags.user, &settings.User},
		flagOrganization: {flags.organization, &settings.Organization},
		flagBaseURL:      {flags.baseURL, &settings.EnterpriseURL},
		flagOutput:       {flags.output, &settings.OutputFile},
		flagWorkDir:      {flags.workDir, &settings.WorkDir},
		flagMetricsFile:  {flags.metricsFile, &settings.MetricsFile},
		flagTraceFile:    {flags.traceFile, &settings.TraceFile},
	}
	for name, f := range strs {
		if changed(name) {
			*f.dst = f.src
		}
	}

	bools := map[string]struct {
		src bool
		dst *bool
	}{
		flagRemoveToken:             {flags.removeToken, &settings.RemoveToken},
		flagFetchReadme:             {flags.fetchReadme, &settings.FetchReadme},
		flagScanWorkflows:           {flags.scanWorkflows, &settings.ScanWorkflows},
		flagIncludePrivateWorkflows: {flags.includePrivateWorkflows, &settings.IncludePrivateWorkflows},
		flagVerbose:                 {flags.verbose, &settings.Verbose},
	}
	for name, f := range bools {
		if changed(name) {
			*f.dst = f.src
		}
	}

	if changed(flagExcludeRepos) {
		settings.ExcludeRepos = domain.ParseExcludeRepos(flags.excludeRepos)
	}
	if changed(flagForkDiscovery) {
		settings.ForkDiscovery = domain.ForkDiscovery(flags.forkDiscovery)
	}
}

// hostForToken returns the credential store host for an enterprise URL.
func hostForToken(enterpriseURL string) (string, error) {
	if enterpriseURL == "" {
		return "github.com", nil
	}
	u, err := url.Parse(enterpriseURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: base URL %q is not a valid URL", domain.ErrInvalidInput, enterpriseURL)
	}
	return u.Host, nil
}

// validateSettings turns validator failures into readable messages.
func validateSettings(settings domain.Settings) error {
	err := validate.Struct(settings)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate settings: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "EnterpriseURL":
		return fmt.Sprintf("base URL %q is not a valid URL", fe.Value())
	case "OutputFile":
		return "output file name must not be empty"
	case "ForkDiscovery":
		return fmt.Sprintf("fork discovery must be one of %s, got %q", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed the %q check", fe.Field(), fe.Tag())
	}
}
