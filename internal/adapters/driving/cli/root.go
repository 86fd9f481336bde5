package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/core/ports/driven"
	"github.com/devops-actions/load-available-actions/internal/core/ports/driving"
	"github.com/devops-actions/load-available-actions/internal/logger"
	"github.com/devops-actions/load-available-actions/internal/telemetry"
)

// version is set at build time via -ldflags.
var version = "dev"

// EnvGitHubOutput names the step output file of an Actions runner.
const EnvGitHubOutput = "GITHUB_OUTPUT"

// OutputKey is the step output carrying the report path.
const OutputKey = "actions-file-path"

// DiscoveryFactory builds the pipeline for resolved settings.
type DiscoveryFactory func(ctx context.Context, settings domain.Settings, recorder driven.Recorder) (driving.Discovery, error)

// Services are the collaborators the root command drives.
type Services struct {
	NewDiscovery DiscoveryFactory
	Reports      driven.ReportWriter
}

var services Services

// SetServices installs the collaborators. It must be called before Execute.
func SetServices(s Services) {
	services = s
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "load-actions",
	Short: "Discover GitHub Actions and reusable workflows",
	Long: `Searches a user's or organization's repositories for action definitions,
including actions in forks and Docker based actions declared through
Dockerfile labels, and writes them to a JSON report.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDiscovery,
}

func init() {
	registerFlags(rootCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func runDiscovery(cmd *cobra.Command, _ []string) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	logger.SetVerbose(settings.Verbose)

	if services.NewDiscovery == nil || services.Reports == nil {
		return errors.New("discovery services not configured")
	}

	ctx, stop := signal.NotifyContext(baseContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runDir, err := prepareWorkDir(settings.WorkDir)
	if err != nil {
		return err
	}
	settings.WorkDir = runDir
	defer func() {
		if err := os.RemoveAll(runDir); err != nil {
			logger.Warn("could not remove work directory %s: %v", runDir, err)
		}
	}()

	shutdown, err := telemetry.InitTracing(settings.TraceFile, version)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("trace export: %v", err)
		}
	}()
	metrics := telemetry.NewMetrics()

	logger.Info("Starting")
	discovery, err := services.NewDiscovery(ctx, settings, metrics)
	if err != nil {
		return fmt.Errorf("set up discovery: %w", err)
	}

	report, err := discovery.Run(ctx)
	if err != nil {
		return err
	}

	if err := services.Reports.Write(report, settings.OutputFile); err != nil {
		return err
	}
	metrics.ObserveReport(report, time.Now())
	if settings.MetricsFile != "" {
		if err := metrics.WriteFile(settings.MetricsFile); err != nil {
			return err
		}
	}

	path, err := filepath.Abs(settings.OutputFile)
	if err != nil {
		path = settings.OutputFile
	}
	if err := writeStepOutput(os.Getenv(EnvGitHubOutput), path); err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), report, path)
	return nil
}

func baseContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// prepareWorkDir creates a fresh per-run directory under parent.
func prepareWorkDir(parent string) (string, error) {
	if parent == "" {
		parent = os.TempDir()
	}
	dir := filepath.Join(parent, "load-actions-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create work directory: %w", err)
	}
	return dir, nil
}

// writeStepOutput appends the report path to the runner's output file.
func writeStepOutput(outputFile, path string) error {
	if outputFile == "" {
		return nil
	}
	f, err := os.OpenFile(outputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open step output: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s=%s\n", OutputKey, path); err != nil {
		return fmt.Errorf("write step output: %w", err)
	}
	return nil
}
