// Command load-actions discovers the GitHub Actions and reusable workflows
// of a user or organization and writes them to a JSON report.
package main

import (
	"os"

	"github.com/devops-actions/load-available-actions/internal/adapters/driven/report"
	"github.com/devops-actions/load-available-actions/internal/adapters/driving/cli"
	"github.com/devops-actions/load-available-actions/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		NewDiscovery: newDiscovery,
		Reports:      report.NewJSONWriter(),
	})

	if err := cli.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
