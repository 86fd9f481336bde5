package driving

import (
	"context"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
)

// Discovery runs one discovery pass over the configured scope.
type Discovery interface {
	// Run authenticates, discovers, enriches and assembles the report.
	// No report is returned when an unrecoverable error occurs.
	Run(ctx context.Context) (*domain.Report, error)
}
