package driven

import "github.com/devops-actions/load-available-actions/internal/core/domain"

// ReportWriter persists a report.
type ReportWriter interface {
	// Write stores the report at path, replacing any previous file.
	Write(report *domain.Report, path string) error
}
