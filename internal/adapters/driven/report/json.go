// Package report persists discovery reports.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/core/ports/driven"
)

// Indent is the JSON indentation of the report file.
const Indent = "  "

// JSONWriter writes reports as indented UTF-8 JSON.
type JSONWriter struct{}

// Verify interface compliance.
var _ driven.ReportWriter = (*JSONWriter)(nil)

// NewJSONWriter creates a JSON report writer.
func NewJSONWriter() *JSONWriter {
	return &JSONWriter{}
}

// Write replaces path with the encoded report. The file is written next to
// its destination first and renamed into place.
func (w *JSONWriter) Write(report *domain.Report, path string) error {
	if report == nil {
		return fmt.Errorf("%w: nil report", domain.ErrInvalidInput)
	}

	data, err := json.MarshalIndent(report, "", Indent)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".report-*.json")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod report: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("move report into place: %w", err)
	}
	return nil
}
