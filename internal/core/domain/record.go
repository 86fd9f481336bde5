package domain

import (
	"strings"
	"time"
)

// LastUpdatedLayout is the report timestamp layout (YYYYMMDD_HHmm).
const LastUpdatedLayout = "20060102_1504"

// FormatLastUpdated formats t for the report's lastUpdated field.
func FormatLastUpdated(t time.Time) string {
	return t.Format(LastUpdatedLayout)
}

// ActionRecord is one action in the report.
type ActionRecord struct {
	Name        string     `json:"name"`
	Owner       string     `json:"owner"`
	Repo        string     `json:"repo"`
	Path        string     `json:"path"`
	DownloadURL string     `json:"downloadUrl"`
	Author      string     `json:"author"`
	Description string     `json:"description"`
	ForkedFrom  string     `json:"forkedfrom"`
	Readme      string     `json:"readme,omitempty"`
	Using       string     `json:"using"`
	IsArchived  bool       `json:"isArchived"`
	Visibility  Visibility `json:"visibility"`
	IsFork      bool       `json:"isFork"`
}

// WorkflowRecord is one reusable workflow in the report.
type WorkflowRecord struct {
	Name        string     `json:"name"`
	Owner       string     `json:"owner"`
	Repo        string     `json:"repo"`
	Path        string     `json:"path"`
	DownloadURL string     `json:"downloadUrl"`
	Description string     `json:"description"`
	ForkedFrom  string     `json:"forkedfrom"`
	IsArchived  bool       `json:"isArchived"`
	Visibility  Visibility `json:"visibility"`
}

// Report is the assembled result of one discovery run.
type Report struct {
	LastUpdated  string           `json:"lastUpdated"`
	Organization string           `json:"organization"`
	User         string           `json:"user"`
	Actions      []ActionRecord   `json:"actions"`
	Workflows    []WorkflowRecord `json:"workflows"`
}

// NewReport creates an empty report with non-nil record slices.
func NewReport(generatedAt time.Time, user, organization string) *Report {
	return &Report{
		LastUpdated:  FormatLastUpdated(generatedAt),
		Organization: organization,
		User:         user,
		Actions:      []ActionRecord{},
		Workflows:    []WorkflowRecord{},
	}
}

// StripQuery removes everything from the first "?" of a download URL so
// short-lived tokens do not end up in the report.
func StripQuery(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}
	return url
}
