package services

import (
	"time"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/logger"
)

// Assembler maps enriched candidates onto report records.
type Assembler struct {
	settings domain.Settings
}

// NewAssembler creates an assembler.
func NewAssembler(settings domain.Settings) *Assembler {
	return &Assembler{settings: settings}
}

// Assemble builds the report. Actions sharing a (name, repo) pair and
// workflows sharing a (repo, path) pair keep their first occurrence. This
// includes actions whose name could not be read, which all share the
// Undefined name; each one dropped that way is logged.
func (a *Assembler) Assemble(generatedAt time.Time, candidates []domain.Candidate, workflows []domain.WorkflowRecord) *domain.Report {
	report := domain.NewReport(generatedAt, a.settings.User, a.settings.Organization)

	actions := make([]domain.ActionRecord, 0, len(candidates))
	for _, c := range candidates {
		actions = append(actions, actionRecord(c))
	}
	report.Actions = DedupeActions(actions)
	if len(report.Actions) < len(actions) {
		logDroppedActions(actions, report.Actions)
	}
	if workflows != nil {
		report.Workflows = DedupeWorkflows(workflows)
	}
	return report
}

// logDroppedActions warns about sentinel-named records removed by
// deduplication. kept must be an ordered subsequence of all.
func logDroppedActions(all, kept []domain.ActionRecord) {
	kept = append([]domain.ActionRecord(nil), kept...)
	for _, a := range all {
		if len(kept) > 0 && kept[0] == a {
			kept = kept[1:]
			continue
		}
		if a.Name == domain.Undefined {
			logger.Warn("Dropping %s in %s/%s: another action in the repository also has no readable name", a.Path, a.Owner, a.Repo)
		}
	}
}

func actionRecord(c domain.Candidate) domain.ActionRecord {
	switch c.Origin {
	case domain.OriginForkScan:
		return actionFromForkScan(c)
	case domain.OriginDockerLabel:
		return actionFromDockerLabel(c)
	default:
		return actionFromCodeSearch(c)
	}
}

func baseRecord(c domain.Candidate) domain.ActionRecord {
	return domain.ActionRecord{
		Name:        c.Metadata.Name,
		Owner:       c.Owner,
		Repo:        c.Repo,
		Path:        c.Path,
		DownloadURL: c.DownloadURL,
		Author:      c.Metadata.Author,
		Description: c.Metadata.Description,
		ForkedFrom:  c.ForkedFrom,
		Readme:      c.Readme,
		Using:       c.Metadata.Using,
		IsArchived:  c.IsArchived,
		Visibility:  c.Visibility,
		IsFork:      c.IsFork,
	}
}

func actionFromCodeSearch(c domain.Candidate) domain.ActionRecord {
	return baseRecord(c)
}

// actionFromForkScan records the fork parent; fork scans only see forks.
func actionFromForkScan(c domain.Candidate) domain.ActionRecord {
	record := baseRecord(c)
	record.IsFork = true
	return record
}

// actionFromDockerLabel reports the docker runtime whatever the labels say.
func actionFromDockerLabel(c domain.Candidate) domain.ActionRecord {
	record := baseRecord(c)
	record.IsFork = true
	record.Using = "docker"
	return record
}

// workflowRecord maps an enriched workflow candidate.
func workflowRecord(c domain.Candidate) domain.WorkflowRecord {
	return domain.WorkflowRecord{
		Name:        c.Metadata.Name,
		Owner:       c.Owner,
		Repo:        c.Repo,
		Path:        c.Path,
		DownloadURL: c.DownloadURL,
		Description: c.Metadata.Description,
		ForkedFrom:  c.ForkedFrom,
		IsArchived:  c.IsArchived,
		Visibility:  c.Visibility,
	}
}
