package driven

import (
	"time"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
)

// Recorder receives run metrics.
type Recorder interface {
	// SearchPage counts a fetched search page.
	SearchPage(kind domain.ResultKind)

	// Retry counts a transient failure that was retried.
	Retry(kind domain.ErrorKind)

	// RateLimitWait records a gate suspension.
	RateLimitWait(class domain.ResourceClass, d time.Duration)

	// Candidate counts a discovered candidate.
	Candidate(origin domain.Origin)

	// CloneFailure counts a repository skipped because its clone failed.
	CloneFailure()
}
