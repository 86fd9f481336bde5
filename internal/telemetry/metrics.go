package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/core/ports/driven"
)

const metricsNamespace = "load_actions"

// Metrics records run counters on a private registry. A one-shot run has
// nothing to scrape, so the registry is written out as a textfile.
type Metrics struct {
	registry *prometheus.Registry

	searchPages     *prometheus.CounterVec
	retries         *prometheus.CounterVec
	waitSeconds     *prometheus.CounterVec
	waits           *prometheus.CounterVec
	candidates      *prometheus.CounterVec
	cloneFailures   prometheus.Counter
	reportedRecords *prometheus.GaugeVec
	lastRun         prometheus.Gauge
}

// Verify interface compliance.
var _ driven.Recorder = (*Metrics)(nil)

// NewMetrics creates the run metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		searchPages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "search",
			Name:      "pages_total",
			Help:      "Search result pages fetched by result kind",
		}, []string{"kind"}),
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "api",
			Name:      "retries_total",
			Help:      "Transient API failures that were retried by error kind",
		}, []string{"kind"}),
		waitSeconds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ratelimit",
			Name:      "wait_seconds_total",
			Help:      "Time spent waiting for quota resets by resource class",
		}, []string{"resource"}),
		waits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ratelimit",
			Name:      "waits_total",
			Help:      "Quota reset waits by resource class",
		}, []string{"resource"}),
		candidates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "discovery",
			Name:      "candidates_total",
			Help:      "Discovered candidates by origin",
		}, []string{"origin"}),
		cloneFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "discovery",
			Name:      "clone_failures_total",
			Help:      "Forks skipped because the clone failed",
		}),
		reportedRecords: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "report",
			Name:      "records",
			Help:      "Records in the written report by type",
		}, []string{"type"}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "report",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the report was written",
		}),
	}
}

// SearchPage counts a fetched search page.
func (m *Metrics) SearchPage(kind domain.ResultKind) {
	m.searchPages.WithLabelValues(string(kind)).Inc()
}

// Retry counts a retried transient failure.
func (m *Metrics) Retry(kind domain.ErrorKind) {
	m.retries.WithLabelValues(kind.String()).Inc()
}

// RateLimitWait records a gate suspension.
func (m *Metrics) RateLimitWait(class domain.ResourceClass, d time.Duration) {
	m.waits.WithLabelValues(string(class)).Inc()
	m.waitSeconds.WithLabelValues(string(class)).Add(d.Seconds())
}

// Candidate counts a discovered candidate.
func (m *Metrics) Candidate(origin domain.Origin) {
	m.candidates.WithLabelValues(origin.String()).Inc()
}

// CloneFailure counts a skipped fork.
func (m *Metrics) CloneFailure() {
	m.cloneFailures.Inc()
}

// ObserveReport sets the report gauges.
func (m *Metrics) ObserveReport(report *domain.Report, writtenAt time.Time) {
	if report == nil {
		return
	}
	m.reportedRecords.WithLabelValues("action").Set(float64(len(report.Actions)))
	m.reportedRecords.WithLabelValues("workflow").Set(float64(len(report.Workflows)))
	m.lastRun.Set(float64(writtenAt.Unix()))
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteFile writes the registry in the text exposition format to path.
func (m *Metrics) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
