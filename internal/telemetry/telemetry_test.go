package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.SearchPage(domain.ResultKindCode)
	m.SearchPage(domain.ResultKindCode)
	m.SearchPage(domain.ResultKindRepository)
	m.Retry(domain.ErrorKindRateLimit)
	m.RateLimitWait(domain.ResourceSearch, 21*time.Second)
	m.RateLimitWait(domain.ResourceSearch, 9*time.Second)
	m.Candidate(domain.OriginForkScan)
	m.CloneFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.searchPages.WithLabelValues("code")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.searchPages.WithLabelValues("repository")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.retries.WithLabelValues("rate_limit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.waits.WithLabelValues("search")))
	assert.Equal(t, 30.0, testutil.ToFloat64(m.waitSeconds.WithLabelValues("search")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.candidates.WithLabelValues("fork_scan")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cloneFailures))
}

func TestMetrics_ObserveReportAndWriteFile(t *testing.T) {
	m := NewMetrics()
	report := domain.NewReport(time.Unix(1700000000, 0).UTC(), "", "octo")
	report.Actions = append(report.Actions, domain.ActionRecord{Name: "a"}, domain.ActionRecord{Name: "b"})

	m.ObserveReport(report, time.Unix(1700000000, 0))
	m.ObserveReport(nil, time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reportedRecords.WithLabelValues("action")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.reportedRecords.WithLabelValues("workflow")))

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, m.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `load_actions_report_records{type="action"} 2`)
	assert.Contains(t, string(data), "load_actions_report_last_run_timestamp_seconds")
}

func TestInitTracing_EmptyPath(t *testing.T) {
	shutdown, err := InitTracing("", "dev")

	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_WritesSpans(t *testing.T) {
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })
	path := filepath.Join(t.TempDir(), "trace.json")

	shutdown, err := InitTracing(path, "1.2.3")
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "discovery.run")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "discovery.run")
	assert.Contains(t, string(data), ServiceName)
}

func TestInitTracing_BadPath(t *testing.T) {
	_, err := InitTracing(filepath.Join(t.TempDir(), "missing", "trace.json"), "dev")

	assert.Error(t, err)
}
