package runner_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commerce-insights/internal/dashboard"
	"commerce-insights/internal/dataset"
	"commerce-insights/internal/dataset/datasettest"
	"commerce-insights/internal/metrics"
	"commerce-insights/internal/runner"
	"commerce-insights/internal/segmentation"
)

func session(ds *dataset.Dataset) *dashboard.Session {
	return dashboard.NewSession(ds, metrics.NewEngine(metrics.DefaultOptions), segmentation.DefaultOptions, discard())
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func panelCount(s *dashboard.Session) int {
	n := 0
	for _, p := range s.Pages().Layout() {
		n += len(p.Panels)
	}
	return n
}

func TestRun(t *testing.T) {
	s := session(datasettest.Dataset(t))
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	report, err := runner.Run(context.Background(), s, dataset.Filter{}, logger)
	require.NoError(t, err)

	assert.Equal(t, s.ID, report.SessionID)
	assert.Equal(t, int64(panelCount(s)), report.Operations)
	assert.Len(t, report.Panels, panelCount(s))
	assert.Zero(t, report.Errors)
	assert.Empty(t, report.Failed())
	assert.Positive(t, report.P99Latency)
	assert.GreaterOrEqual(t, report.P99Latency, report.P95Latency)

	first := report.Panels[0]
	assert.Equal(t, "business", first.Page)
	assert.Equal(t, "aov", first.Panel)
	assert.Equal(t, metrics.Some(120), first.Data)

	assert.Contains(t, logs.String(), "dashboard refreshed")
}

func TestRunEmptyFilter(t *testing.T) {
	s := session(datasettest.Dataset(t))
	report, err := runner.Run(context.Background(), s, dataset.Filter{State: "AC"}, discard())
	require.NoError(t, err)
	assert.Zero(t, report.Errors)
}

func TestRunCancelled(t *testing.T) {
	s := session(datasettest.Dataset(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := runner.Run(ctx, s, dataset.Filter{}, discard())
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Empty(t, report.Panels)
}

func TestRunPage(t *testing.T) {
	s := session(datasettest.Dataset(t))
	report, err := runner.RunPage(context.Background(), s, "shipping", dataset.Filter{}, discard())
	require.NoError(t, err)
	assert.Len(t, report.Panels, len(s.Pages()["shipping"]))
	for _, p := range report.Panels {
		assert.Equal(t, "shipping", p.Page)
	}

	_, err = runner.RunPage(context.Background(), s, "marketing", dataset.Filter{}, discard())
	assert.ErrorIs(t, err, dashboard.ErrUnknownPanel)
}

func TestRunReusesCache(t *testing.T) {
	s := session(datasettest.Dataset(t))
	_, err := runner.Run(context.Background(), s, dataset.Filter{}, discard())
	require.NoError(t, err)
	before := s.CacheStats().Hits

	_, err = runner.Run(context.Background(), s, dataset.Filter{}, discard())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, s.CacheStats().Hits-before, panelCount(s))
}

func BenchmarkRun(b *testing.B) {
	ds := datasettest.Random(b, 2000, 1)
	filters := []dataset.Filter{{}, {State: "SP"}}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := session(ds)
		report, err := runner.Run(context.Background(), s, filters[i%len(filters)], discard())
		if err != nil {
			b.Fatalf("refresh failed: %v", err)
		}
		if report.Errors > 0 {
			b.Fatalf("refresh had %d failing panels: %+v", report.Errors, report.Failed())
		}
	}
}
