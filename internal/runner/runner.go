// Package runner refreshes a whole dashboard: every panel of every page
// for one filter, timing each one.
package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"commerce-insights/internal/dashboard"
	"commerce-insights/internal/dataset"
)

// Panel latencies are recorded in microseconds, up to one minute.
const maxLatencyMicros = int64(time.Minute / time.Microsecond)

type PanelResult struct {
	Page    string        `json:"page"`
	Panel   string        `json:"panel"`
	Data    interface{}   `json:"data,omitempty"`
	Error   string        `json:"error,omitempty"`
	Latency time.Duration `json:"latency"`
}

type Report struct {
	SessionID      string         `json:"session_id"`
	Filter         dataset.Filter `json:"filter"`
	Panels         []PanelResult  `json:"panels"`
	Operations     int64          `json:"operations"`
	Errors         int64          `json:"errors"`
	ErrorRate      float64        `json:"error_rate"`
	TotalTime      time.Duration  `json:"total_time"`
	AverageLatency time.Duration  `json:"average_latency"`
	P95Latency     time.Duration  `json:"p95_latency"`
	P99Latency     time.Duration  `json:"p99_latency"`
}

// Failed returns the panels that returned an error.
func (r *Report) Failed() []PanelResult {
	var out []PanelResult
	for _, p := range r.Panels {
		if p.Error != "" {
			out = append(out, p)
		}
	}
	return out
}

// Run computes every panel of s under f in page and panel name order. A
// failing panel is recorded in the report and the refresh continues.
// When ctx is cancelled, typically because a newer filter superseded
// this one, the remaining panels are skipped and the partial report is
// returned with ctx's error.
func Run(ctx context.Context, s *dashboard.Session, f dataset.Filter, logger *slog.Logger) (*Report, error) {
	return run(ctx, s, s.Pages().Layout(), f, logger)
}

// RunPage is Run restricted to the panels of one page.
func RunPage(ctx context.Context, s *dashboard.Session, page string, f dataset.Filter, logger *slog.Logger) (*Report, error) {
	for _, p := range s.Pages().Layout() {
		if p.Name == page {
			return run(ctx, s, []dashboard.Page{p}, f, logger)
		}
	}
	return nil, &dashboard.UnknownPanelError{Page: page}
}

func run(ctx context.Context, s *dashboard.Session, pages []dashboard.Page, f dataset.Filter, logger *slog.Logger) (*Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	histogram := hdrhistogram.New(1, maxLatencyMicros, 3)
	report := &Report{SessionID: s.ID, Filter: f}
	startTime := time.Now()

	var runErr error
refresh:
	for _, page := range pages {
		for _, panel := range page.Panels {
			if err := ctx.Err(); err != nil {
				runErr = err
				break refresh
			}

			panelStart := time.Now()
			data, err := s.Panel(ctx, page.Name, panel, f)
			latency := time.Since(panelStart)

			result := PanelResult{Page: page.Name, Panel: panel, Latency: latency}
			report.Operations++
			if err != nil {
				report.Errors++
				result.Error = err.Error()
				logger.Warn("panel failed", "page", page.Name, "panel", panel, "error", err)
			} else {
				result.Data = data
			}
			report.Panels = append(report.Panels, result)

			micros := latency.Microseconds()
			if micros < 1 {
				micros = 1
			}
			// latencies past a minute are out of range and left out of the quantiles
			_ = histogram.RecordValue(micros)
		}
	}

	report.TotalTime = time.Since(startTime)
	if report.Operations > 0 {
		report.ErrorRate = float64(report.Errors) / float64(report.Operations)
		report.AverageLatency = time.Duration(histogram.Mean() * float64(time.Microsecond))
		report.P95Latency = time.Duration(histogram.ValueAtQuantile(95)) * time.Microsecond
		report.P99Latency = time.Duration(histogram.ValueAtQuantile(99)) * time.Microsecond
	}

	logger.Info("dashboard refreshed",
		"panels", report.Operations,
		"errors", report.Errors,
		"total", report.TotalTime,
		"p95", report.P95Latency,
	)
	return report, runErr
}
