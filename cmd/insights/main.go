package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"commerce-insights/internal/config"
	"commerce-insights/internal/dashboard"
	"commerce-insights/internal/database"
	"commerce-insights/internal/dataset"
	"commerce-insights/internal/export"
	"commerce-insights/internal/metrics"
	"commerce-insights/internal/runner"
	"commerce-insights/internal/segmentation"
	"commerce-insights/internal/server"
)

type statusFlag []string

func (s *statusFlag) String() string     { return strings.Join(*s, ",") }
func (s *statusFlag) Set(v string) error { *s = append(*s, v); return nil }

func main() {
	var exitCode int
	defer func() {
		os.Exit(exitCode)
	}()

	configPath := flag.String("config", "config.yaml", "path to the YAML configuration")
	dbType := flag.String("db", "", "data source driver (postgres, mysql, mongo or sqlite); overrides the config")
	page := flag.String("page", "", "dashboard page to compute; all pages when empty")
	panel := flag.String("panel", "", "single panel of -page to compute")
	dateFrom := flag.String("date-from", "", "first purchase date to include (YYYY-MM-DD)")
	dateTo := flag.String("date-to", "", "last purchase date to include (YYYY-MM-DD)")
	state := flag.String("state", "", "customer state filter")
	city := flag.String("city", "", "customer city filter")
	k := flag.Int("k", 0, "number of customer segments; overrides the config")
	seed := flag.Int64("seed", 0, "segmentation random seed; overrides the config")
	serve := flag.Bool("serve", false, "serve the HTTP API instead of printing a report")
	output := flag.String("output", "", "directory for a timestamped JSON report instead of stdout")
	var statuses statusFlag
	flag.Var(&statuses, "status", "order status filter (repeatable)")

	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		exitCode = 1
		return
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db":
			cfg.Database.Driver = *dbType
		case "k":
			cfg.Segmentation.K = *k
		case "seed":
			cfg.Segmentation.Seed = *seed
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		exitCode = 1
		return
	}

	logger := newLogger(os.Stderr, cfg.Log)

	filter, err := dataset.ParseFilter(*dateFrom, *dateTo, *state, *city, statuses)
	if err != nil {
		logger.Error("invalid filter", "error", err)
		exitCode = 1
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ds, err := database.Open(ctx, cfg.Database.Driver, cfg.Database.DSN(cfg.Database.Driver), cfg.Database.MongoDB)
	if err != nil {
		logger.Error("failed to load data", "driver", cfg.Database.Driver, "error", err)
		exitCode = 1
		return
	}
	logger.Info("snapshot loaded", "driver", cfg.Database.Driver, "rows", ds.Counts())

	engine := metrics.NewEngine(metrics.Options{
		ReturnStatuses:    cfg.Dashboard.ReturnStatuses,
		ChurnWindowMonths: cfg.Dashboard.ChurnWindowMonths,
		TopN:              cfg.Dashboard.TopN,
	})
	segOpts := segmentation.Options{
		K:                cfg.Segmentation.K,
		Seed:             cfg.Segmentation.Seed,
		MaxIterations:    cfg.Segmentation.MaxIterations,
		Restarts:         cfg.Segmentation.Restarts,
		Tolerance:        cfg.Segmentation.Tolerance,
		SilhouetteSample: cfg.Segmentation.SilhouetteSample,
	}

	if *serve {
		srv := server.New(ds, engine, segOpts, logger)
		if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
			logger.Error("server stopped", "error", err)
			exitCode = 1
		}
		return
	}

	session := dashboard.NewSession(ds, engine, segOpts, logger)
	result, name, err := compute(ctx, session, *page, *panel, filter, logger)
	if err != nil {
		logger.Error("failed to compute dashboard", "error", err)
		exitCode = 1
		return
	}

	if *output != "" {
		filename := export.TimestampedFilename(*output, name, time.Now())
		if err := export.ExportJSON(filename, export.Wrap(result, time.Now())); err != nil {
			logger.Error("failed to export report", "error", err)
			exitCode = 1
			return
		}
		logger.Info("report exported", "file", filename)
		return
	}

	jsonOutput, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		exitCode = 1
		return
	}
	fmt.Println(string(jsonOutput))
}

// compute returns a single panel, every panel of one page, or the full
// report, along with a name for the exported file.
func compute(ctx context.Context, s *dashboard.Session, page, panel string, f dataset.Filter, logger *slog.Logger) (interface{}, string, error) {
	switch {
	case page != "" && panel != "":
		data, err := s.Panel(ctx, page, panel, f)
		return data, page + "_" + panel, err
	case panel != "":
		return nil, "", fmt.Errorf("-panel %q needs -page", panel)
	case page != "":
		report, err := runner.RunPage(ctx, s, page, f, logger)
		if err != nil {
			return nil, "", err
		}
		return report, page, nil
	default:
		report, err := runner.Run(ctx, s, f, logger)
		if err != nil {
			return nil, "", err
		}
		return report, "report", nil
	}
}

func newLogger(w io.Writer, cfg config.Log) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
