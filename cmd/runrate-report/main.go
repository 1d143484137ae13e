package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"runrate/internal/backend"
	"runrate/internal/cache"
	"runrate/internal/cli"
	"runrate/internal/core"
	"runrate/internal/export"
	applog "runrate/internal/log"
	"runrate/internal/services"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup always happens.
func run() int {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(applog.ComponentExport)
	cfg := cli.LoadAndValidateConfig(logger)

	format := flag.String("format", "xlsx", "report format: xlsx or pdf")
	out := flag.String("out", "", "output file (default runrate-<date>.<format>)")
	fromStr := flag.String("from", "", "start-date range lower bound, YYYY-MM-DD")
	toStr := flag.String("to", "", "start-date range upper bound, YYYY-MM-DD")
	flag.Parse()

	var generate func(services.Dashboard) ([]byte, error)
	switch *format {
	case "xlsx":
		generate = export.NewXLSX().Generate
	case "pdf":
		generate = export.NewPDF().Generate
	default:
		logger.Error("Unsupported report format", applog.FieldFormat, *format)
		return 2
	}

	from, err := parseBound(*fromStr)
	if err != nil {
		logger.Error("Invalid date flag", applog.FieldError, err, "flag", "from")
		return 2
	}
	to, err := parseBound(*toStr)
	if err != nil {
		logger.Error("Invalid date flag", applog.FieldError, err, "flag", "to")
		return 2
	}
	q := services.DashboardQuery{From: from, To: to}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		return 1
	}
	src, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize data backend", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		return 1
	}
	defer src.Close()

	svc := services.NewDashboardService(src.Reader, cache.NewLoader(0), applog.NewStructuredLogger(logger), services.DashboardOptions{
		Title:    cfg.DashboardTitle,
		LogoURL:  cfg.LogoURL,
		TopN:     cfg.TopN,
		Location: cfg.Location(),
	})
	d := svc.Build(ctx, q)
	if d.Notice != nil {
		logger.Warn("Report built with notice", applog.FieldNoticeKind, d.Notice.Kind, "message", d.Notice.Message)
	}

	data, err := generate(d)
	if err != nil {
		logger.Error("Report generation failed", applog.FieldError, err, applog.FieldFormat, *format)
		return 1
	}

	path := *out
	if path == "" {
		path = export.Filename(d, *format)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Error("Failed to write report", applog.FieldError, err, "path", path)
		return 1
	}
	logger.Info("Report written",
		"path", path,
		applog.FieldFormat, *format,
		applog.FieldRows, d.Summary.TotalContracts,
		"run_rate", d.RunRate().StringFixed(2))
	return 0
}

// parseBound reads an optional YYYY-MM-DD flag; empty means unbounded.
func parseBound(v string) (core.Date, error) {
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, fmt.Errorf("date %q: %w", v, err)
	}
	return d, nil
}
