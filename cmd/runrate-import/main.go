package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"runrate/internal/amqp"
	"runrate/internal/backend"
	"runrate/internal/cli"
	applog "runrate/internal/log"
	"runrate/internal/services"
	"runrate/internal/storage"
	"runrate/internal/worker"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup always happens.
func run() int {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(applog.ComponentImport)
	cfg := cli.LoadAndValidateConfig(logger)

	from := flag.String("from", backend.CSVBackend.String(), "source backend to import from: csv or sheets")
	csvPath := flag.String("csv", cfg.CSVPath, "CSV export to import when -from=csv")
	dbPath := flag.String("db", cfg.SQLiteDBPath, "SQLite snapshot database")
	interval := flag.Duration("interval", 0, "repeat the import on this interval; 0 imports once")
	flag.Parse()

	srcType, err := importSource(*from)
	if err != nil {
		logger.Error("Unsupported import source", applog.FieldError, err, "from", *from)
		return 2
	}

	srcCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		return 1
	}
	srcCfg.Type = srcType
	srcCfg.CSVPath = *csvPath

	factory := backend.NewFactory(logger.Logger)
	ctx, _ := cli.GracefulShutdown(logger, 30*time.Second, nil)

	src, err := factory.CreateBackend(ctx, srcCfg)
	if err != nil {
		logger.Error("Failed to initialize import source", applog.FieldError, err, "from", *from)
		return 1
	}
	defer src.Close()

	repo, err := storage.NewSQLiteRepository(*dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", applog.FieldError, err, "path", *dbPath)
		return 1
	}
	defer repo.Close()

	var publisher services.ReloadPublisher
	if cfg.AMQPEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, dashboards will not be notified", applog.FieldError, err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
		}
	} else {
		logger.Info("AMQP disabled - dashboards pick up the snapshot when their cache expires")
	}

	importer := services.NewImportService(src.Reader, repo, publisher)
	w := worker.NewImportWorker(importer, *interval)

	logger.Info("Starting contract import",
		applog.FieldSource, src.Reader.Key(),
		"destination", repo.Key(),
		"schema_version", repo.SchemaVersion(),
		"interval", interval.String())
	if err := w.Run(ctx); err != nil {
		logger.Error("Import failed", applog.FieldError, err)
		return 1
	}
	return 0
}

// importSource accepts the backends a snapshot can be imported from.
func importSource(from string) (backend.BackendType, error) {
	t := backend.BackendType(from)
	switch t {
	case backend.CSVBackend, backend.SheetsBackend:
		return t, nil
	}
	return "", fmt.Errorf("import source %q: want %s or %s", from, backend.CSVBackend, backend.SheetsBackend)
}
