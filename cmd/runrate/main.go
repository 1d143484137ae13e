package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"runrate/internal/amqp"
	"runrate/internal/backend"
	"runrate/internal/cache"
	"runrate/internal/cli"
	apphttp "runrate/internal/http"
	applog "runrate/internal/log"
	"runrate/internal/middleware/ratelimit"
	"runrate/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	src, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize data backend", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	loader := cache.NewLoader(cfg.CacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(loader)
	cacheManager.StartCleanup(10 * time.Minute)

	dashboard := services.NewDashboardService(src.Reader, loader,
		applog.NewStructuredLogger(logger.WithComponent(applog.ComponentReport)),
		services.DashboardOptions{
			Title:    cfg.DashboardTitle,
			LogoURL:  cfg.LogoURL,
			TopN:     cfg.TopN,
			Location: cfg.Location(),
		})

	srv := apphttp.NewServer(apphttp.Options{
		Addr:        ":" + cfg.Port,
		Logger:      logger,
		ExportLimit: ratelimit.Config{RequestsPerWindow: 10, Window: time.Minute},
	}, dashboard)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cacheManager.Stop()
		if err := src.Close(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err)
		}
	})

	if cfg.AMQPEnabled() {
		go func() {
			err := amqp.RunReloadConsumer(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, dashboard.HandleReload)
			if err != nil {
				logger.Error("Reload consumer stopped", applog.FieldError, err, applog.FieldComponent, applog.ComponentAMQP)
			}
		}()
		logger.Info("Listening for reload notifications", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	logger.Info("Starting runrate server",
		"port", cfg.Port,
		applog.FieldBackend, cfg.DataBackend,
		applog.FieldSource, dashboard.SourceKey(),
		"cache_ttl", loader.TTL().String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
