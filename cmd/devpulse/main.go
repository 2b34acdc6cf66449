package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devpulse/pkg/app"
	"devpulse/pkg/config"
	"devpulse/pkg/domain"
	"devpulse/pkg/ingest"
	"devpulse/pkg/logging"
	"devpulse/pkg/query"
	"devpulse/pkg/ratelimit"
	"devpulse/pkg/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("devpulse: %v", err)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "Path to a YAML config file (defaults to $DEVPULSE_CONFIG)")
		addr       = flag.String("addr", "", "Listen address, overrides the configured one")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger := logging.New(cfg.Logging.Level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Error("closing store", "error", err)
		}
	}()

	srcs, err := app.BuildSources(cfg.Sources, logger)
	if err != nil {
		return err
	}
	generator := app.NewGenerator(cfg.Generation)
	if generator == nil {
		logger.Info("text generation not configured, using template summaries and plain keyword search")
	}

	coordinator, err := app.NewCoordinator(cfg, store, srcs, generator, logger)
	if err != nil {
		return err
	}

	limiter := ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	go limiter.Run(ctx)

	if cfg.Ingestion.Interval > 0 {
		logger.Info("background ingestion enabled", "interval", cfg.Ingestion.Interval)
		go ingest.RunEvery(ctx, coordinator, cfg.Ingestion.Interval, func(_ domain.IngestionResult, err error) {
			if err != nil {
				logger.Error("background ingestion failed", "error", err)
			}
		})
	}

	srv := server.New(server.Options{
		Ingester:       coordinator,
		Engine:         query.NewEngine(store, generator, logger),
		Limiter:        limiter,
		Health:         store.Ping,
		Sources:        app.SourceNames(srcs),
		Feed:           cfg.Feed,
		RequestTimeout: cfg.Server.RequestTimeout,
		IngestTimeout:  cfg.Server.IngestTimeout,
		Logger:         logger,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
