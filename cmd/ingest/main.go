package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"devpulse/pkg/app"
	"devpulse/pkg/config"
	"devpulse/pkg/domain"
	"devpulse/pkg/ingest"
	"devpulse/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("ingest: %v", err)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "Path to a YAML config file (defaults to $DEVPULSE_CONFIG)")
		interval   = flag.Duration("interval", 0, "Repeat ingestion at this interval (0 runs once)")
		sourceList = flag.String("sources", "", "Comma-separated sources to fetch, overrides the configured list")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *sourceList != "" {
		cfg.Sources.Enabled = nil
		for _, name := range strings.Split(*sourceList, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.Sources.Enabled = append(cfg.Sources.Enabled, name)
			}
		}
	}
	logger := logging.New(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Printf("Failed to close store: %v", err)
		}
	}()

	srcs, err := app.BuildSources(cfg.Sources, logger)
	if err != nil {
		return fmt.Errorf("build sources: %w", err)
	}
	coordinator, err := app.NewCoordinator(cfg, store, srcs, app.NewGenerator(cfg.Generation), logger)
	if err != nil {
		return fmt.Errorf("create coordinator: %w", err)
	}

	if *interval <= 0 {
		start := time.Now()
		log.Printf("Ingesting from %v", app.SourceNames(srcs))
		result, err := coordinator.Ingest(ctx)
		printResult(result)
		if err != nil {
			return err
		}
		log.Printf("Done. Duration: %s", time.Since(start))
		return nil
	}

	log.Printf("Ingesting from %v every %s", app.SourceNames(srcs), *interval)
	ingest.RunEvery(ctx, coordinator, *interval, func(result domain.IngestionResult, err error) {
		printResult(result)
		if err != nil {
			log.Printf("Ingestion failed: %v", err)
		}
	})
	return nil
}

func printResult(result domain.IngestionResult) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Printf("Failed to print result: %v", err)
	}
}
