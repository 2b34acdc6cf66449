package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"devpulse/pkg/config"
	"devpulse/pkg/db"
	"devpulse/pkg/logging"
	"devpulse/pkg/replication"
)

// targetClient is a Postgres connection the mirror can be written through.
type targetClient interface {
	db.DBProvider
	Connect(ctx context.Context) error
	Close() error
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("replicate: %v", err)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "Path to a YAML config file (defaults to $DEVPULSE_CONFIG)")
		target     = flag.String("target", config.DriverPostgres, "Replication target: postgres or supabase")
		batchSize  = flag.Int("batch", replication.DefaultBatchSize, "Articles per batch")
		workers    = flag.Int("workers", replication.DefaultWorkers, "Number of parallel batch workers")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.Logging.Level)
	ctx := context.Background()

	var client targetClient
	switch *target {
	case config.DriverPostgres:
		client = db.NewPostgresClient(db.PostgresConfig{DSN: cfg.Storage.Postgres.DSN, Pool: cfg.Storage.Postgres.Pool})
	case config.DriverSupabase:
		client = db.NewSupabaseClient(db.SupabaseConfig{
			ConnectionString: cfg.Storage.Supabase.ConnectionString,
			SupabaseURL:      cfg.Storage.Supabase.URL,
			SupabaseKey:      cfg.Storage.Supabase.Key,
			Password:         cfg.Storage.Supabase.Password,
			Pool:             cfg.Storage.Supabase.Pool,
		})
	default:
		return fmt.Errorf("unknown target %q", *target)
	}

	mongoClient := db.NewClient(cfg.Storage.Mongo.URI, cfg.Storage.Mongo.Database, cfg.Storage.Mongo.Collection)
	if err := mongoClient.Connect(ctx); err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer mongoClient.Close(ctx)

	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("connect to %s: %w", *target, err)
	}
	defer client.Close()

	replicator, err := replication.NewReplicator(replication.Config{
		Source:    mongoClient,
		Target:    db.NewPostgresStore(client),
		BatchSize: *batchSize,
		Workers:   *workers,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	stats, err := replicator.Run(ctx)
	if err != nil {
		return fmt.Errorf("replication failed: %w", err)
	}
	log.Printf("Done. Processed %d articles (%d new) in %s", stats.Processed, stats.Inserted, time.Since(start))
	return nil
}
