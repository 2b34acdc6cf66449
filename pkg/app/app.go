// Package app turns a config.Config into connected, ready-to-use components
// shared by the server and the CLIs.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"devpulse/pkg/categorize"
	"devpulse/pkg/config"
	"devpulse/pkg/db"
	"devpulse/pkg/domain"
	"devpulse/pkg/httpclient"
	"devpulse/pkg/ingest"
	"devpulse/pkg/llm"
	"devpulse/pkg/sources"
	"devpulse/pkg/summary"
)

// Store is a connected article store with its lifecycle hooks.
type Store struct {
	db.ArticleStore
	Ping  func(ctx context.Context) error
	Close func(ctx context.Context) error
}

// OpenStore connects the configured driver and prepares indexes or schema.
func OpenStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		client := db.NewClient(cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err := client.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		if err := client.EnsureIndexes(ctx); err != nil {
			_ = client.Close(ctx)
			return nil, err
		}
		logger.Info("connected to MongoDB", "database", cfg.Mongo.Database, "collection", cfg.Mongo.Collection)
		return &Store{ArticleStore: client, Ping: client.Connect, Close: client.Close}, nil

	case config.DriverPostgres:
		client := db.NewPostgresClient(db.PostgresConfig{DSN: cfg.Postgres.DSN, Pool: cfg.Postgres.Pool})
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		store := db.NewPostgresStore(client)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		logger.Info("connected to Postgres")
		return &Store{
			ArticleStore: store,
			Ping:         client.Ping,
			Close:        func(context.Context) error { return client.Close() },
		}, nil

	case config.DriverSupabase:
		client := db.NewSupabaseClient(db.SupabaseConfig{
			ConnectionString: cfg.Supabase.ConnectionString,
			SupabaseURL:      cfg.Supabase.URL,
			SupabaseKey:      cfg.Supabase.Key,
			Password:         cfg.Supabase.Password,
			Pool:             cfg.Supabase.Pool,
		})
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		if !client.HasDirectDB() {
			return nil, fmt.Errorf("supabase: storing articles needs a direct database connection")
		}
		store := db.NewPostgresStore(client)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		logger.Info("connected to Supabase")
		return &Store{
			ArticleStore: store,
			Ping:         client.Ping,
			Close:        func(context.Context) error { return client.Close() },
		}, nil

	case config.DriverMemory:
		logger.Warn("using in-memory article store, data is lost on exit")
		return &Store{
			ArticleStore: db.NewMemoryStore(),
			Ping:         func(context.Context) error { return nil },
			Close:        func(context.Context) error { return nil },
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// NewGenerator returns the configured text generator, or nil when no API key
// is set so every caller takes its template path.
func NewGenerator(cfg llm.Config) llm.Generator {
	if !cfg.Configured() {
		return nil
	}
	return llm.NewChatClient(cfg)
}

// BuildSources creates the enabled adapters followed by the extra feeds.
func BuildSources(cfg config.SourcesConfig, logger *slog.Logger) ([]sources.Source, error) {
	api := httpclient.NewClientWithTimeout(httpclient.APIClient, cfg.Timeout)
	// Some publishers answer 403/406 to non-browser user agents.
	browser := httpclient.NewClientWithTimeout(httpclient.BrowserClient, cfg.Timeout)

	var out []sources.Source
	for _, name := range cfg.Enabled {
		switch name {
		case domain.SourceHackerNews:
			out = append(out, sources.NewHackerNews(api, sources.HackerNewsConfig{}, logger))
		case domain.SourceGitHub:
			out = append(out, sources.NewGitHub(api, sources.GitHubConfig{Token: cfg.GitHubToken}, logger))
		case domain.SourceDevTo:
			out = append(out, sources.NewDevTo(api, sources.DevToConfig{}, logger))
		default:
			feed, ok := knownWordPressFeed(name)
			if !ok {
				return nil, fmt.Errorf("unknown source %q", name)
			}
			out = append(out, sources.NewWordPress(api, feed, logger))
		}
	}

	for _, feed := range cfg.Feeds {
		out = append(out, sources.NewRSS(browser, feed, logger))
	}
	return out, nil
}

func knownWordPressFeed(name string) (sources.FeedConfig, bool) {
	for _, feed := range sources.KnownWordPressFeeds {
		if feed.Name == name {
			return feed, true
		}
	}
	return sources.FeedConfig{}, false
}

// SourceNames lists the names of the given adapters.
func SourceNames(srcs []sources.Source) []string {
	names := make([]string, len(srcs))
	for i, s := range srcs {
		names[i] = s.Name()
	}
	return names
}

// NewCoordinator wires an ingestion coordinator from configuration.
func NewCoordinator(cfg config.Config, store ingest.Store, srcs []sources.Source, generator llm.Generator, logger *slog.Logger) (*ingest.Coordinator, error) {
	return ingest.NewCoordinator(ingest.Config{
		Sources:        srcs,
		Store:          store,
		Categorizer:    categorize.NewDefault(),
		Summarizer:     summary.New(generator, logger),
		AdapterTimeout: cfg.Sources.Timeout,
		SummaryWorkers: cfg.Ingestion.SummaryWorkers,
		Logger:         logger,
	})
}
