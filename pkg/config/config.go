// Package config loads settings from defaults, an optional YAML file, a
// .env file and the environment, in that order of precedence (last wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"devpulse/pkg/db"
	"devpulse/pkg/domain"
	"devpulse/pkg/llm"
	"devpulse/pkg/ratelimit"
	"devpulse/pkg/sources"
)

// Storage drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSupabase = "supabase"
	DriverMemory   = "memory"
)

const configPathEnv = "DEVPULSE_CONFIG"

// Config holds every setting of the service and the CLIs.
type Config struct {
	Server     ServerConfig    `yaml:"server"`
	Storage    StorageConfig   `yaml:"storage"`
	Sources    SourcesConfig   `yaml:"sources"`
	Generation llm.Config      `yaml:"generation"`
	RateLimit  RateLimitConfig `yaml:"rateLimit"`
	Ingestion  IngestionConfig `yaml:"ingestion"`
	Feed       FeedConfig      `yaml:"feed"`
	Logging    LoggingConfig   `yaml:"logging"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	// IngestTimeout bounds an ingestion triggered over HTTP. The run is
	// detached from the request, so a client disconnect does not stop it.
	IngestTimeout time.Duration `yaml:"ingestTimeout"`
}

// StorageConfig selects and configures the article store.
type StorageConfig struct {
	Driver   string         `yaml:"driver"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Postgres PostgresConfig `yaml:"postgres"`
	Supabase SupabaseConfig `yaml:"supabase"`
}

// MongoConfig describes the MongoDB deployment.
type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// PostgresConfig describes a plain Postgres database.
type PostgresConfig struct {
	DSN  string        `yaml:"dsn"`
	Pool db.PoolConfig `yaml:"pool"`
}

// SupabaseConfig describes a Supabase project.
type SupabaseConfig struct {
	URL              string        `yaml:"url"`
	Key              string        `yaml:"key"`
	Password         string        `yaml:"password"`
	ConnectionString string        `yaml:"connectionString"`
	Pool             db.PoolConfig `yaml:"pool"`
}

// SourcesConfig selects the feeds to ingest.
type SourcesConfig struct {
	// Enabled lists built-in sources by name: Hacker News, GitHub, Dev.to,
	// TechCrunch, Smashing Magazine, CSS-Tricks.
	Enabled     []string             `yaml:"enabled"`
	Feeds       []sources.FeedConfig `yaml:"feeds"`
	GitHubToken string               `yaml:"githubToken"`
	Timeout     time.Duration        `yaml:"timeout"`
}

// RateLimitConfig bounds ingestion and search triggers per caller.
type RateLimitConfig struct {
	MaxRequests int           `yaml:"maxRequests"`
	Window      time.Duration `yaml:"window"`
}

// IngestionConfig tunes ingestion runs.
type IngestionConfig struct {
	// Interval > 0 runs ingestion periodically in the background.
	Interval       time.Duration `yaml:"interval"`
	SummaryWorkers int           `yaml:"summaryWorkers"`
}

// FeedConfig describes the exported RSS feed.
type FeedConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Link        string `yaml:"link"`
	Author      string `yaml:"author"`
	Size        int    `yaml:"size"`
}

// LoggingConfig sets the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 60 * time.Second,
			IngestTimeout:  2 * time.Minute,
		},
		Storage: StorageConfig{
			Driver: DriverMongo,
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   "devpulse",
				Collection: "articles",
			},
		},
		Sources: SourcesConfig{
			Enabled: []string{domain.SourceHackerNews, domain.SourceGitHub, domain.SourceDevTo},
			Timeout: 15 * time.Second,
		},
		Generation: llm.Config{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-3.5-turbo",
			Timeout:  20 * time.Second,
		},
		RateLimit: RateLimitConfig{
			MaxRequests: ratelimit.DefaultMaxRequests,
			Window:      ratelimit.DefaultWindow,
		},
		Ingestion: IngestionConfig{SummaryWorkers: 4},
		Feed: FeedConfig{
			Title:       "DevPulse",
			Description: "Top stories from Hacker News, GitHub and Dev.to",
			Link:        "http://localhost:8080",
			Author:      "DevPulse",
			Size:        50,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load builds the configuration. path may be empty, in which case
// DEVPULSE_CONFIG is consulted; with neither, only defaults and the
// environment apply. A missing .env file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.Server.Addr = getEnv("DEVPULSE_ADDR", c.Server.Addr)
	if port := getEnvAsInt("PORT", 0); port > 0 {
		c.Server.Addr = fmt.Sprintf(":%d", port)
	}

	c.Storage.Driver = getEnv("STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.Mongo.URI = getEnv("MONGODB_URI", c.Storage.Mongo.URI)
	c.Storage.Mongo.Database = getEnv("MONGODB_DATABASE", c.Storage.Mongo.Database)
	c.Storage.Postgres.DSN = getEnv("DATABASE_URL", c.Storage.Postgres.DSN)
	c.Storage.Supabase.URL = getEnv("SUPABASE_URL", c.Storage.Supabase.URL)
	c.Storage.Supabase.Key = getEnv("SUPABASE_KEY", c.Storage.Supabase.Key)
	c.Storage.Supabase.Password = getEnv("SUPABASE_DB_PASSWORD", c.Storage.Supabase.Password)

	c.Sources.GitHubToken = getEnv("GITHUB_TOKEN", c.Sources.GitHubToken)
	if enabled := getEnv("DEVPULSE_SOURCES", ""); enabled != "" {
		c.Sources.Enabled = splitList(enabled)
	}

	c.Generation.APIKey = getEnv("OPENAI_API_KEY", c.Generation.APIKey)
	c.Generation.Model = getEnv("OPENAI_MODEL", c.Generation.Model)
	c.Generation.Endpoint = getEnv("OPENAI_ENDPOINT", c.Generation.Endpoint)

	c.RateLimit.MaxRequests = getEnvAsInt("RATE_LIMIT_MAX", c.RateLimit.MaxRequests)
	c.Ingestion.Interval = getEnvAsDuration("INGEST_INTERVAL", c.Ingestion.Interval)
	c.Feed.Link = getEnv("FEED_LINK", c.Feed.Link)
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
}

// Validate checks the settings the selected storage driver needs.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMongo:
		if c.Storage.Mongo.URI == "" {
			return fmt.Errorf("MONGODB_URI is required for the mongo driver")
		}
	case DriverPostgres:
		if c.Storage.Postgres.DSN == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	case DriverSupabase:
		s := c.Storage.Supabase
		if s.ConnectionString == "" && (s.URL == "" || s.Password == "") {
			return fmt.Errorf("supabase driver needs a connection string or SUPABASE_URL and SUPABASE_DB_PASSWORD")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	for _, f := range c.Sources.Feeds {
		if f.Name == "" || f.URL == "" {
			return fmt.Errorf("feed entries need a name and a url")
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
