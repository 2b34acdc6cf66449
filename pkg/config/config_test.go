package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"devpulse/pkg/domain"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		configPathEnv, "DEVPULSE_ADDR", "PORT", "STORAGE_DRIVER", "MONGODB_URI", "MONGODB_DATABASE",
		"DATABASE_URL", "SUPABASE_URL", "SUPABASE_KEY", "SUPABASE_DB_PASSWORD", "GITHUB_TOKEN",
		"DEVPULSE_SOURCES", "OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_ENDPOINT", "RATE_LIMIT_MAX",
		"INGEST_INTERVAL", "FEED_LINK", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "devpulse.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage.Driver != DriverMongo || cfg.Storage.Mongo.Database != "devpulse" {
		t.Errorf("Unexpected storage defaults: %+v", cfg.Storage)
	}
	want := []string{domain.SourceHackerNews, domain.SourceGitHub, domain.SourceDevTo}
	if !reflect.DeepEqual(cfg.Sources.Enabled, want) {
		t.Errorf("Expected default sources %v, got %v", want, cfg.Sources.Enabled)
	}
	if cfg.RateLimit.MaxRequests != 10 || cfg.RateLimit.Window != time.Minute {
		t.Errorf("Unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
	if cfg.Sources.Timeout != 15*time.Second {
		t.Errorf("Expected 15s adapter timeout, got %v", cfg.Sources.Timeout)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  addr: ":9090"
storage:
  driver: memory
sources:
  enabled: ["GitHub", "CSS-Tricks"]
  timeout: 5s
  feeds:
    - name: Go Blog
      url: https://go.dev/blog/feed.atom
rateLimit:
  maxRequests: 3
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":9090" || cfg.Storage.Driver != DriverMemory {
		t.Errorf("Expected YAML values, got %+v %+v", cfg.Server, cfg.Storage)
	}
	if cfg.Sources.Timeout != 5*time.Second || len(cfg.Sources.Feeds) != 1 || cfg.Sources.Feeds[0].Name != "Go Blog" {
		t.Errorf("Unexpected sources: %+v", cfg.Sources)
	}
	if cfg.RateLimit.MaxRequests != 3 || cfg.RateLimit.Window != time.Minute {
		t.Errorf("Expected partial override to keep window default, got %+v", cfg.RateLimit)
	}
	if cfg.Storage.Mongo.Collection != "articles" {
		t.Errorf("Expected untouched defaults to survive, got %q", cfg.Storage.Mongo.Collection)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "storage:\n  driver: memory\n")
	t.Setenv(configPathEnv, path)
	t.Setenv("STORAGE_DRIVER", DriverPostgres)
	t.Setenv("DATABASE_URL", "postgres://localhost/devpulse")
	t.Setenv("PORT", "7000")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DEVPULSE_SOURCES", "Hacker News, Dev.to")
	t.Setenv("INGEST_INTERVAL", "30m")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage.Driver != DriverPostgres || cfg.Storage.Postgres.DSN != "postgres://localhost/devpulse" {
		t.Errorf("Unexpected storage: %+v", cfg.Storage)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("Expected :7000, got %q", cfg.Server.Addr)
	}
	if !cfg.Generation.Configured() {
		t.Error("Expected generation to be configured")
	}
	if !reflect.DeepEqual(cfg.Sources.Enabled, []string{"Hacker News", "Dev.to"}) {
		t.Errorf("Unexpected sources: %v", cfg.Sources.Enabled)
	}
	if cfg.Ingestion.Interval != 30*time.Minute {
		t.Errorf("Expected 30m interval, got %v", cfg.Ingestion.Interval)
	}
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
	if _, err := Load(writeConfig(t, "server: [")); err == nil {
		t.Error("Expected error for invalid YAML")
	}
	if _, err := Load(writeConfig(t, "storage:\n  driver: cassandra\n")); err == nil {
		t.Error("Expected error for unknown driver")
	}
	if _, err := Load(writeConfig(t, "storage:\n  driver: postgres\n")); err == nil {
		t.Error("Expected error for postgres without DSN")
	}
}
