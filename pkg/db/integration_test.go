package db

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"devpulse/pkg/domain"
)

// storeContract runs the same upsert/find/count checks against any backend.
func storeContract(t *testing.T, ctx context.Context, store ArticleStore) {
	t.Helper()

	url := fmt.Sprintf("https://example.com/%d", time.Now().UnixNano())
	t0 := time.Now().UTC().Truncate(time.Millisecond)
	t1 := t0.Add(time.Minute)

	res, err := store.UpsertByURL(ctx, url, fields("First", 55, t0), domain.InsertFields{CreatedAt: t0})
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if !res.Inserted {
		t.Error("Expected first upsert to insert")
	}

	res, err = store.UpsertByURL(ctx, url, fields("Second", 80, t1), domain.InsertFields{CreatedAt: t1})
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if res.Inserted {
		t.Error("Expected second upsert to update")
	}

	found, err := store.FindMany(ctx, domain.ArticleFilter{Keywords: []string{"second"}, CreatedSince: t0}, domain.SortNewest, 0, 50)
	if err != nil {
		t.Fatalf("FindMany failed: %v", err)
	}
	var got *domain.Article
	for i := range found {
		if found[i].URL == url {
			got = &found[i]
		}
	}
	if got == nil {
		t.Fatalf("Expected %s in results", url)
	}
	if !got.CreatedAt.Equal(t0) || !got.UpdatedAt.Equal(t1) || got.Score != 80 {
		t.Errorf("Unexpected stored article: %+v", got)
	}

	n, err := store.CountMatching(ctx, domain.ArticleFilter{Sources: []string{domain.SourceHackerNews}})
	if err != nil || n < 1 {
		t.Errorf("Expected at least one Hacker News article, got %d (%v)", n, err)
	}

	bySource, err := store.CountBySource(ctx)
	if err != nil {
		t.Fatalf("CountBySource failed: %v", err)
	}
	if bySource[domain.SourceHackerNews] != n {
		t.Errorf("Expected grouped Hacker News count %d, got %d", n, bySource[domain.SourceHackerNews])
	}
}

func TestIntegration_MongoStore(t *testing.T) {
	uri := os.Getenv("DEVPULSE_TEST_MONGO_URI")
	if testing.Short() || uri == "" {
		t.Skip("Skipping integration test (set DEVPULSE_TEST_MONGO_URI)")
	}

	ctx := context.Background()
	client := NewClient(uri, "devpulse_test", "articles_test")
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Close(ctx)

	if err := client.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}
	// Second call must tolerate existing indexes.
	if err := client.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes is not idempotent: %v", err)
	}
	specs, err := client.collection.Indexes().ListSpecifications(ctx)
	if err != nil {
		t.Fatalf("ListSpecifications failed: %v", err)
	}
	names := map[string]bool{}
	for _, spec := range specs {
		names[spec.Name] = true
	}
	for _, want := range []string{"url_unique", "created_desc", TextIndexName} {
		if !names[want] {
			t.Errorf("Expected index %s, got %v", want, names)
		}
	}

	storeContract(t, ctx, client)
}

func TestIntegration_PostgresStore(t *testing.T) {
	dsn := os.Getenv("DEVPULSE_TEST_POSTGRES_DSN")
	if testing.Short() || dsn == "" {
		t.Skip("Skipping integration test (set DEVPULSE_TEST_POSTGRES_DSN)")
	}

	ctx := context.Background()
	client := NewPostgresClient(PostgresConfig{DSN: dsn})
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer client.Close()

	store := NewPostgresStore(client)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	storeContract(t, ctx, store)

	now := time.Now().UTC().Truncate(time.Millisecond)
	mirrored := domain.Article{
		ID:        fmt.Sprintf("mirror-%d", now.UnixNano()),
		URL:       fmt.Sprintf("https://example.com/mirror/%d", now.UnixNano()),
		Title:     "Mirrored",
		Source:    domain.SourceDevTo,
		Summary:   "s",
		CreatedAt: now,
		UpdatedAt: now,
	}
	inserted, err := store.MirrorArticles(ctx, []domain.Article{mirrored})
	if err != nil || inserted != 1 {
		t.Fatalf("Expected 1 mirrored insert, got %d (%v)", inserted, err)
	}
	inserted, err = store.MirrorArticles(ctx, []domain.Article{mirrored})
	if err != nil || inserted != 0 {
		t.Errorf("Expected mirror to be idempotent, got %d (%v)", inserted, err)
	}
}
