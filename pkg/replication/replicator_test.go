package replication

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"devpulse/pkg/domain"
)

type mockSource struct {
	articles []domain.Article
	err      error
}

func (m *mockSource) GetAllArticles(ctx context.Context) ([]domain.Article, error) {
	return m.articles, m.err
}

type mockTarget struct {
	mu         sync.Mutex
	seen       map[string]bool
	batches    int
	failOnURL  string
	schemaErr  error
	schemaDone bool
}

func (m *mockTarget) EnsureSchema(ctx context.Context) error {
	m.schemaDone = true
	return m.schemaErr
}

func (m *mockTarget) MirrorArticles(ctx context.Context, articles []domain.Article) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	m.batches++
	inserted := 0
	for _, a := range articles {
		if a.URL == m.failOnURL {
			return 0, errors.New("unique violation")
		}
		if !m.seen[a.URL] {
			m.seen[a.URL] = true
			inserted++
		}
	}
	return inserted, nil
}

func makeArticles(n int) []domain.Article {
	out := make([]domain.Article, n)
	for i := range out {
		out[i] = domain.Article{ID: fmt.Sprint(i), URL: fmt.Sprintf("https://example.com/%d", i)}
	}
	return out
}

func TestRun_MirrorsAllArticlesInBatches(t *testing.T) {
	target := &mockTarget{}
	r, err := NewReplicator(Config{Source: &mockSource{articles: makeArticles(250)}, Target: target, BatchSize: 100, Workers: 3})
	if err != nil {
		t.Fatalf("NewReplicator failed: %v", err)
	}

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Processed != 250 || stats.Inserted != 250 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if target.batches != 3 {
		t.Errorf("Expected 3 batches, got %d", target.batches)
	}
	if !target.schemaDone {
		t.Error("Expected schema to be ensured")
	}

	again, err := r.Run(context.Background())
	if err != nil || again.Inserted != 0 || again.Processed != 250 {
		t.Errorf("Expected idempotent second run, got %+v (%v)", again, err)
	}
}

func TestRun_BatchFailureStops(t *testing.T) {
	target := &mockTarget{failOnURL: "https://example.com/5"}
	r, _ := NewReplicator(Config{Source: &mockSource{articles: makeArticles(30)}, Target: target, BatchSize: 10, Workers: 1})

	_, err := r.Run(context.Background())
	if err == nil {
		t.Fatal("Expected error")
	}
}

func TestRun_SourceAndSchemaErrors(t *testing.T) {
	r, _ := NewReplicator(Config{Source: &mockSource{err: errors.New("mongo down")}, Target: &mockTarget{}})
	if _, err := r.Run(context.Background()); err == nil {
		t.Error("Expected source error")
	}

	r, _ = NewReplicator(Config{Source: &mockSource{}, Target: &mockTarget{schemaErr: errors.New("denied")}})
	if _, err := r.Run(context.Background()); err == nil {
		t.Error("Expected schema error")
	}
}

func TestRun_Empty(t *testing.T) {
	r, _ := NewReplicator(Config{Source: &mockSource{}, Target: &mockTarget{}})
	stats, err := r.Run(context.Background())
	if err != nil || stats.Processed != 0 {
		t.Errorf("Expected empty run, got %+v (%v)", stats, err)
	}
}

func TestNewReplicator_Validation(t *testing.T) {
	if _, err := NewReplicator(Config{Target: &mockTarget{}}); err == nil {
		t.Error("Expected error without source")
	}
	if _, err := NewReplicator(Config{Source: &mockSource{}}); err == nil {
		t.Error("Expected error without target")
	}
}
