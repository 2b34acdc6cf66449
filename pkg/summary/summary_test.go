package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"devpulse/pkg/domain"
)

// mockGenerator is a mock implementation of llm.Generator for testing
type mockGenerator struct {
	text      string
	err       error
	callCount int
	prompt    string
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	m.callCount++
	m.prompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func sampleItem() domain.NormalizedItem {
	return domain.NormalizedItem{
		Title:  "Scaling React apps with Docker",
		URL:    "https://example.com/react-docker",
		Source: domain.SourceHackerNews,
		Author: "pg",
		Score:  120,
	}
}

func TestSummarize_UsesGenerator(t *testing.T) {
	gen := &mockGenerator{text: "  A concise summary.  "}
	s := New(gen, nil)

	got := s.Summarize(context.Background(), sampleItem())
	if got != "A concise summary." {
		t.Errorf("Expected generated summary, got %q", got)
	}
	if !strings.Contains(gen.prompt, "Scaling React apps with Docker") || !strings.Contains(gen.prompt, "Score: 120") {
		t.Errorf("Prompt missing item details: %q", gen.prompt)
	}
}

func TestSummarize_FallsBackOnError(t *testing.T) {
	gen := &mockGenerator{err: errors.New("boom")}
	s := New(gen, nil)

	item := sampleItem()
	got := s.Summarize(context.Background(), item)
	if got == "" {
		t.Fatal("Expected non-empty fallback summary")
	}
	if got != Fallback(item) {
		t.Errorf("Expected fallback summary %q, got %q", Fallback(item), got)
	}
	if gen.callCount != 1 {
		t.Errorf("Expected generator to be called once, got %d", gen.callCount)
	}
}

func TestSummarize_FallsBackOnBlankGeneration(t *testing.T) {
	s := New(&mockGenerator{text: "   "}, nil)
	if got := s.Summarize(context.Background(), sampleItem()); strings.TrimSpace(got) == "" {
		t.Fatal("Expected non-empty summary")
	}
}

func TestSummarize_NoGenerator(t *testing.T) {
	s := New(nil, nil)
	if got := s.Summarize(context.Background(), sampleItem()); got == "" {
		t.Fatal("Expected non-empty summary without generator")
	}
}

func TestFallback_AlwaysNonEmpty(t *testing.T) {
	sources := []string{
		domain.SourceHackerNews, domain.SourceGitHub, domain.SourceDevTo,
		domain.SourceTechCrunch, domain.SourceSmashing, domain.SourceCSSTricks, "Unknown Feed", "",
	}
	titles := []string{"", "x", "Kubernetes and AWS in production", "A very long title with many words in it"}

	for _, source := range sources {
		for i, title := range titles {
			item := domain.NormalizedItem{Title: title, Source: source, URL: "https://example.com/" + string(rune('a'+i))}
			if got := Fallback(item); strings.TrimSpace(got) == "" {
				t.Errorf("Fallback(%q, %q) returned empty summary", source, title)
			}
		}
	}
}

func TestFallback_Deterministic(t *testing.T) {
	item := sampleItem()
	first := Fallback(item)
	for i := 0; i < 10; i++ {
		if got := Fallback(item); got != first {
			t.Fatalf("Expected deterministic summary %q, got %q", first, got)
		}
	}
}

func TestFallback_UsesDescriptionAndAuthor(t *testing.T) {
	item := domain.NormalizedItem{
		Title:       "fastcache: A fast in-memory cache",
		URL:         "https://github.com/acme/fastcache",
		Source:      domain.SourceGitHub,
		Author:      "acme",
		Score:       42,
		Description: "A fast in-memory cache.",
	}
	got := Fallback(item)
	if !strings.Contains(got, "42") {
		t.Errorf("Expected score in summary, got %q", got)
	}
	if strings.Contains(got, "..") {
		t.Errorf("Expected no doubled punctuation, got %q", got)
	}
}

func TestFallback_FeedWithoutTemplatesIsNeutral(t *testing.T) {
	for i := 0; i < 20; i++ {
		item := domain.NormalizedItem{
			Title:  "Go 1.24 is released",
			URL:    fmt.Sprintf("https://go.dev/blog/post-%d", i),
			Source: "Go Blog",
		}
		got := Fallback(item)
		if !strings.Contains(got, "Go Blog") {
			t.Errorf("Expected feed name in %q", got)
		}
		for _, unwanted := range []string{"Hacker News", "HN", "points", "upvotes", "Unknown", " 0 "} {
			if strings.Contains(got, unwanted) {
				t.Errorf("Expected neutral summary, got %q", got)
			}
		}
	}

	withDescription := Fallback(domain.NormalizedItem{
		Title:       "Go 1.24 is released",
		URL:         "https://go.dev/blog/go1.24",
		Source:      "Go Blog",
		Author:      "The Go Team",
		Description: "Generic type aliases are now fully supported.",
	})
	if !strings.Contains(withDescription, "Generic type aliases are now fully supported") {
		t.Errorf("Expected description in %q", withDescription)
	}
	if strings.Contains(withDescription, "..") {
		t.Errorf("Expected no doubled punctuation, got %q", withDescription)
	}
}

func TestKeywordPhrase(t *testing.T) {
	if got := keywordPhrase("Python and Docker tips for AWS"); got != "Focuses on Python and Docker" {
		t.Errorf("Unexpected phrase: %q", got)
	}
	if got := keywordPhrase("The quiet joy of gardening today"); got != "About The quiet joy of" {
		t.Errorf("Unexpected phrase: %q", got)
	}
}
