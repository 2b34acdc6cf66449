package domain

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"
)

func TestPaginationValidate(t *testing.T) {
	tests := []struct {
		name    string
		page    Pagination
		wantErr bool
	}{
		{"first page", Pagination{Offset: 0, Limit: 10}, false},
		{"later page", Pagination{Offset: 30, Limit: 10}, false},
		{"negative offset", Pagination{Offset: -1, Limit: 10}, true},
		{"zero limit", Pagination{Offset: 0, Limit: 0}, true},
		{"negative limit", Pagination{Offset: 0, Limit: -5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.page.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPagination) {
					t.Errorf("Expected ErrInvalidPagination, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name        string
		page        Pagination
		wantItems   []int
		wantHasMore bool
	}{
		{"first page", Pagination{Offset: 0, Limit: 2}, []int{1, 2}, true},
		{"middle page", Pagination{Offset: 2, Limit: 2}, []int{3, 4}, true},
		{"last full page", Pagination{Offset: 3, Limit: 2}, []int{4, 5}, false},
		{"partial page", Pagination{Offset: 4, Limit: 2}, []int{5}, false},
		{"past the end", Pagination{Offset: 9, Limit: 2}, []int{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hasMore := Window(items, tt.page)
			if !reflect.DeepEqual(got, tt.wantItems) {
				t.Errorf("Expected %v, got %v", tt.wantItems, got)
			}
			if hasMore != tt.wantHasMore {
				t.Errorf("Expected hasMore=%v, got %v", tt.wantHasMore, hasMore)
			}
		})
	}
}

func TestTrimExtra(t *testing.T) {
	got, hasMore := TrimExtra([]string{"a", "b", "c"}, 2)
	if !reflect.DeepEqual(got, []string{"a", "b"}) || !hasMore {
		t.Errorf("Expected [a b] with more, got %v %v", got, hasMore)
	}

	got, hasMore = TrimExtra([]string{"a", "b"}, 2)
	if len(got) != 2 || hasMore {
		t.Errorf("Expected exactly 2 without more, got %v %v", got, hasMore)
	}
}

func TestArticleFilterMatches(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	article := Article{
		Title:     "Rust in production",
		Source:    SourceHackerNews,
		Author:    "ferris",
		Tags:      []string{"Systems"},
		Summary:   "A deep dive into memory safety.",
		CreatedAt: now,
	}

	tests := []struct {
		name   string
		filter ArticleFilter
		want   bool
	}{
		{"empty filter", ArticleFilter{}, true},
		{"source match", ArticleFilter{Sources: []string{SourceGitHub, SourceHackerNews}}, true},
		{"source mismatch", ArticleFilter{Sources: []string{SourceDevTo}}, false},
		{"title keyword, different case", ArticleFilter{Keywords: []string{"RUST"}}, true},
		{"summary keyword", ArticleFilter{Keywords: []string{"memory"}}, true},
		{"tag keyword", ArticleFilter{Keywords: []string{"systems"}}, true},
		{"author keyword", ArticleFilter{Keywords: []string{"Ferris"}}, true},
		{"source keyword", ArticleFilter{Keywords: []string{"hacker"}}, true},
		{"any keyword matches", ArticleFilter{Keywords: []string{"kotlin", "rust"}}, true},
		{"no keyword matches", ArticleFilter{Keywords: []string{"kotlin", "swift"}}, false},
		{"created since before", ArticleFilter{CreatedSince: now.Add(-time.Hour)}, true},
		{"created since after", ArticleFilter{CreatedSince: now.Add(time.Hour)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(article); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestUserPreferences(t *testing.T) {
	prefs := UserPreferences{
		Sources: []string{"All", "GitHub", "", "GitHub", "Dev.to"},
		Tags:    []string{"AI", "", "AI", "Web"},
	}

	if got := prefs.ActiveSources(); !reflect.DeepEqual(got, []string{"GitHub", "Dev.to"}) {
		t.Errorf("Unexpected active sources: %v", got)
	}
	if got := prefs.ActiveTags(); !reflect.DeepEqual(got, []string{"AI", "Web"}) {
		t.Errorf("Unexpected active tags: %v", got)
	}

	onlyAll := UserPreferences{Sources: []string{"All"}}
	if got := onlyAll.ActiveSources(); len(got) != 0 {
		t.Errorf("Expected no active sources, got %v", got)
	}
}

func TestIngestionError(t *testing.T) {
	cause := errors.New("connection reset")
	var err error = &IngestionError{Result: IngestionResult{Total: 4, Inserted: 1}, Err: cause}
	wrapped := fmt.Errorf("run: %w", err)

	if !errors.Is(wrapped, ErrIngestionFailed) {
		t.Error("Expected errors.Is to match ErrIngestionFailed")
	}
	if !errors.Is(wrapped, cause) {
		t.Error("Expected errors.Is to match the cause")
	}

	var ingestErr *IngestionError
	if !errors.As(wrapped, &ingestErr) || ingestErr.Result.Inserted != 1 {
		t.Errorf("Expected partial result to survive, got %+v", ingestErr)
	}
}

func TestNormalizedItemValid(t *testing.T) {
	if !(NormalizedItem{Title: "t", URL: "u"}).Valid() {
		t.Error("Expected item with title and url to be valid")
	}
	if (NormalizedItem{Title: "t"}).Valid() || (NormalizedItem{URL: "u"}).Valid() {
		t.Error("Expected items missing title or url to be invalid")
	}
}
