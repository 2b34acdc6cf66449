package db

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"devpulse/pkg/domain"
)

// MemoryStore keeps articles in process memory. It backs local development
// and tests; the mutex serializes upserts the way a unique index does.
type MemoryStore struct {
	mu       sync.RWMutex
	articles map[string]*domain.Article
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{articles: make(map[string]*domain.Article)}
}

// UpsertByURL creates or refreshes the article stored under url.
func (s *MemoryStore) UpsertByURL(_ context.Context, url string, set domain.ArticleFields, onInsert domain.InsertFields) (domain.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	article, exists := s.articles[url]
	if !exists {
		article = &domain.Article{
			ID:        uuid.Must(uuid.NewV7()).String(),
			URL:       url,
			CreatedAt: onInsert.CreatedAt,
		}
		s.articles[url] = article
	}

	article.Title = set.Title
	article.Source = set.Source
	article.Author = set.Author
	article.Score = set.Score
	article.Tags = append([]string{}, set.Tags...)
	article.Summary = set.Summary
	article.SourceIcon = set.SourceIcon
	article.UpdatedAt = set.UpdatedAt

	return domain.UpsertResult{Inserted: !exists}, nil
}

// FindMany returns copies of the matching articles in the requested order.
func (s *MemoryStore) FindMany(_ context.Context, filter domain.ArticleFilter, order domain.SortOrder, skip, limit int) ([]domain.Article, error) {
	s.mu.RLock()
	matched := make([]domain.Article, 0, len(s.articles))
	for _, a := range s.articles {
		if filter.Matches(*a) {
			matched = append(matched, copyArticle(*a))
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if order == domain.SortOldest {
			a, b = b, a
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	if skip < 0 {
		skip = 0
	}
	if skip >= len(matched) {
		return []domain.Article{}, nil
	}
	matched = matched[skip:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// CountMatching counts the articles matching filter.
func (s *MemoryStore) CountMatching(_ context.Context, filter domain.ArticleFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, a := range s.articles {
		if filter.Matches(*a) {
			n++
		}
	}
	return n, nil
}

// CountBySource counts the stored articles per source.
func (s *MemoryStore) CountBySource(_ context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, a := range s.articles {
		counts[a.Source]++
	}
	return counts, nil
}

func copyArticle(a domain.Article) domain.Article {
	a.Tags = append([]string{}, a.Tags...)
	return a
}
