// Package query lists and searches stored articles for one user.
//
// Plain listings push ordering and paging down to the store. Rankings that
// the store cannot express (preferred tags, search relevance) load every
// candidate in newest-first order, re-sort them in memory with a stable
// sort keyed down to the article id, and then cut the page.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"devpulse/pkg/domain"
	"devpulse/pkg/llm"
)

// Store is the read side of the article store.
type Store interface {
	FindMany(ctx context.Context, filter domain.ArticleFilter, sort domain.SortOrder, skip, limit int) ([]domain.Article, error)
	CountMatching(ctx context.Context, filter domain.ArticleFilter) (int64, error)
	CountBySource(ctx context.Context) (map[string]int64, error)
}

// Request describes one listing or search.
type Request struct {
	// Source is the UI source filter; empty or "All" means every source.
	Source      string
	Preferences domain.UserPreferences
	Page        domain.Pagination
	// Search switches to keyword search when non-blank.
	Search string
}

// Result is one page of articles.
type Result struct {
	Items   []domain.Article
	HasMore bool
	// Total and Keywords are only set for searches.
	Total    int64
	Keywords []string
}

// Engine answers listing and search requests.
type Engine struct {
	store    Store
	expander *KeywordExpander
	logger   *slog.Logger
}

// NewEngine creates an engine. generator may be nil.
func NewEngine(store Store, generator llm.Generator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "query")
	return &Engine{
		store:    store,
		expander: NewKeywordExpander(generator, logger),
		logger:   logger,
	}
}

// Query returns one page of articles for req.
func (e *Engine) Query(ctx context.Context, req Request) (Result, error) {
	if err := req.Page.Validate(); err != nil {
		return Result{}, err
	}

	filter := domain.ArticleFilter{Sources: EffectiveSources(req.Source, req.Preferences)}

	if strings.TrimSpace(req.Search) != "" {
		return e.search(ctx, filter, req)
	}

	tags := req.Preferences.ActiveTags()
	if len(tags) == 0 {
		items, err := e.store.FindMany(ctx, filter, domain.SortNewest, req.Page.Offset, req.Page.Limit+1)
		if err != nil {
			return Result{}, fmt.Errorf("list articles: %w", err)
		}
		items, hasMore := domain.TrimExtra(items, req.Page.Limit)
		return Result{Items: items, HasMore: hasMore}, nil
	}

	candidates, err := e.store.FindMany(ctx, filter, domain.SortNewest, 0, 0)
	if err != nil {
		return Result{}, fmt.Errorf("list articles: %w", err)
	}
	RankByPreference(candidates, tags)
	items, hasMore := domain.Window(candidates, req.Page)
	return Result{Items: items, HasMore: hasMore}, nil
}

func (e *Engine) search(ctx context.Context, filter domain.ArticleFilter, req Request) (Result, error) {
	keywords := e.expander.Expand(ctx, req.Search)
	filter.Keywords = keywords

	candidates, err := e.store.FindMany(ctx, filter, domain.SortNewest, 0, 0)
	if err != nil {
		return Result{}, fmt.Errorf("search articles: %w", err)
	}
	RankByRelevance(candidates, keywords)

	items, hasMore := domain.Window(candidates, req.Page)
	e.logger.Info("search finished", "query", req.Search, "keywords", len(keywords), "matches", len(candidates))
	return Result{
		Items:    items,
		HasMore:  hasMore,
		Total:    int64(len(candidates)),
		Keywords: keywords,
	}, nil
}

// EffectiveSources resolves the source restriction. Preferred sources win
// over the UI filter; "All" on either side means no restriction.
func EffectiveSources(uiSource string, prefs domain.UserPreferences) []string {
	if preferred := prefs.ActiveSources(); len(preferred) > 0 {
		return preferred
	}
	if uiSource != "" && uiSource != domain.AllSources {
		return []string{uiSource}
	}
	return nil
}

// TagMatchScore is the number of distinct preferred tags the article carries.
// Matching is exact.
func TagMatchScore(tags, preferred []string) int {
	n := 0
	for i, tag := range tags {
		if slices.Contains(tags[:i], tag) {
			continue
		}
		if slices.Contains(preferred, tag) {
			n++
		}
	}
	return n
}

// RankByPreference orders articles by (tag matches, score, createdAt, id), all descending.
func RankByPreference(articles []domain.Article, preferredTags []string) {
	rankBy(articles, func(a domain.Article) int { return TagMatchScore(a.Tags, preferredTags) }, true)
}

// Field weights for search relevance.
const (
	weightTitle   = 10
	weightSummary = 5
	weightTags    = 3
	weightSource  = 1
	weightAuthor  = 1
)

// Relevance scores how well an article matches the keywords.
func Relevance(a domain.Article, keywords []string) int {
	title := strings.ToLower(a.Title)
	summary := strings.ToLower(a.Summary)
	source := strings.ToLower(a.Source)
	author := strings.ToLower(a.Author)

	total := 0
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(title, kw) {
			total += weightTitle
		}
		if strings.Contains(summary, kw) {
			total += weightSummary
		}
		for _, tag := range a.Tags {
			if strings.Contains(strings.ToLower(tag), kw) {
				total += weightTags
				break
			}
		}
		if strings.Contains(source, kw) {
			total += weightSource
		}
		if strings.Contains(author, kw) {
			total += weightAuthor
		}
	}
	return total
}

// RankByRelevance orders articles by (relevance, createdAt, id), all descending.
func RankByRelevance(articles []domain.Article, keywords []string) {
	rankBy(articles, func(a domain.Article) int { return Relevance(a, keywords) }, false)
}

type ranked struct {
	article domain.Article
	key     int
}

// rankBy sorts articles by key descending, then optionally by score, then
// newest first. Keys are computed once per article.
func rankBy(articles []domain.Article, key func(domain.Article) int, byScore bool) {
	rows := make([]ranked, len(articles))
	for i, a := range articles {
		rows[i] = ranked{article: a, key: key(a)}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.key != b.key {
			return a.key > b.key
		}
		if byScore && a.article.Score != b.article.Score {
			return a.article.Score > b.article.Score
		}
		return newer(a.article, b.article)
	})
	for i := range rows {
		articles[i] = rows[i].article
	}
}

func newer(a, b domain.Article) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// Stats is the dashboard summary of the article store.
type Stats struct {
	Total     int64            `json:"totalArticles"`
	Today     int64            `json:"todayArticles"`
	BySource  map[string]int64 `json:"sourceStats"`
	Recent    []domain.Article `json:"recentArticles"`
	Generated time.Time        `json:"lastUpdated"`
}

// RecentLimit is the number of articles returned in Stats.Recent.
const RecentLimit = 5

// Stats counts articles overall, since local midnight of now, and for every
// stored source. sources lists the configured adapters, reported even when empty.
func (e *Engine) Stats(ctx context.Context, sources []string, now time.Time) (Stats, error) {
	total, err := e.store.CountMatching(ctx, domain.ArticleFilter{})
	if err != nil {
		return Stats{}, fmt.Errorf("count articles: %w", err)
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := e.store.CountMatching(ctx, domain.ArticleFilter{CreatedSince: midnight})
	if err != nil {
		return Stats{}, fmt.Errorf("count today's articles: %w", err)
	}

	bySource, err := e.store.CountBySource(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count articles by source: %w", err)
	}
	// Configured sources with nothing stored yet still show up.
	for _, source := range sources {
		if _, ok := bySource[source]; !ok {
			bySource[source] = 0
		}
	}

	recent, err := e.Recent(ctx, RecentLimit)
	if err != nil {
		return Stats{}, err
	}

	return Stats{Total: total, Today: today, BySource: bySource, Recent: recent, Generated: now}, nil
}

// Recent returns the newest n articles.
func (e *Engine) Recent(ctx context.Context, n int) ([]domain.Article, error) {
	items, err := e.store.FindMany(ctx, domain.ArticleFilter{}, domain.SortNewest, 0, n)
	if err != nil {
		return nil, fmt.Errorf("recent articles: %w", err)
	}
	return items, nil
}
