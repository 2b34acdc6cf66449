package domain

import (
	"strings"
	"time"
)

// Article represents a news item stored in the database.
// URL is the unique key; ID and CreatedAt are assigned once by the store.
type Article struct {
	ID         string    `json:"_id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Source     string    `json:"source"`
	Author     string    `json:"author,omitempty"`
	Score      int       `json:"score"`
	Tags       []string  `json:"tags"`
	Summary    string    `json:"summary"`
	SourceIcon string    `json:"sourceIcon,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// MatchesAny reports whether any keyword occurs, case-insensitively, in the
// title, summary, tags, source or author of the article.
func (a Article) MatchesAny(keywords []string) bool {
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if containsFold(a.Title, kw) || containsFold(a.Summary, kw) ||
			containsFold(a.Source, kw) || containsFold(a.Author, kw) {
			return true
		}
		for _, tag := range a.Tags {
			if containsFold(tag, kw) {
				return true
			}
		}
	}
	return false
}

func containsFold(s, lowerSubstr string) bool {
	return strings.Contains(strings.ToLower(s), lowerSubstr)
}

// ArticleFields are the mutable fields written on every upsert ($set).
type ArticleFields struct {
	Title      string
	Source     string
	Author     string
	Score      int
	Tags       []string
	Summary    string
	SourceIcon string
	UpdatedAt  time.Time
}

// InsertFields are only written when the upsert creates the record ($setOnInsert).
type InsertFields struct {
	CreatedAt time.Time
}

// UpsertResult reports whether an upsert created a new record.
type UpsertResult struct {
	Inserted bool
}

// SortOrder selects the ordering applied by the store.
type SortOrder int

const (
	// SortNewest orders by createdAt descending, then id descending.
	SortNewest SortOrder = iota
	// SortOldest orders by createdAt ascending, then id ascending.
	SortOldest
)

// ArticleFilter restricts a store query. Zero values mean "no restriction".
type ArticleFilter struct {
	Sources []string
	// Keywords match any field of the article, any keyword (OR semantics).
	Keywords     []string
	CreatedSince time.Time
}

// Matches applies the filter to an in-memory article.
func (f ArticleFilter) Matches(a Article) bool {
	if len(f.Sources) > 0 && !containsString(f.Sources, a.Source) {
		return false
	}
	if !f.CreatedSince.IsZero() && a.CreatedAt.Before(f.CreatedSince) {
		return false
	}
	if len(f.Keywords) > 0 && !a.MatchesAny(f.Keywords) {
		return false
	}
	return true
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
