package db

import (
	"context"
	"database/sql"

	"devpulse/pkg/domain"
)

// DBProvider is an interface for database clients that provide access to a sql.DB handle.
// This allows both PostgresClient and SupabaseClient to be used interchangeably.
type DBProvider interface {
	DB() *sql.DB
}

// ArticleStore is implemented by every article backend (Mongo, Postgres, memory).
//
// UpsertByURL is the only write path. It must be atomic per URL: the mutable
// fields are always written, the insert fields only when the record is created.
// FindMany treats limit <= 0 as "no limit".
type ArticleStore interface {
	UpsertByURL(ctx context.Context, url string, set domain.ArticleFields, onInsert domain.InsertFields) (domain.UpsertResult, error)
	FindMany(ctx context.Context, filter domain.ArticleFilter, sort domain.SortOrder, skip, limit int) ([]domain.Article, error)
	CountMatching(ctx context.Context, filter domain.ArticleFilter) (int64, error)
	// CountBySource groups every stored article by its source.
	CountBySource(ctx context.Context) (map[string]int64, error)
}

// searchFields are the article fields matched by keyword filters.
var searchFields = []string{"title", "summary", "tags", "source", "author"}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
