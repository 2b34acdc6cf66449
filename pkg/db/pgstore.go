package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"devpulse/pkg/domain"
)

const articlesTable = "articles"

var articleColumns = []string{
	"id", "url", "title", "source", "author", "score", "tags",
	"summary", "source_icon", "created_at", "updated_at",
}

// upsertSuffix refreshes the mutable columns on conflict. xmax is 0 only for
// a freshly inserted row, which tells inserts and updates apart.
const upsertSuffix = `ON CONFLICT (url) DO UPDATE SET
  title = EXCLUDED.title,
  source = EXCLUDED.source,
  author = EXCLUDED.author,
  score = EXCLUDED.score,
  tags = EXCLUDED.tags,
  summary = EXCLUDED.summary,
  source_icon = EXCLUDED.source_icon,
  updated_at = EXCLUDED.updated_at
RETURNING (xmax = 0)`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresStore stores articles in Postgres. It runs on any DBProvider, so a
// plain PostgresClient and a SupabaseClient work alike.
type PostgresStore struct {
	provider DBProvider
	types    *pgtype.Map
}

// NewPostgresStore creates a store on top of a connected provider
func NewPostgresStore(provider DBProvider) *PostgresStore {
	return &PostgresStore{provider: provider, types: pgtype.NewMap()}
}

func (s *PostgresStore) db() (*sql.DB, error) {
	if s.provider == nil || s.provider.DB() == nil {
		return nil, fmt.Errorf("postgres DB not connected")
	}
	return s.provider.DB(), nil
}

// EnsureSchema creates the articles table and its indexes.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	const ddl = `
CREATE TABLE IF NOT EXISTS articles (
  id TEXT PRIMARY KEY,
  url TEXT NOT NULL UNIQUE,
  title TEXT NOT NULL,
  source TEXT NOT NULL DEFAULT '',
  author TEXT NOT NULL DEFAULT '',
  score INTEGER NOT NULL DEFAULT 0,
  tags TEXT[] NOT NULL DEFAULT '{}',
  summary TEXT NOT NULL DEFAULT '',
  source_icon TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS articles_created_idx ON articles (created_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS articles_source_idx ON articles (source);`

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create articles table: %w", err)
	}
	return nil
}

// UpsertByURL inserts a new row or refreshes the mutable columns of the
// existing one. id and created_at are only written by the insert branch.
func (s *PostgresStore) UpsertByURL(ctx context.Context, url string, set domain.ArticleFields, onInsert domain.InsertFields) (domain.UpsertResult, error) {
	db, err := s.db()
	if err != nil {
		return domain.UpsertResult{}, err
	}

	query, args, err := psql.Insert(articlesTable).
		Columns(articleColumns...).
		Values(uuid.NewString(), url, set.Title, set.Source, set.Author, set.Score,
			tagsOrEmpty(set.Tags), set.Summary, set.SourceIcon, onInsert.CreatedAt, set.UpdatedAt).
		Suffix(upsertSuffix).
		ToSql()
	if err != nil {
		return domain.UpsertResult{}, fmt.Errorf("build upsert: %w", err)
	}

	var inserted bool
	if err := db.QueryRowContext(ctx, query, args...).Scan(&inserted); err != nil {
		return domain.UpsertResult{}, fmt.Errorf("upsert article %q: %w", url, err)
	}
	return domain.UpsertResult{Inserted: inserted}, nil
}

// MirrorArticles copies already stored articles, keeping their ids and
// timestamps, inside one transaction. It returns how many rows were new.
func (s *PostgresStore) MirrorArticles(ctx context.Context, articles []domain.Article) (int, error) {
	db, err := s.db()
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted := 0
	for _, a := range articles {
		if a.URL == "" {
			continue
		}
		query, args, err := psql.Insert(articlesTable).
			Columns(articleColumns...).
			Values(a.ID, a.URL, a.Title, a.Source, a.Author, a.Score,
				tagsOrEmpty(a.Tags), a.Summary, a.SourceIcon, a.CreatedAt, a.UpdatedAt).
			Suffix(upsertSuffix).
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("build mirror insert: %w", err)
		}

		var isNew bool
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&isNew); err != nil {
			return 0, fmt.Errorf("mirror article url=%q: %w", a.URL, err)
		}
		if isNew {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// FindMany returns the articles matching filter in the requested order.
func (s *PostgresStore) FindMany(ctx context.Context, filter domain.ArticleFilter, order domain.SortOrder, skip, limit int) ([]domain.Article, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	builder := applyFilter(psql.Select(articleColumns...).From(articlesTable), filter)
	if order == domain.SortOldest {
		builder = builder.OrderBy("created_at ASC", "id ASC")
	} else {
		builder = builder.OrderBy("created_at DESC", "id DESC")
	}
	if skip > 0 {
		builder = builder.Offset(uint64(skip))
	}
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	articles := []domain.Article{}
	for rows.Next() {
		a, err := s.scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return articles, nil
}

// CountMatching counts the articles matching filter.
func (s *PostgresStore) CountMatching(ctx context.Context, filter domain.ArticleFilter) (int64, error) {
	db, err := s.db()
	if err != nil {
		return 0, err
	}

	query, args, err := applyFilter(psql.Select("COUNT(*)").From(articlesTable), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var n int64
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}

// CountBySource counts the stored articles per source.
func (s *PostgresStore) CountBySource(ctx context.Context) (map[string]int64, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	query, args, err := psql.Select("source", "COUNT(*)").From(articlesTable).GroupBy("source").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build source counts: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count articles by source: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var source string
		var n int64
		if err := rows.Scan(&source, &n); err != nil {
			return nil, fmt.Errorf("scan source count: %w", err)
		}
		counts[source] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return counts, nil
}

func (s *PostgresStore) scanArticle(rows *sql.Rows) (domain.Article, error) {
	var a domain.Article
	var tags []string
	err := rows.Scan(&a.ID, &a.URL, &a.Title, &a.Source, &a.Author, &a.Score,
		s.types.SQLScanner(&tags), &a.Summary, &a.SourceIcon, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.Article{}, fmt.Errorf("scan article: %w", err)
	}
	a.Tags = tagsOrEmpty(tags)
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

// applyFilter adds the WHERE clauses for an ArticleFilter. Keywords are
// matched as escaped ILIKE patterns, tags through unnest.
func applyFilter(b sq.SelectBuilder, f domain.ArticleFilter) sq.SelectBuilder {
	if sources := nonBlank(f.Sources); len(sources) > 0 {
		b = b.Where(sq.Eq{"source": sources})
	}
	if !f.CreatedSince.IsZero() {
		b = b.Where(sq.GtOrEq{"created_at": f.CreatedSince})
	}

	var or sq.Or
	for _, kw := range f.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		pattern := "%" + escapeLike(kw) + "%"
		for _, field := range searchFields {
			if field == "tags" {
				or = append(or, sq.Expr("EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE ?)", pattern))
				continue
			}
			or = append(or, sq.ILike{field: pattern})
		}
	}
	if len(or) > 0 {
		b = b.Where(or)
	}
	return b
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
