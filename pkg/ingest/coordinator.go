// Package ingest runs one ingestion pass: fetch every source concurrently,
// enrich the items with tags and summaries, and upsert them by URL.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"devpulse/pkg/categorize"
	"devpulse/pkg/domain"
	"devpulse/pkg/httpclient"
	"devpulse/pkg/sources"
)

// DefaultSummaryWorkers bounds concurrent summary generation.
const DefaultSummaryWorkers = 4

// Store is the write side of the article store.
type Store interface {
	UpsertByURL(ctx context.Context, url string, set domain.ArticleFields, onInsert domain.InsertFields) (domain.UpsertResult, error)
}

// Summarizer returns a non-empty summary for an item.
type Summarizer interface {
	Summarize(ctx context.Context, item domain.NormalizedItem) string
}

// Categorizer maps a title to 1..3 topic tags.
type Categorizer interface {
	Categorize(title string) []string
}

// Config wires the coordinator dependencies. Store and Summarizer are required.
type Config struct {
	Sources     []sources.Source
	Store       Store
	Categorizer Categorizer
	Summarizer  Summarizer

	// AdapterTimeout bounds each source fetch. Defaults to httpclient.DefaultTimeout.
	AdapterTimeout time.Duration
	SummaryWorkers int

	Now    func() time.Time
	Logger *slog.Logger
}

// Coordinator runs ingestion passes. It holds no per-run state, so
// concurrent Ingest calls are safe; overlapping runs on the same URL resolve
// to last-writer-wins on the mutable fields.
type Coordinator struct {
	sources        []sources.Source
	store          Store
	categorizer    Categorizer
	summarizer     Summarizer
	adapterTimeout time.Duration
	summaryWorkers int
	now            func() time.Time
	logger         *slog.Logger
}

// NewCoordinator validates cfg and fills defaults
func NewCoordinator(cfg Config) (*Coordinator, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("article store is required")
	}
	if cfg.Summarizer == nil {
		return nil, fmt.Errorf("summarizer is required")
	}
	if cfg.Categorizer == nil {
		cfg.Categorizer = categorize.NewDefault()
	}
	if cfg.AdapterTimeout <= 0 {
		cfg.AdapterTimeout = httpclient.DefaultTimeout
	}
	if cfg.SummaryWorkers <= 0 {
		cfg.SummaryWorkers = DefaultSummaryWorkers
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Coordinator{
		sources:        cfg.Sources,
		store:          cfg.Store,
		categorizer:    cfg.Categorizer,
		summarizer:     cfg.Summarizer,
		adapterTimeout: cfg.AdapterTimeout,
		summaryWorkers: cfg.SummaryWorkers,
		now:            cfg.Now,
		logger:         cfg.Logger.With("component", "ingest"),
	}, nil
}

// Ingest fetches, enriches and upserts one batch of items.
//
// Source failures only shrink the batch. A store failure stops the run and
// returns a *domain.IngestionError carrying the counts committed so far;
// those upserts are not rolled back.
func (c *Coordinator) Ingest(ctx context.Context) (domain.IngestionResult, error) {
	started := c.now()
	items, perSource := c.fetchAll(ctx)

	result := domain.IngestionResult{Total: len(items), Sources: perSource}
	if len(items) == 0 {
		c.logger.Info("ingestion finished, no items fetched", "sources", perSource)
		return result, nil
	}

	c.enrich(ctx, items)

	for _, item := range items {
		now := c.now()
		res, err := c.store.UpsertByURL(ctx, item.URL, domain.ArticleFields{
			Title:      item.Title,
			Source:     item.Source,
			Author:     item.Author,
			Score:      max(item.Score, 0),
			Tags:       item.Tags,
			Summary:    item.Summary,
			SourceIcon: item.SourceIcon,
			UpdatedAt:  now,
		}, domain.InsertFields{CreatedAt: now})
		if err != nil {
			c.logger.Error("ingestion aborted", "url", item.URL, "inserted", result.Inserted, "updated", result.Updated, "error", err)
			return result, &domain.IngestionError{Result: result, Err: err}
		}
		if res.Inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	c.logger.Info("ingestion finished",
		"total", result.Total,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"sources", perSource,
		"duration", c.now().Sub(started))
	return result, nil
}

// fetchAll runs every source concurrently and concatenates the results in
// source order. Each source gets its own deadline.
func (c *Coordinator) fetchAll(ctx context.Context) ([]domain.NormalizedItem, map[string]int) {
	batches := make([][]domain.NormalizedItem, len(c.sources))

	var g errgroup.Group
	for i, src := range c.sources {
		i, src := i, src
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(ctx, c.adapterTimeout)
			defer cancel()
			batches[i] = src.Fetch(fetchCtx)
			return nil
		})
	}
	_ = g.Wait()

	perSource := make(map[string]int, len(c.sources))
	var items []domain.NormalizedItem
	for i, src := range c.sources {
		perSource[src.Name()] += len(batches[i])
		for _, item := range batches[i] {
			if item.Valid() {
				items = append(items, item)
			}
		}
	}
	return items, perSource
}

// enrich fills missing tags synchronously and missing summaries on a small
// worker pool, since generation is the slow part.
func (c *Coordinator) enrich(ctx context.Context, items []domain.NormalizedItem) {
	jobs := make(chan int, len(items))
	for i := range items {
		items[i].Tags = distinctTags(items[i].Tags)
		switch {
		case len(items[i].Tags) == 0:
			items[i].Tags = c.categorizer.Categorize(items[i].Title)
		case len(items[i].Tags) > categorize.MaxTags:
			items[i].Tags = items[i].Tags[:categorize.MaxTags]
		}
		if items[i].Summary == "" {
			jobs <- i
		}
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < c.summaryWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				// Each worker owns distinct indices.
				items[i].Summary = c.summarizer.Summarize(ctx, items[i])
			}
		}()
	}
	wg.Wait()
}

// distinctTags drops blank and repeated tags, keeping first occurrences.
func distinctTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" && !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}
