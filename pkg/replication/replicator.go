package replication

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"devpulse/pkg/domain"
)

const (
	DefaultBatchSize = 100
	DefaultWorkers   = 5
)

// Source yields every article of the primary store.
type Source interface {
	GetAllArticles(ctx context.Context) ([]domain.Article, error)
}

// Target mirrors articles, keeping their ids and timestamps.
type Target interface {
	EnsureSchema(ctx context.Context) error
	MirrorArticles(ctx context.Context, articles []domain.Article) (int, error)
}

// Config wires the replication dependencies.
type Config struct {
	Source    Source
	Target    Target
	BatchSize int
	Workers   int
	Logger    *slog.Logger
}

// Stats summarizes one replication run.
type Stats struct {
	Processed int
	Inserted  int
}

// Replicator copies articles from MongoDB into Postgres.
//
// It is a one-shot "copy everything" flow. Rows already present are
// refreshed, so running it repeatedly converges the mirror.
type Replicator struct {
	source    Source
	target    Target
	batchSize int
	workers   int
	logger    *slog.Logger
}

func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("source store is required")
	}
	if cfg.Target == nil {
		return nil, fmt.Errorf("target store is required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Replicator{
		source:    cfg.Source,
		target:    cfg.Target,
		batchSize: cfg.BatchSize,
		workers:   cfg.Workers,
		logger:    cfg.Logger.With("component", "replication"),
	}, nil
}

// Run mirrors every article in batches processed by a worker pool.
// The first failing batch stops the run.
func (r *Replicator) Run(ctx context.Context) (Stats, error) {
	if err := r.target.EnsureSchema(ctx); err != nil {
		return Stats{}, err
	}

	articles, err := r.source.GetAllArticles(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("read articles: %w", err)
	}
	r.logger.Info("loaded articles, processing in batches", "count", len(articles), "batchSize", r.batchSize)

	stats, err := r.processBatches(ctx, articles)
	if err != nil {
		return stats, err
	}

	r.logger.Info("replication complete", "processed", stats.Processed, "inserted", stats.Inserted)
	return stats, nil
}

type batchJob struct {
	batch      []domain.Article
	start, end int
}

type batchResult struct {
	processed int
	inserted  int
	err       error
}

func (r *Replicator) processBatches(ctx context.Context, articles []domain.Article) (Stats, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	numBatches := (len(articles) + r.batchSize - 1) / r.batchSize
	jobs := make(chan batchJob, numBatches)
	results := make(chan batchResult, numBatches)

	for start := 0; start < len(articles); start += r.batchSize {
		end := min(start+r.batchSize, len(articles))
		jobs <- batchJob{batch: articles[start:end], start: start, end: end}
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					results <- batchResult{err: ctx.Err()}
					continue
				}
				inserted, err := r.target.MirrorArticles(ctx, job.batch)
				if err != nil {
					err = fmt.Errorf("mirror batch [%d:%d]: %w", job.start, job.end, err)
				}
				results <- batchResult{processed: len(job.batch), inserted: inserted, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Single reader, so the totals need no lock.
	var stats Stats
	var firstErr error
	for result := range results {
		if result.err != nil {
			if firstErr == nil {
				firstErr = result.err
				cancel()
			}
			continue
		}
		stats.Processed += result.processed
		stats.Inserted += result.inserted
		r.logger.Debug("batch mirrored", "processed", stats.Processed, "total", len(articles), "inserted", stats.Inserted)
	}

	return stats, firstErr
}
