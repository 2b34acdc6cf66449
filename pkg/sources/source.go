// Package sources holds one adapter per external feed. Each adapter maps its
// own wire format into domain.NormalizedItem.
//
// Adapters never return errors: a transport failure, timeout, non-2xx status
// or malformed body is logged and yields an empty result, so one outage
// cannot stall an ingestion run.
package sources

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"devpulse/pkg/domain"
)

// DefaultPageSize is the number of items requested from each feed.
const DefaultPageSize = 10

// Source fetches normalized items from one external feed.
type Source interface {
	// Name identifies the feed in logs and per-source counts.
	Name() string
	// Fetch returns the items that pass the source's quality filter.
	// It returns an empty slice on any failure.
	Fetch(ctx context.Context) []domain.NormalizedItem
}

// keepValid drops items that cannot be deduplicated or displayed.
func keepValid(items []domain.NormalizedItem) []domain.NormalizedItem {
	kept := items[:0]
	for _, item := range items {
		if item.Valid() {
			kept = append(kept, item)
		}
	}
	return kept
}

// unavailable logs an absorbed source failure.
func unavailable(logger *slog.Logger, source string, err error) []domain.NormalizedItem {
	logger.Warn("source unavailable", "source", source, "error", err)
	return []domain.NormalizedItem{}
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// firstN keeps the first n distinct non-blank values.
func firstN(values []string, n int) []string {
	out := make([]string, 0, n)
	for _, v := range values {
		if len(out) == n {
			break
		}
		if v = strings.TrimSpace(v); v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
