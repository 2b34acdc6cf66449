package sources

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"devpulse/pkg/domain"
	"devpulse/pkg/httpclient"
)

const (
	HackerNewsURL       = "https://hn.algolia.com/api/v1/search_by_date?tags=story&hitsPerPage=10"
	HackerNewsMinPoints = 50
	hackerNewsIcon      = "🔥"
)

// hnResponse is the Algolia search payload. A nil Hits means the field was
// missing or null, which is treated as a malformed response.
type hnResponse struct {
	Hits []hnHit `json:"hits"`
}

type hnHit struct {
	ObjectID string `json:"objectID"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Author   string `json:"author"`
	Points   int    `json:"points"`
}

// HackerNews reads recent stories from the Algolia Hacker News API.
type HackerNews struct {
	client    *httpclient.HTTPClient
	url       string
	minPoints int
	logger    *slog.Logger
}

// HackerNewsConfig configures the adapter. Zero values select the defaults.
type HackerNewsConfig struct {
	URL       string
	MinPoints int
}

// NewHackerNews creates the Hacker News adapter
func NewHackerNews(client *httpclient.HTTPClient, cfg HackerNewsConfig, logger *slog.Logger) *HackerNews {
	if cfg.URL == "" {
		cfg.URL = HackerNewsURL
	}
	if cfg.MinPoints <= 0 {
		cfg.MinPoints = HackerNewsMinPoints
	}
	return &HackerNews{client: client, url: cfg.URL, minPoints: cfg.MinPoints, logger: orDefault(logger)}
}

func (s *HackerNews) Name() string { return domain.SourceHackerNews }

// Fetch returns stories with more than minPoints points.
func (s *HackerNews) Fetch(ctx context.Context) []domain.NormalizedItem {
	var resp hnResponse
	if err := s.client.GetJSON(ctx, s.url, nil, &resp); err != nil {
		return unavailable(s.logger, s.Name(), err)
	}
	if resp.Hits == nil {
		return unavailable(s.logger, s.Name(), fmt.Errorf("response has no hits array"))
	}

	items := make([]domain.NormalizedItem, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		if hit.Points <= s.minPoints {
			continue
		}
		items = append(items, mapHackerNewsHit(hit))
	}

	items = keepValid(items)
	s.logger.Info("fetched source", "source", s.Name(), "received", len(resp.Hits), "kept", len(items))
	return items
}

func mapHackerNewsHit(hit hnHit) domain.NormalizedItem {
	return domain.NormalizedItem{
		Title:      strings.TrimSpace(hit.Title),
		URL:        strings.TrimSpace(hit.URL),
		Source:     domain.SourceHackerNews,
		Author:     strings.TrimSpace(hit.Author),
		Score:      hit.Points,
		SourceIcon: hackerNewsIcon,
	}
}
