package sources

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed"

	"devpulse/pkg/content"
	"devpulse/pkg/domain"
	"devpulse/pkg/httpclient"
)

// RSS reads any RSS or Atom feed. Like WordPress it has no popularity signal.
type RSS struct {
	feedParser *gofeed.Parser
	name       string
	url        string
	icon       string
	limit      int
	logger     *slog.Logger
}

// NewRSS creates an RSS/Atom adapter for one feed
func NewRSS(client *httpclient.HTTPClient, cfg FeedConfig, logger *slog.Logger) *RSS {
	parser := gofeed.NewParser()
	parser.Client = client.HTTP()
	parser.UserAgent = httpclient.UserAgent

	return &RSS{
		feedParser: parser,
		name:       cfg.Name,
		url:        cfg.URL,
		icon:       cfg.Icon,
		limit:      DefaultPageSize,
		logger:     orDefault(logger),
	}
}

func (s *RSS) Name() string { return s.name }

// Fetch parses the feed and maps the first page of entries.
func (s *RSS) Fetch(ctx context.Context) []domain.NormalizedItem {
	feed, err := s.feedParser.ParseURLWithContext(s.url, ctx)
	if err != nil {
		return unavailable(s.logger, s.Name(), err)
	}

	entries := feed.Items
	if len(entries) > s.limit {
		entries = entries[:s.limit]
	}

	items := make([]domain.NormalizedItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, s.mapEntry(entry))
	}

	items = keepValid(items)
	s.logger.Info("fetched source", "source", s.Name(), "received", len(feed.Items), "kept", len(items))
	return items
}

func (s *RSS) mapEntry(entry *gofeed.Item) domain.NormalizedItem {
	var author string
	if entry.Author != nil {
		author = entry.Author.Name
	} else if len(entry.Authors) > 0 && entry.Authors[0] != nil {
		author = entry.Authors[0].Name
	}

	body := entry.Description
	if body == "" {
		body = entry.Content
	}

	return domain.NormalizedItem{
		Title:       strings.TrimSpace(entry.Title),
		URL:         strings.TrimSpace(entry.Link),
		Source:      s.name,
		Author:      author,
		Tags:        firstN(entry.Categories, 3),
		Description: content.Excerpt(body, content.DefaultExcerptLength),
		SourceIcon:  s.icon,
	}
}
