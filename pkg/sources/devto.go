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
	DevToURL          = "https://dev.to/api/articles?per_page=10"
	DevToMinReactions = 5
	devToIcon         = "💻"
)

type devToArticle struct {
	Title                string   `json:"title"`
	URL                  string   `json:"url"`
	Description          string   `json:"description"`
	PublicReactionsCount int      `json:"public_reactions_count"`
	TagList              []string `json:"tag_list"`
	User                 struct {
		Name string `json:"name"`
	} `json:"user"`
}

// DevTo reads the latest articles from the Dev.to API.
type DevTo struct {
	client       *httpclient.HTTPClient
	url          string
	minReactions int
	logger       *slog.Logger
}

// DevToConfig configures the adapter. Zero values select the defaults.
type DevToConfig struct {
	URL          string
	MinReactions int
}

// NewDevTo creates the Dev.to adapter
func NewDevTo(client *httpclient.HTTPClient, cfg DevToConfig, logger *slog.Logger) *DevTo {
	if cfg.URL == "" {
		cfg.URL = DevToURL
	}
	if cfg.MinReactions <= 0 {
		cfg.MinReactions = DevToMinReactions
	}
	return &DevTo{client: client, url: cfg.URL, minReactions: cfg.MinReactions, logger: orDefault(logger)}
}

func (s *DevTo) Name() string { return domain.SourceDevTo }

// Fetch returns articles with more than minReactions reactions.
func (s *DevTo) Fetch(ctx context.Context) []domain.NormalizedItem {
	var articles []devToArticle
	if err := s.client.GetJSON(ctx, s.url, nil, &articles); err != nil {
		return unavailable(s.logger, s.Name(), err)
	}
	if articles == nil {
		return unavailable(s.logger, s.Name(), fmt.Errorf("response is not an array"))
	}

	items := make([]domain.NormalizedItem, 0, len(articles))
	for _, article := range articles {
		if article.PublicReactionsCount <= s.minReactions {
			continue
		}
		items = append(items, mapDevToArticle(article))
	}

	items = keepValid(items)
	s.logger.Info("fetched source", "source", s.Name(), "received", len(articles), "kept", len(items))
	return items
}

func mapDevToArticle(article devToArticle) domain.NormalizedItem {
	return domain.NormalizedItem{
		Title:       strings.TrimSpace(article.Title),
		URL:         strings.TrimSpace(article.URL),
		Source:      domain.SourceDevTo,
		Author:      strings.TrimSpace(article.User.Name),
		Score:       article.PublicReactionsCount,
		Tags:        firstN(article.TagList, 3),
		Description: strings.TrimSpace(article.Description),
		SourceIcon:  devToIcon,
	}
}
