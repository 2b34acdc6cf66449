package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/feeds"

	"devpulse/pkg/config"
	"devpulse/pkg/domain"
)

const defaultFeedSize = 50

// GenerateRSSFeed creates an RSS feed from articles
func GenerateRSSFeed(articles []domain.Article, cfg config.FeedConfig, now time.Time) (string, error) {
	feed := &feeds.Feed{
		Title:       cfg.Title,
		Link:        &feeds.Link{Href: cfg.Link},
		Description: cfg.Description,
		Author:      &feeds.Author{Name: cfg.Author},
		Created:     now,
	}

	feed.Items = make([]*feeds.Item, 0, len(articles))
	for _, article := range articles {
		item := &feeds.Item{
			Title:       article.Title,
			Link:        &feeds.Link{Href: article.URL},
			Id:          article.URL,
			Description: article.Summary,
			Created:     article.CreatedAt,
			Updated:     article.UpdatedAt,
		}
		if article.Author != "" {
			item.Author = &feeds.Author{Name: article.Author}
		}
		feed.Items = append(feed.Items, item)
	}

	// Generate RSS 2.0 format
	rss, err := feed.ToRss()
	if err != nil {
		return "", fmt.Errorf("failed to generate RSS: %w", err)
	}
	return rss, nil
}

// handleRSS exports the newest articles as RSS 2.0.
func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	size := s.opts.Feed.Size
	if size <= 0 {
		size = defaultFeedSize
	}

	articles, err := s.opts.Engine.Recent(r.Context(), size)
	if err != nil {
		s.logger.Error("failed to load articles for RSS", "error", err)
		http.Error(w, "Failed to load articles", http.StatusInternalServerError)
		return
	}

	rss, err := GenerateRSSFeed(articles, s.opts.Feed, s.now())
	if err != nil {
		s.logger.Error("failed to render RSS", "error", err)
		http.Error(w, "Failed to generate feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write([]byte(rss))
}
