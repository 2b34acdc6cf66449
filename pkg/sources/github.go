package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"devpulse/pkg/domain"
	"devpulse/pkg/httpclient"
)

const (
	GitHubSearchURL = "https://api.github.com/search/repositories"
	GitHubMinStars  = 10
	githubIcon      = "🐙"
	githubLookback  = 7 * 24 * time.Hour
)

type githubResponse struct {
	Items []githubRepo `json:"items"`
}

type githubRepo struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	HTMLURL         string   `json:"html_url"`
	StargazersCount int      `json:"stargazers_count"`
	Topics          []string `json:"topics"`
	Owner           struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// GitHub lists the most starred repositories created during the last week.
type GitHub struct {
	client   *httpclient.HTTPClient
	baseURL  string
	token    string
	minStars int
	now      func() time.Time
	logger   *slog.Logger
}

// GitHubConfig configures the adapter. Token is optional and raises the API quota.
type GitHubConfig struct {
	URL      string
	Token    string
	MinStars int
}

// NewGitHub creates the GitHub adapter
func NewGitHub(client *httpclient.HTTPClient, cfg GitHubConfig, logger *slog.Logger) *GitHub {
	if cfg.URL == "" {
		cfg.URL = GitHubSearchURL
	}
	if cfg.MinStars <= 0 {
		cfg.MinStars = GitHubMinStars
	}
	return &GitHub{
		client:   client,
		baseURL:  cfg.URL,
		token:    cfg.Token,
		minStars: cfg.MinStars,
		now:      time.Now,
		logger:   orDefault(logger),
	}
}

func (s *GitHub) Name() string { return domain.SourceGitHub }

// searchURL builds the repository search query for the last week.
func (s *GitHub) searchURL() string {
	since := s.now().Add(-githubLookback).UTC().Format("2006-01-02")
	q := url.Values{}
	q.Set("q", "created:>"+since)
	q.Set("sort", "stars")
	q.Set("order", "desc")
	q.Set("per_page", strconv.Itoa(DefaultPageSize))
	return s.baseURL + "?" + q.Encode()
}

// Fetch returns repositories with more than minStars stars.
func (s *GitHub) Fetch(ctx context.Context) []domain.NormalizedItem {
	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if s.token != "" {
		headers["Authorization"] = "Bearer " + s.token
	}

	var resp githubResponse
	if err := s.client.GetJSON(ctx, s.searchURL(), headers, &resp); err != nil {
		return unavailable(s.logger, s.Name(), err)
	}
	if resp.Items == nil {
		return unavailable(s.logger, s.Name(), fmt.Errorf("response has no items array"))
	}

	items := make([]domain.NormalizedItem, 0, len(resp.Items))
	for _, repo := range resp.Items {
		if repo.StargazersCount <= s.minStars {
			continue
		}
		items = append(items, mapGitHubRepo(repo))
	}

	items = keepValid(items)
	s.logger.Info("fetched source", "source", s.Name(), "received", len(resp.Items), "kept", len(items))
	return items
}

func mapGitHubRepo(repo githubRepo) domain.NormalizedItem {
	description := strings.TrimSpace(repo.Description)
	titleDescription := description
	if titleDescription == "" {
		titleDescription = "No description"
	}

	title := ""
	if name := strings.TrimSpace(repo.Name); name != "" {
		title = name + ": " + titleDescription
	}

	return domain.NormalizedItem{
		Title:       title,
		URL:         strings.TrimSpace(repo.HTMLURL),
		Source:      domain.SourceGitHub,
		Author:      strings.TrimSpace(repo.Owner.Login),
		Score:       repo.StargazersCount,
		Tags:        firstN(repo.Topics, 3),
		Description: description,
		SourceIcon:  githubIcon,
	}
}
