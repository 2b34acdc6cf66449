package sources

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"devpulse/pkg/content"
	"devpulse/pkg/domain"
	"devpulse/pkg/httpclient"
)

type wordPressPost struct {
	Link  string `json:"link"`
	Title struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
	Excerpt struct {
		Rendered string `json:"rendered"`
	} `json:"excerpt"`
	Embedded struct {
		Author []struct {
			Name string `json:"name"`
		} `json:"author"`
	} `json:"_embedded"`
}

// WordPress reads posts from a site's WordPress REST API (/wp-json/wp/v2/posts).
// Posts carry no popularity signal, so there is no quality filter and the
// score stays 0.
type WordPress struct {
	client *httpclient.HTTPClient
	name   string
	url    string
	icon   string
	logger *slog.Logger
}

// FeedConfig names a configurable feed endpoint.
type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Icon string `yaml:"icon"`
}

// KnownWordPressFeeds lists WordPress sites with dedicated summary templates.
var KnownWordPressFeeds = []FeedConfig{
	{Name: domain.SourceTechCrunch, URL: "https://techcrunch.com/wp-json/wp/v2/posts?per_page=10&_embed=author", Icon: "🚀"},
	{Name: domain.SourceSmashing, URL: "https://www.smashingmagazine.com/wp-json/wp/v2/posts?per_page=10&_embed=author", Icon: "🎨"},
	{Name: domain.SourceCSSTricks, URL: "https://css-tricks.com/wp-json/wp/v2/posts?per_page=10&_embed=author", Icon: "💅"},
}

// NewWordPress creates a WordPress adapter for one site
func NewWordPress(client *httpclient.HTTPClient, cfg FeedConfig, logger *slog.Logger) *WordPress {
	return &WordPress{client: client, name: cfg.Name, url: cfg.URL, icon: cfg.Icon, logger: orDefault(logger)}
}

func (s *WordPress) Name() string { return s.name }

// Fetch returns the latest posts with rendered HTML converted to text.
func (s *WordPress) Fetch(ctx context.Context) []domain.NormalizedItem {
	var posts []wordPressPost
	if err := s.client.GetJSON(ctx, s.url, nil, &posts); err != nil {
		return unavailable(s.logger, s.Name(), err)
	}
	if posts == nil {
		return unavailable(s.logger, s.Name(), fmt.Errorf("response is not an array"))
	}

	items := make([]domain.NormalizedItem, 0, len(posts))
	for _, post := range posts {
		items = append(items, s.mapPost(post))
	}

	items = keepValid(items)
	s.logger.Info("fetched source", "source", s.Name(), "received", len(posts), "kept", len(items))
	return items
}

func (s *WordPress) mapPost(post wordPressPost) domain.NormalizedItem {
	title, err := content.PlainText(post.Title.Rendered)
	if err != nil {
		title = ""
	}

	var author string
	if len(post.Embedded.Author) > 0 {
		author = strings.TrimSpace(post.Embedded.Author[0].Name)
	}

	return domain.NormalizedItem{
		Title:       title,
		URL:         strings.TrimSpace(post.Link),
		Source:      s.name,
		Author:      author,
		Description: content.Excerpt(post.Excerpt.Rendered, content.DefaultExcerptLength),
		SourceIcon:  s.icon,
	}
}
