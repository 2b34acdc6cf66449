package categorize

import "strings"

// FallbackTag is returned when no category matches.
const FallbackTag = "Tech"

// MaxTags caps the number of tags assigned to one title.
const MaxTags = 3

// Category maps a topic tag to the lowercase keywords that select it.
type Category struct {
	Name     string
	Keywords []string
}

// DefaultCategories is ordered: earlier categories win when more than
// MaxTags match.
var DefaultCategories = []Category{
	{Name: "JavaScript", Keywords: []string{"javascript", "js", "node", "react", "vue", "angular", "typescript", "npm", "webpack"}},
	{Name: "AI", Keywords: []string{"ai", "machine learning", "ml", "gpt", "openai", "artificial intelligence", "neural", "llm"}},
	{Name: "Python", Keywords: []string{"python", "django", "flask", "pandas", "numpy", "pytorch", "tensorflow"}},
	{Name: "Web Development", Keywords: []string{"web", "frontend", "backend", "css", "html", "api", "rest", "graphql"}},
	{Name: "DevOps", Keywords: []string{"docker", "kubernetes", "aws", "cloud", "deployment", "ci/cd", "terraform", "ansible"}},
	{Name: "Mobile", Keywords: []string{"mobile", "ios", "android", "react native", "flutter", "swift", "kotlin"}},
	{Name: "Startups", Keywords: []string{"startup", "funding", "vc", "entrepreneur", "saas", "business"}},
	{Name: "Security", Keywords: []string{"security", "vulnerability", "hack", "breach", "auth", "encryption"}},
	{Name: "Database", Keywords: []string{"database", "sql", "mongodb", "postgres", "redis", "elasticsearch"}},
	{Name: "Blockchain", Keywords: []string{"blockchain", "crypto", "bitcoin", "ethereum", "web3", "nft", "defi", "smart contract", "tokenomics"}},
	{Name: "Open Source", Keywords: []string{"open source", "github", "license", "contribution", "community"}},
	{Name: "Design", Keywords: []string{"design", "ui", "ux", "web design", "graphic design"}},
}

// Categorizer assigns topic tags to titles by keyword substring matching.
type Categorizer struct {
	categories []Category
}

// New creates a categorizer over the given ordered table.
// Keywords are lowercased so callers may pass mixed case.
func New(categories []Category) *Categorizer {
	normalized := make([]Category, 0, len(categories))
	for _, c := range categories {
		keywords := make([]string, 0, len(c.Keywords))
		for _, kw := range c.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		normalized = append(normalized, Category{Name: c.Name, Keywords: keywords})
	}
	return &Categorizer{categories: normalized}
}

// NewDefault creates a categorizer over DefaultCategories.
func NewDefault() *Categorizer {
	return New(DefaultCategories)
}

// Categorize returns between 1 and MaxTags tags for the title, in table order.
// A title matching nothing yields exactly [FallbackTag].
func (c *Categorizer) Categorize(title string) []string {
	lower := strings.ToLower(title)

	tags := make([]string, 0, MaxTags)
	for _, category := range c.categories {
		if matchesAny(lower, category.Keywords) {
			tags = append(tags, category.Name)
			if len(tags) == MaxTags {
				break
			}
		}
	}

	if len(tags) == 0 {
		return []string{FallbackTag}
	}
	return tags
}

func matchesAny(lowerTitle string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowerTitle, kw) {
			return true
		}
	}
	return false
}
