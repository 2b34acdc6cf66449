package summary

import (
	"fmt"
	"strings"

	"devpulse/pkg/domain"
)

// templateData is what the fallback templates interpolate.
type templateData struct {
	Source      string
	Score       int
	Author      string
	Keywords    string
	Description string
}

// describe returns the upstream description, or alt when there is none.
func (d templateData) describe(alt string) string {
	if d.Description != "" {
		return d.Description
	}
	return alt
}

type template func(d templateData) string

// genericTemplates serve feeds without a template set of their own. They
// carry no popularity signal, so they never mention a score.
var genericTemplates = []template{
	func(d templateData) string {
		if d.Author == "" {
			return fmt.Sprintf("Article from %s. %s.", d.Source, d.describe(d.Keywords))
		}
		return fmt.Sprintf("Article from %s by %s. %s.", d.Source, d.Author, d.describe(d.Keywords))
	},
	func(d templateData) string {
		return fmt.Sprintf("New on %s: %s.", d.Source, d.describe(d.Keywords))
	},
	func(d templateData) string {
		return fmt.Sprintf("%s. Latest from %s.", d.describe(d.Keywords), d.Source)
	},
}

var hackerNewsTemplates = []template{
	func(d templateData) string {
		return fmt.Sprintf("Popular discussion on Hacker News with %d points by %s. %s.", d.Score, d.Author, d.Keywords)
	},
	func(d templateData) string {
		return fmt.Sprintf("Trending tech story with %d upvotes. Community discussing %s.", d.Score, d.Keywords)
	},
	func(d templateData) string {
		return fmt.Sprintf("Hot topic on HN: %s. %d points and active discussion.", d.Keywords, d.Score)
	},
}

var templatesBySource = map[string][]template{
	domain.SourceHackerNews: hackerNewsTemplates,
	domain.SourceGitHub: {
		func(d templateData) string {
			return fmt.Sprintf("New repository by %s with %d stars. %s.", d.Author, d.Score, d.describe(d.Keywords))
		},
		func(d templateData) string {
			return fmt.Sprintf("Trending GitHub project: %s. %d developers starred this repo.", d.Keywords, d.Score)
		},
		func(d templateData) string {
			return fmt.Sprintf("Popular open-source project with %d stars. %s.", d.Score, d.describe("Check out this interesting repository"))
		},
	},
	domain.SourceDevTo: {
		func(d templateData) string {
			return fmt.Sprintf("Developer article by %s with %d reactions. %s.", d.Author, d.Score, d.describe(d.Keywords))
		},
		func(d templateData) string {
			return fmt.Sprintf("Community favorite: %s. %d developers found this helpful.", d.Keywords, d.Score)
		},
		func(d templateData) string {
			return fmt.Sprintf("Popular dev article with %d reactions. %s.", d.Score, d.describe("Worth reading for developers"))
		},
	},
	domain.SourceTechCrunch: {
		func(d templateData) string {
			return fmt.Sprintf("TechCrunch article by %s with %d reactions. %s.", d.Author, d.Score, d.describe(d.Keywords))
		},
		func(d templateData) string {
			return fmt.Sprintf("Latest tech news: %s. %d readers found this insightful.", d.Keywords, d.Score)
		},
		func(d templateData) string {
			return fmt.Sprintf("Hot topic on TechCrunch: %s. %d reactions and discussions.", d.Keywords, d.Score)
		},
	},
	domain.SourceSmashing: {
		func(d templateData) string {
			return fmt.Sprintf("Smashing Magazine article by %s with %d reactions. %s.", d.Author, d.Score, d.describe(d.Keywords))
		},
		func(d templateData) string {
			return fmt.Sprintf("Design and web development insights: %s. %d readers found this helpful.", d.Keywords, d.Score)
		},
		func(d templateData) string {
			return fmt.Sprintf("Popular design article with %d reactions. %s.", d.Score, d.describe("Worth reading for designers"))
		},
	},
	domain.SourceCSSTricks: {
		func(d templateData) string {
			return fmt.Sprintf("CSS-Tricks article by %s with %d reactions. %s.", d.Author, d.Score, d.describe(d.Keywords))
		},
		func(d templateData) string {
			return fmt.Sprintf("Web design and CSS tips: %s. %d readers found this useful.", d.Keywords, d.Score)
		},
		func(d templateData) string {
			return fmt.Sprintf("Popular CSS article with %d reactions. %s.", d.Score, d.describe("Worth reading for web developers"))
		},
	},
}

var techKeywords = []string{
	"JavaScript", "Python", "React", "Node.js", "AI", "Machine Learning", "Docker",
	"Kubernetes", "AWS", "TypeScript", "Vue", "Angular", "Database", "API", "Frontend",
	"Backend", "DevOps", "Security", "Blockchain", "Web3", "Crypto", "Ethereum",
	"Bitcoin", "DeFi", "NFTs", "Smart Contracts",
}

// keywordPhrase names up to two known technologies in the title, or falls
// back to the first four words.
func keywordPhrase(title string) string {
	lower := strings.ToLower(title)

	var found []string
	for _, kw := range techKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			found = append(found, kw)
			if len(found) == 2 {
				break
			}
		}
	}
	if len(found) > 0 {
		return "Focuses on " + strings.Join(found, " and ")
	}

	words := strings.Fields(title)
	if len(words) > 4 {
		words = words[:4]
	}
	if len(words) == 0 {
		return "About this story"
	}
	return "About " + strings.Join(words, " ")
}
