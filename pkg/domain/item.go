package domain

// Source names used by the built-in adapters.
const (
	SourceHackerNews = "Hacker News"
	SourceGitHub     = "GitHub"
	SourceDevTo      = "Dev.to"
	SourceTechCrunch = "TechCrunch"
	SourceSmashing   = "Smashing Magazine"
	SourceCSSTricks  = "CSS-Tricks"
)

// NormalizedItem is the common shape every source adapter maps its feed into.
type NormalizedItem struct {
	Title  string
	URL    string
	Source string
	Author string
	// Score is the source popularity signal (points, stars, reactions); 0 when absent.
	Score int
	Tags  []string
	// Summary is optional here; ingestion fills it before persisting.
	Summary string
	// Description is the raw upstream description, used by summary templates.
	Description string
	SourceIcon  string
}

// Valid reports whether the item can be stored and displayed.
func (i NormalizedItem) Valid() bool {
	return i.URL != "" && i.Title != ""
}
