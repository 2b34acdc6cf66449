package domain

// AllSources is the sentinel meaning "no source restriction".
const AllSources = "All"

// UserPreferences holds a user's preferred sources and tags.
type UserPreferences struct {
	Sources []string `json:"sources" bson:"sources"`
	Tags    []string `json:"tags" bson:"tags"`
}

// ActiveSources returns the preferred sources without the "All" sentinel or blanks.
func (p UserPreferences) ActiveSources() []string {
	return compact(p.Sources, AllSources)
}

// ActiveTags returns the preferred tags without blanks or duplicates.
func (p UserPreferences) ActiveTags() []string {
	return compact(p.Tags, "")
}

func compact(values []string, drop string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || v == drop || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
