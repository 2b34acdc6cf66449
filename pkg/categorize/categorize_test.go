package categorize

import (
	"reflect"
	"testing"
)

func TestCategorize_KnownTitles(t *testing.T) {
	c := NewDefault()

	tests := []struct {
		title    string
		expected []string
	}{
		{"Introducing Django 5 for Python developers", []string{"Python"}},
		{"Deploying Docker containers on Kubernetes", []string{"DevOps"}},
		{"OpenAI releases new GPT model", []string{"AI"}},
		{"PostgreSQL tuning tips", []string{"Database"}},
		{"Bitcoin hits new high", []string{"Blockchain"}},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := c.Categorize(tt.title)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Categorize(%q) = %v, expected %v", tt.title, got, tt.expected)
			}
		})
	}
}

func TestCategorize_FallbackTag(t *testing.T) {
	c := NewDefault()

	got := c.Categorize("Zzz qqq")
	if !reflect.DeepEqual(got, []string{FallbackTag}) {
		t.Errorf("Expected [%s], got %v", FallbackTag, got)
	}

	got = c.Categorize("")
	if !reflect.DeepEqual(got, []string{FallbackTag}) {
		t.Errorf("Expected [%s] for empty title, got %v", FallbackTag, got)
	}
}

func TestCategorize_TruncatesInTableOrder(t *testing.T) {
	c := NewDefault()

	// Matches JavaScript, AI, Python, Web Development and DevOps.
	got := c.Categorize("React frontend calls a Python GPT service on AWS")
	expected := []string{"JavaScript", "AI", "Python"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestCategorize_CaseInsensitive(t *testing.T) {
	c := New([]Category{{Name: "Go", Keywords: []string{"GOLANG"}}})

	got := c.Categorize("Why I love GoLang")
	if !reflect.DeepEqual(got, []string{"Go"}) {
		t.Errorf("Expected [Go], got %v", got)
	}
}

func TestCategorize_AlwaysOneToThreeTags(t *testing.T) {
	c := NewDefault()
	titles := []string{
		"", "a", "The quick brown fox", "ai ml llm gpt web css html docker aws ios android",
		"Security breach at a startup using mongodb and bitcoin", "🚀🚀🚀",
	}
	for _, title := range titles {
		got := c.Categorize(title)
		if len(got) < 1 || len(got) > MaxTags {
			t.Errorf("Categorize(%q) returned %d tags: %v", title, len(got), got)
		}
	}
}
