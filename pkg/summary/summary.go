package summary

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"

	"devpulse/pkg/domain"
	"devpulse/pkg/llm"
)

const (
	maxTokens   = 150
	temperature = 0.5
)

// Summarizer produces a short description for every item. It prefers the
// generator when one is configured and silently falls back to templates.
type Summarizer struct {
	generator llm.Generator
	logger    *slog.Logger
}

// New creates a summarizer. A nil generator means templates only.
func New(generator llm.Generator, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{generator: generator, logger: logger}
}

// Summarize never returns an empty string and never fails.
func (s *Summarizer) Summarize(ctx context.Context, item domain.NormalizedItem) string {
	if s.generator != nil {
		text, err := s.generator.Generate(ctx, buildPrompt(item), maxTokens, temperature)
		if err == nil {
			if text = strings.TrimSpace(text); text != "" {
				return text
			}
		} else {
			s.logger.Debug("summary generation failed, using template", "url", item.URL, "error", err)
		}
	}
	return Fallback(item)
}

func buildPrompt(item domain.NormalizedItem) string {
	var b strings.Builder
	b.WriteString("Summarize this tech article in 2-3 sentences for developers. ")
	b.WriteString("Focus on key technical points and why it matters.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", item.Title)
	if item.Author != "" {
		fmt.Fprintf(&b, "Author: %s\n", item.Author)
	}
	fmt.Fprintf(&b, "Source: %s\n", item.Source)
	fmt.Fprintf(&b, "Score: %d\n", item.Score)
	if item.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", item.Description)
	}
	b.WriteString("\nSummary:")
	return b.String()
}

// Fallback fills one of the source's templates, or a neutral one for sources
// without their own. The template is chosen from a hash of the URL so the
// same item always gets the same summary.
func Fallback(item domain.NormalizedItem) string {
	author := strings.TrimSpace(item.Author)
	templates, ok := templatesBySource[item.Source]
	if !ok {
		templates = genericTemplates
	} else if author == "" {
		author = "Unknown"
	}

	source := strings.TrimSpace(item.Source)
	if source == "" {
		source = "the web"
	}

	data := templateData{
		Source:      source,
		Score:       item.Score,
		Author:      author,
		Keywords:    keywordPhrase(item.Title),
		Description: strings.TrimRight(strings.TrimSpace(item.Description), ".!? "),
	}

	return templates[pick(item, len(templates))](data)
}

func pick(item domain.NormalizedItem, n int) int {
	h := fnv.New32a()
	h.Write([]byte(item.URL))
	h.Write([]byte(item.Title))
	return int(h.Sum32() % uint32(n))
}
