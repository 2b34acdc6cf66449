package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"devpulse/pkg/llm"
)

const (
	// MaxKeywords caps the expanded keyword list.
	MaxKeywords = 12

	expandMaxTokens   = 50
	expandTemperature = 0.3
)

// KeywordExpander turns a free-text search into keywords. With a generator
// it asks for related technical terms; otherwise, or on any failure, it
// falls back to whitespace tokenization. Expansion never fails a search.
type KeywordExpander struct {
	generator llm.Generator
	logger    *slog.Logger
}

// NewKeywordExpander creates an expander. A nil generator means tokenization only.
func NewKeywordExpander(generator llm.Generator, logger *slog.Logger) *KeywordExpander {
	if logger == nil {
		logger = slog.Default()
	}
	return &KeywordExpander{generator: generator, logger: logger}
}

// Expand returns the user's own tokens followed by generated terms,
// deduplicated case-insensitively and capped at MaxKeywords.
func (x *KeywordExpander) Expand(ctx context.Context, query string) []string {
	keywords := Tokenize(query)
	if len(keywords) == 0 || x.generator == nil {
		return keywords
	}

	text, err := x.generator.Generate(ctx, expansionPrompt(query), expandMaxTokens, expandTemperature)
	if err != nil {
		x.logger.Warn("keyword expansion failed, using query terms", "query", query, "error", err)
		return keywords
	}

	generated := strings.Split(text, ",")
	x.logger.Debug("expanded search keywords", "query", query, "generated", len(generated))
	return mergeKeywords(keywords, generated)
}

// Tokenize splits a query on whitespace.
func Tokenize(query string) []string {
	return mergeKeywords(nil, strings.Fields(query))
}

func expansionPrompt(query string) string {
	return fmt.Sprintf("Given the user's search query, generate a comma-separated list of 5-10 relevant "+
		"keywords that can be used to find tech articles. Focus on technologies, concepts, and topics.\n\n"+
		"User Query: %q\nKeywords:", query)
}

func mergeKeywords(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, kw := range list {
			kw = strings.Trim(strings.TrimSpace(kw), `"'.`)
			key := strings.ToLower(kw)
			if kw == "" || seen[key] {
				continue
			}
			if len(out) == MaxKeywords {
				return out
			}
			seen[key] = true
			out = append(out, kw)
		}
	}
	return out
}
