package content

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// DefaultExcerptLength is the rune budget used for feed descriptions.
const DefaultExcerptLength = 280

// PlainText strips markup from an HTML fragment and collapses whitespace.
// HTML entities are decoded. Plain strings pass through unchanged apart from
// whitespace collapsing.
func PlainText(htmlContent string) (string, error) {
	if strings.TrimSpace(htmlContent) == "" {
		return "", nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	return collapse(doc.Text()), nil
}

// ExtractText extracts the main article text from a full HTML document
func ExtractText(htmlContent string) (string, error) {
	article, err := readability.FromReader(strings.NewReader(htmlContent), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}

	return collapse(article.TextContent), nil
}

// Excerpt returns a short plain-text description of an HTML body.
// Full documents go through readability first; fragments and readability
// failures fall back to PlainText. The result is cut at a word boundary.
func Excerpt(htmlContent string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = DefaultExcerptLength
	}

	var text string
	if looksLikeDocument(htmlContent) {
		if extracted, err := ExtractText(htmlContent); err == nil {
			text = extracted
		}
	}
	if text == "" {
		plain, err := PlainText(htmlContent)
		if err != nil {
			return ""
		}
		text = plain
	}

	return truncate(text, maxRunes)
}

func looksLikeDocument(htmlContent string) bool {
	lower := strings.ToLower(htmlContent)
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<body") || strings.Count(lower, "<p") >= 3
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:maxRunes])
	if i := strings.LastIndex(cut, " "); i > maxRunes/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:.-") + "..."
}
