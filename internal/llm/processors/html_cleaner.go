package processors

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLCleaner strips markup clutter from pasted job descriptions so prompts
// carry text instead of tags.
type HTMLCleaner struct {
	// Tags to remove completely
	removeTags []string
}

// NewHTMLCleaner creates a new HTML cleaner instance
func NewHTMLCleaner() *HTMLCleaner {
	return &HTMLCleaner{
		removeTags: []string{
			"script", "style", "noscript", "iframe", "object", "embed",
			"applet", "form", "input", "button", "select", "textarea",
			"nav", "header", "footer", "aside", "menu", "menuitem",
			"svg", "path", "g", "defs", "use", "symbol",
			"meta", "link", "title", "base",
		},
	}
}

// LooksLikeHTML reports whether pasted text appears to contain markup worth
// cleaning.
func LooksLikeHTML(text string) bool {
	return strings.Contains(text, "<") && regexp.MustCompile(`<[a-zA-Z][^>]*>`).MatchString(text)
}

// ExtractJobText extracts plain job description text from pasted HTML.
// Plain-text input comes back with whitespace normalized only.
func (hc *HTMLCleaner) ExtractJobText(input string) (string, error) {
	if !LooksLikeHTML(input) {
		return hc.cleanExtractedText(input), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return "", err
	}

	for _, tag := range hc.removeTags {
		doc.Find(tag).Remove()
	}

	// Job-specific selectors (common patterns for job postings)
	jobSelectors := []string{
		"main", "[role='main']", "#main", ".main",
		".job", ".job-posting", ".job-detail", ".job-description",
		".posting", ".position", ".vacancy", ".opportunity",
		".content", ".description", ".details", ".info",
		"article", "section[class*='job']", "section[class*='posting']",
	}

	var contentParts []string

	for _, selector := range jobSelectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" && len(text) > 50 {
				contentParts = append(contentParts, text)
			}
		})
	}

	// No job-specific container found, fall back to body text
	if len(contentParts) == 0 {
		if bodyText := doc.Find("body").Text(); bodyText != "" {
			contentParts = append(contentParts, bodyText)
		}
	}

	combined := strings.Join(contentParts, "\n\n")
	return hc.cleanExtractedText(combined), nil
}

// cleanExtractedText normalizes whitespace and removes browser boilerplate
func (hc *HTMLCleaner) cleanExtractedText(text string) string {
	whitespaceRegex := regexp.MustCompile(`[ \t]+`)
	text = whitespaceRegex.ReplaceAllString(text, " ")

	newlineRegex := regexp.MustCompile(`\n{3,}`)
	text = newlineRegex.ReplaceAllString(text, "\n\n")

	patterns := []string{
		`\bJavaScript\s+is\s+disabled\b.*?enabled\.`,
		`\bCookies?\s+are\s+disabled\b.*?enabled\.`,
		`\bPlease\s+enable\s+JavaScript\b.*?`,
		`\bThis\s+site\s+requires\s+JavaScript\b.*?`,
	}

	for _, pattern := range patterns {
		regex := regexp.MustCompile(pattern)
		text = regex.ReplaceAllString(text, "")
	}

	return strings.TrimSpace(text)
}

// EstimateTokens returns the approximate token count for cleaned text
func (hc *HTMLCleaner) EstimateTokens(text string) int {
	// Rough estimation: ~4 characters per token
	return len(text) / 4
}
