// internal/sources/websearch/parse.go
package websearch

import (
	"regexp"
	"strings"

	"research-assistant/internal/evidence"
)

// The lite page is simple enough that a pair of regexes is more robust than
// a full HTML parser tracking its table layout.
var (
	linkPattern = regexp.MustCompile(`<a[^>]*class=['"]result-link['"][^>]*href=['"]([^'"]+)['"][^>]*>([^<]+)</a>`)
	// Alternative pattern if href comes before class
	linkPattern2   = regexp.MustCompile(`<a[^>]*href=['"]([^'"]+)['"][^>]*class=['"]result-link['"][^>]*>([^<]+)</a>`)
	snippetPattern = regexp.MustCompile(`<td[^>]*class=['"]result-snippet['"][^>]*>([^<]+(?:<[^>]+>[^<]*</[^>]+>)*[^<]*)</td>`)
	tagPattern     = regexp.MustCompile(`<[^>]+>`)
)

// parseResults extracts up to max search results from the DuckDuckGo lite
// HTML, pairing each result link with its snippet cell by position.
func parseResults(html string, max int) []evidence.SearchResult {
	var results []evidence.SearchResult

	matches := linkPattern.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		matches = linkPattern2.FindAllStringSubmatch(html, -1)
	}

	snippetMatches := snippetPattern.FindAllStringSubmatch(html, -1)

	for i, match := range matches {
		if len(match) < 3 {
			continue
		}

		urlStr := strings.TrimSpace(match[1])
		title := cleanHTML(strings.TrimSpace(match[2]))

		snippet := ""
		if i < len(snippetMatches) && len(snippetMatches[i]) > 1 {
			snippet = cleanHTML(snippetMatches[i][1])
		}

		// Skip ad rows and empty results
		if urlStr == "" || title == "" {
			continue
		}

		results = append(results, evidence.SearchResult{
			Title:   title,
			Snippet: snippet,
			URL:     urlStr,
		})

		if len(results) >= max {
			break
		}
	}

	return results
}

// cleanHTML strips tags and decodes the handful of entities the lite page emits.
func cleanHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, "")

	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", "\"")
	s = strings.ReplaceAll(s, "&#39;", "'")
	s = strings.ReplaceAll(s, "&nbsp;", " ")

	return strings.TrimSpace(s)
}
