// internal/evidence/evidence.go

// Package evidence holds the data model for one research cycle: the raw
// results fetched from each source and the ordered bundle handed to the
// prompt builder. Nothing here survives past a single query.
package evidence

import (
	"fmt"
	"strings"
)

// SourceLabel identifies the origin of an evidence item. The values double
// as the inline citation markers the synthesis prompt instructs the model
// to use.
type SourceLabel string

const (
	LabelWeb       SourceLabel = "DDG"
	LabelWikipedia SourceLabel = "Wikipedia"
	LabelArxiv     SourceLabel = "arXiv"
)

// webSnippetBudget caps how much of each web result body is rendered into
// the evidence text. Titles and URLs are kept whole.
const webSnippetBudget = 240

// webRenderLimit caps how many web hits enter the rendered evidence. The
// bundle keeps every fetched hit for the raw panels; only the prompt view
// is clipped.
const webRenderLimit = 3

// SearchResult is a single ranked web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// SourceSnippet is the outcome of a single-document lookup (Wikipedia or
// arXiv). When Found is false, Text carries the fixed placeholder message,
// never upstream content.
type SourceSnippet struct {
	Label SourceLabel `json:"sourceLabel"`
	Text  string      `json:"text"`
	Found bool        `json:"found"`
}

// FoundSnippet builds a snippet carrying real upstream content.
func FoundSnippet(label SourceLabel, text string) SourceSnippet {
	return SourceSnippet{Label: label, Text: text, Found: true}
}

// MissingSnippet builds the placeholder variant for a source that matched
// nothing or failed.
func MissingSnippet(label SourceLabel) SourceSnippet {
	return SourceSnippet{
		Label: label,
		Text:  fmt.Sprintf("No %s result found for this query.", label),
		Found: false,
	}
}

// Bundle is the merged, ordered evidence for one query. Order is fixed:
// web results first, then the Wikipedia snippet, then the arXiv snippet,
// regardless of which sources succeeded. No deduplication, no ranking.
type Bundle struct {
	Web       []SearchResult
	Wikipedia SourceSnippet
	Arxiv     SourceSnippet
}

// NewBundle merges the three sources' outputs. Pure function: deterministic
// given its inputs, retains every fetched item.
func NewBundle(web []SearchResult, wikipedia, arxiv SourceSnippet) Bundle {
	return Bundle{Web: web, Wikipedia: wikipedia, Arxiv: arxiv}
}

// Len reports the number of evidence items in the bundle. The two snippet
// slots always count, placeholder or not.
func (b Bundle) Len() int {
	return len(b.Web) + 2
}

// Render produces the labeled evidence text embedded verbatim into the
// synthesis prompt. Web result bodies are clipped to a fixed budget; the
// snippet sources were already truncated by their clients.
func (b Bundle) Render() string {
	var sb strings.Builder

	sb.WriteString("== DuckDuckGo ==\n")
	if len(b.Web) == 0 {
		sb.WriteString("No web results found for this query.\n")
	}
	web := b.Web
	if len(web) > webRenderLimit {
		web = web[:webRenderLimit]
	}
	for _, r := range web {
		body := r.Snippet
		if runes := []rune(body); len(runes) > webSnippetBudget {
			body = string(runes[:webSnippetBudget])
		}
		sb.WriteString(fmt.Sprintf("- %s (%s)\n  %s\n", r.Title, r.URL, body))
	}

	sb.WriteString("\n== Wikipedia ==\n")
	sb.WriteString(b.Wikipedia.Text)
	sb.WriteString("\n")

	sb.WriteString("\n== arXiv ==\n")
	sb.WriteString(b.Arxiv.Text)
	sb.WriteString("\n")

	return sb.String()
}
