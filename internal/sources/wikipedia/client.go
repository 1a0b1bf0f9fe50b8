// internal/sources/wikipedia/client.go

// Package wikipedia fetches the best-matching article summary for a query
// via the MediaWiki action API.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"research-assistant/internal/common/httpclient"
	"research-assistant/internal/common/logger"
	"research-assistant/internal/evidence"
)

const SourceName = "wikipedia"

type Client struct {
	config *Config
	client *httpclient.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	return &Client{
		config: config,
		client: httpclient.NewClient(config.Timeout),
		logger: log.With(map[string]interface{}{
			"source": SourceName,
		}),
	}
}

// searchResponse covers the subset of the action API payload we read.
// generator=search returns matched pages keyed by page ID.
type searchResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
			Index   int    `json:"index"`
		} `json:"pages"`
	} `json:"query"`
}

// Lookup returns the plain-text summary of the top-ranked article for the
// query, truncated to the configured character budget. A query that matches
// no article yields the placeholder snippet and a nil error; transport and
// provider failures yield the placeholder alongside the error so the caller
// always has something to render.
func (c *Client) Lookup(ctx context.Context, query string) (evidence.SourceSnippet, error) {
	missing := evidence.MissingSnippet(evidence.LabelWikipedia)

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("prop", "extracts")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("generator", "search")
	params.Set("gsrsearch", query)
	params.Set("gsrlimit", "1")
	params.Set("redirects", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return missing, err
	}
	req.Header.Set("User-Agent", "research-assistant/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return missing, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return missing, fmt.Errorf("wikipedia returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return missing, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return missing, fmt.Errorf("failed to parse response: %w", err)
	}

	title, extract := topPage(parsed)
	if title == "" || strings.TrimSpace(extract) == "" {
		c.logger.Info("no wikipedia match", map[string]interface{}{
			"query": query,
		})
		return missing, nil
	}

	text := fmt.Sprintf("Page: %s\nSummary: %s", title, strings.TrimSpace(extract))
	text = evidence.Truncate(text, c.config.MaxChars)

	c.logger.Info("wikipedia lookup completed", map[string]interface{}{
		"query": query,
		"page":  title,
	})

	return evidence.FoundSnippet(evidence.LabelWikipedia, text), nil
}

// topPage picks the page with the lowest search index. The pages map usually
// holds a single entry at gsrlimit=1 but the API does not guarantee order.
func topPage(parsed searchResponse) (title, extract string) {
	best := -1
	for _, page := range parsed.Query.Pages {
		if best == -1 || page.Index < best {
			best = page.Index
			title = page.Title
			extract = page.Extract
		}
	}
	return title, extract
}
