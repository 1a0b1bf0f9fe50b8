// internal/sources/arxiv/client.go

// Package arxiv fetches the abstract of the most relevant preprint for a
// query from the arXiv Atom API.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"research-assistant/internal/common/httpclient"
	"research-assistant/internal/common/logger"
	"research-assistant/internal/evidence"
)

const SourceName = "arxiv"

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

// atomFeed covers the subset of the arXiv Atom response we read.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
}

// Lookup returns the metadata and abstract of the top-ranked preprint for
// the query, truncated to the configured character budget. No match yields
// the placeholder snippet and a nil error; transport and provider failures
// yield the placeholder alongside the error.
func (c *Client) Lookup(ctx context.Context, query string) (evidence.SourceSnippet, error) {
	missing := evidence.MissingSnippet(evidence.LabelArxiv)

	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", "1")

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
		return missing, fmt.Errorf("arxiv returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return missing, fmt.Errorf("failed to read response: %w", err)
	}

	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return missing, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(feed.Entries) == 0 {
		c.logger.Info("no arxiv match", map[string]interface{}{
			"query": query,
		})
		return missing, nil
	}

	entry := feed.Entries[0]
	text := formatEntry(entry)
	if strings.TrimSpace(entry.Summary) == "" {
		return missing, nil
	}
	text = evidence.Truncate(text, c.config.MaxChars)

	c.logger.Info("arxiv lookup completed", map[string]interface{}{
		"query": query,
		"title": collapseWhitespace(entry.Title),
	})

	return evidence.FoundSnippet(evidence.LabelArxiv, text), nil
}

// formatEntry renders one preprint as labeled lines. Atom titles and
// abstracts carry hard line breaks from the upstream TeX source, so
// whitespace is collapsed first.
func formatEntry(entry atomEntry) string {
	names := make([]string, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		names = append(names, strings.TrimSpace(a.Name))
	}

	published := entry.Published
	if len(published) >= 10 {
		published = published[:10]
	}

	return fmt.Sprintf("Published: %s\nTitle: %s\nAuthors: %s\nSummary: %s",
		published,
		collapseWhitespace(entry.Title),
		strings.Join(names, ", "),
		collapseWhitespace(entry.Summary),
	)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
