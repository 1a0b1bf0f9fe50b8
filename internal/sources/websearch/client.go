// internal/sources/websearch/client.go
package websearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"research-assistant/internal/common/httpclient"
	"research-assistant/internal/common/logger"
	"research-assistant/internal/evidence"
)

const SourceName = "web-search"

var ErrEmptyQuery = errors.New("EMPTY_QUERY")

// Client queries DuckDuckGo's lite HTML interface. The lite page has no
// official API; results are scraped from its stable result-link/result-snippet
// markup.
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

// Search issues one request and returns up to MaxResults hits in
// provider-ranked order. A provider or network failure is returned to the
// caller; the pipeline degrades that source rather than aborting the cycle.
func (c *Client) Search(ctx context.Context, query string) ([]evidence.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	formData := url.Values{}
	formData.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web search returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	results := parseResults(string(body), c.config.MaxResults)

	c.logger.Info("web search completed", map[string]interface{}{
		"query":       query,
		"resultCount": len(results),
	})

	return results, nil
}
