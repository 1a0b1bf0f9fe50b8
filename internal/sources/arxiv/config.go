// internal/sources/arxiv/config.go
package arxiv

import "time"

type Config struct {
	BaseURL  string
	MaxChars int
	Timeout  time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:  "https://export.arxiv.org/api/query",
		MaxChars: 1200,
		Timeout:  15 * time.Second,
	}
}
