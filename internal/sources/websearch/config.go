// internal/sources/websearch/config.go
package websearch

import "time"

type Config struct {
	BaseURL    string
	MaxResults int
	Timeout    time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:    "https://lite.duckduckgo.com/lite/",
		MaxResults: 5,
		Timeout:    10 * time.Second,
	}
}
