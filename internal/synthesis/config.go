// internal/synthesis/config.go
package synthesis

import "time"

type Config struct {
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "https://api.groq.com",
		Model:       "llama-3.1-8b-instant",
		MaxTokens:   1024,
		Temperature: 0,
		Timeout:     60 * time.Second,
	}
}
