// internal/sources/wikipedia/config.go
package wikipedia

import "time"

type Config struct {
	BaseURL  string
	MaxChars int
	Timeout  time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:  "https://en.wikipedia.org/w/api.php",
		MaxChars: 800,
		Timeout:  10 * time.Second,
	}
}
