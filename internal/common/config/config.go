// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Sources SourcesConfig `mapstructure:"sources"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// --- Evidence Source Config ---

type SourcesConfig struct {
	WebSearch WebSearchConfig `mapstructure:"web_search"`
	Wikipedia WikipediaConfig `mapstructure:"wikipedia"`
	Arxiv     ArxivConfig     `mapstructure:"arxiv"`
}

type WebSearchConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	MaxResults int    `mapstructure:"max_results"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
}

type WikipediaConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	MaxChars int    `mapstructure:"max_chars"`
	Timeout  int    `mapstructure:"timeout"` // milliseconds
}

type ArxivConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	MaxChars int    `mapstructure:"max_chars"`
	Timeout  int    `mapstructure:"timeout"` // milliseconds
}

// --- LLM Provider Config ---

// LLMConfig holds settings for the hosted chat-completion provider.
// APIKey may be empty at startup; the UI can supply one per query instead.
type LLMConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
