// internal/synthesis/client.go

// Package synthesis calls a hosted OpenAI-compatible chat completion API to
// turn a prompt into the final grounded answer. One attempt per query, no
// retries; a failed synthesis is surfaced to the user instead of replayed
// against a paid endpoint.
package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"research-assistant/internal/common/httpclient"
	"research-assistant/internal/common/logger"
	"research-assistant/internal/prompt"
)

var (
	ErrMissingCredential = errors.New("MISSING_CREDENTIAL")
	ErrSynthesisFailed   = errors.New("SYNTHESIS_FAILED")
	ErrSynthesisTimeout  = errors.New("SYNTHESIS_TIMEOUT")
)

const completionsPath = "/openai/v1/chat/completions"

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
			"component": "synthesis",
			"model":     config.Model,
		}),
	}
}

// Synthesize sends the prompt as a single chat completion call and returns
// the model's answer text. The credential is checked before any network
// traffic so a missing key never leaks a request upstream.
func (c *Client) Synthesize(ctx context.Context, apiKey string, p prompt.Prompt) (string, error) {
	if strings.TrimSpace(apiKey) == "" {
		return "", ErrMissingCredential
	}

	reqBody := chatCompletionRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: p.System},
			{Role: "user", Content: p.User},
		},
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		Stream:      false,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + completionsPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			c.logger.WithError(err).Error("synthesis timed out", nil)
			return "", ErrSynthesisTimeout
		}
		c.logger.WithError(err).Error("synthesis request failed", nil)
		return "", fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", ErrSynthesisFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("synthesis provider rejected request", map[string]interface{}{
			"statusCode": resp.StatusCode,
		})
		return "", fmt.Errorf("%w: provider returned %d: %s", ErrSynthesisFailed, resp.StatusCode, providerMessage(body))
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %v", ErrSynthesisFailed, err)
	}

	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: provider returned no answer content", ErrSynthesisFailed)
	}

	answer := strings.TrimSpace(parsed.Choices[0].Message.Content)

	c.logger.Info("synthesis completed", map[string]interface{}{
		"answerLength": len(answer),
	})

	return answer, nil
}

// isTimeout distinguishes deadline expiry from other transport failures.
func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() == context.DeadlineExceeded {
		return true
	}
	return strings.Contains(err.Error(), "Client.Timeout") ||
		strings.Contains(err.Error(), "context deadline exceeded")
}

// providerMessage pulls the error message out of an error response body,
// falling back to a clipped raw body.
func providerMessage(body []byte) string {
	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil {
		return parsed.Error.Message
	}
	s := string(body)
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
