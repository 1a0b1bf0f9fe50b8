// internal/synthesis/client_test.go
package synthesis

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"research-assistant/internal/common/logger"
	"research-assistant/internal/prompt"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		BaseURL:     "http://localhost:8080",
		Model:       "llama-3.1-8b-instant",
		MaxTokens:   1024,
		Temperature: 0,
		Timeout:     3 * time.Second,
	}
}

func testPrompt() prompt.Prompt {
	return prompt.Prompt{
		System: "You are a precise research assistant.",
		User:   "Question:\nWhat is Go?\n\nEvidence:\n== DuckDuckGo ==\n",
	}
}

func completionResponse(content string) string {
	data, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]interface{}{"role": "assistant", "content": content}},
		},
	})
	return string(data)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestClient_Synthesize_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req chatCompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama-3.1-8b-instant", req.Model)
		assert.Equal(t, float64(0), req.Temperature)
		assert.False(t, req.Stream)
		assert.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionResponse("Go is a programming language. [Wikipedia]")))
	}))
	defer server.Close()

	config := createTestConfig()
	config.BaseURL = server.URL
	client := NewClient(config, logger.NewTestLogger(t))

	answer, err := client.Synthesize(context.Background(), "test-key", testPrompt())

	assert.NoError(t, err)
	assert.Equal(t, "Go is a programming language. [Wikipedia]", answer)
}

func TestClient_Synthesize_MissingCredential(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(completionResponse("should never happen")))
	}))
	defer server.Close()

	config := createTestConfig()
	config.BaseURL = server.URL
	client := NewClient(config, logger.NewTestLogger(t))

	for _, key := range []string{"", "   "} {
		answer, err := client.Synthesize(context.Background(), key, testPrompt())
		assert.ErrorIs(t, err, ErrMissingCredential)
		assert.Empty(t, answer)
	}

	// The credential check must fire before any network traffic
	assert.Equal(t, int32(0), calls.Load())
}

func TestClient_Synthesize_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid API Key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	config := createTestConfig()
	config.BaseURL = server.URL
	client := NewClient(config, logger.NewTestLogger(t))

	answer, err := client.Synthesize(context.Background(), "bad-key", testPrompt())

	assert.ErrorIs(t, err, ErrSynthesisFailed)
	assert.Contains(t, err.Error(), "Invalid API Key")
	assert.Empty(t, answer)
}

func TestClient_Synthesize_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	config := createTestConfig()
	config.BaseURL = server.URL
	client := NewClient(config, logger.NewTestLogger(t))

	answer, err := client.Synthesize(context.Background(), "test-key", testPrompt())

	assert.ErrorIs(t, err, ErrSynthesisFailed)
	assert.Empty(t, answer)
}

func TestClient_Synthesize_BlankContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionResponse("   ")))
	}))
	defer server.Close()

	config := createTestConfig()
	config.BaseURL = server.URL
	client := NewClient(config, logger.NewTestLogger(t))

	answer, err := client.Synthesize(context.Background(), "test-key", testPrompt())

	assert.ErrorIs(t, err, ErrSynthesisFailed)
	assert.Empty(t, answer)
}

func TestClient_Synthesize_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server notices the client disconnect and
		// cancels the request context; otherwise Close deadlocks.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	config := createTestConfig()
	config.BaseURL = server.URL
	config.Timeout = 50 * time.Millisecond
	client := NewClient(config, logger.NewTestLogger(t))

	answer, err := client.Synthesize(context.Background(), "test-key", testPrompt())

	assert.ErrorIs(t, err, ErrSynthesisTimeout)
	assert.Empty(t, answer)
}

func TestClient_Synthesize_NoRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	config := createTestConfig()
	config.BaseURL = server.URL
	client := NewClient(config, logger.NewTestLogger(t))

	_, err := client.Synthesize(context.Background(), "test-key", testPrompt())

	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "exactly one attempt per query")
}

func TestClient_Synthesize_AnswerTrimmed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionResponse("\n  An answer with padding.  \n")))
	}))
	defer server.Close()

	config := createTestConfig()
	config.BaseURL = server.URL
	client := NewClient(config, logger.NewTestLogger(t))

	answer, err := client.Synthesize(context.Background(), "test-key", testPrompt())

	assert.NoError(t, err)
	assert.Equal(t, "An answer with padding.", answer)
}
