// internal/pipeline/pipeline_test.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "research-assistant/internal/common/errors"
	"research-assistant/internal/common/logger"
	"research-assistant/internal/evidence"
	"research-assistant/internal/prompt"
	"research-assistant/internal/synthesis"
)

// ==========================
// Test Doubles
// ==========================

type stubWebSearcher struct {
	results []evidence.SearchResult
	err     error
}

func (s *stubWebSearcher) Search(ctx context.Context, query string) ([]evidence.SearchResult, error) {
	return s.results, s.err
}

type stubSnippetFetcher struct {
	snippet evidence.SourceSnippet
	err     error
}

func (s *stubSnippetFetcher) Lookup(ctx context.Context, query string) (evidence.SourceSnippet, error) {
	if s.err != nil {
		return evidence.SourceSnippet{}, s.err
	}
	return s.snippet, nil
}

// echoSynthesizer records the prompt it received and answers with a fixed
// string, so tests can assert on what actually reached the model.
type echoSynthesizer struct {
	calls      atomic.Int32
	lastPrompt prompt.Prompt
	answer     string
	err        error
}

func (s *echoSynthesizer) Synthesize(ctx context.Context, apiKey string, p prompt.Prompt) (string, error) {
	s.calls.Add(1)
	s.lastPrompt = p
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

// ==========================
// Test Helper Functions
// ==========================

func healthySources() (*stubWebSearcher, *stubSnippetFetcher, *stubSnippetFetcher) {
	web := &stubWebSearcher{results: []evidence.SearchResult{
		{Title: "Gareth Bale - Official", Snippet: "Welsh footballer", URL: "https://example.com/bale"},
	}}
	wiki := &stubSnippetFetcher{snippet: evidence.FoundSnippet(evidence.LabelWikipedia,
		"Page: Gareth Bale\nSummary: Gareth Frank Bale is a Welsh former footballer.")}
	arx := &stubSnippetFetcher{snippet: evidence.MissingSnippet(evidence.LabelArxiv)}
	return web, wiki, arx
}

func newTestPipeline(t *testing.T, web WebSearcher, wiki, arx SnippetFetcher, synth Synthesizer) *Pipeline {
	return New(web, wiki, arx, synth, nil, logger.NewTestLogger(t))
}

// ==========================
// Validation Tests
// ==========================

func TestPipeline_Run_EmptyQuery(t *testing.T) {
	web, wiki, arx := healthySources()
	synth := &echoSynthesizer{answer: "never"}
	p := newTestPipeline(t, web, wiki, arx, synth)

	for _, query := range []string{"", "   ", "\n\t"} {
		resp, err := p.Run(context.Background(), Request{Query: query, APIKey: "key"})

		assert.Nil(t, resp)
		var stdErr *apperrors.StandardError
		assert.ErrorAs(t, err, &stdErr)
		assert.Equal(t, apperrors.ErrCodeEmptyQuery, stdErr.Code)
	}
	assert.Equal(t, int32(0), synth.calls.Load())
}

func TestPipeline_Run_MissingCredential(t *testing.T) {
	web, wiki, arx := healthySources()
	synth := &echoSynthesizer{answer: "never"}
	p := newTestPipeline(t, web, wiki, arx, synth)

	resp, err := p.Run(context.Background(), Request{Query: "Who is Gareth Bale?", APIKey: "  "})

	assert.Nil(t, resp)
	var stdErr *apperrors.StandardError
	assert.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeMissingCredential, stdErr.Code)
	assert.Equal(t, int32(0), synth.calls.Load(), "no model call without a credential")
}

// ==========================
// Core Functionality Tests
// ==========================

func TestPipeline_Run_Success(t *testing.T) {
	web, wiki, arx := healthySources()
	synth := &echoSynthesizer{answer: "Gareth Bale is a Welsh former footballer. [Wikipedia]"}
	p := newTestPipeline(t, web, wiki, arx, synth)

	resp, err := p.Run(context.Background(), Request{Query: "Who is Gareth Bale?", APIKey: "key"})

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	assert.NotEmpty(t, resp.QueryID)
	assert.Equal(t, "Who is Gareth Bale?", resp.Query)
	assert.Equal(t, "Gareth Bale is a Welsh former footballer. [Wikipedia]", resp.Answer)
	assert.Nil(t, resp.Error)
	assert.Empty(t, resp.Warnings)

	assert.Len(t, resp.Web, 1)
	assert.True(t, resp.Wikipedia.Found)
	assert.False(t, resp.Arxiv.Found)
}

func TestPipeline_Run_PromptCarriesOrderedEvidence(t *testing.T) {
	web, wiki, arx := healthySources()
	synth := &echoSynthesizer{answer: "ok"}
	p := newTestPipeline(t, web, wiki, arx, synth)

	_, err := p.Run(context.Background(), Request{Query: "Who is Gareth Bale?", APIKey: "key"})
	assert.NoError(t, err)

	user := synth.lastPrompt.User
	assert.Contains(t, synth.lastPrompt.System, "Use ONLY the provided evidence")
	assert.True(t, strings.HasPrefix(user, "Question:\nWho is Gareth Bale?"))

	ddg := strings.Index(user, "== DuckDuckGo ==")
	wikiIdx := strings.Index(user, "== Wikipedia ==")
	arxIdx := strings.Index(user, "== arXiv ==")
	assert.GreaterOrEqual(t, ddg, 0)
	assert.Greater(t, wikiIdx, ddg)
	assert.Greater(t, arxIdx, wikiIdx)

	assert.Contains(t, user, "Gareth Bale - Official")
	assert.Contains(t, user, "No arXiv result found for this query.")
}

func TestPipeline_Run_QueryIDsAreUnique(t *testing.T) {
	web, wiki, arx := healthySources()
	synth := &echoSynthesizer{answer: "ok"}
	p := newTestPipeline(t, web, wiki, arx, synth)

	first, err := p.Run(context.Background(), Request{Query: "q", APIKey: "key"})
	assert.NoError(t, err)
	second, err := p.Run(context.Background(), Request{Query: "q", APIKey: "key"})
	assert.NoError(t, err)

	assert.NotEqual(t, first.QueryID, second.QueryID)
}

// ==========================
// Degradation Tests
// ==========================

func TestPipeline_Run_WebSearchFails(t *testing.T) {
	web := &stubWebSearcher{err: errors.New("connection refused")}
	_, wiki, arx := healthySources()
	synth := &echoSynthesizer{answer: "answer from remaining evidence"}
	p := newTestPipeline(t, web, wiki, arx, synth)

	resp, err := p.Run(context.Background(), Request{Query: "q", APIKey: "key"})

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Empty(t, resp.Web)
	assert.Len(t, resp.Warnings, 1)
	assert.Equal(t, "web-search", resp.Warnings[0].Source)
	assert.Equal(t, "answer from remaining evidence", resp.Answer)
}

func TestPipeline_Run_ZeroWebHitsIsNotAWarning(t *testing.T) {
	web := &stubWebSearcher{results: nil}
	_, wiki, arx := healthySources()
	synth := &echoSynthesizer{answer: "ok"}
	p := newTestPipeline(t, web, wiki, arx, synth)

	resp, err := p.Run(context.Background(), Request{Query: "q", APIKey: "key"})

	assert.NoError(t, err)
	assert.Empty(t, resp.Warnings)
	assert.NotNil(t, resp.Web)
	assert.Empty(t, resp.Web)
}

func TestPipeline_Run_SnippetSourceFails(t *testing.T) {
	web, _, arx := healthySources()
	wiki := &stubSnippetFetcher{err: errors.New("upstream 500")}
	synth := &echoSynthesizer{answer: "ok"}
	p := newTestPipeline(t, web, wiki, arx, synth)

	resp, err := p.Run(context.Background(), Request{Query: "q", APIKey: "key"})

	assert.NoError(t, err)
	assert.Len(t, resp.Warnings, 1)
	assert.Equal(t, "wikipedia", resp.Warnings[0].Source)
	// The failed source still occupies its slot with the placeholder
	assert.False(t, resp.Wikipedia.Found)
	assert.Equal(t, "No Wikipedia result found for this query.", resp.Wikipedia.Text)
}

func TestPipeline_Run_AllSourcesFail(t *testing.T) {
	web := &stubWebSearcher{err: errors.New("down")}
	wiki := &stubSnippetFetcher{err: errors.New("down")}
	arx := &stubSnippetFetcher{err: errors.New("down")}
	synth := &echoSynthesizer{answer: "I don't know based on the available evidence."}
	p := newTestPipeline(t, web, wiki, arx, synth)

	resp, err := p.Run(context.Background(), Request{Query: "q", APIKey: "key"})

	assert.NoError(t, err)
	assert.Len(t, resp.Warnings, 3)
	// Synthesis still runs over an all-placeholder bundle
	assert.Equal(t, int32(1), synth.calls.Load())
	assert.Contains(t, synth.lastPrompt.User, "No web results found for this query.")
	assert.Contains(t, synth.lastPrompt.User, "No Wikipedia result found for this query.")
	assert.Contains(t, synth.lastPrompt.User, "No arXiv result found for this query.")
}

// ==========================
// Synthesis Failure Tests
// ==========================

func TestPipeline_Run_SynthesisFails(t *testing.T) {
	web, wiki, arx := healthySources()
	synth := &echoSynthesizer{err: fmt.Errorf("%w: provider returned 500", synthesis.ErrSynthesisFailed)}
	p := newTestPipeline(t, web, wiki, arx, synth)

	resp, err := p.Run(context.Background(), Request{Query: "q", APIKey: "key"})

	assert.NoError(t, err, "synthesis failure is embedded, not returned")
	assert.NotNil(t, resp)
	assert.Empty(t, resp.Answer)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, "SYNTHESIS_FAILED", resp.Error.Code)
	// Raw evidence stays available for the expandable panels
	assert.Len(t, resp.Web, 1)
	assert.True(t, resp.Wikipedia.Found)
}

func TestPipeline_Run_SynthesisTimeout(t *testing.T) {
	web, wiki, arx := healthySources()
	synth := &echoSynthesizer{err: synthesis.ErrSynthesisTimeout}
	p := newTestPipeline(t, web, wiki, arx, synth)

	resp, err := p.Run(context.Background(), Request{Query: "q", APIKey: "key"})

	assert.NoError(t, err)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, "SYNTHESIS_TIMEOUT", resp.Error.Code)
}
