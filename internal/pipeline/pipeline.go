// internal/pipeline/pipeline.go

// Package pipeline orchestrates one research cycle: fan the query out to
// the evidence sources, merge their output into an ordered bundle, build
// the prompt, and call synthesis. Sources degrade individually; only a
// blank query or a missing credential aborts the cycle before it starts.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "research-assistant/internal/common/errors"
	"research-assistant/internal/common/logger"
	"research-assistant/internal/common/metrics"
	"research-assistant/internal/common/observability"
	"research-assistant/internal/evidence"
	"research-assistant/internal/prompt"
	"research-assistant/internal/sources/arxiv"
	"research-assistant/internal/sources/websearch"
	"research-assistant/internal/sources/wikipedia"
	"research-assistant/internal/synthesis"
)

// WebSearcher fetches ranked web results for a query.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]evidence.SearchResult, error)
}

// SnippetFetcher fetches a single-document snippet for a query.
type SnippetFetcher interface {
	Lookup(ctx context.Context, query string) (evidence.SourceSnippet, error)
}

// Synthesizer turns a prompt into the final answer text.
type Synthesizer interface {
	Synthesize(ctx context.Context, apiKey string, p prompt.Prompt) (string, error)
}

// Request is one research submission. APIKey may come from the environment
// or from the per-request settings panel; the panel wins when both are set.
type Request struct {
	Query  string
	APIKey string
}

// Warning describes one degraded evidence source within an otherwise
// successful cycle.
type Warning struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// Response carries everything the UI renders for one cycle: the raw
// per-source evidence for the expandable panels, the answer, and any
// degradation warnings. When synthesis fails the evidence is still
// populated so the raw panels stay inspectable.
type Response struct {
	QueryID   string                  `json:"queryId"`
	Query     string                  `json:"query"`
	Web       []evidence.SearchResult `json:"webResults"`
	Wikipedia evidence.SourceSnippet  `json:"wikipedia"`
	Arxiv     evidence.SourceSnippet  `json:"arxiv"`
	Warnings  []Warning               `json:"warnings,omitempty"`
	Answer    string                  `json:"answer,omitempty"`
	Error     *ErrorInfo              `json:"error,omitempty"`
}

// ErrorInfo is the serialized form of a synthesis failure.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Pipeline wires the three sources and the synthesizer together.
type Pipeline struct {
	web       WebSearcher
	wikipedia SnippetFetcher
	arxiv     SnippetFetcher
	synth     Synthesizer
	obs       *observability.Observability
	logger    logger.Logger
}

func New(web WebSearcher, wiki, arx SnippetFetcher, synth Synthesizer, obs *observability.Observability, log logger.Logger) *Pipeline {
	return &Pipeline{
		web:       web,
		wikipedia: wiki,
		arxiv:     arx,
		synth:     synth,
		obs:       obs,
		logger:    log.With(map[string]interface{}{"component": "pipeline"}),
	}
}

// Run executes one research cycle. Validation failures return an error and
// no Response; once fetching starts, the cycle always produces a Response,
// with synthesis failures embedded in it rather than returned.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		p.record(ctx, "rejected", start)
		return nil, apperrors.NewEmptyQueryError()
	}
	if strings.TrimSpace(req.APIKey) == "" {
		p.record(ctx, "rejected", start)
		return nil, apperrors.NewMissingCredentialError()
	}

	queryID := uuid.New().String()
	log := p.logger.With(map[string]interface{}{
		"queryId": queryID,
		"query":   query,
	})
	log.Info("research cycle started", nil)

	resp := &Response{
		QueryID: queryID,
		Query:   query,
	}

	resp.Web = p.fetchWeb(ctx, query, resp, log)
	resp.Wikipedia = p.fetchSnippet(ctx, wikipedia.SourceName, p.wikipedia, evidence.LabelWikipedia, query, resp, log)
	resp.Arxiv = p.fetchSnippet(ctx, arxiv.SourceName, p.arxiv, evidence.LabelArxiv, query, resp, log)

	bundle := evidence.NewBundle(resp.Web, resp.Wikipedia, resp.Arxiv)
	pr := prompt.Build(query, bundle)

	synthStart := time.Now()
	answer, err := p.synth.Synthesize(ctx, req.APIKey, pr)
	metrics.SynthesisDuration.Observe(time.Since(synthStart).Seconds())

	if err != nil {
		resp.Error = synthesisError(err)
		log.WithError(err).Error("synthesis failed", map[string]interface{}{
			"code": resp.Error.Code,
		})
		p.record(ctx, "synthesis_failed", start)
		return resp, nil
	}

	resp.Answer = answer
	log.Info("research cycle completed", map[string]interface{}{
		"evidenceItems": bundle.Len(),
		"warnings":      len(resp.Warnings),
		"durationMs":    time.Since(start).Milliseconds(),
	})
	p.record(ctx, "success", start)

	return resp, nil
}

// fetchWeb runs the web search, converting a failure into a warning and an
// empty result list. Zero hits from a healthy provider is not a warning.
func (p *Pipeline) fetchWeb(ctx context.Context, query string, resp *Response, log logger.Logger) []evidence.SearchResult {
	fetchStart := time.Now()
	results, err := p.web.Search(ctx, query)
	metrics.SourceFetchDuration.WithLabelValues(websearch.SourceName).Observe(time.Since(fetchStart).Seconds())

	if err != nil {
		p.degrade(websearch.SourceName, err, resp, log)
		return []evidence.SearchResult{}
	}
	if results == nil {
		results = []evidence.SearchResult{}
	}
	return results
}

// fetchSnippet runs a single-document lookup. Both failure modes produce a
// placeholder snippet; only a real error adds a warning.
func (p *Pipeline) fetchSnippet(ctx context.Context, name string, fetcher SnippetFetcher, label evidence.SourceLabel, query string, resp *Response, log logger.Logger) evidence.SourceSnippet {
	fetchStart := time.Now()
	snippet, err := fetcher.Lookup(ctx, query)
	metrics.SourceFetchDuration.WithLabelValues(name).Observe(time.Since(fetchStart).Seconds())

	if err != nil {
		p.degrade(name, err, resp, log)
		return evidence.MissingSnippet(label)
	}
	return snippet
}

func (p *Pipeline) degrade(source string, err error, resp *Response, log logger.Logger) {
	metrics.SourceFetchFailures.WithLabelValues(source).Inc()
	log.Warn("evidence source degraded", map[string]interface{}{
		"source": source,
		"error":  err.Error(),
	})
	stdErr := apperrors.NewSourceUnavailableError(source, err)
	resp.Warnings = append(resp.Warnings, Warning{
		Source:  source,
		Message: stdErr.Message,
	})
}

func (p *Pipeline) record(ctx context.Context, status string, start time.Time) {
	metrics.QueriesTotal.WithLabelValues(status).Inc()
	if p.obs != nil {
		p.obs.RecordQueryProcessed(ctx, status)
		p.obs.RecordQueryDuration(ctx, time.Since(start), status)
	}
}

func synthesisError(err error) *ErrorInfo {
	code := apperrors.ErrCodeSynthesisFailed
	if errors.Is(err, synthesis.ErrSynthesisTimeout) {
		code = apperrors.ErrCodeSynthesisTimeout
	}
	return &ErrorInfo{
		Code:    string(code),
		Message: apperrors.UserMessage(code),
	}
}
