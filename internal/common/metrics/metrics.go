// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_queries_total",
			Help: "Total number of research queries processed",
		},
		[]string{"status"},
	)

	SourceFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_source_fetch_failures_total",
			Help: "Total number of evidence source fetches that failed",
		},
		[]string{"source"},
	)

	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "research_source_fetch_duration_seconds",
			Help: "Duration of evidence source fetches in seconds",
		},
		[]string{"source"},
	)

	SynthesisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "research_synthesis_duration_seconds",
			Help: "Duration of LLM synthesis calls in seconds",
		},
	)
)
